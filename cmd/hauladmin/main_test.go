package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		databaseURL = ""
	}()
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["migrate"])
	assert.True(t, names["user"])

	var migrate []string
	for _, c := range migrateCmd.Commands() {
		migrate = append(migrate, c.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "status"}, migrate)
}

func TestMigrateUp_NoDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := execute(t, "migrate", "up")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestUserCreate_RequiresFlags(t *testing.T) {
	_, err := execute(t, "user", "create", "--username", "trucker")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"password" not set`)
}

func TestMigrateUp_RejectsArgs(t *testing.T) {
	_, err := execute(t, "migrate", "up", "extra")
	require.Error(t, err)
}
