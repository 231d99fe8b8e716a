package main

import (
	"github.com/spf13/cobra"

	"github.com/bridgitkanini/haultrackrbackend/internal/repo"
	"github.com/bridgitkanini/haultrackrbackend/internal/service"
)

var (
	newUsername string
	newEmail    string
	newPassword string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage driver accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account",
	Long: `Create an account with the same rules as POST /api/register:
usernames are unique and passwords need at least 8 characters.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		pool, err := openPool(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		// Registration never issues tokens, so no signer is needed.
		svc := service.NewAuthService(repo.NewUserRepo(pool), nil)
		u, err := svc.Register(cmd.Context(), newUsername, newEmail, newPassword)
		if err != nil {
			return err
		}
		cmd.Printf("created user %s (%s)\n", u.Username, u.ID)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&newUsername, "username", "", "login name (required)")
	userCreateCmd.Flags().StringVar(&newEmail, "email", "", "contact email")
	userCreateCmd.Flags().StringVar(&newPassword, "password", "", "password, at least 8 characters (required)")
	_ = userCreateCmd.MarkFlagRequired("username")
	_ = userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}
