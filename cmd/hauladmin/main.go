// Command hauladmin runs operator tasks against the HaulTrackr database:
// schema migrations and account creation.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
