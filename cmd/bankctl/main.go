/**
 * @description
 * bankctl is the operations CLI for the banking services. It runs the embedded
 * schema migrations of each service and prints the effective configuration.
 *
 * Examples:
 *   bankctl migrate up --service cards --database-url postgres://...
 *   bankctl migrate status --service customers
 *   bankctl config print --service account-service
 *
 * @dependencies
 * - github.com/spf13/cobra: command tree and flags.
 */
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bankctl",
		Short:         "Operations CLI for the customer, account and card services",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}
