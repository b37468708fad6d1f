// Package cmd implements the CLI commands for poolsync.
//
// poolsync moves user records between a Cognito user pool and the CSV
// exchange format accepted by bulk import jobs:
//
//  1. export: list the pool's users into a validated CSV
//  2. import: validate a CSV and drive a bulk import job with it
//  3. validate: check a CSV offline and report every violation
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"poolsync/internal/config"
)

var (
	userPoolID string
	awsProfile string
	awsRegion  string
	verbose    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "poolsync",
	Short: "Export and import Cognito user pool users",
	Long: `poolsync exports the users of a Cognito user pool to CSV and
imports users from CSV through a bulk import job.

Exported files use the import job's own CSV format, so a pool can be
backed up with 'poolsync export' and restored with 'poolsync import'.
Custom attributes declared on the pool become extra CSV columns.

Examples:
  poolsync export -u eu-west-1_XXXXXXX -o users.csv
  poolsync validate users.csv
  poolsync import -u eu-west-1_XXXXXXX -f users.csv`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if awsRegion == "" {
			awsRegion = cfg.Region
		}
		if awsProfile == "" {
			awsProfile = cfg.Profile
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userPoolID, "user-pool-id", "u", "", "User pool ID")
	rootCmd.PersistentFlags().StringVarP(&awsProfile, "profile", "p", "", "AWS profile")
	rootCmd.PersistentFlags().StringVarP(&awsRegion, "region", "r", "", "AWS region")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show all log messages")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// requirePool guards the subcommands that talk to AWS.
func requirePool() error {
	if userPoolID == "" {
		return fmt.Errorf("user pool ID is required (--user-pool-id)")
	}
	return nil
}
