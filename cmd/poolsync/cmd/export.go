package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"poolsync/internal/cognito"
	"poolsync/internal/console"
	"poolsync/internal/schema"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the pool's users to a CSV file",
	Long: `Export lists the users of a user pool and writes them to a CSV file
in the bulk-import format, one row per user.

Users whose attributes fail validation are logged and skipped; the
export keeps going, so a few malformed legacy users cannot block a
backup.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	exportOutput string
	exportLimit  int
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "users.csv", "File to write the users to")
	exportCmd.Flags().IntVarP(&exportLimit, "limit", "l", 1000, "Maximum number of users to export")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := requirePool(); err != nil {
		return err
	}
	if exportLimit < 1 {
		return fmt.Errorf("limit must be at least 1")
	}
	ctx := context.Background()
	log := console.New(verbose)

	client, err := cognito.New(cognito.Options{
		UserPoolID: userPoolID,
		Region:     awsRegion,
		Profile:    awsProfile,
		Verbose:    verbose,
	})
	if err != nil {
		return err
	}
	if err := client.Connect(ctx); err != nil {
		return err
	}

	custom := cfg.ApplyAttributeTypes(client.CustomAttributes())
	records, err := client.ExportUsers(ctx, schema.NewExportSchema(custom), exportLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no users found")
	}

	if err := cognito.WriteCSV(exportOutput, records); err != nil {
		return err
	}
	log.Successf("Users exported to %s", exportOutput)
	return nil
}
