package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"poolsync/internal/cognito"
	"poolsync/internal/console"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import users from a CSV file through a bulk import job",
	Long: `Import validates a CSV file and, when every row passes, uploads it to
a new bulk import job and starts the job.

Validation is all-or-nothing: if any row violates the import format,
every violation is reported and nothing is imported. Use --dry-run to
validate and see what would be uploaded without touching the pool.

The import job needs an IAM role it can write CloudWatch logs with.
Pass one with --iam-arn, or leave it blank and one will be created.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

var (
	importFile   string
	importIAMARN string
	importDryRun bool
)

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "File to import the users from")
	importCmd.Flags().StringVarP(&importIAMARN, "iam-arn", "i", "", "ARN of the CloudWatch-logs IAM role (created when blank)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate the file without importing")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	log := console.New(verbose)

	if _, err := os.Stat(importFile); err != nil {
		return fmt.Errorf("file not found: %s", importFile)
	}

	batch, err := cognito.ReadBatch(importFile)
	if err != nil {
		return err
	}
	log.Infof("Validated %d users from %s", len(batch), importFile)

	if importDryRun {
		log.Successf("Dry run: %d users would be imported", len(batch))
		return nil
	}

	if err := requirePool(); err != nil {
		return err
	}
	ctx := context.Background()

	client, err := cognito.New(cognito.Options{
		UserPoolID:    userPoolID,
		Region:        awsRegion,
		Profile:       awsProfile,
		Verbose:       verbose,
		ImportRoleARN: importIAMARN,
	})
	if err != nil {
		return err
	}
	if err := client.Connect(ctx); err != nil {
		return err
	}
	if err := client.EnsureImportRole(ctx); err != nil {
		return err
	}
	if err := client.ImportUsers(ctx, batch); err != nil {
		return err
	}

	log.Successf("Import job started for %d users", len(batch))
	return nil
}
