package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"poolsync/internal/cognito"
	"poolsync/internal/console"
	"poolsync/internal/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate an import CSV without importing it",
	Long: `Validate checks a CSV file against the import format and reports
every violation it finds, one per line, so the file can be corrected
in a single pass.

Exits non-zero when the file is invalid. No AWS credentials are needed.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := console.New(true)

	batch, err := cognito.ReadBatch(args[0])
	if err != nil {
		if verr, ok := schema.AsValidationError(err); ok {
			for _, violation := range verr.Violations {
				log.Errorf("%s", violation.String())
			}
			return fmt.Errorf("%s is not a valid import file: %d rules violated", args[0], len(verr.Violations))
		}
		return err
	}

	log.Successf("%s is valid: %d users ready to import", args[0], len(batch))
	return nil
}
