package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"emotional-diary/internal/services"
	"emotional-diary/pkg/logging"
)

func newImportCmd() *cobra.Command {
	var (
		userID    int64
		filePath  string
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk import entries from a tab separated file",
		Long:  "Each line is YYYY-MM-DD<TAB>score[<TAB>description]. Blank lines and lines starting with # are skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := connect(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			importService := services.NewImportService(a.repo, a.logger, a.metrics)

			result, err := importService.ImportFile(ctx, userID, filePath, batchSize)
			if err != nil {
				fields := logging.Fields{
					"file_path": filePath,
					"user_id":   userID,
				}
				// earlier batches are committed even when a later one fails
				if result != nil {
					fields["successful_records"] = result.SuccessfulRecords
					fmt.Fprintf(cmd.OutOrStdout(), "Import aborted after %d committed records\n", result.SuccessfulRecords)
				}
				a.logger.Error(ctx, "[IMPORT_ERROR] Import failed", fields, err)
				return err
			}

			// Print results
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, strings.Repeat("=", 60))
			fmt.Fprintln(out, "IMPORT COMPLETE")
			fmt.Fprintln(out, strings.Repeat("=", 60))
			fmt.Fprintf(out, "Total Records:      %d\n", result.TotalRecords)
			fmt.Fprintf(out, "Successful Records: %d\n", result.SuccessfulRecords)
			fmt.Fprintf(out, "Failed Records:     %d\n", result.FailedRecords)
			fmt.Fprintf(out, "Duration:           %v\n", result.Duration)

			if len(result.Errors) > 0 {
				fmt.Fprintf(out, "\nErrors (%d):\n", len(result.Errors))
				for i, errMsg := range result.Errors {
					if i == 10 {
						fmt.Fprintf(out, "  ... and %d more errors\n", len(result.Errors)-10)
						break
					}
					fmt.Fprintf(out, "  - %s\n", errMsg)
				}
			}

			return nil
		},
	}
	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "Owner user id (required)")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Path of the TSV file (required)")
	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", services.DefaultImportBatchSize, "Entries per insert transaction")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
