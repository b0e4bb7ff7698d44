package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export reports to files",
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export invoices with tax, aging and reconciliation summaries as CSV",
	Long: `Writes a spreadsheet-ready CSV (UTF-8 with byte order mark, CRLF line endings).
The tax summary covers --month/--year; aging is evaluated as of --today.
Use --out - to write to standard output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		month, year, err := monthFlags(cmd)
		if err != nil {
			return err
		}
		today, err := todayFlag(cmd)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = filepath.Join(appInstance.Config.Export.Dir, fmt.Sprintf("report-%d-%02d.csv", year, month))
		}

		if out == "-" {
			return appInstance.ReportService.ExportCSV(ctx, os.Stdout, month, year, today)
		}

		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}

		if err := appInstance.ReportService.ExportCSV(ctx, f, month, year, today); err != nil {
			f.Close()
			return fmt.Errorf("failed to export report: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}

		fmt.Printf("✓ Report written to %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.AddCommand(exportCSVCmd)

	exportCSVCmd.Flags().String("out", "", "Output file (defaults to the export directory)")
	exportCSVCmd.Flags().Int("month", 0, "Tax summary month 1-12 (defaults to current month)")
	exportCSVCmd.Flags().Int("year", 0, "Tax summary year (defaults to current year)")
	exportCSVCmd.Flags().String("today", "", "Evaluate aging as of this date (defaults to today)")
}
