package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andy/studioledger/internal/domain"
	"github.com/andy/studioledger/internal/finance"
	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Receivables and revenue reports",
	Long: `Reports are computed from stored invoices each time they run.
Amounts are converted to the display currency (or --currency) for output only.`,
}

var reportsAgingCmd = &cobra.Command{
	Use:   "aging",
	Short: "Outstanding invoices by days past due",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		today, err := todayFlag(cmd)
		if err != nil {
			return err
		}
		show, err := newDisplayer(cmd)
		if err != nil {
			return err
		}

		report, err := appInstance.ReportService.Aging(ctx, today)
		if err != nil {
			return fmt.Errorf("failed to compute aging: %w", err)
		}

		fmt.Printf("Aging as of %s\n\n", today.Format(domain.DateLayout))
		fmt.Printf("%-12s %8s %18s\n", "Bucket", "Count", "Amount")
		fmt.Println(strings.Repeat("-", 40))
		for _, b := range finance.AgingBuckets {
			bt := report.Bucket(b)
			fmt.Printf("%-12s %8d %18s\n", b.Label(), bt.Count, show.amount(bt.Amount))
		}
		fmt.Println(strings.Repeat("-", 40))
		fmt.Printf("%-12s %8d %18s\n", "Total", report.Count(), show.amount(report.Total))
		return nil
	},
}

var reportsReconciliationCmd = &cobra.Command{
	Use:   "reconciliation",
	Short: "How much of what was billed has been received",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		show, err := newDisplayer(cmd)
		if err != nil {
			return err
		}

		report, err := appInstance.ReportService.Reconciliation(ctx)
		if err != nil {
			return fmt.Errorf("failed to compute reconciliation: %w", err)
		}

		fmt.Printf("%-12s %8s %18s %8s\n", "Category", "Count", "Amount", "Share")
		fmt.Println(strings.Repeat("-", 49))
		for _, c := range finance.ReconciliationCategories {
			ct := report.Category(c)
			fmt.Printf("%-12s %8d %18s %7d%%\n", c, ct.Count, show.amount(ct.Amount), ct.Percent)
		}
		fmt.Println(strings.Repeat("-", 49))
		fmt.Printf("%d invoice(s) considered\n", report.Qualifying)
		if report.Unclassified > 0 {
			fmt.Printf("%d invoice(s) fit no category\n", report.Unclassified)
		}
		return nil
	},
}

var reportsRevenueCmd = &cobra.Command{
	Use:   "revenue",
	Short: "Paid revenue by month for a year",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		today, err := todayFlag(cmd)
		if err != nil {
			return err
		}
		show, err := newDisplayer(cmd)
		if err != nil {
			return err
		}
		year, _ := cmd.Flags().GetInt("year")
		if year == 0 {
			year = today.Year()
		}

		months, err := appInstance.ReportService.MonthlyRevenue(ctx, year, today)
		if err != nil {
			return fmt.Errorf("failed to compute revenue: %w", err)
		}
		if len(months) == 0 {
			fmt.Printf("No revenue for %d yet\n", year)
			return nil
		}

		start := domain.Date(year, time.January, 1)
		end := start.AddDate(1, 0, 0)
		total, err := appInstance.ReportService.TotalRevenue(ctx, start, &end)
		if err != nil {
			return fmt.Errorf("failed to compute revenue: %w", err)
		}

		fmt.Printf("Revenue %d\n\n", year)
		fmt.Printf("%-10s %8s %18s\n", "Month", "Invoices", "Revenue")
		fmt.Println(strings.Repeat("-", 38))
		for _, m := range months {
			fmt.Printf("%-10s %8d %18s\n", m.Month, m.Count, show.amount(m.Amount))
		}
		fmt.Println(strings.Repeat("-", 38))
		fmt.Printf("%-10s %8s %18s\n", "Year", "", show.amount(total))
		return nil
	},
}

var reportsTaxCmd = &cobra.Command{
	Use:   "tax",
	Short: "Tax collected on paid invoices for one month",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		month, year, err := monthFlags(cmd)
		if err != nil {
			return err
		}
		show, err := newDisplayer(cmd)
		if err != nil {
			return err
		}

		summary, err := appInstance.ReportService.TaxSummary(ctx, month, year)
		if err != nil {
			return fmt.Errorf("failed to compute tax summary: %w", err)
		}

		fmt.Printf("Tax summary %s (%d paid invoice(s))\n\n", summary.Period(), summary.Count)
		fmt.Printf("%-16s %18s\n", "Gross revenue", show.amount(summary.GrossRevenue))
		fmt.Printf("%-16s %18s\n", "TVA collected", show.amount(summary.TVACollected))
		fmt.Printf("%-16s %18s\n", "Net revenue", show.amount(summary.NetRevenue))
		return nil
	},
}

var reportsBreakdownCmd = &cobra.Command{
	Use:   "breakdown",
	Short: "Split paid billing into net revenue, tax and discounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		show, err := newDisplayer(cmd)
		if err != nil {
			return err
		}

		fromStr, _ := cmd.Flags().GetString("from")
		from, err := parseDate(fromStr)
		if err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
		var to *time.Time
		if cmd.Flags().Changed("to") {
			s, _ := cmd.Flags().GetString("to")
			d, err := parseDate(s)
			if err != nil {
				return fmt.Errorf("invalid --to date: %w", err)
			}
			to = &d
		}

		breakdown, err := appInstance.ReportService.Breakdown(ctx, from, to)
		if err != nil {
			return fmt.Errorf("failed to compute breakdown: %w", err)
		}

		fmt.Printf("%-16s %18s %8s\n", "", "Amount", "Share")
		fmt.Println(strings.Repeat("-", 44))
		for _, line := range breakdown.Lines() {
			fmt.Printf("%-16s %18s %7s%%\n", line.Label, show.amount(line.Amount), line.Percent.StringFixed(1))
		}
		fmt.Println(strings.Repeat("-", 44))
		fmt.Printf("%-16s %18s\n", "Billed", show.amount(breakdown.Basis))
		return nil
	},
}

var reportsOutstandingCmd = &cobra.Command{
	Use:   "outstanding",
	Short: "Total still owed on sent and overdue invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		show, err := newDisplayer(cmd)
		if err != nil {
			return err
		}
		total, err := appInstance.ReportService.OutstandingTotal(context.Background())
		if err != nil {
			return fmt.Errorf("failed to compute outstanding total: %w", err)
		}
		fmt.Printf("Outstanding: %s\n", show.amount(total))
		return nil
	},
}

// monthFlags reads --month and --year, defaulting to the current month
func monthFlags(cmd *cobra.Command) (time.Month, int, error) {
	now := appInstance.Now()
	month, _ := cmd.Flags().GetInt("month")
	year, _ := cmd.Flags().GetInt("year")
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("--month must be between 1 and 12, got %d", month)
	}
	return time.Month(month), year, nil
}

func init() {
	reportsCmd.AddCommand(reportsAgingCmd)
	reportsCmd.AddCommand(reportsReconciliationCmd)
	reportsCmd.AddCommand(reportsRevenueCmd)
	reportsCmd.AddCommand(reportsTaxCmd)
	reportsCmd.AddCommand(reportsBreakdownCmd)
	reportsCmd.AddCommand(reportsOutstandingCmd)

	reportsCmd.PersistentFlags().String("currency", "", "Display currency (defaults to config)")
	reportsCmd.PersistentFlags().String("today", "", "Evaluate as of this date (defaults to today)")

	reportsRevenueCmd.Flags().Int("year", 0, "Year (defaults to current year)")

	reportsTaxCmd.Flags().Int("month", 0, "Month 1-12 (defaults to current month)")
	reportsTaxCmd.Flags().Int("year", 0, "Year (defaults to current year)")

	reportsBreakdownCmd.Flags().String("from", "", "Issued on or after date (required)")
	reportsBreakdownCmd.MarkFlagRequired("from")
	reportsBreakdownCmd.Flags().String("to", "", "Issued before date (open ended when omitted)")
}
