package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andy/studioledger/internal/domain"
	"github.com/andy/studioledger/internal/repository"
	"github.com/andy/studioledger/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Manage invoices",
	Long: `Create, list, and move invoices through their lifecycle.

  draft -> sent -> overdue
  draft | sent | overdue -> paid
  draft | sent | overdue -> cancelled

Invoices can be referenced by number (INV-2026-001) or ID.`,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		// Parse filters
		var filter repository.InvoiceFilter
		if cmd.Flags().Changed("client") {
			ref, _ := cmd.Flags().GetString("client")
			client, err := resolveClient(ctx, ref)
			if err != nil {
				return err
			}
			filter.ClientID = &client.ID
		}

		statuses, _ := cmd.Flags().GetStringSlice("status")
		for _, s := range statuses {
			status, err := domain.ParseInvoiceStatus(s)
			if err != nil {
				return err
			}
			filter.Statuses = append(filter.Statuses, status)
		}

		for flag, dst := range map[string]**time.Time{"from": &filter.IssuedFrom, "to": &filter.IssuedTo} {
			if !cmd.Flags().Changed(flag) {
				continue
			}
			s, _ := cmd.Flags().GetString(flag)
			d, err := parseDate(s)
			if err != nil {
				return fmt.Errorf("invalid --%s date: %w", flag, err)
			}
			*dst = &d
		}

		invoices, err := appInstance.InvoiceService.ListInvoices(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		if len(invoices) == 0 {
			fmt.Println("No invoices found")
			return nil
		}

		// Print table header
		fmt.Printf("%-15s %-20s %-11s %-11s %12s %12s %-10s\n", "Number", "Client", "Issued", "Due", "Total", "Paid", "Status")
		fmt.Println("----------------------------------------------------------------------------------------------------")

		total := decimal.Zero
		for _, invoice := range invoices {
			fmt.Printf("%-15s %-20s %-11s %-11s %12s %12s %-10s\n",
				invoice.InvoiceNumber,
				truncate(clientName(invoice), 20),
				invoice.IssueDate.Format(domain.DateLayout),
				invoice.DueDate.Format(domain.DateLayout),
				invoice.TotalAmount.StringFixed(2),
				invoice.PaidAmount.StringFixed(2),
				invoice.Status,
			)
			total = total.Add(invoice.TotalAmount)
		}

		fmt.Printf("\nTotal: %d invoice(s), %s billed\n", len(invoices), ledgerAmount(total))
		return nil
	},
}

var invoicesCreateCmd = &cobra.Command{
	Use:   "create [client_id_or_name]",
	Short: "Create a new draft invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		client, err := resolveClient(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve client: %w", err)
		}

		params := service.NewInvoiceParams{ClientID: client.ID}

		subtotal, _ := cmd.Flags().GetString("amount")
		if params.Subtotal, err = parseMoney(subtotal); err != nil {
			return err
		}
		if cmd.Flags().Changed("discount") {
			s, _ := cmd.Flags().GetString("discount")
			if params.Discount, err = parseMoney(s); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("tax") {
			s, _ := cmd.Flags().GetString("tax")
			rate, err := parseTaxRate(s)
			if err != nil {
				return err
			}
			params.TaxRate = &rate
		}
		if cmd.Flags().Changed("issued") {
			s, _ := cmd.Flags().GetString("issued")
			if params.IssueDate, err = parseDate(s); err != nil {
				return fmt.Errorf("invalid issue date: %w", err)
			}
		}
		if cmd.Flags().Changed("due") {
			s, _ := cmd.Flags().GetString("due")
			due, err := parseDate(s)
			if err != nil {
				return fmt.Errorf("invalid due date: %w", err)
			}
			params.DueDate = &due
		}
		params.Notes, _ = cmd.Flags().GetString("notes")
		params.Terms, _ = cmd.Flags().GetString("terms")

		invoice, err := appInstance.InvoiceService.CreateDraft(ctx, params)
		if err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		fmt.Printf("✓ Draft invoice created: %s\n", invoice.InvoiceNumber)
		fmt.Printf("  Client: %s\n", client.Name)
		fmt.Printf("  Due: %s\n", invoice.DueDate.Format(domain.DateLayout))
		fmt.Printf("  Total: %s\n", ledgerAmount(invoice.TotalAmount))
		return nil
	},
}

var invoicesEditCmd = &cobra.Command{
	Use:   "edit [number_or_id]",
	Short: "Edit a draft invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		var update domain.InvoiceUpdate
		if cmd.Flags().Changed("client") {
			ref, _ := cmd.Flags().GetString("client")
			client, err := resolveClient(ctx, ref)
			if err != nil {
				return err
			}
			update.ClientID = &client.ID
		}
		for flag, dst := range map[string]**decimal.Decimal{"amount": &update.Subtotal, "discount": &update.Discount} {
			if !cmd.Flags().Changed(flag) {
				continue
			}
			s, _ := cmd.Flags().GetString(flag)
			d, err := parseMoney(s)
			if err != nil {
				return err
			}
			*dst = &d
		}
		if cmd.Flags().Changed("tax") {
			s, _ := cmd.Flags().GetString("tax")
			rate, err := parseTaxRate(s)
			if err != nil {
				return err
			}
			update.TaxRate = &rate
		}
		for flag, dst := range map[string]**time.Time{"issued": &update.IssueDate, "due": &update.DueDate} {
			if !cmd.Flags().Changed(flag) {
				continue
			}
			s, _ := cmd.Flags().GetString(flag)
			d, err := parseDate(s)
			if err != nil {
				return fmt.Errorf("invalid --%s date: %w", flag, err)
			}
			*dst = &d
		}
		for flag, dst := range map[string]**string{"notes": &update.Notes, "terms": &update.Terms} {
			if cmd.Flags().Changed(flag) {
				s, _ := cmd.Flags().GetString(flag)
				*dst = &s
			}
		}

		if update.IsEmpty() {
			return fmt.Errorf("nothing to change; pass at least one flag")
		}

		updated, err := appInstance.InvoiceService.UpdateDraft(ctx, invoice.ID, update)
		if err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}

		fmt.Printf("✓ Invoice updated: %s\n", updated.InvoiceNumber)
		fmt.Printf("  Total: %s\n", ledgerAmount(updated.TotalAmount))
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [number_or_id]",
	Short: "Show invoice details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Println(strings.Repeat("=", 72))
		fmt.Printf("Invoice: %s\n", invoice.InvoiceNumber)
		fmt.Println(strings.Repeat("=", 72))
		fmt.Printf("Client: %s\n", clientName(invoice))
		fmt.Printf("Issued: %s   Due: %s\n",
			invoice.IssueDate.Format(domain.DateLayout),
			invoice.DueDate.Format(domain.DateLayout),
		)
		fmt.Printf("Status: %s\n", invoice.Status)
		if invoice.IsPastDue(appInstance.Now()) && invoice.IsOutstanding() {
			fmt.Printf("        %d day(s) past due\n", domain.DaysBetween(invoice.DueDate, appInstance.Now()))
		}
		fmt.Println()

		if len(invoice.Payments) > 0 {
			fmt.Println("Payments:")
			fmt.Println(strings.Repeat("-", 72))
			fmt.Printf("%-12s %-15s %-30s %12s\n", "Date", "Method", "Reference", "Amount")
			fmt.Println(strings.Repeat("-", 72))
			for _, p := range invoice.Payments {
				fmt.Printf("%-12s %-15s %-30s %12s\n",
					p.CreatedAt.Format(domain.DateLayout),
					p.Method,
					truncate(p.Reference, 30),
					p.Amount.StringFixed(2),
				)
			}
			fmt.Println(strings.Repeat("-", 72))
			fmt.Println()
		}

		fmt.Printf("Subtotal:  %s\n", ledgerAmount(invoice.Subtotal))
		if !invoice.DiscountAmount.IsZero() {
			fmt.Printf("Discount: -%s\n", ledgerAmount(invoice.DiscountAmount))
		}
		fmt.Printf("Tax (%s%%): %s\n", invoice.TaxRate.Shift(2).String(), ledgerAmount(invoice.TaxAmount))
		fmt.Printf("Total:     %s\n", ledgerAmount(invoice.TotalAmount))
		fmt.Printf("Paid:      %s\n", ledgerAmount(invoice.PaidAmount))
		fmt.Printf("Remaining: %s\n", ledgerAmount(invoice.Outstanding()))

		if invoice.Notes != "" {
			fmt.Printf("\nNotes: %s\n", invoice.Notes)
		}
		if invoice.Terms != "" {
			fmt.Printf("Terms: %s\n", invoice.Terms)
		}
		fmt.Println(strings.Repeat("=", 72))
		return nil
	},
}

// transitionCmd builds a command that moves one invoice to a new status
func transitionCmd(use, short, done string, apply func(context.Context, *domain.Invoice) (*domain.Invoice, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [number_or_id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			invoice, err := resolveInvoice(ctx, args[0])
			if err != nil {
				return err
			}

			updated, err := apply(ctx, invoice)
			if err != nil {
				return fmt.Errorf("failed to %s invoice %s: %w", use, invoice.InvoiceNumber, err)
			}

			fmt.Printf("✓ Invoice %s %s\n", updated.InvoiceNumber, done)
			return nil
		},
	}
}

var invoicesSendCmd = transitionCmd("send", "Mark a draft invoice as sent", "marked as sent",
	func(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
		return appInstance.InvoiceService.MarkSent(ctx, inv.ID)
	})

var invoicesOverdueCmd = transitionCmd("overdue", "Mark a sent invoice as overdue", "marked as overdue",
	func(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
		return appInstance.InvoiceService.MarkOverdue(ctx, inv.ID)
	})

var invoicesCancelCmd = transitionCmd("cancel", "Cancel an invoice", "cancelled",
	func(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
		return appInstance.InvoiceService.Cancel(ctx, inv.ID)
	})

var invoicesPayCmd = &cobra.Command{
	Use:   "pay [number_or_id]",
	Short: "Mark an invoice as paid",
	Long: `Mark an invoice as paid. Without --amount the invoice is settled in full.
Whatever has not been received yet is recorded as a settlement payment.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		var amount *decimal.Decimal
		if cmd.Flags().Changed("amount") {
			s, _ := cmd.Flags().GetString("amount")
			d, err := parseMoney(s)
			if err != nil {
				return err
			}
			amount = &d
		}
		methodStr, _ := cmd.Flags().GetString("method")
		method, err := domain.ParsePaymentMethod(methodStr)
		if err != nil {
			return err
		}

		paid, payment, err := appInstance.InvoiceService.MarkPaid(ctx, invoice.ID, amount, method)
		if err != nil {
			return fmt.Errorf("failed to mark invoice as paid: %w", err)
		}

		fmt.Printf("✓ Invoice %s marked as paid (%s of %s)\n",
			paid.InvoiceNumber, ledgerAmount(paid.PaidAmount), ledgerAmount(paid.TotalAmount))
		if payment != nil {
			fmt.Printf("  Settlement payment recorded: %s via %s\n", ledgerAmount(payment.Amount), payment.Method)
		}
		return nil
	},
}

var invoicesDeleteCmd = &cobra.Command{
	Use:   "delete [number_or_id]",
	Short: "Delete a draft invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		if err := appInstance.InvoiceService.Delete(ctx, invoice.ID); err != nil {
			return fmt.Errorf("failed to delete invoice %s: %w", invoice.InvoiceNumber, err)
		}

		fmt.Printf("✓ Invoice %s deleted\n", invoice.InvoiceNumber)
		return nil
	},
}

var invoicesCheckOverdueCmd = &cobra.Command{
	Use:   "check-overdue",
	Short: "Mark every sent invoice past its due date as overdue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		today, err := todayFlag(cmd)
		if err != nil {
			return err
		}

		moved, err := appInstance.InvoiceService.CheckOverdue(ctx, today)
		if err != nil {
			return fmt.Errorf("failed to check overdue invoices: %w", err)
		}

		if len(moved) == 0 {
			fmt.Println("No invoices became overdue")
			return nil
		}
		for _, inv := range moved {
			fmt.Printf("  %s  due %s  %s outstanding\n",
				inv.InvoiceNumber,
				inv.DueDate.Format(domain.DateLayout),
				ledgerAmount(inv.Outstanding()),
			)
		}
		fmt.Printf("\n✓ %d invoice(s) marked as overdue\n", len(moved))
		return nil
	},
}

var invoicesPDFCmd = &cobra.Command{
	Use:   "pdf [number_or_id]",
	Short: "Render an invoice as PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		path, err := appInstance.ReportService.ExportInvoicePDF(ctx, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to render invoice: %w", err)
		}

		fmt.Printf("✓ Invoice %s written to %s\n", invoice.InvoiceNumber, path)
		return nil
	},
}

func init() {
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesCreateCmd)
	invoicesCmd.AddCommand(invoicesEditCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesSendCmd)
	invoicesCmd.AddCommand(invoicesPayCmd)
	invoicesCmd.AddCommand(invoicesOverdueCmd)
	invoicesCmd.AddCommand(invoicesCancelCmd)
	invoicesCmd.AddCommand(invoicesDeleteCmd)
	invoicesCmd.AddCommand(invoicesCheckOverdueCmd)
	invoicesCmd.AddCommand(invoicesPDFCmd)

	// List flags
	invoicesListCmd.Flags().String("client", "", "Filter by client ID or name")
	invoicesListCmd.Flags().StringSlice("status", nil, "Filter by status (draft, sent, paid, overdue, cancelled)")
	invoicesListCmd.Flags().String("from", "", "Issued on or after date")
	invoicesListCmd.Flags().String("to", "", "Issued before date")

	// Create flags
	invoicesCreateCmd.Flags().String("amount", "", "Subtotal before discount and tax (required)")
	invoicesCreateCmd.MarkFlagRequired("amount")
	invoicesCreateCmd.Flags().String("discount", "0", "Discount amount")
	invoicesCreateCmd.Flags().String("tax", "", "Tax rate, as 0.2 or 20% (defaults to config)")
	invoicesCreateCmd.Flags().String("issued", "", "Issue date (defaults to today)")
	invoicesCreateCmd.Flags().String("due", "", "Due date (defaults to issue date plus default due days)")
	invoicesCreateCmd.Flags().String("notes", "", "Notes printed on the invoice")
	invoicesCreateCmd.Flags().String("terms", "", "Payment terms")

	// Edit flags
	invoicesEditCmd.Flags().String("client", "", "New client ID or name")
	invoicesEditCmd.Flags().String("amount", "", "New subtotal")
	invoicesEditCmd.Flags().String("discount", "", "New discount amount")
	invoicesEditCmd.Flags().String("tax", "", "New tax rate")
	invoicesEditCmd.Flags().String("issued", "", "New issue date")
	invoicesEditCmd.Flags().String("due", "", "New due date")
	invoicesEditCmd.Flags().String("notes", "", "New notes")
	invoicesEditCmd.Flags().String("terms", "", "New payment terms")

	// Pay flags
	invoicesPayCmd.Flags().String("amount", "", "Amount the invoice settles at (defaults to total)")
	invoicesPayCmd.Flags().String("method", "bank_transfer", "Method for the settlement payment")

	// Check overdue flags
	invoicesCheckOverdueCmd.Flags().String("today", "", "Evaluate as of this date (defaults to today)")
}
