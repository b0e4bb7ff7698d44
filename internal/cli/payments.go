package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/studioledger/internal/domain"
	"github.com/andy/studioledger/internal/repository"
	"github.com/spf13/cobra"
)

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Record and inspect payments",
	Long: `Record money received against sent or overdue invoices.

A payment that clears the remaining balance marks the invoice as paid.
Payments can never exceed what is still owed.`,
}

var paymentsRecordCmd = &cobra.Command{
	Use:   "record [number_or_id] [amount]",
	Short: "Record a payment against an invoice",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		amount, err := parseMoney(args[1])
		if err != nil {
			return err
		}
		methodStr, _ := cmd.Flags().GetString("method")
		method, err := domain.ParsePaymentMethod(methodStr)
		if err != nil {
			return err
		}
		reference, _ := cmd.Flags().GetString("reference")
		notes, _ := cmd.Flags().GetString("notes")

		updated, payment, err := appInstance.LedgerService.RecordPayment(ctx, invoice.ID, domain.PaymentRequest{
			Amount:    amount,
			Method:    method,
			Reference: reference,
			Notes:     notes,
		})
		if err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		fmt.Printf("✓ Payment of %s recorded on %s\n", ledgerAmount(payment.Amount), updated.InvoiceNumber)
		fmt.Printf("  Paid: %s of %s\n", ledgerAmount(updated.PaidAmount), ledgerAmount(updated.TotalAmount))
		if updated.Status == domain.InvoiceStatusPaid {
			fmt.Println("  Invoice is now paid in full")
		} else {
			fmt.Printf("  Remaining: %s\n", ledgerAmount(updated.Outstanding()))
		}
		return nil
	},
}

var paymentsListCmd = &cobra.Command{
	Use:   "list [number_or_id]",
	Short: "List payments for an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		payments, err := appInstance.LedgerService.ListPayments(ctx, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to list payments: %w", err)
		}

		if len(payments) == 0 {
			fmt.Printf("No payments recorded for %s\n", invoice.InvoiceNumber)
			return nil
		}

		fmt.Printf("%-20s %-15s %-25s %12s\n", "Received", "Method", "Reference", "Amount")
		fmt.Println(strings.Repeat("-", 75))
		for _, p := range payments {
			fmt.Printf("%-20s %-15s %-25s %12s\n",
				p.CreatedAt.Local().Format("2006-01-02 15:04"),
				p.Method,
				truncate(p.Reference, 25),
				p.Amount.StringFixed(2),
			)
		}
		fmt.Println(strings.Repeat("-", 75))
		fmt.Printf("%-62s %12s\n", "Total", domain.SumPayments(payments).StringFixed(2))
		return nil
	},
}

var paymentsVerifyCmd = &cobra.Command{
	Use:   "verify [number_or_id]",
	Short: "Check that payments add up to each invoice's paid amount",
	Long:  `Verify one invoice, or every invoice when no argument is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var invoices []*domain.Invoice
		if len(args) == 1 {
			invoice, err := resolveInvoice(ctx, args[0])
			if err != nil {
				return err
			}
			invoices = append(invoices, invoice)
		} else {
			var err error
			invoices, err = appInstance.InvoiceService.ListInvoices(ctx, repository.InvoiceFilter{})
			if err != nil {
				return fmt.Errorf("failed to list invoices: %w", err)
			}
		}

		failed := 0
		for _, inv := range invoices {
			if err := appInstance.LedgerService.Verify(ctx, inv.ID); err != nil {
				fmt.Printf("✗ %v\n", err)
				failed++
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d invoice(s) out of balance", failed, len(invoices))
		}
		fmt.Printf("✓ %d invoice(s) balanced\n", len(invoices))
		return nil
	},
}

func init() {
	paymentsCmd.AddCommand(paymentsRecordCmd)
	paymentsCmd.AddCommand(paymentsListCmd)
	paymentsCmd.AddCommand(paymentsVerifyCmd)

	// Record flags
	paymentsRecordCmd.Flags().String("method", "bank_transfer", "Payment method (card, bank_transfer, cash, check, other)")
	paymentsRecordCmd.Flags().String("reference", "", "Bank or processor reference")
	paymentsRecordCmd.Flags().String("notes", "", "Notes about the payment")
}
