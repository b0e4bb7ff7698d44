package repository

import (
	"context"
	"fmt"

	"github.com/andy/studioledger/internal/db"
	"github.com/andy/studioledger/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRepo is a SQLite implementation of PaymentRepository
type PaymentRepo struct {
	db *db.DB
}

// NewPaymentRepo creates a new PaymentRepo
func NewPaymentRepo(database *db.DB) *PaymentRepo {
	return &PaymentRepo{db: database}
}

// ListByInvoice returns an invoice's payments, oldest first
func (r *PaymentRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT id, invoice_id, amount, method, reference, notes, created_at
		FROM payments
		WHERE invoice_id = ?
		ORDER BY created_at, rowid
	`

	rows, err := r.db.QueryContext(ctx, query, invoiceID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]*domain.Payment, 0)
	for rows.Next() {
		p := &domain.Payment{}
		var id, invID, amount, method, createdAt string

		if err := rows.Scan(&id, &invID, &amount, &method, &p.Reference, &p.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		if p.ID, err = parseUUID("id", id); err != nil {
			return nil, err
		}
		if p.InvoiceID, err = parseUUID("invoice_id", invID); err != nil {
			return nil, err
		}
		if p.Amount, err = parseDecimal("amount", amount); err != nil {
			return nil, err
		}
		p.Method = domain.PaymentMethod(method)
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

// SumByInvoice adds up the stored payments of an invoice
func (r *PaymentRepo) SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	payments, err := r.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.SumPayments(payments), nil
}

// Apply inserts payment and writes invoice in a single transaction
func (r *PaymentRepo) Apply(ctx context.Context, invoice *domain.Invoice, guard Guard, payment *domain.Payment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if payment != nil {
		if err := payment.Validate(); err != nil {
			return fmt.Errorf("invalid payment: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO payments (id, invoice_id, amount, method, reference, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			payment.ID.String(),
			payment.InvoiceID.String(),
			formatMoney(payment.Amount),
			string(payment.Method),
			payment.Reference,
			payment.Notes,
			formatTime(payment.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
	}

	if err := updateInvoice(ctx, tx, invoice, guard); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment: %w", err)
	}
	return nil
}
