package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/andy/studioledger/internal/db"
	"github.com/andy/studioledger/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceRepo is a SQLite implementation of InvoiceRepository
type InvoiceRepo struct {
	db *db.DB
}

// NewInvoiceRepo creates a new InvoiceRepo
func NewInvoiceRepo(database *db.DB) *InvoiceRepo {
	return &InvoiceRepo{db: database}
}

const invoiceColumns = `
	id, invoice_number, studio_id, client_id, issue_date, due_date,
	subtotal, discount_amount, tax_rate, tax_amount, total_amount, paid_amount,
	status, notes, terms, created_at, updated_at`

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Create inserts a new invoice into the database
func (r *InvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}

	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		invoice.ID.String(),
		invoice.InvoiceNumber,
		invoice.StudioID.String(),
		invoice.ClientID.String(),
		formatDate(invoice.IssueDate),
		formatDate(invoice.DueDate),
		formatMoney(invoice.Subtotal),
		formatMoney(invoice.DiscountAmount),
		invoice.TaxRate.String(),
		formatMoney(invoice.TaxAmount),
		formatMoney(invoice.TotalAmount),
		formatMoney(invoice.PaidAmount),
		string(invoice.Status),
		invoice.Notes,
		invoice.Terms,
		formatTime(invoice.CreatedAt),
		formatTime(invoice.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// GetByID retrieves an invoice by ID
func (r *InvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`
	return r.getOne(ctx, query, id.String())
}

// GetByNumber retrieves a studio's invoice by invoice number, ignoring case
func (r *InvoiceRepo) GetByNumber(ctx context.Context, studioID uuid.UUID, number string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE studio_id = ? AND invoice_number = ? COLLATE NOCASE`
	return r.getOne(ctx, query, studioID.String(), number)
}

func (r *InvoiceRepo) getOne(ctx context.Context, query string, args ...any) (*domain.Invoice, error) {
	invoice, err := scanInvoice(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// List retrieves invoices matching filter, newest issue date first
func (r *InvoiceRepo) List(ctx context.Context, filter InvoiceFilter) ([]*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE studio_id = ?`
	args := []any{filter.StudioID.String()}

	if filter.ClientID != nil {
		query += " AND client_id = ?"
		args = append(args, filter.ClientID.String())
	}

	if len(filter.Statuses) > 0 {
		query += " AND status IN (?" + strings.Repeat(", ?", len(filter.Statuses)-1) + ")"
		for _, st := range filter.Statuses {
			args = append(args, string(st))
		}
	}

	if filter.IssuedFrom != nil {
		query += " AND issue_date >= ?"
		args = append(args, formatDate(domain.CivilDate(*filter.IssuedFrom)))
	}

	if filter.IssuedTo != nil {
		query += " AND issue_date < ?"
		args = append(args, formatDate(domain.CivilDate(*filter.IssuedTo)))
	}

	query += " ORDER BY issue_date DESC, invoice_number DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, nil
}

// Update updates an existing invoice if it still matches guard
func (r *InvoiceRepo) Update(ctx context.Context, invoice *domain.Invoice, guard Guard) error {
	return updateInvoice(ctx, r.db, invoice, guard)
}

func updateInvoice(ctx context.Context, ex execer, invoice *domain.Invoice, guard Guard) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}

	query := `
		UPDATE invoices
		SET client_id = ?, issue_date = ?, due_date = ?,
		    subtotal = ?, discount_amount = ?, tax_rate = ?, tax_amount = ?,
		    total_amount = ?, paid_amount = ?, status = ?,
		    notes = ?, terms = ?, updated_at = ?
		WHERE id = ? AND status = ? AND paid_amount = ? AND updated_at = ?
	`

	result, err := ex.ExecContext(ctx, query,
		invoice.ClientID.String(),
		formatDate(invoice.IssueDate),
		formatDate(invoice.DueDate),
		formatMoney(invoice.Subtotal),
		formatMoney(invoice.DiscountAmount),
		invoice.TaxRate.String(),
		formatMoney(invoice.TaxAmount),
		formatMoney(invoice.TotalAmount),
		formatMoney(invoice.PaidAmount),
		string(invoice.Status),
		invoice.Notes,
		invoice.Terms,
		formatTime(invoice.UpdatedAt),
		invoice.ID.String(),
		string(guard.Status),
		formatMoney(guard.PaidAmount),
		formatTime(guard.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

// Delete removes a draft invoice
func (r *InvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM invoices WHERE id = ? AND status = ?`,
		id.String(), string(domain.InvoiceStatusDraft),
	)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// Tell "missing" apart from "not a draft".
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrIllegalDelete
}

// GetNextInvoiceNumber generates the next invoice number in format "PREFIX-YEAR-SEQUENCE"
func (r *InvoiceRepo) GetNextInvoiceNumber(ctx context.Context, studioID uuid.UUID, prefix string, year int) (string, error) {
	// Longest first so that 1000 sorts after 999
	query := `
		SELECT invoice_number
		FROM invoices
		WHERE studio_id = ? AND invoice_number LIKE ?
		ORDER BY length(invoice_number) DESC, invoice_number DESC
		LIMIT 1
	`

	stem := fmt.Sprintf("%s-%d-", prefix, year)
	var lastNumber string

	err := r.db.QueryRowContext(ctx, query, studioID.String(), stem+"%").Scan(&lastNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nextNumber(stem, 0), nil
		}
		return "", fmt.Errorf("failed to get last invoice number: %w", err)
	}

	lastSeq, err := strconv.Atoi(strings.TrimPrefix(lastNumber, stem))
	if err != nil {
		return "", fmt.Errorf("unexpected invoice number %q: %w", lastNumber, err)
	}
	return nextNumber(stem, lastSeq), nil
}

func nextNumber(stem string, last int) string {
	return fmt.Sprintf("%s%03d", stem, last+1)
}

// scanInvoice reads one row selected with invoiceColumns
func scanInvoice(row scanner) (*domain.Invoice, error) {
	invoice := &domain.Invoice{}
	var (
		id, studioID, clientID, issueDate, dueDate          string
		subtotal, discount, taxRate, taxAmount, total, paid string
		status, createdAt, updatedAt                        string
	)

	err := row.Scan(
		&id, &invoice.InvoiceNumber, &studioID, &clientID, &issueDate, &dueDate,
		&subtotal, &discount, &taxRate, &taxAmount, &total, &paid,
		&status, &invoice.Notes, &invoice.Terms, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if invoice.ID, err = parseUUID("id", id); err != nil {
		return nil, err
	}
	if invoice.StudioID, err = parseUUID("studio_id", studioID); err != nil {
		return nil, err
	}
	if invoice.ClientID, err = parseUUID("client_id", clientID); err != nil {
		return nil, err
	}
	if invoice.IssueDate, err = domain.ParseDate(issueDate); err != nil {
		return nil, fmt.Errorf("failed to parse issue_date: %w", err)
	}
	if invoice.DueDate, err = domain.ParseDate(dueDate); err != nil {
		return nil, fmt.Errorf("failed to parse due_date: %w", err)
	}

	for _, f := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"subtotal", subtotal, &invoice.Subtotal},
		{"discount_amount", discount, &invoice.DiscountAmount},
		{"tax_rate", taxRate, &invoice.TaxRate},
		{"tax_amount", taxAmount, &invoice.TaxAmount},
		{"total_amount", total, &invoice.TotalAmount},
		{"paid_amount", paid, &invoice.PaidAmount},
	} {
		if *f.dst, err = parseDecimal(f.name, f.raw); err != nil {
			return nil, err
		}
	}

	invoice.Status = domain.InvoiceStatus(status)

	if invoice.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if invoice.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return invoice, nil
}
