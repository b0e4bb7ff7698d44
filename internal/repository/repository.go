package repository

import (
	"context"
	"errors"
	"time"

	"github.com/andy/studioledger/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrConcurrentUpdate means the stored invoice changed between read and
	// write. Reload and retry the operation.
	ErrConcurrentUpdate = errors.New("invoice was modified concurrently")
)

// ClientRepository manages client persistence
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	GetByName(ctx context.Context, studioID uuid.UUID, name string) (*domain.Client, error)
	List(ctx context.Context, studioID uuid.UUID, includeArchived bool) ([]*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Archive(ctx context.Context, id uuid.UUID) error
}

// InvoiceFilter narrows an invoice listing. Zero values match everything
// except StudioID, which is required.
type InvoiceFilter struct {
	StudioID   uuid.UUID
	ClientID   *uuid.UUID
	Statuses   []domain.InvoiceStatus
	IssuedFrom *time.Time // inclusive
	IssuedTo   *time.Time // exclusive
}

// Guard is the stored state a change was computed from. Writes carrying a
// guard only apply if the row still matches it.
type Guard struct {
	Status     domain.InvoiceStatus
	PaidAmount decimal.Decimal
	UpdatedAt  time.Time
}

// GuardOf captures the guard for inv before it is mutated.
func GuardOf(inv *domain.Invoice) Guard {
	return Guard{Status: inv.Status, PaidAmount: inv.PaidAmount, UpdatedAt: inv.UpdatedAt}
}

// InvoiceRepository manages invoice persistence
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, studioID uuid.UUID, number string) (*domain.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*domain.Invoice, error)
	// Update writes every mutable column, provided the row still matches guard.
	Update(ctx context.Context, invoice *domain.Invoice, guard Guard) error
	// Delete removes a draft invoice. Any other status yields domain.ErrIllegalDelete.
	Delete(ctx context.Context, id uuid.UUID) error
	GetNextInvoiceNumber(ctx context.Context, studioID uuid.UUID, prefix string, year int) (string, error)
}

// PaymentRepository manages the append-only payment ledger
type PaymentRepository interface {
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*domain.Payment, error)
	// Apply stores payment (if any) and the invoice it changed in one
	// transaction, guarded like InvoiceRepository.Update.
	Apply(ctx context.Context, invoice *domain.Invoice, guard Guard, payment *domain.Payment) error
	SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
}
