package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andy/studioledger/internal/domain"
	"github.com/andy/studioledger/internal/logger"
	"github.com/andy/studioledger/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Clock returns the current instant. Services never call time.Now directly.
type Clock func() time.Time

// InvoiceDefaults are applied to new drafts when the caller leaves a field out.
type InvoiceDefaults struct {
	NumberPrefix string
	DueDays      int
	TaxRate      decimal.Decimal
}

// NewInvoiceParams describes a draft to create.
type NewInvoiceParams struct {
	ClientID  uuid.UUID
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	TaxRate   *decimal.Decimal // nil uses the default rate
	IssueDate time.Time        // zero means today
	DueDate   *time.Time       // nil means issue date plus the default due days
	Notes     string
	Terms     string
}

// InvoiceService manages the invoice lifecycle
type InvoiceService interface {
	// CreateDraft creates a new draft invoice with auto-generated number
	CreateDraft(ctx context.Context, params NewInvoiceParams) (*domain.Invoice, error)

	// UpdateDraft edits a draft; any other status yields domain.ErrInvoiceNotEditable
	UpdateDraft(ctx context.Context, id uuid.UUID, update domain.InvoiceUpdate) (*domain.Invoice, error)

	MarkSent(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)

	// MarkPaid settles the invoice, recording whatever was not yet received
	// as a payment made with method. A nil amount settles in full.
	MarkPaid(ctx context.Context, id uuid.UUID, amount *decimal.Decimal, method domain.PaymentMethod) (*domain.Invoice, *domain.Payment, error)

	MarkOverdue(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)

	// CheckOverdue moves every sent invoice due before today to overdue
	CheckOverdue(ctx context.Context, today time.Time) ([]*domain.Invoice, error)

	Cancel(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)

	// Delete removes a draft invoice
	Delete(ctx context.Context, id uuid.UUID) error

	// GetInvoice retrieves an invoice with its client and payments
	GetInvoice(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)

	// FindInvoice resolves an invoice number or id
	FindInvoice(ctx context.Context, ref string) (*domain.Invoice, error)

	// ListInvoices lists the studio's invoices with optional filters
	ListInvoices(ctx context.Context, filter repository.InvoiceFilter) ([]*domain.Invoice, error)
}

type invoiceService struct {
	studioID    uuid.UUID
	defaults    InvoiceDefaults
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	clientRepo  repository.ClientRepository
	now         Clock
	log         zerolog.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	studioID uuid.UUID,
	defaults InvoiceDefaults,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	clientRepo repository.ClientRepository,
	clock Clock,
) InvoiceService {
	if clock == nil {
		clock = time.Now
	}
	if defaults.NumberPrefix == "" {
		defaults.NumberPrefix = "INV"
	}
	return &invoiceService{
		studioID:    studioID,
		defaults:    defaults,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		clientRepo:  clientRepo,
		now:         clock,
		log:         logger.WithComponent("invoices"),
	}
}

func (s *invoiceService) CreateDraft(ctx context.Context, p NewInvoiceParams) (*domain.Invoice, error) {
	client, err := s.clientRepo.GetByID(ctx, p.ClientID)
	if err != nil {
		return nil, err
	}
	if client.StudioID != s.studioID {
		return nil, fmt.Errorf("client %s: %w", p.ClientID, repository.ErrNotFound)
	}
	if client.IsArchived {
		return nil, fmt.Errorf("client %q is archived", client.Name)
	}

	now := s.now()
	issue := p.IssueDate
	if issue.IsZero() {
		issue = now
	}
	issue = domain.CivilDate(issue)
	due := issue.AddDate(0, 0, s.defaults.DueDays)
	if p.DueDate != nil {
		due = *p.DueDate
	}
	rate := s.defaults.TaxRate
	if p.TaxRate != nil {
		rate = *p.TaxRate
	}

	number, err := s.invoiceRepo.GetNextInvoiceNumber(ctx, s.studioID, s.defaults.NumberPrefix, issue.Year())
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice number: %w", err)
	}

	invoice := domain.NewInvoice(number, s.studioID, client.ID,
		domain.InvoiceAmounts{Subtotal: p.Subtotal, Discount: p.Discount, TaxRate: rate},
		issue, due, now)
	invoice.Notes = p.Notes
	invoice.Terms = p.Terms
	if err := invoice.Validate(); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}
	invoice.Client = client

	s.log.Info().
		Str("invoice_number", invoice.InvoiceNumber).
		Str("client", client.Name).
		Str("total", invoice.TotalAmount.StringFixed(2)).
		Msg("draft created")
	return invoice, nil
}

func (s *invoiceService) UpdateDraft(ctx context.Context, id uuid.UUID, update domain.InvoiceUpdate) (*domain.Invoice, error) {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, *update.ClientID)
		if err != nil {
			return nil, err
		}
		if client.StudioID != s.studioID {
			return nil, fmt.Errorf("client %s: %w", *update.ClientID, repository.ErrNotFound)
		}
	}

	guard := repository.GuardOf(invoice)
	if err := invoice.ApplyUpdate(update, s.now()); err != nil {
		s.rejected(invoice, "update", err)
		return nil, err
	}
	if err := s.invoiceRepo.Update(ctx, invoice, guard); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("invoice_number", invoice.InvoiceNumber).
		Str("total", invoice.TotalAmount.StringFixed(2)).
		Msg("draft updated")
	return invoice, nil
}

func (s *invoiceService) MarkSent(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.transition(ctx, id, "send", func(inv *domain.Invoice, now time.Time) error {
		return inv.MarkSent(now)
	})
}

func (s *invoiceService) MarkOverdue(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.transition(ctx, id, "mark overdue", func(inv *domain.Invoice, now time.Time) error {
		return inv.MarkOverdue(now)
	})
}

func (s *invoiceService) Cancel(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.transition(ctx, id, "cancel", func(inv *domain.Invoice, now time.Time) error {
		return inv.Cancel(now)
	})
}

func (s *invoiceService) transition(ctx context.Context, id uuid.UUID, op string, apply func(*domain.Invoice, time.Time) error) (*domain.Invoice, error) {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	guard := repository.GuardOf(invoice)
	if err := apply(invoice, s.now()); err != nil {
		s.rejected(invoice, op, err)
		return nil, err
	}
	if err := s.invoiceRepo.Update(ctx, invoice, guard); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("invoice_number", invoice.InvoiceNumber).
		Str("from", string(guard.Status)).
		Str("to", string(invoice.Status)).
		Msg("status changed")
	return invoice, nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, id uuid.UUID, amount *decimal.Decimal, method domain.PaymentMethod) (*domain.Invoice, *domain.Payment, error) {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	guard := repository.GuardOf(invoice)
	payment, err := domain.Settle(invoice, amount, method, s.now())
	if err != nil {
		s.rejected(invoice, "mark paid", err)
		return nil, nil, err
	}
	if err := s.paymentRepo.Apply(ctx, invoice, guard, payment); err != nil {
		return nil, nil, err
	}

	ev := s.log.Info().
		Str("invoice_number", invoice.InvoiceNumber).
		Str("paid", invoice.PaidAmount.StringFixed(2)).
		Str("total", invoice.TotalAmount.StringFixed(2))
	if payment != nil {
		ev = ev.Str("settlement", payment.Amount.StringFixed(2))
	}
	ev.Msg("invoice marked paid")
	return invoice, payment, nil
}

func (s *invoiceService) CheckOverdue(ctx context.Context, today time.Time) ([]*domain.Invoice, error) {
	invoices, err := s.invoiceRepo.List(ctx, repository.InvoiceFilter{
		StudioID: s.studioID,
		Statuses: []domain.InvoiceStatus{domain.InvoiceStatusSent},
	})
	if err != nil {
		return nil, err
	}

	moved := make([]*domain.Invoice, 0)
	now := s.now()
	for _, invoice := range invoices {
		if !invoice.IsPastDue(today) || !invoice.IsOutstanding() {
			continue
		}
		guard := repository.GuardOf(invoice)
		if err := invoice.MarkOverdue(now); err != nil {
			return moved, err
		}
		if err := s.invoiceRepo.Update(ctx, invoice, guard); err != nil {
			return moved, fmt.Errorf("invoice %s: %w", invoice.InvoiceNumber, err)
		}
		moved = append(moved, invoice)
	}

	if len(moved) > 0 {
		s.log.Info().Int("count", len(moved)).Str("as_of", today.Format(domain.DateLayout)).Msg("invoices marked overdue")
	}
	return moved, nil
}

func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := invoice.CheckDeletable(); err != nil {
		s.rejected(invoice, "delete", err)
		return err
	}
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("invoice_number", invoice.InvoiceNumber).Msg("draft deleted")
	return nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Client, err = s.clientRepo.GetByID(ctx, invoice.ClientID); err != nil {
		return nil, err
	}
	if invoice.Payments, err = s.paymentRepo.ListByInvoice(ctx, invoice.ID); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) FindInvoice(ctx context.Context, ref string) (*domain.Invoice, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return s.GetInvoice(ctx, id)
	}
	invoice, err := s.invoiceRepo.GetByNumber(ctx, s.studioID, ref)
	if err != nil {
		return nil, fmt.Errorf("invoice %q: %w", ref, err)
	}
	return s.GetInvoice(ctx, invoice.ID)
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter repository.InvoiceFilter) ([]*domain.Invoice, error) {
	filter.StudioID = s.studioID
	invoices, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	attachClients(ctx, s.clientRepo, invoices)
	return invoices, nil
}

// load fetches an invoice and makes sure it belongs to this studio
func (s *invoiceService) load(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.StudioID != s.studioID {
		return nil, fmt.Errorf("invoice %s: %w", id, repository.ErrNotFound)
	}
	return invoice, nil
}

func (s *invoiceService) rejected(invoice *domain.Invoice, op string, err error) {
	s.log.Warn().
		Err(err).
		Str("invoice_number", invoice.InvoiceNumber).
		Str("status", string(invoice.Status)).
		Str("op", op).
		Msg("operation rejected")
}

// attachClients fills in Client for display. Lookup failures leave it nil.
func attachClients(ctx context.Context, repo repository.ClientRepository, invoices []*domain.Invoice) {
	cache := make(map[uuid.UUID]*domain.Client)
	for _, inv := range invoices {
		client, ok := cache[inv.ClientID]
		if !ok {
			c, err := repo.GetByID(ctx, inv.ClientID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				continue
			}
			client = c
			cache[inv.ClientID] = c
		}
		inv.Client = client
	}
}
