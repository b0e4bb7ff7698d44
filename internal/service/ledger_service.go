package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andy/studioledger/internal/domain"
	"github.com/andy/studioledger/internal/logger"
	"github.com/andy/studioledger/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrLedgerMismatch means the stored payments no longer add up to the
// invoice's paid amount.
var ErrLedgerMismatch = errors.New("payments do not add up to paid amount")

// LedgerService records money received against invoices
type LedgerService interface {
	// RecordPayment applies a payment to a sent or overdue invoice. The
	// invoice moves to paid when the payment clears its balance.
	RecordPayment(ctx context.Context, invoiceID uuid.UUID, req domain.PaymentRequest) (*domain.Invoice, *domain.Payment, error)

	// ListPayments returns an invoice's payments, oldest first
	ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*domain.Payment, error)

	// Verify recomputes the paid amount from stored payments
	Verify(ctx context.Context, invoiceID uuid.UUID) error
}

type ledgerService struct {
	studioID    uuid.UUID
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	now         Clock
	log         zerolog.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	studioID uuid.UUID,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	clock Clock,
) LedgerService {
	if clock == nil {
		clock = time.Now
	}
	return &ledgerService{
		studioID:    studioID,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		now:         clock,
		log:         logger.WithComponent("ledger"),
	}
}

func (s *ledgerService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, req domain.PaymentRequest) (*domain.Invoice, *domain.Payment, error) {
	invoice, err := s.load(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}

	guard := repository.GuardOf(invoice)
	payment, err := domain.RecordPayment(invoice, req, s.now())
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("invoice_number", invoice.InvoiceNumber).
			Str("status", string(invoice.Status)).
			Str("amount", req.Amount.String()).
			Msg("payment rejected")
		return nil, nil, err
	}

	if err := s.paymentRepo.Apply(ctx, invoice, guard, payment); err != nil {
		if errors.Is(err, repository.ErrConcurrentUpdate) {
			s.log.Warn().Str("invoice_number", invoice.InvoiceNumber).Msg("payment lost a concurrent update")
		}
		return nil, nil, err
	}

	s.log.Info().
		Str("invoice_number", invoice.InvoiceNumber).
		Str("amount", payment.Amount.StringFixed(2)).
		Str("method", string(payment.Method)).
		Str("paid", invoice.PaidAmount.StringFixed(2)).
		Str("status", string(invoice.Status)).
		Msg("payment recorded")
	return invoice, payment, nil
}

func (s *ledgerService) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*domain.Payment, error) {
	if _, err := s.load(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByInvoice(ctx, invoiceID)
}

func (s *ledgerService) Verify(ctx context.Context, invoiceID uuid.UUID) error {
	invoice, err := s.load(ctx, invoiceID)
	if err != nil {
		return err
	}
	sum, err := s.paymentRepo.SumByInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	if !sum.Equal(invoice.PaidAmount) {
		s.log.Error().
			Str("invoice_number", invoice.InvoiceNumber).
			Str("paid", invoice.PaidAmount.StringFixed(2)).
			Str("payments", sum.StringFixed(2)).
			Msg("ledger mismatch")
		return fmt.Errorf("%w: invoice %s has paid %s but payments sum to %s",
			ErrLedgerMismatch, invoice.InvoiceNumber,
			invoice.PaidAmount.StringFixed(2), sum.StringFixed(2))
	}
	return nil
}

func (s *ledgerService) load(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.StudioID != s.studioID {
		return nil, fmt.Errorf("invoice %s: %w", id, repository.ErrNotFound)
	}
	return invoice, nil
}
