package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/andy/studioledger/internal/domain"
	"github.com/andy/studioledger/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore backs all three mock repositories. Values are copied in and out
// so callers only see what they persisted.
type memStore struct {
	clients  map[uuid.UUID]*domain.Client
	invoices map[uuid.UUID]*domain.Invoice
	payments map[uuid.UUID][]*domain.Payment

	// beforeApply runs inside Apply before the guard is checked
	beforeApply func()
}

func newMemStore() *memStore {
	return &memStore{
		clients:  make(map[uuid.UUID]*domain.Client),
		invoices: make(map[uuid.UUID]*domain.Invoice),
		payments: make(map[uuid.UUID][]*domain.Payment),
	}
}

func copyInvoice(inv *domain.Invoice) *domain.Invoice {
	c := *inv
	c.Client = nil
	c.Payments = nil
	return &c
}

type mockClientRepo struct{ s *memStore }

func (m *mockClientRepo) Create(ctx context.Context, client *domain.Client) error {
	c := *client
	m.s.clients[client.ID] = &c
	return nil
}

func (m *mockClientRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	c, ok := m.s.clients[id]
	if !ok {
		return nil, fmt.Errorf("client: %w", repository.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *mockClientRepo) GetByName(ctx context.Context, studioID uuid.UUID, name string) (*domain.Client, error) {
	for _, c := range m.s.clients {
		if c.StudioID == studioID && strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("client: %w", repository.ErrNotFound)
}

func (m *mockClientRepo) List(ctx context.Context, studioID uuid.UUID, includeArchived bool) ([]*domain.Client, error) {
	out := make([]*domain.Client, 0)
	for _, c := range m.s.clients {
		if c.StudioID == studioID && (includeArchived || !c.IsArchived) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockClientRepo) Update(ctx context.Context, client *domain.Client) error {
	if _, ok := m.s.clients[client.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *client
	m.s.clients[client.ID] = &c
	return nil
}

func (m *mockClientRepo) Archive(ctx context.Context, id uuid.UUID) error {
	c, ok := m.s.clients[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.IsArchived = true
	return nil
}

type mockInvoiceRepo struct {
	s        *memStore
	sequence map[string]int
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return err
	}
	m.s.invoices[invoice.ID] = copyInvoice(invoice)
	return nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	inv, ok := m.s.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice: %w", repository.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (m *mockInvoiceRepo) GetByNumber(ctx context.Context, studioID uuid.UUID, number string) (*domain.Invoice, error) {
	for _, inv := range m.s.invoices {
		if inv.StudioID == studioID && strings.EqualFold(inv.InvoiceNumber, number) {
			return copyInvoice(inv), nil
		}
	}
	return nil, fmt.Errorf("invoice: %w", repository.ErrNotFound)
}

func (m *mockInvoiceRepo) List(ctx context.Context, filter repository.InvoiceFilter) ([]*domain.Invoice, error) {
	out := make([]*domain.Invoice, 0)
	for _, inv := range m.s.invoices {
		if inv.StudioID != filter.StudioID {
			continue
		}
		if filter.ClientID != nil && inv.ClientID != *filter.ClientID {
			continue
		}
		if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, inv.Status) {
			continue
		}
		out = append(out, copyInvoice(inv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNumber > out[j].InvoiceNumber })
	return out, nil
}

func hasStatus(statuses []domain.InvoiceStatus, s domain.InvoiceStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

func (m *mockInvoiceRepo) Update(ctx context.Context, invoice *domain.Invoice, guard repository.Guard) error {
	if err := invoice.Validate(); err != nil {
		return err
	}
	stored, ok := m.s.invoices[invoice.ID]
	if !ok || stored.Status != guard.Status || !stored.PaidAmount.Equal(guard.PaidAmount) ||
		!stored.UpdatedAt.Equal(guard.UpdatedAt) {
		return repository.ErrConcurrentUpdate
	}
	m.s.invoices[invoice.ID] = copyInvoice(invoice)
	return nil
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	inv, ok := m.s.invoices[id]
	if !ok {
		return repository.ErrNotFound
	}
	if inv.Status != domain.InvoiceStatusDraft {
		return domain.ErrIllegalDelete
	}
	delete(m.s.invoices, id)
	return nil
}

func (m *mockInvoiceRepo) GetNextInvoiceNumber(ctx context.Context, studioID uuid.UUID, prefix string, year int) (string, error) {
	if m.sequence == nil {
		m.sequence = make(map[string]int)
	}
	stem := fmt.Sprintf("%s-%d-", prefix, year)
	m.sequence[stem]++
	return fmt.Sprintf("%s%03d", stem, m.sequence[stem]), nil
}

type mockPaymentRepo struct{ s *memStore }

func (m *mockPaymentRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*domain.Payment, error) {
	out := make([]*domain.Payment, 0, len(m.s.payments[invoiceID]))
	for _, p := range m.s.payments[invoiceID] {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockPaymentRepo) Apply(ctx context.Context, invoice *domain.Invoice, guard repository.Guard, payment *domain.Payment) error {
	if m.s.beforeApply != nil {
		m.s.beforeApply()
	}
	repo := &mockInvoiceRepo{s: m.s}
	if err := repo.Update(ctx, invoice, guard); err != nil {
		return err
	}
	if payment != nil {
		cp := *payment
		m.s.payments[invoice.ID] = append(m.s.payments[invoice.ID], &cp)
	}
	return nil
}

func (m *mockPaymentRepo) SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	return domain.SumPayments(m.s.payments[invoiceID]), nil
}
