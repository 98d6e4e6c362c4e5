package services

import (
	"context"
	"net/url"
	"time"

	"water-admin/internal/backend"
	"water-admin/internal/models"
)

var ist = time.FixedZone("IST", 5*60*60+30*60)

func fixedClock() Clock {
	now := time.Date(2024, 3, 11, 10, 0, 0, 0, ist)
	return Clock{Now: func() time.Time { return now }, Location: ist}
}

// fakeBackend serves canned data and records what was sent.
type fakeBackend struct {
	clients    []models.Client
	containers []models.Container
	invoices   map[models.ID]models.Invoice
	order      []models.ID
	stats      models.InvoiceStats
	statsErr   error
	prices     []models.PriceRule
	deliveries []models.DeliveryRecord
	trips      []models.Trip
	billing    []models.MonthlyBillingRow
	audit      []models.AuditLogEntry
	err        error

	queries   []url.Values
	months    []string
	payments  []models.RecordPaymentRequest
	confirmed []models.ID
	cancelled []models.ID
	created   []models.CreatePriceRuleRequest
	// freshReads records, per GetInvoice call, whether the cache was bypassed.
	freshReads []bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{invoices: make(map[models.ID]models.Invoice)}
}

func (f *fakeBackend) addInvoice(inv models.Invoice) {
	f.invoices[inv.ID] = inv
	f.order = append(f.order, inv.ID)
}

func (f *fakeBackend) ListClients(ctx context.Context, token string) ([]models.Client, error) {
	return f.clients, f.err
}

func (f *fakeBackend) ListContainers(ctx context.Context, token string) ([]models.Container, error) {
	return f.containers, f.err
}

func (f *fakeBackend) ListInvoices(ctx context.Context, token string, query url.Values) ([]models.Invoice, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Invoice, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.invoices[id])
	}
	return out, nil
}

func (f *fakeBackend) GetInvoice(ctx context.Context, token string, id models.ID) (models.Invoice, error) {
	f.freshReads = append(f.freshReads, backend.IsFreshRead(ctx))
	if f.err != nil {
		return models.Invoice{}, f.err
	}
	return f.invoices[id], nil
}

func (f *fakeBackend) InvoiceStats(ctx context.Context, token string) (models.InvoiceStats, error) {
	return f.stats, f.statsErr
}

func (f *fakeBackend) ListPriceRules(ctx context.Context, token string) ([]models.PriceRule, error) {
	return f.prices, f.err
}

func (f *fakeBackend) ListDeliveries(ctx context.Context, token string, query url.Values) ([]models.DeliveryRecord, error) {
	f.queries = append(f.queries, query)
	return f.deliveries, f.err
}

func (f *fakeBackend) ListTrips(ctx context.Context, token string, query url.Values) ([]models.Trip, error) {
	f.queries = append(f.queries, query)
	return f.trips, f.err
}

func (f *fakeBackend) MonthlyBilling(ctx context.Context, token, month string) ([]models.MonthlyBillingRow, error) {
	f.months = append(f.months, month)
	return f.billing, f.err
}

func (f *fakeBackend) ListAuditLogs(ctx context.Context, token string, query url.Values) ([]models.AuditLogEntry, error) {
	f.queries = append(f.queries, query)
	return f.audit, f.err
}

func (f *fakeBackend) RecordPayment(ctx context.Context, token string, id models.ID, req models.RecordPaymentRequest) error {
	if f.err != nil {
		return f.err
	}
	f.payments = append(f.payments, req)
	inv := f.invoices[id]
	inv.AmountPaid = models.NewNumber(inv.AmountPaid.Add(req.Amount.Decimal))
	if inv.AmountPaid.GreaterThanOrEqual(inv.TotalAmount.Decimal) {
		inv.Status = models.InvoicePaid
	} else {
		inv.Status = models.InvoicePartial
	}
	f.invoices[id] = inv
	return nil
}

func (f *fakeBackend) ConfirmInvoice(ctx context.Context, token string, id models.ID) error {
	if f.err != nil {
		return f.err
	}
	f.confirmed = append(f.confirmed, id)
	inv := f.invoices[id]
	inv.Status = models.InvoicePending
	f.invoices[id] = inv
	return nil
}

func (f *fakeBackend) CancelInvoice(ctx context.Context, token string, id models.ID) error {
	if f.err != nil {
		return f.err
	}
	f.cancelled = append(f.cancelled, id)
	inv := f.invoices[id]
	inv.Status = models.InvoiceCancelled
	f.invoices[id] = inv
	return nil
}

func (f *fakeBackend) CreatePriceRule(ctx context.Context, token string, req models.CreatePriceRuleRequest) (models.PriceRule, error) {
	if f.err != nil {
		return models.PriceRule{}, f.err
	}
	f.created = append(f.created, req)
	rule := models.PriceRule{
		ID:            models.ID("new"),
		ClientID:      req.ClientID,
		ContainerID:   req.ContainerID,
		Price:         req.Price,
		EffectiveFrom: models.ParseTimestamp(req.EffectiveFrom),
	}
	f.prices = append(f.prices, rule)
	return rule, nil
}
