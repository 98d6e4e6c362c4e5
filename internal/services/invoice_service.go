package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"water-admin/internal/backend"
	"water-admin/internal/logger"
	"water-admin/internal/models"
	"water-admin/internal/reporting"

	"github.com/shopspring/decimal"
)

// InvoiceRow is an invoice with its display balance.
type InvoiceRow struct {
	models.Invoice
	Balance     models.Number `json:"balance"`
	BalanceTone string        `json:"balance_tone"`
}

func newInvoiceRow(inv models.Invoice) InvoiceRow {
	balance := reporting.Balance(inv)
	return InvoiceRow{
		Invoice:     inv,
		Balance:     models.NewNumber(balance),
		BalanceTone: reporting.BalanceTone(balance),
	}
}

// InvoiceFilter narrows the dashboard. Zero values match everything.
type InvoiceFilter struct {
	Period   reporting.Period
	Status   models.InvoiceStatus
	ClientID models.ID
	Search   string
}

type InvoiceDashboard struct {
	Summary  reporting.InvoiceSummary  `json:"summary"`
	Invoices []InvoiceRow              `json:"invoices"`
	TopDues  []reporting.ClientBalance `json:"top_dues"`
}

// PaymentInput is a payment as entered on the invoice screen.
type PaymentInput struct {
	Amount     decimal.Decimal
	Method     string
	CashAmount decimal.Decimal
	UPIAmount  decimal.Decimal
	Reference  string
	Notes      string
}

const topDuesLimit = 5

type InvoiceService struct {
	Backend Backend
	Clock   Clock
}

func NewInvoiceService(b Backend, clock Clock) *InvoiceService {
	return &InvoiceService{Backend: b, Clock: clock}
}

// Dashboard lists invoices for the filter with their summary. The backend's
// collection rate is attached when the stats call succeeds; a failed stats
// call only drops the rate.
func (s *InvoiceService) Dashboard(ctx context.Context, token string, filter InvoiceFilter) (*InvoiceDashboard, error) {
	query := url.Values{}
	if filter.ClientID != "" {
		query.Set("client_id", filter.ClientID.String())
	}
	invoices, err := s.Backend.ListInvoices(ctx, token, query)
	if err != nil {
		return nil, err
	}

	now, loc := s.Clock.now(), s.Clock.loc()
	invoices = reporting.FilterByPeriod(invoices, func(inv models.Invoice) models.Timestamp { return inv.CreatedAt }, filter.Period, now, loc)
	invoices = filterInvoices(invoices, filter)

	summary := reporting.SummarizeInvoices(invoices)
	stats, err := s.Backend.InvoiceStats(ctx, token)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("invoice stats unavailable, collection rate omitted")
	} else {
		summary = summary.WithCollectionRate(stats.CollectionRate)
	}

	rows := make([]InvoiceRow, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, newInvoiceRow(inv))
	}
	topDues := reporting.OutstandingByClient(invoices)
	if len(topDues) > topDuesLimit {
		topDues = topDues[:topDuesLimit]
	}
	return &InvoiceDashboard{Summary: summary, Invoices: rows, TopDues: topDues}, nil
}

func filterInvoices(invoices []models.Invoice, filter InvoiceFilter) []models.Invoice {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if filter.Status != models.InvoiceUnknown && inv.Status != filter.Status {
			continue
		}
		if filter.ClientID != "" && inv.ClientID != filter.ClientID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(inv.InvoiceNumber), search) &&
			!strings.Contains(strings.ToLower(inv.ClientName), search) {
			continue
		}
		out = append(out, inv)
	}
	return out
}

func (s *InvoiceService) Invoice(ctx context.Context, token string, id models.ID) (*InvoiceRow, error) {
	inv, err := s.Backend.GetInvoice(ctx, token, id)
	if err != nil {
		return nil, err
	}
	row := newInvoiceRow(inv)
	return &row, nil
}

// RecordPayment checks the payment against the invoice's current balance,
// sends it, then re-reads the invoice. Nothing is sent when a check fails.
func (s *InvoiceService) RecordPayment(ctx context.Context, token string, id models.ID, in PaymentInput) (*InvoiceRow, error) {
	method := strings.ToLower(strings.TrimSpace(in.Method))
	if method == "" {
		method = models.PaymentCash
	}
	switch method {
	case models.PaymentCash, models.PaymentUPI, models.PaymentBank, models.PaymentSplit:
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, in.Method)
	}

	// another user may have paid since our cached read
	inv, err := s.Backend.GetInvoice(backend.FreshRead(ctx), token, id)
	if err != nil {
		return nil, err
	}
	if err := reporting.ValidatePayment(inv, in.Amount); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	req := models.RecordPaymentRequest{
		Amount:    models.NewNumber(in.Amount.Round(2)),
		Method:    method,
		Reference: strings.TrimSpace(in.Reference),
		Notes:     strings.TrimSpace(in.Notes),
	}
	if method == models.PaymentSplit {
		if err := reporting.ValidateSplitPayment(in.Amount, in.CashAmount, in.UPIAmount); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		cash, upi := models.NewNumber(in.CashAmount.Round(2)), models.NewNumber(in.UPIAmount.Round(2))
		req.CashAmount, req.UPIAmount = &cash, &upi
	}

	if err := s.Backend.RecordPayment(ctx, token, id, req); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info().
		Str("invoice_id", id.String()).
		Str("amount", req.Amount.StringFixed(2)).
		Str("method", method).
		Msg("payment recorded")
	return s.Invoice(ctx, token, id)
}

func (s *InvoiceService) Confirm(ctx context.Context, token string, id models.ID) (*InvoiceRow, error) {
	if err := s.Backend.ConfirmInvoice(ctx, token, id); err != nil {
		return nil, err
	}
	return s.Invoice(ctx, token, id)
}

func (s *InvoiceService) Cancel(ctx context.Context, token string, id models.ID) (*InvoiceRow, error) {
	if err := s.Backend.CancelInvoice(ctx, token, id); err != nil {
		return nil, err
	}
	return s.Invoice(ctx, token, id)
}

// IsInvalidInput reports a locally rejected request.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
