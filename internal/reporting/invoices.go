package reporting

import (
	"errors"
	"fmt"
	"sort"

	"water-admin/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositivePayment    = errors.New("payment amount must be greater than zero")
	ErrPaymentExceedsBalance = errors.New("payment amount exceeds invoice balance")
	ErrNegativeSplitPart     = errors.New("split payment parts cannot be negative")
	ErrSplitMismatch         = errors.New("cash and UPI amounts must add up to the payment amount")
)

var collectionThreshold = decimal.NewFromInt(80)

// Display tones for balances and collection rate.
const (
	TonePaid     = "paid"
	ToneDue      = "due"
	TonePositive = "positive"
	ToneWarning  = "warning"
)

// Balance is total minus paid. A negative balance from the backend is kept.
func Balance(inv models.Invoice) decimal.Decimal {
	return inv.TotalAmount.Sub(inv.AmountPaid.Decimal)
}

// BalanceTone colours non-positive balances as paid.
func BalanceTone(balance decimal.Decimal) string {
	if balance.Sign() <= 0 {
		return TonePaid
	}
	return ToneDue
}

// CollectionTone is positive above an 80% collection rate.
func CollectionTone(rate decimal.Decimal) string {
	if rate.GreaterThan(collectionThreshold) {
		return TonePositive
	}
	return ToneWarning
}

// InvoiceSummary holds the dashboard figures for a list of invoices.
type InvoiceSummary struct {
	InvoiceCount     int            `json:"invoice_count"`
	TotalBilled      models.Number  `json:"total_billed"`
	TotalCollected   models.Number  `json:"total_collected"`
	TotalOutstanding models.Number  `json:"total_outstanding"`
	OverdueAmount    models.Number  `json:"overdue_amount"`
	OverdueCount     int            `json:"overdue_count"`
	StatusCounts     map[string]int `json:"status_counts"`
	CollectionRate   *models.Number `json:"collection_rate,omitempty"`
	CollectionTone   string         `json:"collection_tone,omitempty"`
}

// SummarizeInvoices totals every invoice it is given; scoping is the caller's job.
func SummarizeInvoices(invoices []models.Invoice) InvoiceSummary {
	var billed, collected, overdue decimal.Decimal
	summary := InvoiceSummary{
		InvoiceCount: len(invoices),
		StatusCounts: make(map[string]int),
	}
	for _, inv := range invoices {
		billed = billed.Add(inv.TotalAmount.Decimal)
		collected = collected.Add(inv.AmountPaid.Decimal)
		summary.StatusCounts[inv.Status.String()]++
		if inv.Status == models.InvoiceOverdue {
			overdue = overdue.Add(Balance(inv))
			summary.OverdueCount++
		}
	}
	summary.TotalBilled = models.NewNumber(billed)
	summary.TotalCollected = models.NewNumber(collected)
	summary.TotalOutstanding = models.NewNumber(billed.Sub(collected))
	summary.OverdueAmount = models.NewNumber(overdue)
	return summary
}

// WithCollectionRate attaches the backend's collection rate and its tone.
func (s InvoiceSummary) WithCollectionRate(rate *models.Number) InvoiceSummary {
	if rate == nil {
		return s
	}
	r := *rate
	s.CollectionRate = &r
	s.CollectionTone = CollectionTone(r.Decimal)
	return s
}

// ValidatePayment checks a single payment against the invoice's current
// balance. The backend remains the authority; this only stops obvious mistakes.
func ValidatePayment(inv models.Invoice, amount decimal.Decimal) error {
	amount = amount.Round(2)
	if amount.Sign() <= 0 {
		return ErrNonPositivePayment
	}
	balance := Balance(inv).Round(2)
	if amount.GreaterThan(balance) {
		return fmt.Errorf("%w: balance is %s", ErrPaymentExceedsBalance, balance.StringFixed(2))
	}
	return nil
}

// ValidateSplitPayment requires cash + upi to equal total to the paisa.
func ValidateSplitPayment(total, cash, upi decimal.Decimal) error {
	total, cash, upi = total.Round(2), cash.Round(2), upi.Round(2)
	if cash.Sign() < 0 || upi.Sign() < 0 {
		return ErrNegativeSplitPart
	}
	if !cash.Add(upi).Equal(total) {
		return fmt.Errorf("%w: %s + %s != %s", ErrSplitMismatch,
			cash.StringFixed(2), upi.StringFixed(2), total.StringFixed(2))
	}
	return nil
}

// ClientBalance is the outstanding amount for one client.
type ClientBalance struct {
	ClientID     models.ID     `json:"client_id"`
	ClientName   string        `json:"client_name"`
	InvoiceCount int           `json:"invoice_count"`
	Outstanding  models.Number `json:"outstanding"`
}

// OutstandingByClient sums balances per client, largest first. Cancelled
// invoices are skipped.
func OutstandingByClient(invoices []models.Invoice) []ClientBalance {
	index := make(map[models.ID]int)
	var out []ClientBalance
	for _, inv := range invoices {
		if inv.Status == models.InvoiceCancelled {
			continue
		}
		i, ok := index[inv.ClientID]
		if !ok {
			i = len(out)
			index[inv.ClientID] = i
			out = append(out, ClientBalance{ClientID: inv.ClientID, ClientName: inv.ClientName})
		}
		out[i].InvoiceCount++
		out[i].Outstanding = models.NewNumber(out[i].Outstanding.Add(Balance(inv)))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Outstanding.GreaterThan(out[j].Outstanding.Decimal)
	})
	return out
}
