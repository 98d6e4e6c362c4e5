package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"water-admin/internal/models"
	"water-admin/internal/timeutil"
)

// MonthlyBilling is the server-computed billing summary for one month. Row
// figures are shown as delivered by the backend, never recomputed.
type MonthlyBilling struct {
	Month string                     `json:"month"`
	Rows  []models.MonthlyBillingRow `json:"rows"`
}

type BillingService struct {
	Backend Backend
	Clock   Clock
}

func NewBillingService(b Backend, clock Clock) *BillingService {
	return &BillingService{Backend: b, Clock: clock}
}

// ResolveMonth validates a YYYY-MM month; empty means the current month.
func (s *BillingService) ResolveMonth(month string) (string, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		return s.Clock.now().In(s.Clock.loc()).Format(timeutil.MonthLayout), nil
	}
	if _, err := time.Parse(timeutil.MonthLayout, month); err != nil {
		return "", fmt.Errorf("%w: month %q is not YYYY-MM", ErrInvalidInput, month)
	}
	return month, nil
}

func (s *BillingService) Monthly(ctx context.Context, token, month string) (*MonthlyBilling, error) {
	month, err := s.ResolveMonth(month)
	if err != nil {
		return nil, err
	}
	rows, err := s.Backend.MonthlyBilling(ctx, token, month)
	if err != nil {
		return nil, err
	}
	return &MonthlyBilling{Month: month, Rows: rows}, nil
}

// Client expands one client's row with its daily details and pending invoices.
func (s *BillingService) Client(ctx context.Context, token, month string, clientID models.ID) (*models.MonthlyBillingRow, error) {
	billing, err := s.Monthly(ctx, token, month)
	if err != nil {
		return nil, err
	}
	for i := range billing.Rows {
		if billing.Rows[i].ClientID == clientID {
			return &billing.Rows[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no billing for client %s in %s", ErrNotFound, clientID, billing.Month)
}

// WriteCSV writes one line per client.
func (s *BillingService) WriteCSV(w io.Writer, billing *MonthlyBilling) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Client", "Invoices", "Pending Invoices", "Monthly Bill", "Paid", "Outstanding"}); err != nil {
		return err
	}
	for _, row := range billing.Rows {
		if err := cw.Write([]string{
			row.ClientName,
			strconv.Itoa(int(row.InvoiceCount)),
			strconv.Itoa(int(row.PendingInvoiceCount)),
			row.TotalMonthlyBill.StringFixed(2),
			row.TotalPaid.StringFixed(2),
			row.TotalOutstanding.StringFixed(2),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
