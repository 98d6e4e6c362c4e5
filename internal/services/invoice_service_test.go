package services

import (
	"context"
	"errors"
	"testing"

	"water-admin/internal/models"
	"water-admin/internal/reporting"

	"github.com/shopspring/decimal"
)

func seedInvoices(f *fakeBackend) {
	f.addInvoice(models.Invoice{ID: "1", InvoiceNumber: "INV-1", ClientID: "a", ClientName: "Acme",
		TotalAmount: models.NumberFromInt(1000), AmountPaid: models.NumberFromInt(800),
		Status: models.InvoicePartial, CreatedAt: models.ParseTimestamp("2024-03-02")})
	f.addInvoice(models.Invoice{ID: "2", InvoiceNumber: "INV-2", ClientID: "b", ClientName: "Beta",
		TotalAmount: models.NumberFromInt(500), Status: models.InvoiceOverdue,
		CreatedAt: models.ParseTimestamp("2024-02-02")})
	f.addInvoice(models.Invoice{ID: "3", InvoiceNumber: "INV-3", ClientID: "a", ClientName: "Acme",
		TotalAmount: models.NumberFromInt(300), AmountPaid: models.NumberFromInt(300),
		Status: models.InvoicePaid, CreatedAt: models.ParseTimestamp("2024-03-10T20:00:00Z")})
}

func TestDashboardFiltersAndSummarizes(t *testing.T) {
	f := newFakeBackend()
	seedInvoices(f)
	rate := models.ParseNumber("85")
	f.stats = models.InvoiceStats{CollectionRate: &rate}
	svc := NewInvoiceService(f, fixedClock())

	d, err := svc.Dashboard(context.Background(), "tok", InvoiceFilter{Period: reporting.Period{Kind: reporting.PeriodThisMonth}})
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if len(d.Invoices) != 2 {
		t.Fatalf("expected 2 invoices this month, got %d", len(d.Invoices))
	}
	if d.Summary.TotalOutstanding.String() != "200" || d.Summary.TotalBilled.String() != "1300" {
		t.Fatalf("unexpected summary %+v", d.Summary)
	}
	if d.Summary.CollectionTone != reporting.TonePositive {
		t.Fatalf("expected positive collection tone, got %q", d.Summary.CollectionTone)
	}
	if d.Invoices[0].Balance.String() != "200" || d.Invoices[0].BalanceTone != reporting.ToneDue {
		t.Fatalf("unexpected row %+v", d.Invoices[0])
	}
	if d.Invoices[1].BalanceTone != reporting.TonePaid {
		t.Fatalf("settled invoice must use the paid tone")
	}
	if len(d.TopDues) != 1 || d.TopDues[0].ClientID != "a" {
		t.Fatalf("unexpected top dues %+v", d.TopDues)
	}
}

func TestDashboardSurvivesStatsFailure(t *testing.T) {
	f := newFakeBackend()
	seedInvoices(f)
	f.statsErr = errors.New("stats down")
	svc := NewInvoiceService(f, fixedClock())

	d, err := svc.Dashboard(context.Background(), "tok", InvoiceFilter{Status: models.InvoiceOverdue, Search: "beta"})
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if d.Summary.CollectionRate != nil {
		t.Fatalf("collection rate must be omitted when stats fail")
	}
	if len(d.Invoices) != 1 || d.Invoices[0].ID != "2" || d.Summary.OverdueAmount.String() != "500" {
		t.Fatalf("unexpected dashboard %+v", d)
	}
}

func TestDashboardPropagatesListFailure(t *testing.T) {
	f := newFakeBackend()
	f.err = errors.New("backend down")
	if _, err := NewInvoiceService(f, fixedClock()).Dashboard(context.Background(), "tok", InvoiceFilter{}); err == nil {
		t.Fatalf("expected list failure to propagate")
	}
}

func TestRecordPaymentGuards(t *testing.T) {
	f := newFakeBackend()
	seedInvoices(f)
	svc := NewInvoiceService(f, fixedClock())
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, "tok", "1", PaymentInput{Amount: decimal.NewFromInt(250), Method: "cash"})
	if !IsInvalidInput(err) || !errors.Is(err, reporting.ErrPaymentExceedsBalance) {
		t.Fatalf("expected exceeds-balance rejection, got %v", err)
	}
	_, err = svc.RecordPayment(ctx, "tok", "2", PaymentInput{
		Amount: decimal.NewFromInt(500), Method: "split",
		CashAmount: decimal.NewFromInt(300), UPIAmount: decimal.NewFromInt(150),
	})
	if !errors.Is(err, reporting.ErrSplitMismatch) {
		t.Fatalf("expected split mismatch, got %v", err)
	}
	_, err = svc.RecordPayment(ctx, "tok", "2", PaymentInput{Amount: decimal.NewFromInt(5), Method: "cheque"})
	if !IsInvalidInput(err) {
		t.Fatalf("expected unknown method rejection, got %v", err)
	}
	if len(f.payments) != 0 {
		t.Fatalf("rejected payments must not reach the backend, got %d", len(f.payments))
	}
}

func TestRecordPaymentSendsAndRefetches(t *testing.T) {
	f := newFakeBackend()
	seedInvoices(f)
	svc := NewInvoiceService(f, fixedClock())

	row, err := svc.RecordPayment(context.Background(), "tok", "2", PaymentInput{
		Amount: decimal.NewFromInt(500), Method: "split",
		CashAmount: decimal.NewFromInt(300), UPIAmount: decimal.NewFromInt(200),
		Reference: "  UPI-123 ",
	})
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if len(f.payments) != 1 {
		t.Fatalf("expected one payment sent, got %d", len(f.payments))
	}
	// balance check reads fresh, the follow-up reload may use the cache
	if len(f.freshReads) != 2 || !f.freshReads[0] || f.freshReads[1] {
		t.Fatalf("expected fresh pre-check then plain reload, got %v", f.freshReads)
	}
	sent := f.payments[0]
	if sent.Method != models.PaymentSplit || sent.CashAmount == nil || sent.CashAmount.String() != "300" || sent.Reference != "UPI-123" {
		t.Fatalf("unexpected payment request %+v", sent)
	}
	if row.Status != models.InvoicePaid || !row.Balance.IsZero() {
		t.Fatalf("expected refreshed paid invoice, got %+v", row)
	}

	row, err = svc.RecordPayment(context.Background(), "tok", "1", PaymentInput{Amount: decimal.NewFromInt(200)})
	if err != nil {
		t.Fatalf("full balance payment failed: %v", err)
	}
	if f.payments[1].Method != models.PaymentCash || f.payments[1].CashAmount != nil {
		t.Fatalf("non-split payments default to cash without parts: %+v", f.payments[1])
	}
	if row.BalanceTone != reporting.TonePaid {
		t.Fatalf("expected settled invoice")
	}
}

func TestConfirmAndCancelRefetch(t *testing.T) {
	f := newFakeBackend()
	seedInvoices(f)
	svc := NewInvoiceService(f, fixedClock())
	ctx := context.Background()

	row, err := svc.Confirm(ctx, "tok", "2")
	if err != nil || row.Status != models.InvoicePending || len(f.confirmed) != 1 {
		t.Fatalf("unexpected confirm result %+v (%v)", row, err)
	}
	row, err = svc.Cancel(ctx, "tok", "2")
	if err != nil || row.Status != models.InvoiceCancelled || len(f.cancelled) != 1 {
		t.Fatalf("unexpected cancel result %+v (%v)", row, err)
	}
}
