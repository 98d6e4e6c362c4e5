package services

import (
	"context"
	"errors"
	"net/url"
	"time"

	"water-admin/internal/models"
	"water-admin/internal/timeutil"
)

var (
	// ErrInvalidInput marks failures caused by the request itself; the backend
	// was not called.
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Backend is the slice of the remote REST API the services use.
// *backend.Client implements it.
type Backend interface {
	ListClients(ctx context.Context, token string) ([]models.Client, error)
	ListContainers(ctx context.Context, token string) ([]models.Container, error)
	ListInvoices(ctx context.Context, token string, query url.Values) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, token string, id models.ID) (models.Invoice, error)
	InvoiceStats(ctx context.Context, token string) (models.InvoiceStats, error)
	ListPriceRules(ctx context.Context, token string) ([]models.PriceRule, error)
	ListDeliveries(ctx context.Context, token string, query url.Values) ([]models.DeliveryRecord, error)
	ListTrips(ctx context.Context, token string, query url.Values) ([]models.Trip, error)
	MonthlyBilling(ctx context.Context, token, month string) ([]models.MonthlyBillingRow, error)
	ListAuditLogs(ctx context.Context, token string, query url.Values) ([]models.AuditLogEntry, error)
	RecordPayment(ctx context.Context, token string, id models.ID, req models.RecordPaymentRequest) error
	ConfirmInvoice(ctx context.Context, token string, id models.ID) error
	CancelInvoice(ctx context.Context, token string, id models.ID) error
	CreatePriceRule(ctx context.Context, token string, req models.CreatePriceRuleRequest) (models.PriceRule, error)
}

// Clock supplies "now" and the business zone. Tests pin both.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func DefaultClock() Clock {
	return Clock{Now: timeutil.Now, Location: timeutil.Location()}
}

func (c Clock) now() time.Time {
	if c.Now == nil {
		return timeutil.Now()
	}
	return c.Now()
}

func (c Clock) loc() *time.Location {
	if c.Location == nil {
		return timeutil.Location()
	}
	return c.Location
}

// Today is the current business day key.
func (c Clock) Today() string {
	return timeutil.DayKey(c.now(), c.loc())
}
