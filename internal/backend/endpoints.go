package backend

import (
	"context"
	"net/url"

	"water-admin/internal/models"
)

func (c *Client) ListClients(ctx context.Context, token string) ([]models.Client, error) {
	body, err := c.get(ctx, token, requestSpec{endpoint: "clients", path: "/api/clients/"})
	if err != nil {
		return nil, err
	}
	return decodeList[models.Client](body)
}

func (c *Client) ListContainers(ctx context.Context, token string) ([]models.Container, error) {
	body, err := c.get(ctx, token, requestSpec{endpoint: "containers", path: "/api/containers/"})
	if err != nil {
		return nil, err
	}
	return decodeList[models.Container](body)
}

// ListInvoices returns the invoices visible to the token. The backend scopes
// client users to their own invoices.
func (c *Client) ListInvoices(ctx context.Context, token string, query url.Values) ([]models.Invoice, error) {
	body, err := c.get(ctx, token, requestSpec{endpoint: "invoices", path: "/api/invoices/", query: query})
	if err != nil {
		return nil, err
	}
	return decodeList[models.Invoice](body)
}

func (c *Client) GetInvoice(ctx context.Context, token string, id models.ID) (models.Invoice, error) {
	body, err := c.get(ctx, token, requestSpec{
		endpoint: "invoice",
		path:     "/api/invoices/" + url.PathEscape(id.String()) + "/",
	})
	if err != nil {
		return models.Invoice{}, err
	}
	return decodeObject[models.Invoice](body)
}

func (c *Client) InvoiceStats(ctx context.Context, token string) (models.InvoiceStats, error) {
	body, err := c.get(ctx, token, requestSpec{endpoint: "invoice_stats", path: "/api/invoices/stats/"})
	if err != nil {
		return models.InvoiceStats{}, err
	}
	return decodeObject[models.InvoiceStats](body)
}

func (c *Client) ListPriceRules(ctx context.Context, token string) ([]models.PriceRule, error) {
	body, err := c.get(ctx, token, requestSpec{endpoint: "prices", path: "/api/prices/"})
	if err != nil {
		return nil, err
	}
	return decodeList[models.PriceRule](body)
}

// ListDeliveries returns flat delivery rows. query may carry start_date,
// end_date and container_id.
func (c *Client) ListDeliveries(ctx context.Context, token string, query url.Values) ([]models.DeliveryRecord, error) {
	body, err := c.get(ctx, token, requestSpec{endpoint: "deliveries", path: "/api/reports/deliveries/", query: query})
	if err != nil {
		return nil, err
	}
	return decodeList[models.DeliveryRecord](body)
}

func (c *Client) ListTrips(ctx context.Context, token string, query url.Values) ([]models.Trip, error) {
	body, err := c.get(ctx, token, requestSpec{endpoint: "trips", path: "/api/trips/", query: query})
	if err != nil {
		return nil, err
	}
	return decodeList[models.Trip](body)
}

// MonthlyBilling returns the server-computed billing rows for month (YYYY-MM).
func (c *Client) MonthlyBilling(ctx context.Context, token, month string) ([]models.MonthlyBillingRow, error) {
	query := url.Values{}
	if month != "" {
		query.Set("month", month)
	}
	body, err := c.get(ctx, token, requestSpec{endpoint: "monthly_billing", path: "/api/billing/monthly/", query: query})
	if err != nil {
		return nil, err
	}
	return decodeList[models.MonthlyBillingRow](body)
}

func (c *Client) ListAuditLogs(ctx context.Context, token string, query url.Values) ([]models.AuditLogEntry, error) {
	body, err := c.get(ctx, token, requestSpec{endpoint: "audit_logs", path: "/api/audit-logs/", query: query})
	if err != nil {
		return nil, err
	}
	return decodeList[models.AuditLogEntry](body)
}

func (c *Client) RecordPayment(ctx context.Context, token string, id models.ID, req models.RecordPaymentRequest) error {
	_, err := c.mutate(ctx, token, requestSpec{
		endpoint: "record_payment",
		path:     "/api/invoices/" + url.PathEscape(id.String()) + "/record-payment/",
		body:     req,
	})
	return err
}

func (c *Client) ConfirmInvoice(ctx context.Context, token string, id models.ID) error {
	_, err := c.mutate(ctx, token, requestSpec{
		endpoint: "confirm_invoice",
		path:     "/api/invoices/" + url.PathEscape(id.String()) + "/confirm/",
	})
	return err
}

func (c *Client) CancelInvoice(ctx context.Context, token string, id models.ID) error {
	_, err := c.mutate(ctx, token, requestSpec{
		endpoint: "cancel_invoice",
		path:     "/api/invoices/" + url.PathEscape(id.String()) + "/cancel/",
	})
	return err
}

func (c *Client) CreatePriceRule(ctx context.Context, token string, req models.CreatePriceRuleRequest) (models.PriceRule, error) {
	body, err := c.mutate(ctx, token, requestSpec{endpoint: "create_price", path: "/api/prices/", body: req})
	if err != nil {
		return models.PriceRule{}, err
	}
	return decodeObject[models.PriceRule](body)
}
