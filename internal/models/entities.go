package models

import "encoding/json"

// Client is a billed customer of the delivery business
type Client struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	IsActive bool   `json:"is_active"`
}

// Container is a physical unit type tracked per delivery
type Container struct {
	ID         ID     `json:"id"`
	Name       string `json:"name"`
	Returnable bool   `json:"is_returnable"`
}

// DeliveryRecord is one delivered quantity of a container for a customer on a day
type DeliveryRecord struct {
	CustomerName      string    `json:"customer_name"`
	ContainerID       ID        `json:"container_id"`
	ContainerName     string    `json:"container_name"`
	Date              Timestamp `json:"date"`
	DeliveredQuantity Number    `json:"delivered_quantity"`
}

// Trip is a driver's delivery/pickup event against one client
type Trip struct {
	ID         ID         `json:"id"`
	DriverID   ID         `json:"driver_id"`
	DriverName string     `json:"driver_name"`
	ClientID   ID         `json:"client_id"`
	ClientName string     `json:"client_name"`
	TripDate   Timestamp  `json:"trip_date"`
	Status     string     `json:"status"`
	Items      []TripItem `json:"items"`
}

type TripItem struct {
	ContainerID   ID     `json:"container_id"`
	ContainerName string `json:"container_name"`
	Delivered     Number `json:"delivered_quantity"`
	Returned      Number `json:"returned_quantity"`
}

// PriceRule is one version of a (client, container) unit price
type PriceRule struct {
	ID            ID        `json:"id"`
	ClientID      ID        `json:"client_id"`
	ClientName    string    `json:"client_name,omitempty"`
	ContainerID   ID        `json:"container_id"`
	ContainerName string    `json:"container_name,omitempty"`
	Price         Number    `json:"price"`
	EffectiveFrom Timestamp `json:"effective_from"`
	CreatedAt     Timestamp `json:"created_at"`
}

// VersionTime is effective_from when present, otherwise created_at.
func (p PriceRule) VersionTime() Timestamp {
	if p.EffectiveFrom.IsSet() {
		return p.EffectiveFrom
	}
	return p.CreatedAt
}

type CreatePriceRuleRequest struct {
	ClientID      ID     `json:"client_id"`
	ContainerID   ID     `json:"container_id"`
	Price         Number `json:"price"`
	EffectiveFrom string `json:"effective_from,omitempty"`
}

// Invoice is a billing document for a client over a period
type Invoice struct {
	ID            ID            `json:"id"`
	InvoiceNumber string        `json:"invoice_number"`
	ClientID      ID            `json:"client_id"`
	ClientName    string        `json:"client_name"`
	TotalAmount   Number        `json:"total_amount"`
	AmountPaid    Number        `json:"amount_paid"`
	Status        InvoiceStatus `json:"status"`
	CreatedAt     Timestamp     `json:"created_at"`
	DueDate       Timestamp     `json:"due_date"`
}

// InvoiceStats is the backend's own invoice summary. CollectionRate is a
// percentage and is displayed as-is.
type InvoiceStats struct {
	CollectionRate *Number `json:"collection_rate"`
}

// RecordPaymentRequest records a payment against one invoice. CashAmount and
// UPIAmount are only used for split payments.
type RecordPaymentRequest struct {
	Amount     Number  `json:"amount"`
	Method     string  `json:"payment_method"`
	CashAmount *Number `json:"cash_amount,omitempty"`
	UPIAmount  *Number `json:"upi_amount,omitempty"`
	Reference  string  `json:"reference,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

// MonthlyBillingRow is a server-precomputed per-client monthly aggregate
type MonthlyBillingRow struct {
	ClientID            ID                   `json:"client_id"`
	ClientName          string               `json:"client_name"`
	InvoiceCount        Count                `json:"invoice_count"`
	PendingInvoiceCount Count                `json:"pending_invoice_count"`
	TotalMonthlyBill    Number               `json:"total_monthly_bill"`
	TotalPaid           Number               `json:"total_paid"`
	TotalOutstanding    Number               `json:"total_outstanding"`
	DailyDetails        []DailyBillingDetail `json:"daily_details"`
	PendingInvoices     []PendingInvoice     `json:"pending_invoices"`
}

type DailyBillingDetail struct {
	Date          Timestamp `json:"date"`
	ContainerName string    `json:"container_name"`
	Quantity      Number    `json:"quantity"`
	Amount        Number    `json:"amount"`
}

type PendingInvoice struct {
	ID            ID            `json:"id"`
	InvoiceNumber string        `json:"invoice_number"`
	TotalAmount   Number        `json:"total_amount"`
	AmountPaid    Number        `json:"amount_paid"`
	Status        InvoiceStatus `json:"status"`
	DueDate       Timestamp     `json:"due_date"`
}

// AuditLogEntry is an append-only record of an action taken in the system
type AuditLogEntry struct {
	ID        ID              `json:"id"`
	Timestamp Timestamp       `json:"timestamp"`
	User      AuditUser       `json:"user"`
	Action    string          `json:"action"`
	Entity    AuditEntity     `json:"entity"`
	Details   json.RawMessage `json:"details,omitempty"`
}

type AuditUser struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

type AuditEntity struct {
	Type string `json:"type"`
	ID   ID     `json:"id"`
}
