package models

import (
	"encoding/json"
	"strings"
)

// Role is the closed set of account roles the admin surface knows about.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleManager
	RoleDriver
	RoleClient
)

var roleNames = map[Role]string{
	RoleAdmin:   "admin",
	RoleManager: "manager",
	RoleDriver:  "driver",
	RoleClient:  "client",
}

// ParseRole maps a backend role string to a Role. Unrecognised values map to
// RoleUnknown.
func ParseRole(s string) Role {
	s = strings.ToLower(strings.TrimSpace(s))
	for role, name := range roleNames {
		if name == s {
			return role
		}
	}
	return RoleUnknown
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	*r = ParseRole(unquote(data))
	return nil
}

// InvoiceStatus is the lifecycle state of an invoice as reported by the backend.
type InvoiceStatus int

const (
	InvoiceUnknown InvoiceStatus = iota
	InvoiceDraft
	InvoicePending
	InvoicePartial
	InvoicePaid
	InvoiceOverdue
	InvoiceCancelled
)

var invoiceStatusNames = map[InvoiceStatus]string{
	InvoiceDraft:     "draft",
	InvoicePending:   "pending",
	InvoicePartial:   "partial",
	InvoicePaid:      "paid",
	InvoiceOverdue:   "overdue",
	InvoiceCancelled: "cancelled",
}

// InvoiceStatuses lists the known statuses in lifecycle order.
var InvoiceStatuses = []InvoiceStatus{
	InvoiceDraft, InvoicePending, InvoicePartial, InvoicePaid, InvoiceOverdue, InvoiceCancelled,
}

func ParseInvoiceStatus(s string) InvoiceStatus {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "canceled" {
		return InvoiceCancelled
	}
	for status, name := range invoiceStatusNames {
		if name == s {
			return status
		}
	}
	return InvoiceUnknown
}

func (s InvoiceStatus) String() string {
	if name, ok := invoiceStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	*s = ParseInvoiceStatus(unquote(data))
	return nil
}

// Payment methods accepted by the payment form.
const (
	PaymentCash  = "cash"
	PaymentUPI   = "upi"
	PaymentSplit = "split"
	PaymentBank  = "bank_transfer"
)
