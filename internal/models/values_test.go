package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNumberLenientDecoding(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`12.5`, "12.5"},
		{`"300"`, "300"},
		{`" 42.10 "`, "42.1"},
		{`null`, "0"},
		{`""`, "0"},
		{`"abc"`, "0"},
		{`true`, "0"},
		{`{"x":1}`, "0"},
	}
	for _, tc := range cases {
		var n Number
		if err := json.Unmarshal([]byte(tc.raw), &n); err != nil {
			t.Fatalf("unmarshal %s returned error: %v", tc.raw, err)
		}
		if n.String() != tc.want {
			t.Fatalf("unmarshal %s: got %s, want %s", tc.raw, n.String(), tc.want)
		}
	}
}

func TestInvoiceDecodesMalformedFields(t *testing.T) {
	raw := `{
		"id": 17,
		"client_id": "c-9",
		"total_amount": "1000",
		"amount_paid": null,
		"status": "Overdue",
		"created_at": "2024-03-10T23:50:00Z",
		"due_date": "2024-04-01"
	}`
	var inv Invoice
	if err := json.Unmarshal([]byte(raw), &inv); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if inv.ID != "17" || inv.ClientID != "c-9" {
		t.Fatalf("unexpected ids: %q %q", inv.ID, inv.ClientID)
	}
	if inv.TotalAmount.String() != "1000" || !inv.AmountPaid.IsZero() {
		t.Fatalf("unexpected amounts: %s %s", inv.TotalAmount, inv.AmountPaid)
	}
	if inv.Status != InvoiceOverdue {
		t.Fatalf("expected overdue, got %s", inv.Status)
	}
	if !inv.DueDate.DateOnly || inv.DueDate.DayKey(time.UTC) != "2024-04-01" {
		t.Fatalf("unexpected due date: %+v", inv.DueDate)
	}
}

func TestDateOnlyKeepsCalendarDay(t *testing.T) {
	ts := ParseTimestamp("2024-01-01")
	west := time.FixedZone("PST", -8*60*60)
	if got := ts.DayKey(west); got != "2024-01-01" {
		t.Fatalf("date-only value shifted to %s", got)
	}

	instant := ParseTimestamp("2024-01-01T02:00:00Z")
	if got := instant.DayKey(west); got != "2023-12-31" {
		t.Fatalf("expected instant to move to 2023-12-31, got %s", got)
	}
}

func TestUnknownEnumValues(t *testing.T) {
	var role Role
	if err := json.Unmarshal([]byte(`"superuser"`), &role); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if role != RoleUnknown {
		t.Fatalf("expected unknown role, got %s", role)
	}

	var status InvoiceStatus
	if err := json.Unmarshal([]byte(`"refunded"`), &status); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if status != InvoiceUnknown {
		t.Fatalf("expected unknown status, got %s", status)
	}

	out, _ := json.Marshal(struct {
		Role   Role          `json:"role"`
		Status InvoiceStatus `json:"status"`
	}{RoleManager, InvoicePartial})
	if string(out) != `{"role":"manager","status":"partial"}` {
		t.Fatalf("unexpected encoding: %s", out)
	}
}

func TestPriceRuleVersionTimeFallsBack(t *testing.T) {
	rule := PriceRule{CreatedAt: ParseTimestamp("2024-02-01T10:00:00Z")}
	if !rule.VersionTime().Equal(rule.CreatedAt.Time) {
		t.Fatalf("expected created_at fallback")
	}
	rule.EffectiveFrom = ParseTimestamp("2024-03-01")
	if !rule.VersionTime().Equal(rule.EffectiveFrom.Time) {
		t.Fatalf("expected effective_from to win")
	}
}
