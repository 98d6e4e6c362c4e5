package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"water-admin/internal/timeutil"

	"github.com/shopspring/decimal"
)

// Number is a decimal amount or quantity decoded leniently from the backend.
// Numbers, numeric strings, null and garbage are all accepted; anything that
// does not parse becomes zero.
type Number struct {
	decimal.Decimal
}

func NewNumber(d decimal.Decimal) Number {
	return Number{Decimal: d}
}

func NumberFromInt(v int64) Number {
	return Number{Decimal: decimal.NewFromInt(v)}
}

func NumberFromFloat(v float64) Number {
	return Number{Decimal: decimal.NewFromFloat(v)}
}

// ParseNumber parses s, returning zero for anything that is not numeric.
func ParseNumber(s string) Number {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Number{}
	}
	return Number{Decimal: d}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = ParseNumber(unquote(data))
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

// Count is a lenient integer counter.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	*c = Count(ParseNumber(unquote(data)).IntPart())
	return nil
}

// ID is an opaque backend identifier. The backend sends both numbers and
// strings, both are kept as their literal text.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	*id = ID(unquote(data))
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Timestamp is a backend date or date-time. Date-only values keep their
// calendar day regardless of the display zone.
type Timestamp struct {
	time.Time
	DateOnly bool
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp parses the formats the backend is known to emit. Unparseable
// input yields the zero Timestamp.
func ParseTimestamp(value string) Timestamp {
	value = strings.TrimSpace(value)
	if value == "" {
		return Timestamp{}
	}
	if t, err := time.Parse(timeutil.DateLayout, value); err == nil {
		return Timestamp{Time: t, DateOnly: true}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Timestamp{Time: t}
		}
	}
	return Timestamp{}
}

func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = ParseTimestamp(unquote(data))
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	if t.DateOnly {
		return json.Marshal(t.Time.Format(timeutil.DateLayout))
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// IsSet reports whether the backend supplied a usable value.
func (t Timestamp) IsSet() bool {
	return !t.Time.IsZero()
}

// DayKey returns the local calendar day (YYYY-MM-DD) in loc.
func (t Timestamp) DayKey(loc *time.Location) string {
	if t.DateOnly {
		return t.Time.Format(timeutil.DateLayout)
	}
	return timeutil.DayKey(t.Time, loc)
}

func unquote(data []byte) string {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return ""
	}
	if len(data) >= 2 && data[0] == '"' {
		if s, err := strconv.Unquote(string(data)); err == nil {
			return strings.TrimSpace(s)
		}
		return ""
	}
	return string(data)
}
