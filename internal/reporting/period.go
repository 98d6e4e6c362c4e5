package reporting

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"water-admin/internal/models"
	"water-admin/internal/timeutil"
)

var ErrInvalidPeriod = errors.New("invalid period")

// PeriodKind selects a client-side date bucket.
type PeriodKind string

const (
	PeriodAll       PeriodKind = "all"
	PeriodToday     PeriodKind = "today"
	PeriodLast7Days PeriodKind = "last7days"
	PeriodThisMonth PeriodKind = "month"
	PeriodThisYear  PeriodKind = "year"
	PeriodRange     PeriodKind = "range"
)

// Period is a bucket selection. Start and End are YYYY-MM-DD day keys and
// only apply to PeriodRange; an empty bound is open.
type Period struct {
	Kind  PeriodKind `json:"kind"`
	Start string     `json:"start,omitempty"`
	End   string     `json:"end,omitempty"`
}

// ParsePeriod validates query input. A start or end without a kind means range.
func ParsePeriod(kind, start, end string) (Period, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)

	if kind == "" {
		if start != "" || end != "" {
			kind = string(PeriodRange)
		} else {
			kind = string(PeriodAll)
		}
	}

	p := Period{Kind: PeriodKind(kind)}
	switch p.Kind {
	case PeriodAll, PeriodToday, PeriodLast7Days, PeriodThisMonth, PeriodThisYear:
		return p, nil
	case PeriodRange:
	default:
		return Period{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidPeriod, kind)
	}

	for _, bound := range []string{start, end} {
		if bound == "" {
			continue
		}
		if _, err := time.Parse(timeutil.DateLayout, bound); err != nil {
			return Period{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidPeriod, bound)
		}
	}
	if start != "" && end != "" && start > end {
		return Period{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidPeriod, start, end)
	}
	p.Start, p.End = start, end
	return p, nil
}

// ContainsDay reports whether the calendar day key falls in the period,
// evaluated against now in loc.
func (p Period) ContainsDay(day string, now time.Time, loc *time.Location) bool {
	if day == "" {
		return p.Kind == PeriodAll || p.Kind == ""
	}
	today := timeutil.DayKey(now, loc)

	switch p.Kind {
	case PeriodAll, "":
		return true
	case PeriodToday:
		return day == today
	case PeriodLast7Days:
		d, err := timeutil.ParseDay(day, loc)
		if err != nil {
			return false
		}
		diff := timeutil.DaysBetween(d, now, loc)
		return diff >= 0 && diff <= 7
	case PeriodThisMonth:
		return strings.HasPrefix(day, today[:7])
	case PeriodThisYear:
		return strings.HasPrefix(day, today[:4])
	case PeriodRange:
		if p.Start != "" && day < p.Start {
			return false
		}
		if p.End != "" && day > p.End {
			return false
		}
		return true
	}
	return false
}

// Contains classifies an instant by its local calendar day.
func (p Period) Contains(t time.Time, now time.Time, loc *time.Location) bool {
	return p.ContainsDay(timeutil.DayKey(t, loc), now, loc)
}

// ContainsTimestamp classifies a backend timestamp; unset timestamps only
// match PeriodAll.
func (p Period) ContainsTimestamp(ts models.Timestamp, now time.Time, loc *time.Location) bool {
	if !ts.IsSet() {
		return p.ContainsDay("", now, loc)
	}
	return p.ContainsDay(ts.DayKey(loc), now, loc)
}

// FilterByPeriod keeps the items whose timestamp falls in p, preserving order.
func FilterByPeriod[T any](items []T, at func(T) models.Timestamp, p Period, now time.Time, loc *time.Location) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if p.ContainsTimestamp(at(item), now, loc) {
			out = append(out, item)
		}
	}
	return out
}

// Bounds returns the inclusive day keys that cover the period at now, for
// narrowing backend queries. Empty strings mean unbounded.
func (p Period) Bounds(now time.Time, loc *time.Location) (start, end string) {
	today := timeutil.StartOfDay(now, loc)
	switch p.Kind {
	case PeriodToday:
		key := timeutil.DayKey(today, loc)
		return key, key
	case PeriodLast7Days:
		return timeutil.DayKey(today.AddDate(0, 0, -7), loc), timeutil.DayKey(today, loc)
	case PeriodThisMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		return timeutil.DayKey(first, loc), timeutil.DayKey(first.AddDate(0, 1, -1), loc)
	case PeriodThisYear:
		return fmt.Sprintf("%04d-01-01", today.Year()), fmt.Sprintf("%04d-12-31", today.Year())
	case PeriodRange:
		return p.Start, p.End
	}
	return "", ""
}
