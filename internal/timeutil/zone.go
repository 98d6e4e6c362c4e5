package timeutil

import (
	"sync"
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30)
var IST *time.Location

var (
	mu   sync.RWMutex
	zone *time.Location
)

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if Asia/Kolkata not available
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
	zone = IST
}

// LoadZone resolves a zone name. An empty name yields IST. Fixed offsets like
// "+05:30" or "-08:00" are accepted for hosts without a tz database.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return IST, nil
	}
	if loc, ok := parseOffset(name); ok {
		return loc, nil
	}
	return time.LoadLocation(name)
}

// SetLocation changes the process-wide business time zone.
func SetLocation(loc *time.Location) {
	if loc == nil {
		return
	}
	mu.Lock()
	zone = loc
	mu.Unlock()
}

// Location returns the configured business time zone (IST unless changed).
func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return zone
}

// Now returns the current time in the business zone
func Now() time.Time {
	return time.Now().In(Location())
}

// DayKey returns the local calendar day of t in loc as YYYY-MM-DD.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayKey(a, loc) == DayKey(b, loc)
}

// DaysBetween returns the number of calendar days from the local day of a to
// the local day of b. It is negative when b is before a.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	la, lb := a.In(loc), b.In(loc)
	da := time.Date(la.Year(), la.Month(), la.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(lb.Year(), lb.Month(), lb.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// ParseDay parses a YYYY-MM-DD key as midnight in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, loc)
}

// StartOfDay returns the start of day (00:00:00) in loc for the given time
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the end of day (23:59:59.999999999) in loc for the given time
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 23, 59, 59, 999999999, loc)
}

func parseOffset(name string) (*time.Location, bool) {
	if len(name) != 6 || (name[0] != '+' && name[0] != '-') || name[3] != ':' {
		return nil, false
	}
	t, err := time.Parse("-07:00", name)
	if err != nil {
		return nil, false
	}
	_, offset := t.Zone()
	return time.FixedZone("UTC"+name, offset), true
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	MonthLayout    = "2006-01"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)
