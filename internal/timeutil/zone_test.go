package timeutil

import (
	"testing"
	"time"
)

func TestDayKeyPinnedZone(t *testing.T) {
	loc, err := LoadZone("+05:30")
	if err != nil {
		t.Fatalf("LoadZone failed: %v", err)
	}

	a, _ := time.Parse(time.RFC3339, "2024-03-10T23:50:00Z")
	b, _ := time.Parse(time.RFC3339, "2024-03-11T00:10:00Z")

	if got := DayKey(a, loc); got != "2024-03-11" {
		t.Fatalf("expected 2024-03-11, got %s", got)
	}
	if got := DayKey(b, loc); got != "2024-03-11" {
		t.Fatalf("expected 2024-03-11, got %s", got)
	}
	if !SameDay(a, b, loc) {
		t.Fatalf("expected same local day under UTC+5:30")
	}
	if SameDay(a, b, time.UTC) {
		t.Fatalf("expected different days under UTC")
	}
}

func TestDaysBetween(t *testing.T) {
	loc := time.FixedZone("IST", 5*60*60+30*60)
	now := time.Date(2024, 3, 11, 1, 0, 0, 0, loc)

	cases := []struct {
		at   time.Time
		want int
	}{
		{time.Date(2024, 3, 11, 23, 0, 0, 0, loc), 0},
		{time.Date(2024, 3, 10, 23, 59, 0, 0, loc), 1},
		{time.Date(2024, 3, 4, 0, 0, 0, 0, loc), 7},
		{time.Date(2024, 3, 12, 0, 0, 0, 0, loc), -1},
	}
	for _, tc := range cases {
		if got := DaysBetween(tc.at, now, loc); got != tc.want {
			t.Fatalf("DaysBetween(%v) = %d, want %d", tc.at, got, tc.want)
		}
	}
}

func TestLoadZoneFallbacks(t *testing.T) {
	loc, err := LoadZone("")
	if err != nil || loc != IST {
		t.Fatalf("expected IST for empty zone name")
	}
	loc, err = LoadZone("-08:00")
	if err != nil {
		t.Fatalf("LoadZone failed: %v", err)
	}
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	if offset != -8*60*60 {
		t.Fatalf("expected -8h offset, got %d", offset)
	}
	if _, err := LoadZone("Not/AZone"); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
}
