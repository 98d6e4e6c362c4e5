package health

import (
	"context"
	"errors"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	up   = pingFunc(func(context.Context) error { return nil })
	down = pingFunc(func(context.Context) error { return errors.New("connection refused") })
)

func TestCheckBasic(t *testing.T) {
	cases := []struct {
		name    string
		backend Pinger
		cache   Pinger
		want    string
	}{
		{"all up", up, up, "healthy"},
		{"no cache", up, nil, "healthy"},
		{"cache down", up, down, "degraded"},
		{"backend down", down, up, "unhealthy"},
	}
	for _, tc := range cases {
		got := NewHealthChecker(tc.backend, tc.cache).CheckBasic(context.Background())
		if got.Status != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got.Status)
		}
	}
}

func TestCheckBasicReportsError(t *testing.T) {
	got := NewHealthChecker(down, nil).CheckBasic(context.Background())
	if got.Backend.Error != "connection refused" || got.Cache.Status != "disabled" {
		t.Fatalf("unexpected status %+v", got)
	}
}
