package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"water-admin/internal/models"
	"water-admin/internal/reporting"
	"water-admin/internal/timeutil"
)

// PriceService shows price rules as per client and container version
// histories.
type PriceService struct {
	Backend Backend
}

func NewPriceService(b Backend) *PriceService {
	return &PriceService{Backend: b}
}

// Histories rebuilds the resolver from a fresh fetch. clientID optionally
// narrows the result to one client.
func (s *PriceService) Histories(ctx context.Context, token string, clientID models.ID) ([]reporting.PriceHistory, error) {
	rules, err := s.Backend.ListPriceRules(ctx, token)
	if err != nil {
		return nil, err
	}
	histories := reporting.NewPriceResolver(rules).Histories()
	if clientID == "" {
		return histories, nil
	}
	out := histories[:0]
	for _, h := range histories {
		if h.ClientID == clientID {
			out = append(out, h)
		}
	}
	return out, nil
}

// Create adds a new price version then returns the refreshed histories.
func (s *PriceService) Create(ctx context.Context, token string, req models.CreatePriceRuleRequest) ([]reporting.PriceHistory, error) {
	req.EffectiveFrom = strings.TrimSpace(req.EffectiveFrom)
	switch {
	case req.ClientID == "":
		return nil, fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	case req.ContainerID == "":
		return nil, fmt.Errorf("%w: container_id is required", ErrInvalidInput)
	case req.Price.Sign() <= 0:
		return nil, fmt.Errorf("%w: price must be greater than zero", ErrInvalidInput)
	}
	if req.EffectiveFrom != "" {
		if _, err := time.Parse(timeutil.DateLayout, req.EffectiveFrom); err != nil {
			return nil, fmt.Errorf("%w: effective_from %q is not YYYY-MM-DD", ErrInvalidInput, req.EffectiveFrom)
		}
	}
	req.Price = models.NewNumber(req.Price.Round(2))

	if _, err := s.Backend.CreatePriceRule(ctx, token, req); err != nil {
		return nil, err
	}
	return s.Histories(ctx, token, req.ClientID)
}
