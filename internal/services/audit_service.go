package services

import (
	"context"
	"sort"
	"strings"

	"water-admin/internal/models"
	"water-admin/internal/reporting"
)

type AuditFilter struct {
	Period     reporting.Period
	Action     string
	EntityType string
	Role       models.Role
	UserID     models.ID
}

// AuditService reads the append-only audit log.
type AuditService struct {
	Backend Backend
	Clock   Clock
}

func NewAuditService(b Backend, clock Clock) *AuditService {
	return &AuditService{Backend: b, Clock: clock}
}

// List returns matching entries, newest first.
func (s *AuditService) List(ctx context.Context, token string, filter AuditFilter) ([]models.AuditLogEntry, error) {
	now, loc := s.Clock.now(), s.Clock.loc()

	query := periodQuery(filter.Period, now, loc)
	if filter.Action != "" {
		query.Set("action", filter.Action)
	}
	if filter.EntityType != "" {
		query.Set("entity_type", filter.EntityType)
	}
	entries, err := s.Backend.ListAuditLogs(ctx, token, query)
	if err != nil {
		return nil, err
	}

	entries = reporting.FilterByPeriod(entries, func(e models.AuditLogEntry) models.Timestamp { return e.Timestamp }, filter.Period, now, loc)
	out := entries[:0]
	for _, e := range entries {
		if filter.Action != "" && !strings.EqualFold(e.Action, filter.Action) {
			continue
		}
		if filter.EntityType != "" && !strings.EqualFold(e.Entity.Type, filter.EntityType) {
			continue
		}
		if filter.Role != models.RoleUnknown && e.User.Role != filter.Role {
			continue
		}
		if filter.UserID != "" && e.User.ID != filter.UserID {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp.Time)
	})
	return out, nil
}
