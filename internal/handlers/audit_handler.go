package handlers

import (
	"context"
	"net/http"

	"water-admin/internal/models"
	"water-admin/internal/services"
	"water-admin/internal/viewstate"
)

type AuditHandler struct {
	Service *services.AuditService
	views   *viewstate.Registry[[]models.AuditLogEntry]
}

func NewAuditHandler(s *services.AuditService) *AuditHandler {
	return &AuditHandler{Service: s, views: viewstate.NewRegistry[[]models.AuditLogEntry]()}
}

func (h *AuditHandler) Views() []Forgetter {
	return []Forgetter{h.views}
}

func (h *AuditHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	filter := services.AuditFilter{
		Period:     period,
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		Role:       models.ParseRole(q.Get("role")),
		UserID:     models.ID(q.Get("user_id")),
	}
	serveView(w, r, h.views, "audit_logs", func(ctx context.Context, token string) ([]models.AuditLogEntry, error) {
		return h.Service.List(ctx, token, filter)
	})
}
