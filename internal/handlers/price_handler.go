package handlers

import (
	"context"
	"net/http"

	"water-admin/internal/models"
	"water-admin/internal/reporting"
	"water-admin/internal/services"
	"water-admin/internal/viewstate"
	"water-admin/pkg/utils"
)

type PriceHandler struct {
	Service *services.PriceService
	views   *viewstate.Registry[[]reporting.PriceHistory]
}

func NewPriceHandler(s *services.PriceService) *PriceHandler {
	return &PriceHandler{Service: s, views: viewstate.NewRegistry[[]reporting.PriceHistory]()}
}

func (h *PriceHandler) Views() []Forgetter {
	return []Forgetter{h.views}
}

// ListPrices returns one history per client and container, active rule first.
func (h *PriceHandler) ListPrices(w http.ResponseWriter, r *http.Request) {
	clientID := models.ID(r.URL.Query().Get("client_id"))
	serveView(w, r, h.views, "prices", func(ctx context.Context, token string) ([]reporting.PriceHistory, error) {
		return h.Service.Histories(ctx, token, clientID)
	})
}

func (h *PriceHandler) CreatePrice(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var req models.CreatePriceRuleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	histories, err := h.Service.Create(r.Context(), session.Token, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, histories)
}
