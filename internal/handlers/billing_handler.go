package handlers

import (
	"bytes"
	"context"
	"net/http"

	"water-admin/internal/services"
	"water-admin/internal/viewstate"
	"water-admin/pkg/utils"
)

type BillingHandler struct {
	Service *services.BillingService
	views   *viewstate.Registry[*services.MonthlyBilling]
}

func NewBillingHandler(s *services.BillingService) *BillingHandler {
	return &BillingHandler{Service: s, views: viewstate.NewRegistry[*services.MonthlyBilling]()}
}

func (h *BillingHandler) Views() []Forgetter {
	return []Forgetter{h.views}
}

func (h *BillingHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	serveView(w, r, h.views, "monthly_billing", func(ctx context.Context, token string) (*services.MonthlyBilling, error) {
		return h.Service.Monthly(ctx, token, month)
	})
}

func (h *BillingHandler) MonthlyCSV(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	billing, err := h.Service.Monthly(r.Context(), session.Token, r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := h.Service.WriteCSV(&buf, billing); err != nil {
		writeError(w, r, err)
		return
	}
	attachment(w, "text/csv; charset=utf-8", "monthly-billing-"+billing.Month+".csv")
	w.Write(buf.Bytes())
}

// Client expands one client's row with daily details and pending invoices.
func (h *BillingHandler) Client(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	clientID, ok := pathID(r, "client_id")
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid client ID")
		return
	}
	row, err := h.Service.Client(r.Context(), session.Token, r.URL.Query().Get("month"), clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, row)
}
