package handlers

import (
	"context"
	"net/http"

	"water-admin/internal/auth"
	"water-admin/internal/models"
	"water-admin/internal/services"
	"water-admin/internal/viewstate"
	"water-admin/pkg/utils"
)

type InvoiceHandler struct {
	Service *services.InvoiceService
	views   *viewstate.Registry[*services.InvoiceDashboard]
}

func NewInvoiceHandler(s *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{Service: s, views: viewstate.NewRegistry[*services.InvoiceDashboard]()}
}

func (h *InvoiceHandler) Views() []Forgetter {
	return []Forgetter{h.views}
}

// Dashboard lists invoices with their summary. Client users only ever see
// their own invoices.
func (h *InvoiceHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	filter := services.InvoiceFilter{
		Period:   period,
		Status:   models.ParseInvoiceStatus(q.Get("status")),
		ClientID: models.ID(q.Get("client_id")),
		Search:   q.Get("search"),
	}
	if session.Role == models.RoleClient {
		if session.ClientID == "" {
			utils.Error(w, http.StatusForbidden, "Forbidden: no client linked to this account")
			return
		}
		filter.ClientID = session.ClientID
	}

	serveView(w, r, h.views, "invoice_dashboard", func(ctx context.Context, token string) (*services.InvoiceDashboard, error) {
		return h.Service.Dashboard(ctx, token, filter)
	})
}

func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}

	invoice, err := h.Service.Invoice(r.Context(), session.Token, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !canSee(session, invoice.ClientID) {
		writeError(w, r, services.ErrNotFound)
		return
	}
	utils.JSON(w, http.StatusOK, invoice)
}

type paymentRequest struct {
	Amount     models.Number `json:"amount"`
	Method     string        `json:"payment_method"`
	CashAmount models.Number `json:"cash_amount"`
	UPIAmount  models.Number `json:"upi_amount"`
	Reference  string        `json:"reference"`
	Notes      string        `json:"notes"`
}

func (h *InvoiceHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}
	var req paymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	invoice, err := h.Service.RecordPayment(r.Context(), session.Token, id, services.PaymentInput{
		Amount:     req.Amount.Decimal,
		Method:     req.Method,
		CashAmount: req.CashAmount.Decimal,
		UPIAmount:  req.UPIAmount.Decimal,
		Reference:  req.Reference,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Confirm)
}

func (h *InvoiceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Cancel)
}

func (h *InvoiceHandler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, string, models.ID) (*services.InvoiceRow, error)) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}
	invoice, err := apply(r.Context(), session.Token, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, invoice)
}

func canSee(session *auth.Session, clientID models.ID) bool {
	if session.Role != models.RoleClient {
		return true
	}
	return session.ClientID != "" && session.ClientID == clientID
}
