package handlers

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"water-admin/internal/models"
	"water-admin/internal/reporting"
	"water-admin/internal/services"
	"water-admin/internal/viewstate"
)

type ReportHandler struct {
	Service *services.ReportService
	views   *viewstate.Registry[*services.DeliveryReport]
	trips   *viewstate.Registry[*services.DriverDeliveries]
}

func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{
		Service: s,
		views:   viewstate.NewRegistry[*services.DeliveryReport](),
		trips:   viewstate.NewRegistry[*services.DriverDeliveries](),
	}
}

// Views exposes the per-session state so logout can clear it.
func (h *ReportHandler) Views() []Forgetter {
	return []Forgetter{h.views, h.trips}
}

func (h *ReportHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	containerID := models.ID(r.URL.Query().Get("container_id"))
	serveView(w, r, h.views, "deliveries", func(ctx context.Context, token string) (*services.DeliveryReport, error) {
		return h.Service.Deliveries(ctx, token, period, containerID)
	})
}

func (h *ReportHandler) DeliveriesCSV(w http.ResponseWriter, r *http.Request) {
	report, ok := h.loadReport(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.Service.WriteDeliveriesCSV(&buf, report); err != nil {
		writeError(w, r, err)
		return
	}
	attachment(w, "text/csv; charset=utf-8", exportName(report.Period, h.Service.Clock.Today(), "csv"))
	w.Write(buf.Bytes())
}

func (h *ReportHandler) DeliveriesPDF(w http.ResponseWriter, r *http.Request) {
	report, ok := h.loadReport(w, r)
	if !ok {
		return
	}
	pdf, err := h.Service.DeliveriesPDF(report)
	if err != nil {
		writeError(w, r, err)
		return
	}
	attachment(w, "application/pdf", exportName(report.Period, h.Service.Clock.Today(), "pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Write(pdf)
}

// loadReport fetches without view state; exports never fall back to stale data.
func (h *ReportHandler) loadReport(w http.ResponseWriter, r *http.Request) (*services.DeliveryReport, bool) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return nil, false
	}
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	report, err := h.Service.Deliveries(r.Context(), session.Token, period, models.ID(r.URL.Query().Get("container_id")))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return report, true
}

func (h *ReportHandler) DriverTrips(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveView(w, r, h.trips, "driver_trips", func(ctx context.Context, token string) (*services.DriverDeliveries, error) {
		return h.Service.DriverTrips(ctx, token, period)
	})
}

func exportName(p reporting.Period, today, ext string) string {
	name := "delivery-report-" + string(p.Kind)
	if p.Kind == reporting.PeriodRange {
		name = "delivery-report-" + p.Start + "_" + p.End
	}
	return name + "-" + today + "." + ext
}
