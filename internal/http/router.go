package http

import (
	"net/http"

	"water-admin/internal/handlers"
	"water-admin/internal/middleware"
	"water-admin/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Session *handlers.SessionHandler
	Report  *handlers.ReportHandler
	Invoice *handlers.InvoiceHandler
	Price   *handlers.PriceHandler
	Billing *handlers.BillingHandler
	Audit   *handlers.AuditHandler
	Health  *handlers.HealthHandler
}

// NewRouter mounts the API. Metrics are recorded per matched route; CORS,
// request logging and panic recovery wrap the whole router so preflights and
// unmatched paths go through them too.
func NewRouter(h Handlers, authMiddleware *middleware.AuthMiddleware, cors func(http.Handler) http.Handler) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	anyRole := authMiddleware.Authenticate
	staff := authMiddleware.RequireRole(models.RoleAdmin, models.RoleManager)
	fieldStaff := authMiddleware.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleDriver)
	billingViewers := authMiddleware.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleClient)
	admin := authMiddleware.RequireAdmin

	api := r.PathPrefix("/api").Subrouter()

	// Session
	api.Handle("/session", anyRole(http.HandlerFunc(h.Session.GetSession))).Methods("GET")
	api.Handle("/session", anyRole(http.HandlerFunc(h.Session.EndSession))).Methods("DELETE")

	// Delivery reports
	api.Handle("/reports/deliveries", staff(http.HandlerFunc(h.Report.Deliveries))).Methods("GET")
	api.Handle("/reports/deliveries/csv", staff(http.HandlerFunc(h.Report.DeliveriesCSV))).Methods("GET")
	api.Handle("/reports/deliveries/pdf", staff(http.HandlerFunc(h.Report.DeliveriesPDF))).Methods("GET")
	api.Handle("/trips/deliveries", fieldStaff(http.HandlerFunc(h.Report.DriverTrips))).Methods("GET")

	// Invoices
	api.Handle("/invoices/dashboard", billingViewers(http.HandlerFunc(h.Invoice.Dashboard))).Methods("GET")
	api.Handle("/invoices/{id}", billingViewers(http.HandlerFunc(h.Invoice.GetInvoice))).Methods("GET")
	api.Handle("/invoices/{id}/payments", staff(http.HandlerFunc(h.Invoice.RecordPayment))).Methods("POST")
	api.Handle("/invoices/{id}/confirm", staff(http.HandlerFunc(h.Invoice.Confirm))).Methods("POST")
	api.Handle("/invoices/{id}/cancel", staff(http.HandlerFunc(h.Invoice.Cancel))).Methods("POST")

	// Prices
	api.Handle("/prices", staff(http.HandlerFunc(h.Price.ListPrices))).Methods("GET")
	api.Handle("/prices", admin(http.HandlerFunc(h.Price.CreatePrice))).Methods("POST")

	// Monthly billing
	api.Handle("/billing/monthly", staff(http.HandlerFunc(h.Billing.Monthly))).Methods("GET")
	api.Handle("/billing/monthly/csv", staff(http.HandlerFunc(h.Billing.MonthlyCSV))).Methods("GET")
	api.Handle("/billing/monthly/{client_id}", staff(http.HandlerFunc(h.Billing.Client))).Methods("GET")

	// Audit log
	api.Handle("/audit-logs", admin(http.HandlerFunc(h.Audit.ListLogs))).Methods("GET")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", h.Health.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", h.Health.ReadinessHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	var handler http.Handler = r
	if cors != nil {
		handler = cors(handler)
	}
	return middleware.RequestLogger(middleware.PanicRecovery(handler))
}
