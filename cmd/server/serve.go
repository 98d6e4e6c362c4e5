package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"water-admin/internal/auth"
	"water-admin/internal/handlers"
	"water-admin/internal/health"
	apphttp "water-admin/internal/http"
	"water-admin/internal/logger"
	"water-admin/internal/middleware"
	"water-admin/internal/services"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 0, "Override server.port")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	log := logger.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	responseCache := openCache(ctx, cfg)
	client, err := newBackend(cfg, responseCache)
	if err != nil {
		return err
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret)
	if !jwtManager.Verifies() {
		log.Warn().Msg("jwt.secret not set, bearer tokens are decoded without signature verification")
	}

	clock := services.DefaultClock()
	reportHandler := handlers.NewReportHandler(services.NewReportService(client, clock))
	invoiceHandler := handlers.NewInvoiceHandler(services.NewInvoiceService(client, clock))
	priceHandler := handlers.NewPriceHandler(services.NewPriceService(client))
	billingHandler := handlers.NewBillingHandler(services.NewBillingService(client, clock))
	auditHandler := handlers.NewAuditHandler(services.NewAuditService(client, clock))

	var views []handlers.Forgetter
	views = append(views, reportHandler.Views()...)
	views = append(views, invoiceHandler.Views()...)
	views = append(views, priceHandler.Views()...)
	views = append(views, billingHandler.Views()...)
	views = append(views, auditHandler.Views()...)

	var cachePinger health.Pinger
	if responseCache != nil {
		cachePinger = responseCache
	}

	router := apphttp.NewRouter(apphttp.Handlers{
		Session: handlers.NewSessionHandler(views...),
		Report:  reportHandler,
		Invoice: invoiceHandler,
		Price:   priceHandler,
		Billing: billingHandler,
		Audit:   auditHandler,
		Health:  handlers.NewHealthHandler(health.NewHealthChecker(client, cachePinger)),
	}, middleware.NewAuthMiddleware(jwtManager), middleware.NewCORS(cfg))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// PDF exports of long ranges take a while
		WriteTimeout: cfg.BackendTimeout() + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("backend", cfg.Backend.BaseURL).
			Str("timezone", cfg.Timezone).
			Str("version", version).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
