// Package app assembles the application: store, repositories, event bus,
// services, and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jobhive/jobhive/internal/config"
	"github.com/jobhive/jobhive/internal/data"
	"github.com/jobhive/jobhive/internal/data/repository"
	"github.com/jobhive/jobhive/internal/email"
	"github.com/jobhive/jobhive/internal/event"
	"github.com/jobhive/jobhive/internal/handler"
	"github.com/jobhive/jobhive/internal/logging/logger"
	"github.com/jobhive/jobhive/internal/middleware"
	"github.com/jobhive/jobhive/internal/notification"
	"github.com/jobhive/jobhive/internal/payment"
	"github.com/jobhive/jobhive/internal/security/jwt"
	"github.com/jobhive/jobhive/internal/service"
	"github.com/jobhive/jobhive/internal/storage"
)

// App holds everything needed to serve requests and shut down cleanly.
type App struct {
	cfg    *config.Config
	logger *logger.Logger
	data   *data.Data
	bus    *event.Bus
	router *gin.Engine
}

// New wires the full application from configuration.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	d, err := data.New(ctx, cfg.Data, log)
	if err != nil {
		return nil, err
	}
	if cfg.Data.Migrate {
		if err := d.Migrate(ctx); err != nil {
			d.Close()
			return nil, err
		}
	}

	accounts := repository.NewAccountRepository(d, log)
	jobs := repository.NewJobRepository(d, log)
	applications := repository.NewApplicationRepository(d, log)
	prefs := repository.NewPreferenceRepository(d, log)

	bus := event.NewBus(256, log)

	sender, err := email.NewSender(cfg.Email)
	if err != nil {
		d.Close()
		return nil, err
	}
	notification.NewDispatcher(accounts, prefs, sender, log).Register(bus)

	backend, err := storage.New(cfg.Storage)
	if err != nil {
		d.Close()
		return nil, err
	}
	cvs := storage.NewCVStore(backend)

	tokens := jwt.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpire)

	jobSvc := service.NewJobService(jobs, bus, log)
	paymentSvc := service.NewPaymentService(
		payment.NewStripeProvider(cfg.Payment), jobs, bus, cfg.Payment.Currency, log)
	jobSvc.AttachPayments(paymentSvc)
	applicationSvc := service.NewApplicationService(applications, jobs, accounts, bus, log)
	profileSvc := service.NewProfileService(accounts, cvs, log)
	prefSvc := service.NewPreferenceService(prefs, log)
	accountSvc := service.NewAccountService(accounts, tokens, log)

	mw := middleware.New(tokens, log)
	router := buildRouter(cfg, mw,
		handler.NewAuthHandler(accountSvc, log),
		handler.NewJobHandler(jobSvc, log),
		handler.NewApplicationHandler(applicationSvc, log),
		handler.NewPaymentHandler(paymentSvc, log),
		handler.NewProfileHandler(profileSvc, log),
		handler.NewPreferenceHandler(prefSvc, log),
	)

	return &App{cfg: cfg, logger: log, data: d, bus: bus, router: router}, nil
}

// Run starts the event bus and the HTTP server, blocking until ctx is
// cancelled, then drains and shuts down.
func (a *App) Run(ctx context.Context) error {
	a.bus.Start(ctx, 4)

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      a.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error(context.Background(), "forced shutdown", "error", err)
	}
	if err := a.bus.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn(context.Background(), "event bus drained incompletely", "error", err)
	}
	return a.data.Close()
}

// Migrate applies the schema without starting the server.
func (a *App) Migrate(ctx context.Context) error {
	return a.data.Migrate(ctx)
}
