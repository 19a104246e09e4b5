// Package app owns the application lifecycle: it wires the stores, caches,
// and adapters, builds the services and the HTTP server, and runs them until
// shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Skysparko/trust-ledger-backend/internal/config"
	"github.com/Skysparko/trust-ledger-backend/internal/server"
	"github.com/Skysparko/trust-ledger-backend/internal/server/handler"
	"github.com/Skysparko/trust-ledger-backend/internal/server/ws"
	"github.com/Skysparko/trust-ledger-backend/internal/service"
)

// shutdownTimeout bounds how long in-flight requests get to finish once the
// process is asked to stop.
const shutdownTimeout = 15 * time.Second

// App is the root application object.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, starts the HTTP server and the event hub, and
// blocks until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	confirmations := service.NewConfirmationService(
		deps.InvestmentStore,
		deps.TransactionStore,
		deps.OpportunityStore,
		deps.AssetStore,
		deps.UserStore,
		deps.ProfileStore,
		deps.LockManager,
		deps.EventBus,
		deps.Minter,
		deps.Mailer,
		a.logger,
	)
	investments := service.NewInvestmentService(
		deps.InvestmentStore,
		deps.TransactionStore,
		deps.OpportunityStore,
		deps.ProfileStore,
		deps.RateLimiter,
		deps.EventBus,
		a.cfg.Server.CreateRateLimit,
		a.logger,
	)
	opportunities := service.NewOpportunityService(deps.OpportunityStore, a.logger)
	stats := service.NewStatsService(deps.StatsStore)

	handlers := server.Handlers{
		Health:        handler.NewHealthHandler(),
		Investments:   handler.NewInvestmentHandler(investments, confirmations),
		Opportunities: handler.NewOpportunityHandler(opportunities, investments),
		Stats:         handler.NewStatsHandler(stats),
	}
	if deps.BlobWriter != nil {
		documents := service.NewDocumentService(
			deps.DocumentStore,
			deps.OpportunityStore,
			deps.BlobWriter,
			deps.BlobReader,
			a.logger,
		)
		handlers.Documents = handler.NewDocumentHandler(documents)
	}

	hub := ws.NewHub(deps.EventBus, service.EventChannel, a.logger)

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, hub, a.logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close tears down all resources in reverse registration order. Safe to call
// more than once.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
