// Package app wires configuration, storage, services, and the HTTP
// server into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/brooksyott/licensing-server/internal/authkeys"
	"github.com/brooksyott/licensing-server/internal/config"
	"github.com/brooksyott/licensing-server/internal/customers"
	"github.com/brooksyott/licensing-server/internal/database"
	"github.com/brooksyott/licensing-server/internal/infrastructure"
	"github.com/brooksyott/licensing-server/internal/keys"
	"github.com/brooksyott/licensing-server/internal/licenses"
	"github.com/brooksyott/licensing-server/internal/skus"
)

// Application holds the wired components of the licensing server.
type Application struct {
	cfg    *config.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
	otel   *infrastructure.OTelProviders
	server *http.Server
}

// New builds the application: logger, telemetry, database pool,
// migrations, services, and the HTTP server.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}

	keySvc := keys.NewService(keys.NewPgStore(pool), keys.NewVault(cfg.Vault.Passphrase), logger)
	skuSvc := skus.NewService(skus.NewPgStore(pool), logger)
	customerSvc := customers.NewService(customers.NewPgStore(pool), logger)
	engine := licenses.NewEngine(keySvc, cfg.Token)
	licenseSvc := licenses.NewService(licenses.NewPgStore(pool), skuSvc, engine, logger)
	authSvc := authkeys.NewService(
		authkeys.NewPgStore(pool),
		authkeys.NewRoleCache(cfg.Security.RoleCacheSize),
		logger,
	)

	router := buildRouter(cfg, logger, providers, pool, handlers{
		keys:      keySvc,
		skus:      skuSvc,
		customers: customerSvc,
		licenses:  licenseSvc,
		authKeys:  authSvc,
	})

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		otel:   providers,
		server: server,
	}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// server fails, then shuts everything down gracefully.
func (a *Application) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	err := g.Wait()

	if shutdownErr := a.otel.Shutdown(context.Background()); shutdownErr != nil {
		a.logger.Error("telemetry shutdown failed", slog.Any("error", shutdownErr))
	}
	a.pool.Close()
	infrastructure.CloseLogFile()

	return err
}
