// Package app wires configuration, storage, the lookup pipeline and the
// HTTP transport into a runnable server process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/miyabiro/kotoba-backend/internal/adapter/postgres"
	"github.com/miyabiro/kotoba-backend/internal/adapter/postgres/term"
	"github.com/miyabiro/kotoba-backend/internal/adapter/tokenizer"
	"github.com/miyabiro/kotoba-backend/internal/config"
	"github.com/miyabiro/kotoba-backend/internal/service/lookup"
	"github.com/miyabiro/kotoba-backend/internal/transport/middleware"
	"github.com/miyabiro/kotoba-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// PostgreSQL, builds the lookup pipeline and serves HTTP until the context
// is cancelled or a termination signal arrives.
func Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	tok, err := tokenizer.New()
	if err != nil {
		return fmt.Errorf("init tokenizer: %w", err)
	}

	txm := postgres.NewTxManager(pool)
	terms := term.New(pool, txm)

	lookupSvc := lookup.NewService(logger, terms, tok)

	lookupHandler := rest.NewLookupHandler(lookupSvc, logger, cfg.Lookup.MatchType(), cfg.Lookup.DictionaryConfig())
	healthHandler := rest.NewHealthHandler(pool, BuildVersion())

	handler := middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	)(rest.NewRouter(lookupHandler, healthHandler))

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
