package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/maxviazov/directory-service/internal/config"
	"github.com/maxviazov/directory-service/internal/handler"
	"github.com/maxviazov/directory-service/internal/metrics"
	"github.com/maxviazov/directory-service/internal/service"
	"github.com/maxviazov/directory-service/migrations"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply pending migrations before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, appLogger, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if autoMigrate {
		if err := migrate(cfg); err != nil {
			return err
		}
		appLogger.Info().Str("driver", cfg.Storage.Driver).Msg("migrations applied")
	}

	store, err := openStorage(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer store.Close()

	m := metrics.New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	opts := service.ListOptions{MaxLimit: cfg.Pagination.MaxLimit, Strict: cfg.Pagination.Strict, Observer: m}
	companySvc := service.NewCompanyService(store.companies, opts, appLogger)
	contactSvc := service.NewContactService(store.contacts, store.companies, store.tx, opts, appLogger)

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	handler.Register(r, store.checks, companySvc, contactSvc, m)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.App.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info().Str("addr", srv.Addr).Str("version", cfg.App.Version).Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	appLogger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func migrate(cfg *config.Config) error {
	db, err := openSQL(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return migrations.Up(db, cfg.Storage.Driver)
}
