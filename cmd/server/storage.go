package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/maxviazov/directory-service/internal/config"
	"github.com/maxviazov/directory-service/internal/handler"
	"github.com/maxviazov/directory-service/internal/model"
	"github.com/maxviazov/directory-service/internal/repository"
	"github.com/maxviazov/directory-service/internal/repository/cache"
	"github.com/maxviazov/directory-service/internal/repository/postgres"
	"github.com/maxviazov/directory-service/internal/repository/sqlite"
)

// storage bundles the repositories for the configured driver.
type storage struct {
	companies repository.CompanyRepository
	contacts  repository.ContactRepository
	tx        repository.TxManager
	checks    []handler.Check
	closers   []func()
}

func (s *storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	s := &storage{}
	switch cfg.Storage.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = db.Close() })
		s.companies = sqlite.NewCompanyRepository(db)
		s.contacts = sqlite.NewContactRepository(db)
		s.tx = sqlite.NewTxManager(db)
		s.checks = append(s.checks, handler.Check{Name: "database", Pinger: sqlite.NewPinger(db)})
		log.Info().Str("path", cfg.Storage.SQLitePath).Msg("using SQLite storage")
	default:
		pg, err := repository.New(ctx, cfg, &log)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pg.Close)
		s.companies = postgres.NewCompanyRepository(pg.Pool())
		s.contacts = postgres.NewContactRepository(pg.Pool())
		s.tx = postgres.NewTxManager(pg.Pool())
		s.checks = append(s.checks, handler.Check{Name: "database", Pinger: postgres.NewPinger(pg.Pool())})
	}

	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.checks = append(s.checks, handler.Check{Name: "redis", Pinger: cache.NewPinger(client)})
		ttl := time.Duration(cfg.Redis.CountTTL) * time.Second
		s.companies = cache.WrapCompanies(s.companies, cache.NewCountCache[model.Company](s.companies, client, "companies", ttl, log))
		s.contacts = cache.WrapContacts(s.contacts, cache.NewCountCache[model.Contact](s.contacts, client, "contacts", ttl, log))
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", ttl).Msg("count cache enabled")
	}
	return s, nil
}

// openSQL opens a database/sql handle for migrations.
func openSQL(cfg *config.Config) (*sql.DB, error) {
	if cfg.Storage.Driver == "sqlite" {
		return sqlite.Open(cfg.Storage.SQLitePath)
	}
	db, err := sql.Open("pgx", repository.DSN(cfg.Postgres))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
