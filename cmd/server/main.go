package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vouch/internal/assets"
	"vouch/internal/contentstore"
	credhandler "vouch/internal/credential/handler"
	credmetrics "vouch/internal/credential/metrics"
	credservice "vouch/internal/credential/service"
	credstore "vouch/internal/credential/store"
	issuerstore "vouch/internal/issuer/store"
	"vouch/internal/ledger"
	"vouch/internal/notify"
	"vouch/internal/platform/config"
	"vouch/internal/platform/events"
	"vouch/internal/platform/httpserver"
	"vouch/internal/platform/logger"
	"vouch/internal/platform/middleware"
	platformredis "vouch/internal/platform/redis"
	"vouch/internal/render"
	tmplhandler "vouch/internal/template/handler"
	tmplservice "vouch/internal/template/service"
	tmplstore "vouch/internal/template/store"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New()

	closers, router, err := buildServer(cfg, log)
	if err != nil {
		log.Error("wire dependencies", "error", err)
		os.Exit(1)
	}

	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		log.Info("starting vouch", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	for _, closeFn := range closers {
		closeFn(ctx)
	}
}

// buildServer assembles the store, ledger, render, and transport layers from
// configuration. It returns cleanup functions in shutdown order.
func buildServer(cfg config.Config, log *slog.Logger) ([]func(context.Context), chi.Router, error) {
	var closers []func(context.Context)

	var (
		credentials credservice.CredentialStore
		templates   tmplservice.TemplateStore
		issuers     credservice.IssuerStore
	)
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(); err != nil {
			return nil, nil, err
		}
		closers = append(closers, func(context.Context) { _ = db.Close() })
		credentials = credstore.NewPostgres(db)
		templates = tmplstore.NewPostgres(db)
		issuers = issuerstore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		credentials = credstore.NewInMemory()
		templates = tmplstore.NewInMemory()
		issuers = issuerstore.NewInMemory()
		log.Warn("no postgres DSN configured, using in-memory stores")
	}

	var ledgerClient ledger.Client
	if cfg.Ledger.ConnectionProfile != "" {
		fabric, err := ledger.NewFabric(cfg.Ledger)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func(context.Context) { fabric.Close() })
		ledgerClient = fabric
		log.Info("using fabric ledger", "channel", cfg.Ledger.Channel, "chaincode", cfg.Ledger.Chaincode)
	} else {
		ledgerClient = ledger.NewInMemory()
		log.Warn("no ledger connection profile configured, using in-memory ledger")
	}
	ledgerClient = ledger.NewSerializedClient(ledgerClient, cfg.Ledger.SignerWait)

	var invalidator credservice.ValidityInvalidator
	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if rdb != nil {
		closers = append(closers, func(context.Context) { _ = rdb.Close() })
		cache := ledger.NewValidityCache(ledgerClient, rdb.Client, cfg.Redis.ValidityTTL, log)
		ledgerClient = cache
		invalidator = cache
	}

	publisher, err := events.NewPublisher(cfg.Kafka, log)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, publisher.Close)

	var notifier notify.Notifier = notify.NoOp{}
	if cfg.Email.Host != "" {
		notifier = notify.NewMailer(cfg.Email)
	}

	renderer := render.NewRenderer(render.NewChromeEngine(cfg.Render.Timeout))
	resolver := assets.NewResolver(cfg.Render.AssetRoots)

	credSvc := credservice.New(credentials, templates, issuers, ledgerClient, renderer, resolver,
		credservice.WithLogger(log),
		credservice.WithMetrics(credmetrics.New()),
		credservice.WithContentStore(contentstore.NewIPFS(cfg.ContentStore)),
		credservice.WithNotifier(notifier, cfg.Server.PublicBaseURL),
		credservice.WithEventPublisher(publisher),
		credservice.WithValidityInvalidator(invalidator),
	)
	tmplSvc := tmplservice.New(templates, log)

	requireIssuer := middleware.RequireIssuer(cfg.Server.JWTSigningKey, log)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	credhandler.New(credSvc, requireIssuer, log).Register(r)
	tmplhandler.New(tmplSvc, requireIssuer, log).Register(r)

	return closers, r, nil
}
