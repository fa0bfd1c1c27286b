package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/appetiteclub/portal/internal/apiclient"
	"github.com/appetiteclub/portal/internal/audit"
	"github.com/appetiteclub/portal/internal/config"
	"github.com/appetiteclub/portal/internal/logger"
	"github.com/appetiteclub/portal/internal/mongo"
	"github.com/appetiteclub/portal/internal/notify"
	"github.com/appetiteclub/portal/internal/redisx"
	"github.com/appetiteclub/portal/internal/session"
	"github.com/appetiteclub/portal/pkg"
	"github.com/appetiteclub/portal/pkg/event"

	"github.com/appetiteclub/portal/services/portal/internal/portal"
)

const (
	appNamespace = "PORTAL"
	appName      = "portal"
	appVersion   = "0.1.0"
)

func main() {
	cfg, err := config.Load(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := cfg.GetString("log.level")
	logger := logger.New(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	var stops []func(context.Context) error

	storage, stopStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%s(%s) cannot open session storage: %v", appName, appVersion, err)
	}
	if stopStorage != nil {
		stops = append(stops, stopStorage)
	}

	api := apiclient.New(
		cfg.GetStringOrDef("api.url", "http://localhost:5000/api"),
		apiclient.WithTimeout(cfg.GetDurationOrDef("api.timeout", 15*time.Second)),
		apiclient.WithLogger(logger),
	)

	var hub *notify.Hub
	if cfg.GetBool("notify.websocket") {
		hub = notify.NewHub(logger)
	}

	var publisher event.Publisher
	if cfg.GetBool("nats.enabled") {
		natsURL := cfg.GetStringOrDef("nats.url", "nats://localhost:4222")

		pub, err := pkg.NewNATSPublisher(natsURL)
		if err != nil {
			log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
		}
		publisher = pub
		stops = append(stops, func(context.Context) error { return pub.Close() })

		if hub != nil {
			sub, err := pkg.NewNATSSubscriber(natsURL)
			if err != nil {
				log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
			}
			stops = append(stops, func(context.Context) error { return sub.Close() })

			if err := portal.NewRelay(sub, hub, logger).Start(ctx); err != nil {
				log.Fatalf("%s(%s) cannot start event relay: %v", appName, appVersion, err)
			}
		}
	}

	handler := portal.NewHandler(portal.Deps{
		API:       api,
		Storage:   storage,
		Hub:       hub,
		Audit:     audit.NewLogger(logger),
		Publisher: publisher,
	}, cfg, logger)

	if err := handler.Start(ctx); err != nil {
		log.Fatalf("%s(%s) cannot start handler: %v", appName, appVersion, err)
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.GetStringOrDef("web.port", "8090"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Infof("Starting %s(%s) on %s", appName, appVersion, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case <-ctx.Done():
	case err := <-errs:
		if err != nil {
			logger.Error("server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	for i := len(stops) - 1; i >= 0; i-- {
		if err := stops[i](shutdownCtx); err != nil {
			logger.Error("shutdown hook failed", "error", err)
		}
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}

// openStorage builds the durable session storage named by session.store.
func openStorage(ctx context.Context, cfg *config.Config, log logger.Logger) (session.Storage, func(context.Context) error, error) {
	switch kind := cfg.GetStringOrDef("session.store", "memory"); kind {
	case "memory":
		return session.NewMemoryStorage(), nil, nil

	case "file":
		return session.NewFileStorage(cfg.GetStringOrDef("session.file", "portal-sessions.json")), nil, nil

	case "mongo":
		repo := mongo.NewSessionRepo(cfg, log)
		if err := repo.Start(ctx); err != nil {
			return nil, nil, err
		}
		return repo, repo.Stop, nil

	case "redis":
		rdb := redisx.New(cfg.GetStringOrDef("redis.addr", "localhost:6379"), cfg.GetIntOrDef("redis.db", 0))
		if err := redisx.Ping(ctx, rdb); err != nil {
			return nil, nil, err
		}
		ttl := cfg.GetDurationOrDef("session.ttl", redisx.TTLSession)
		closeRedis := func(context.Context) error { return rdb.Close() }
		return redisx.NewSessionStorage(rdb, ttl), closeRedis, nil

	default:
		return nil, nil, fmt.Errorf("unknown session store %q", kind)
	}
}
