// Command server runs the GRC admin gateway: the onboarding wizard API and
// its metrics endpoint.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"grcadmin/internal/onboarding"
	"grcadmin/internal/onboarding/audit"
	"grcadmin/internal/onboarding/coverage"
	"grcadmin/internal/onboarding/metrics"
	"grcadmin/internal/onboarding/scope"
	"grcadmin/internal/onboarding/service"
	wizardstore "grcadmin/internal/onboarding/store/wizard"
	"grcadmin/internal/platform/config"
	"grcadmin/internal/platform/httpserver"
	"grcadmin/internal/platform/logger"
	"grcadmin/internal/platform/middleware"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	manifest, err := loadManifest(cfg)
	if err != nil {
		// The engine is useless without its requirement graph.
		log.Error("coverage manifest load failed", "error", err)
		os.Exit(1)
	}
	log.Info("coverage manifest loaded",
		"version", manifest.Version,
		"nodes", len(manifest.Nodes),
		"missions", len(manifest.Missions),
	)

	store, closeStore, err := buildStore(cfg)
	if err != nil {
		log.Error("store initialization failed", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	svc := onboarding.NewService(
		log,
		store,
		manifest,
		scope.NewAnswerDeriver(),
		audit.NewLogEmitter(log),
		metrics.New(),
		onboarding.Config{
			CoverageOnProgress: cfg.CoverageOnProgress,
			CoverageOnSave:     cfg.CoverageOnSave,
		},
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestMeta)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Route("/api", func(r chi.Router) {
		if cfg.AdminToken != "" {
			r.Use(middleware.RequireAdminToken(cfg.AdminToken, log))
		}
		onboarding.NewHandler(svc, log).Register(r)
	})

	apiSrv := httpserver.New(cfg.Addr, router)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := httpserver.New(cfg.MetricsAddr, metricsMux)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting admin gateway", "addr", cfg.Addr)
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting metrics listener", "addr", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
		return apiSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func loadManifest(cfg config.Server) (*coverage.Manifest, error) {
	if cfg.ManifestPath != "" {
		return coverage.LoadFile(cfg.ManifestPath)
	}
	return coverage.Load()
}

func buildStore(cfg config.Server) (service.WizardStore, func(), error) {
	if cfg.PostgresURL == "" {
		return wizardstore.NewInMemory(), func() {}, nil
	}
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return wizardstore.NewPostgres(db), func() { _ = db.Close() }, nil
}
