package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/profitpulse/config"
	"github.com/guttosm/profitpulse/internal/api"
	"github.com/guttosm/profitpulse/internal/dispatch"
	"github.com/guttosm/profitpulse/internal/metrics"
	"github.com/guttosm/profitpulse/internal/server"
	"github.com/guttosm/profitpulse/internal/service"
)

// App bundles the wired components of a running instance.
type App struct {
	Router     *gin.Engine    // ops HTTP API
	TCP        *server.Server // analysis protocol listener (not yet listening)
	Dispatcher *dispatch.Dispatcher
	Metrics    *metrics.Metrics
}

// InitializeApp sets up all application dependencies from config.AppConfig
// and returns them with a cleanup function for graceful shutdown.
//
// Responsibilities:
//   - Opens the result store selected by RESULTS_BACKEND (running migrations
//     for Postgres).
//   - Builds the service and dispatcher layers.
//   - Creates the TCP server and the Gin router, both backed by the same
//     dispatcher.
//   - Registers health and readiness probes.
//
// Returns:
//   - *App: the wired components.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*App, func(), error) {
	cfg := config.AppConfig

	store, closeStore, err := openStore(context.Background(), cfg)
	if err != nil {
		return nil, nil, err
	}

	m := metrics.New()
	svc := service.NewAnalysisService(store, m)
	d := dispatch.New(svc)

	tcp := server.New(d, server.Options{MaxFrameBytes: cfg.Server.MaxFrameBytes, Metrics: m})

	router := api.NewRouter(api.NewHandler(d), m.Handler())
	api.NewHealthHandler(svc.Ready).Register(router)

	return &App{Router: router, TCP: tcp, Dispatcher: d, Metrics: m}, closeStore, nil
}
