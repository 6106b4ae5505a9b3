package main

//
//  @title           profitpulse API
//  @version         1.0
//  @description     Operational HTTP surface of the profitpulse analysis service.
//  @termsOfService  https://github.com/guttosm/profitpulse
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/profitpulse
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        analysis
//  @tag.description Max profit, max loss and zero return analyses
//
//  @tag.name        results
//  @tag.description Recorded analysis results
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	_ "github.com/guttosm/profitpulse/docs" // swagger docs
	"github.com/guttosm/profitpulse/internal/logger"
	"github.com/guttosm/profitpulse/internal/server"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("http server failed to start")
		}
	}()

	return srv
}

// startTCP starts the analysis listener on addr in a separate goroutine.
// Bind failures are fatal.
func startTCP(srv *server.Server, addr string) {
	go func() {
		logger.L().Info().Str("addr", addr).Msg("tcp server starting")
		if err := srv.ListenAndServe(addr); err != nil && !errors.Is(err, server.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("tcp server failed to start")
		}
	}()
}

// gracefulShutdown blocks until SIGINT or SIGTERM, then stops the HTTP and
// TCP servers in parallel and runs cleanup.
//
// Parameters:
//   - ctx (context.Context): Parent of the 10 second shutdown deadline.
//   - httpSrv (*http.Server): The ops HTTP server.
//   - tcp (*server.Server): The analysis listener.
//   - cleanup (func()): Cleanup callback to release resources (e.g., DB connections).
func gracefulShutdown(ctx context.Context, httpSrv *http.Server, tcp *server.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	logger.L().Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(shutdownCtx)
	g.Go(func() error { return httpSrv.Shutdown(gctx) })
	g.Go(func() error { return tcp.Shutdown(gctx) })
	if err := g.Wait(); err != nil {
		logger.L().Error().Err(err).Msg("forced shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point of the profitpulse application.
//
// Subcommands:
//   - serve: TCP analysis listener plus ops HTTP API.
//   - batch: analyze every closing-price file in a directory.
//   - send:  one-shot protocol client.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
