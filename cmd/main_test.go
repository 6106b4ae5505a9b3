package main

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/guttosm/profitpulse/internal/batch"
	"github.com/guttosm/profitpulse/internal/dispatch"
	"github.com/guttosm/profitpulse/internal/domain/dto"
	"github.com/guttosm/profitpulse/internal/metrics"
	"github.com/guttosm/profitpulse/internal/server"
	"github.com/guttosm/profitpulse/internal/service"
	"github.com/guttosm/profitpulse/internal/storage"
)

type dummyHandler struct{}

func (d dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func newTestTCP(t *testing.T) *server.Server {
	t.Helper()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "results.txt"))
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	svc := service.NewAnalysisService(store, metrics.New())
	return server.New(dispatch.New(svc), server.Options{})
}

func TestStartServerAndShutdown(t *testing.T) {
	srv := startServer(dummyHandler{}, "0") // random port
	if srv == nil {
		t.Fatalf("expected server")
	}

	// Give server a moment to start
	time.Sleep(50 * time.Millisecond)

	shutdownCtx, c := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer c()
	if err := srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		t.Fatalf("shutdown err: %v", err)
	}
}

func TestGracefulShutdown_SignalPath(t *testing.T) {
	srv := startServer(dummyHandler{}, "0")
	tcp := newTestTCP(t)
	startTCP(tcp, "127.0.0.1:0")

	cleaned := make(chan struct{}, 1)
	go func() {
		gracefulShutdown(context.Background(), srv, tcp, func() { close(cleaned) })
	}()

	// Give the goroutine time to set up signal notifications
	time.Sleep(50 * time.Millisecond)

	p, _ := os.FindProcess(os.Getpid())
	_ = p.Signal(syscall.SIGTERM)

	select {
	case <-cleaned:
	case <-time.After(2 * time.Second):
		t.Fatalf("cleanup not called after SIGTERM")
	}

	if err := tcp.ListenAndServe("127.0.0.1:0"); err != server.ErrServerClosed {
		t.Fatalf("tcp server still accepting after shutdown: %v", err)
	}
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "batch", "send"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("subcommand %q not registered: %v", name, err)
		}
	}
}

func TestBatchCmd_UnknownType(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"batch", "--type", "sideways"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown --type") {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}

func TestBatchCmd_AnalyzesDirectory(t *testing.T) {
	t.Setenv("RESULTS_BACKEND", "file")
	t.Setenv("RESULTS_FILE", filepath.Join(t.TempDir(), "results.txt"))

	dir := t.TempDir()
	data := "Date;Close\n2024-01-02;10\n2024-01-03;12,5\n2024-01-04;11\n"
	if err := os.WriteFile(filepath.Join(dir, "petr4.csv"), []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"batch", "--dir", dir, "--type", "maxProfit", "--parallel", "1"})

	if err := root.Execute(); err != nil {
		t.Fatalf("batch: %v", err)
	}
	if !strings.Contains(out.String(), "petr4.csv") {
		t.Fatalf("expected file in output, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "total=2.5") {
		t.Fatalf("expected max profit 2.5 in output, got:\n%s", out.String())
	}
}

func TestPrintBatch_ShowsFailureMessage(t *testing.T) {
	var out bytes.Buffer
	err := printBatch(&out, []batch.FileResult{
		{File: "empty.csv", Prices: 0, Envelope: dto.Failure("Error processing request: no values")},
	})
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(out.String(), "no values") {
		t.Fatalf("expected failure message, got:\n%s", out.String())
	}
}

func TestSendCmd_RoundTrip(t *testing.T) {
	tcp := newTestTCP(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = tcp.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = tcp.Shutdown(ctx)
	})

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{
		"send",
		"--addr", ln.Addr().String(),
		"--action", dto.ActionMaxProfit,
		"--values", "1,-2,3",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(out.String(), `"SUCCESS"`) {
		t.Fatalf("expected success envelope, got:\n%s", out.String())
	}
}
