// Package server implements the TCP analysis listener.
//
// Each accepted connection carries exactly one exchange: read one frame,
// dispatch it, write one newline-terminated JSON envelope, close. There is no
// keep-alive and no read timeout; a silent client only ties up its own
// goroutine.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guttosm/profitpulse/internal/dispatch"
	"github.com/guttosm/profitpulse/internal/domain/dto"
	"github.com/guttosm/profitpulse/internal/logger"
	"github.com/guttosm/profitpulse/internal/metrics"
	"github.com/guttosm/profitpulse/internal/protocol"
)

// ErrServerClosed is returned by Serve and ListenAndServe after Shutdown.
var ErrServerClosed = errors.New("tcp server closed")

// Options tune a Server. The zero value is usable.
type Options struct {
	// MaxFrameBytes caps a single request frame (protocol.DefaultMaxFrameBytes if <= 0).
	MaxFrameBytes int
	// Metrics receives connection counters; a private set is created if nil.
	Metrics *metrics.Metrics
}

// Server accepts connections and runs one handler goroutine per connection.
type Server struct {
	handler dispatch.Handler
	opts    Options
	metrics *metrics.Metrics

	baseCtx context.Context
	cancel  context.CancelFunc

	mu        sync.Mutex
	listeners map[net.Listener]struct{}
	conns     map[net.Conn]struct{}
	closing   atomic.Bool
	wg        sync.WaitGroup
}

func New(h dispatch.Handler, opts Options) *Server {
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		handler:   h,
		opts:      opts,
		metrics:   m,
		baseCtx:   ctx,
		cancel:    cancel,
		listeners: make(map[net.Listener]struct{}),
		conns:     make(map[net.Conn]struct{}),
	}
}

// ListenAndServe listens on the TCP address addr and calls Serve.
func (s *Server) ListenAndServe(addr string) error {
	if s.closing.Load() {
		return ErrServerClosed
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called. Transient
// accept failures are logged and retried with backoff; they never stop the
// loop.
func (s *Server) Serve(ln net.Listener) error {
	if !s.trackListener(ln, true) {
		return ErrServerClosed
	}
	defer s.trackListener(ln, false)

	log := logger.With("tcp")
	log.Info().Str("addr", ln.Addr().String()).Msg("tcp listener started")

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.closing.Load() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff *= 2; backoff > time.Second {
				backoff = time.Second
			}
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("accept failed")
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		if !s.trackConn(conn, true) {
			_ = conn.Close()
			continue
		}
		s.metrics.ConnectionsTotal.Inc()
		s.metrics.ActiveConnections.Inc()
		go s.handleConn(conn)
	}
}

// Shutdown stops accepting new connections and waits for in-flight
// exchanges to finish. If ctx expires first, the remaining connections are
// closed forcibly and ctx.Err() is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closing.Store(true)

	s.mu.Lock()
	var err error
	for ln := range s.listeners {
		if cerr := ln.Close(); cerr != nil && err == nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return err
	case <-ctx.Done():
		s.cancel()
		s.mu.Lock()
		for c := range s.conns {
			_ = c.Close()
		}
		s.mu.Unlock()
		return ctx.Err()
	}
}

func (s *Server) trackListener(ln net.Listener, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		if s.closing.Load() {
			return false
		}
		s.listeners[ln] = struct{}{}
		return true
	}
	delete(s.listeners, ln)
	return true
}

func (s *Server) trackConn(c net.Conn, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		if s.closing.Load() {
			return false
		}
		s.conns[c] = struct{}{}
		s.wg.Add(1)
		return true
	}
	delete(s.conns, c)
	return true
}

// handleConn owns conn end-to-end. The connection is closed on every path.
func (s *Server) handleConn(conn net.Conn) {
	start := time.Now()
	log := logger.With("tcp").With().
		Str("conn_id", uuid.NewString()).
		Str("remote", conn.RemoteAddr().String()).
		Logger()

	defer func() {
		_ = conn.Close()
		s.trackConn(conn, false)
		s.metrics.ActiveConnections.Dec()
		s.wg.Done()
	}()

	env, action := s.exchange(conn, log)

	if err := writeEnvelope(conn, env); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("failed to write response")
		return
	}

	log.Info().
		Str("action", action).
		Str("status", string(env.Status)).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("tcp_request")
}

// exchange reads and dispatches one frame. Panics anywhere below are turned
// into a Server error envelope.
func (s *Server) exchange(conn net.Conn, log zerolog.Logger) (env dto.Envelope, action string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			env = dispatch.ServerError(fmt.Errorf("%v", r))
		}
	}()

	frame, err := protocol.ReadFrame(bufio.NewReader(conn), s.opts.MaxFrameBytes)
	if err != nil {
		s.metrics.FramesRejected.Inc()
		log.Debug().Err(err).Msg("unreadable frame")
		return dispatch.ProcessingError(err), ""
	}

	var req dto.Request
	if err := json.Unmarshal([]byte(frame), &req); err != nil {
		s.metrics.FramesRejected.Inc()
		log.Debug().Err(err).Msg("undecodable frame")
		return dispatch.ProcessingError(err), ""
	}

	action = req.Headers.Action
	return s.handler.Dispatch(s.baseCtx, action, req.Body), action
}

func writeEnvelope(conn net.Conn, env dto.Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		b, _ = json.Marshal(dispatch.ServerError(err))
	}
	_, err = conn.Write(append(b, '\n'))
	return err
}
