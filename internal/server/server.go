package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jpalmerr/slotwatch/internal/store"
)

const (
	// sseWriteTimeout bounds a single SSE write so a stalled client cannot
	// pin its handler goroutine. Must be <= shutdownTimeout.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second
)

// Server serves location statuses from a [store.Store].
type Server struct {
	store      store.Store
	addr       string
	httpServer *http.Server
	listener   net.Listener
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server] listening on addr (for example
// "127.0.0.1:8080" or ":0"). The server is not started until [Server.Start]
// is called.
func NewServer(st store.Store, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:  st,
		addr:   addr,
		logger: logger,
	}
}

// Handler returns the routes served by s.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/sse", s.handleSSE)
	return mux
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start returns once the listener is bound. The server runs until ctx is
// cancelled, then shuts down gracefully with a 5-second timeout.
//
// Returns an error if the server fails to bind to the configured address.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx, so SSE handlers end on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	s.logger.Info("status server listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// handleStatus returns all current statuses as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	statuses := s.store.GetAll()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if err := json.NewEncoder(w).Encode(statuses); err != nil {
		s.logger.Error("failed to encode status response", "error", err)
	}
}

// handleSSE streams status updates via Server-Sent Events.
//
// Every write carries a deadline; without one a blocked write would keep the
// handler from noticing cancellation or a closed subscription.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)
	deadlinesSupported := true

	writeAndFlush := func(status store.LocationStatus) error {
		data, err := json.Marshal(status)
		if err != nil {
			s.logger.Warn("failed to encode status", "key", status.Key, "error", err)
			return nil
		}

		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Debug("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return
	}

	// subscribe before the snapshot so no update falls in between
	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	for _, status := range s.store.GetAll() {
		if err := writeAndFlush(status); err != nil {
			return
		}
	}

	for {
		select {
		case status, ok := <-ch:
			if !ok {
				return
			}
			if err := writeAndFlush(status); err != nil {
				return
			}

		case <-r.Context().Done():
			// fires on client disconnect and, via BaseContext, on shutdown
			return
		}
	}
}
