package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jpalmerr/slotwatch/internal/store"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleStatus(t *testing.T) {
	st := store.NewMemoryStore()
	st.Update(store.LocationStatus{BatchCode: "503", LocationID: "L2", Status: store.StatusFull})
	st.Update(store.LocationStatus{BatchCode: "502", LocationID: "L1", Status: store.StatusAvailable, Available: 1})

	srv := NewServer(st, ":0", testLogger())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}

	var statuses []store.LocationStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &statuses); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("len(statuses) = %d, want 2", len(statuses))
	}
	if statuses[0].Key != "502/L1" || statuses[0].Available != 1 {
		t.Errorf("statuses[0] = %+v, want 502/L1 with 1 seat", statuses[0])
	}
}

func TestHandleStatus_Empty(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), ":0", testLogger())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestHandleStatus_MethodNotAllowed(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), ":0", testLogger())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/status", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleSSE_InitialSnapshot(t *testing.T) {
	st := store.NewMemoryStore()
	st.Update(store.LocationStatus{BatchCode: "502", LocationID: "L1", LocationName: "Hanoi"})
	st.Update(store.LocationStatus{BatchCode: "502", LocationID: "L2", LocationName: "Hue"})

	srv := NewServer(st, ":0", testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	srv.handleSSE(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "Hanoi") || !strings.Contains(body, "Hue") {
		t.Errorf("response should contain both locations, got: %s", body)
	}
}

func TestHandleSSE_Headers(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), ":0", testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	srv.handleSSE(rec, req)

	expectedHeaders := map[string]string{
		"Content-Type":                "text/event-stream",
		"Cache-Control":               "no-cache",
		"Connection":                  "keep-alive",
		"Access-Control-Allow-Origin": "*",
	}
	for key, expected := range expectedHeaders {
		if got := rec.Header().Get(key); got != expected {
			t.Errorf("header %s = %q, want %q", key, got, expected)
		}
	}
}

func TestHandleSSE_NotSupported(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), ":0", testLogger())

	w := &nonFlushWriter{header: make(http.Header)}
	srv.handleSSE(w, httptest.NewRequest(http.MethodGet, "/api/sse", nil))

	if w.statusCode != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.statusCode)
	}
}

type nonFlushWriter struct {
	header     http.Header
	statusCode int
	body       []byte
}

func (n *nonFlushWriter) Header() http.Header { return n.header }

func (n *nonFlushWriter) Write(b []byte) (int, error) {
	n.body = append(n.body, b...)
	return len(b), nil
}

func (n *nonFlushWriter) WriteHeader(statusCode int) { n.statusCode = statusCode }

func TestServer_StreamsUpdatesAndShutsDown(t *testing.T) {
	st := store.NewMemoryStore()
	srv := NewServer(st, "127.0.0.1:0", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/api/sse")
	if err != nil {
		t.Fatalf("GET /api/sse error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	lines := make(chan string, 10)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if line := scanner.Text(); strings.HasPrefix(line, "data: ") {
				lines <- strings.TrimPrefix(line, "data: ")
			}
		}
	}()

	// give the handler time to subscribe
	time.Sleep(50 * time.Millisecond)
	st.Update(store.LocationStatus{BatchCode: "502", LocationID: "L1", Status: store.StatusAvailable})

	select {
	case data := <-lines:
		var status store.LocationStatus
		if err := json.Unmarshal([]byte(data), &status); err != nil {
			t.Fatalf("failed to parse JSON: %v, data: %s", err, data)
		}
		if status.Key != "502/L1" {
			t.Errorf("Key = %q, want 502/L1", status.Key)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no SSE update received")
	}

	// shutdown closes the stream
	cancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("SSE connection did not close after shutdown")
	}
}

func TestServer_StartBindError(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), "256.0.0.1:bad", testLogger())

	if err := srv.Start(context.Background()); err == nil {
		t.Error("Start() error = nil, want bind error")
	}
}
