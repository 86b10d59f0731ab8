package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func probe(t *testing.T, h http.Handler, path string) (int, healthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return rec.Code, body
}

func TestHealthServer_Liveness(t *testing.T) {
	h := NewHealthServer(":0", nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	code, body := probe(t, h.Handler(), "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
}

func TestHealthServer_Readiness(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		name       string
		db         Pinger
		ready      bool
		wantCode   int
		wantStatus string
		wantDB     string
	}{
		{"not ready", nil, false, http.StatusServiceUnavailable, "not ready", ""},
		{"ready without db", nil, true, http.StatusOK, "ok", ""},
		{"ready with db", stubPinger{}, true, http.StatusOK, "ok", "ok"},
		{"db down", stubPinger{err: errors.New("connection refused")}, true, http.StatusServiceUnavailable, "not ready", "unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthServer(":0", tt.db, logger)
			h.SetReady(tt.ready)
			code, body := probe(t, h.Handler(), "/health/ready")
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantDB, body.Database)
		})
	}
}

func TestHealthServer_Readiness_Transition(t *testing.T) {
	h := NewHealthServer(":0", nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := h.Handler()

	code, _ := probe(t, handler, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	h.SetReady(true)
	code, _ = probe(t, handler, "/health/ready")
	assert.Equal(t, http.StatusOK, code)
	h.SetReady(false)
	code, _ = probe(t, handler, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestHealthServer_StartAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	h := NewHealthServer(addr, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(6 * time.Second):
		t.Fatal("health server did not stop")
	}
}
