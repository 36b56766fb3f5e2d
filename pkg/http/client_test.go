package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewClient_Timeouts(t *testing.T) {
	client := NewClient(WithTimeouts(Timeouts{Request: 5 * time.Second, ResponseHeader: time.Second}))
	assert.Equal(t, 5*time.Second, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, time.Second, transport.ResponseHeaderTimeout)
	assert.Equal(t, defaultTimeouts.IdleConn, transport.IdleConnTimeout)
}

func TestNewClient_Headers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	client := NewClient(WithUserAgent("style-test"), WithRequestID())

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "style-test", got.Get("User-Agent"))
	assert.Equal(t, "req-42", got.Get(middleware.RequestIDHeader))

	req, err = http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "caller")
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "caller", got.Get("User-Agent"))
	assert.Empty(t, got.Get(middleware.RequestIDHeader))
}

func TestWithRequestLogging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ctxzap.ToContext(context.Background(), zap.New(core))

	client := NewClient(WithRequestLogging())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL+"/threads/runs?key=secret", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	entries := logs.FilterMessage("HTTP outbound response").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(http.StatusTeapot), entries[0].ContextMap()["status"])
	assert.Equal(t, 1, logs.FilterMessage("HTTP outbound request").Len())
}
