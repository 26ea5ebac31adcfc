package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/partnerdeck/partnerdeck/internal/adapter/memory"
	"github.com/partnerdeck/partnerdeck/internal/analytics"
	"github.com/partnerdeck/partnerdeck/internal/cache"
	"github.com/partnerdeck/partnerdeck/internal/domain"
	"github.com/partnerdeck/partnerdeck/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealthTestServer(t *testing.T, checks []HealthCheck) *Server {
	t.Helper()

	cfg := &config.Config{
		AppEnv:          "test",
		Port:            "0",
		SessionSecret:   "test-session-secret",
		SessionMaxAge:   time.Hour,
		CacheTTL:        time.Hour,
		UpstreamTimeout: time.Second,
	}
	clock := clockwork.NewFakeClock()

	return NewServer(cfg, Deps{
		Configs:        memory.NewConfigStore(clock),
		Gateway:        &mockGateway{},
		Analytics:      analytics.NewGenerator(1),
		GuildInfoCache: cache.NewMemory[domain.GuildInfo](cfg.CacheTTL, clock),
		ChannelCache:   cache.NewMemory[[]domain.Channel](cfg.CacheTTL, clock),
		HealthChecks:   checks,
	})
}

func TestHealthLiveness(t *testing.T) {
	srv := newHealthTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := doRequest(srv, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHealthReadiness_AllChecksPass(t *testing.T) {
	srv := newHealthTestServer(t, []HealthCheck{
		{Name: "always-ok", Check: func(context.Context) error { return nil }},
	})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := doRequest(srv, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestHealthReadiness_FailingCheck(t *testing.T) {
	srv := newHealthTestServer(t, []HealthCheck{
		{Name: "postgres", Check: func(context.Context) error { return errors.New("connection refused") }},
	})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := doRequest(srv, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"failed_check":"postgres"`)
}

func TestHealthStartup(t *testing.T) {
	srv := newHealthTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/startup", nil)
	rec := doRequest(srv, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestVersionEndpoint(t *testing.T) {
	srv := newHealthTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := doRequest(srv, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "version")
}
