// Package httpserver exposes the config store, the Discord metadata caches,
// and the analytics provider over a session-authenticated JSON API.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/partnerdeck/partnerdeck/internal/adapter/metrics"
	"github.com/partnerdeck/partnerdeck/internal/cache"
	"github.com/partnerdeck/partnerdeck/internal/domain"
	"github.com/partnerdeck/partnerdeck/internal/platform/config"
)

// Session keys
const (
	sessionName            = "partnerdeck-session"
	sessionKeyAccessToken  = "access_token"
	sessionKeyRefreshToken = "refresh_token"
	sessionKeyTokenExpiry  = "token_expiry"
	sessionKeyUserID       = "user_id"
	sessionKeyOAuthState   = "oauth_state"
)

// Deps are the collaborators the API layer is constructed with. Stores and
// clients are created once at process start and passed in; the server holds
// no hidden globals.
type Deps struct {
	Configs   domain.ConfigStore
	Gateway   domain.GatewayClient
	Analytics domain.AnalyticsProvider

	GuildInfoCache cache.Store[domain.GuildInfo]
	ChannelCache   cache.Store[[]domain.Channel]

	CacheMetrics   *metrics.CacheMetrics
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler

	HealthChecks []HealthCheck
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	deps   Deps

	sessionStore *sessions.CookieStore
	startTime    time.Time
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		deps:         deps,
		sessionStore: setupSessionStore(cfg),
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// upstreamContext bounds a Discord API call so a hung upstream cannot hang
// the request forever.
func (s *Server) upstreamContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), s.config.UpstreamTimeout)
}

func (s *Server) cacheHit(name string) {
	if s.deps.CacheMetrics != nil {
		s.deps.CacheMetrics.Hits.WithLabelValues(name).Inc()
	}
}

func (s *Server) cacheMiss(name string) {
	if s.deps.CacheMetrics != nil {
		s.deps.CacheMetrics.Misses.WithLabelValues(name).Inc()
	}
}

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}
	return sessionStore
}
