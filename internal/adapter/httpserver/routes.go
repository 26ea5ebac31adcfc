package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) registerRoutes() {
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(correlationMiddleware)
	s.echo.Use(s.errorHandlingMiddleware())

	s.registerHealthRoutes()

	if s.deps.MetricsHandler != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.deps.MetricsHandler))
	}

	api := s.echo.Group("/api")

	api.GET("/auth/url", s.handleAuthURL)
	api.GET("/auth/callback", s.handleOAuthCallback)
	api.GET("/auth/status", s.handleAuthStatus)
	api.POST("/auth/logout", s.handleLogout)

	api.GET("/discord/user", s.handleUser, s.requireAuth)
	api.GET("/discord/servers", s.handleServers, s.requireAuth)
	api.GET("/discord/server-info/:serverId", s.handleServerInfo, s.requireAuth)
	api.GET("/discord/channels/:serverId", s.handleChannels, s.requireAuth)
	api.GET("/discord/bot-invite", s.handleBotInvite)
	api.GET("/discord/bot-invite/:serverId", s.handleBotInvite)

	api.GET("/config/:serverId", s.handleGetConfig, s.requireAuth)
	api.POST("/config/main/:serverId", s.handleUpdateMainConfig, s.requireAuth)
	api.POST("/config/channels/:serverId", s.handleUpdateChannelConfig, s.requireAuth)
	api.POST("/config/other/:serverId", s.handleUpdateOtherConfig, s.requireAuth)
	api.POST("/config/premium/:serverId", s.handleUpdatePremiumConfig, s.requireAuth)

	api.GET("/analytics/:serverId", s.handleAnalytics, s.requireAuth)
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}
