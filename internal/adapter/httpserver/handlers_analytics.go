package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	apperrors "github.com/partnerdeck/partnerdeck/internal/platform/errors"
)

func (s *Server) handleAnalytics(c echo.Context) error {
	serverID := c.Param("serverId")

	data, err := s.deps.Analytics.Analytics(c.Request().Context(), serverID)
	if err != nil {
		return apperrors.InternalError("failed to load analytics", err).WithField("server_id", serverID)
	}

	if err := c.JSON(http.StatusOK, data); err != nil {
		return fmt.Errorf("failed to write analytics response: %w", err)
	}
	return nil
}
