package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/partnerdeck/partnerdeck/internal/domain"
	apperrors "github.com/partnerdeck/partnerdeck/internal/platform/errors"
)

func (s *Server) handleGetConfig(c echo.Context) error {
	serverID := c.Param("serverId")

	cfg, err := s.deps.Configs.Get(c.Request().Context(), serverID)
	if err != nil {
		return apperrors.InternalError("failed to load server config", err).WithField("server_id", serverID)
	}

	if err := c.JSON(http.StatusOK, cfg); err != nil {
		return fmt.Errorf("failed to write config response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateMainConfig(c echo.Context) error {
	serverID := c.Param("serverId")

	var cfg domain.MainConfig
	if err := c.Bind(&cfg); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if err := validationError(cfg.Validate()); err != nil {
		return err
	}

	if err := s.deps.Configs.UpsertMain(c.Request().Context(), serverID, cfg); err != nil {
		return apperrors.InternalError("failed to save main config", err).WithField("server_id", serverID)
	}

	return updated(c)
}

func (s *Server) handleUpdateChannelConfig(c echo.Context) error {
	serverID := c.Param("serverId")

	var cfg domain.ChannelConfig
	if err := c.Bind(&cfg); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if err := validationError(cfg.Validate()); err != nil {
		return err
	}

	if err := s.deps.Configs.UpsertChannels(c.Request().Context(), serverID, cfg); err != nil {
		return apperrors.InternalError("failed to save channel config", err).WithField("server_id", serverID)
	}

	return updated(c)
}

func (s *Server) handleUpdateOtherConfig(c echo.Context) error {
	serverID := c.Param("serverId")

	var cfg domain.OtherConfig
	if err := c.Bind(&cfg); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if err := validationError(cfg.Validate()); err != nil {
		return err
	}

	if err := s.deps.Configs.UpsertOther(c.Request().Context(), serverID, cfg); err != nil {
		return apperrors.InternalError("failed to save other config", err).WithField("server_id", serverID)
	}

	return updated(c)
}

func (s *Server) handleUpdatePremiumConfig(c echo.Context) error {
	serverID := c.Param("serverId")

	var cfg domain.PremiumConfig
	if err := c.Bind(&cfg); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	cfg.ApplyDefaults()
	if err := validationError(cfg.Validate()); err != nil {
		return err
	}

	if err := s.deps.Configs.UpsertPremium(c.Request().Context(), serverID, cfg); err != nil {
		return apperrors.InternalError("failed to save premium config", err).WithField("server_id", serverID)
	}

	return updated(c)
}

// validationError translates domain validation failures into a structured
// 400 carrying the field-level messages. Nothing is persisted on failure.
func validationError(fields domain.ValidationErrors) error {
	if len(fields) == 0 {
		return nil
	}
	return apperrors.ValidationError("invalid config").WithField("fields", fields)
}

func updated(c echo.Context) error {
	if err := c.JSON(http.StatusOK, map[string]bool{"success": true}); err != nil {
		return fmt.Errorf("failed to write update response: %w", err)
	}
	return nil
}
