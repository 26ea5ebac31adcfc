package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/partnerdeck/partnerdeck/internal/domain"
	apperrors "github.com/partnerdeck/partnerdeck/internal/platform/errors"
)

// handleAuthURL hands the SPA a Discord authorization URL with a fresh state
// nonce bound to the session.
func (s *Server) handleAuthURL(c echo.Context) error {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		slog.Error("Failed to get session for OAuth state", "error", err)
	}

	state := uuid.NewString()
	session.Values[sessionKeyOAuthState] = state
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to save OAuth state session", err)
	}

	if err := c.JSON(http.StatusOK, map[string]string{"url": s.deps.Gateway.AuthURL(state)}); err != nil {
		return fmt.Errorf("failed to write auth URL response: %w", err)
	}
	return nil
}

// handleOAuthCallback is the browser-facing leg of the login flow; failures
// redirect back to the SPA with an error marker instead of returning JSON.
func (s *Server) handleOAuthCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.Redirect(http.StatusFound, "/?error=missing_code")
	}

	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return c.Redirect(http.StatusFound, "/?error=invalid_session")
	}

	expectedState, ok := session.Values[sessionKeyOAuthState].(string)
	if !ok || expectedState == "" || c.QueryParam("state") != expectedState {
		return c.Redirect(http.StatusFound, "/?error=invalid_state")
	}
	delete(session.Values, sessionKeyOAuthState)

	ctx, cancel := s.upstreamContext(c)
	defer cancel()

	grant, err := s.deps.Gateway.ExchangeCode(ctx, code)
	if err != nil {
		slog.ErrorContext(ctx, "OAuth code exchange failed", "error", err)
		return c.Redirect(http.StatusFound, "/?error=auth_failed")
	}

	user, err := s.deps.Gateway.UserInfo(ctx, grant.AccessToken)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch user after login", "error", err)
		return c.Redirect(http.StatusFound, "/?error=auth_failed")
	}

	// Fresh session ID after authentication so a pre-auth session ID cannot
	// be replayed against the logged-in session.
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to invalidate old session", err)
	}

	session, err = s.sessionStore.New(c.Request(), sessionName)
	if err != nil {
		return apperrors.InternalError("failed to create new session", err)
	}

	s.storeGrant(session, grant)
	session.Values[sessionKeyUserID] = user.ID
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to save session", err)
	}

	slog.InfoContext(ctx, "User logged in", "user_id", user.ID, "username", user.Username)

	if err := c.Redirect(http.StatusFound, "/"); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}

func (s *Server) handleAuthStatus(c echo.Context) error {
	authenticated := s.isAuthenticated(c)
	if err := c.JSON(http.StatusOK, map[string]bool{"isAuthenticated": authenticated}); err != nil {
		return fmt.Errorf("failed to write auth status response: %w", err)
	}
	return nil
}

func (s *Server) handleLogout(c echo.Context) error {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		slog.Error("Failed to get session during logout", "error", err)
		session, err = s.sessionStore.New(c.Request(), sessionName)
		if err != nil {
			return apperrors.InternalError("failed to create new session during logout", err)
		}
	}

	userID, _ := session.Values[sessionKeyUserID].(string)
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to save logout session", err)
	}

	slog.InfoContext(c.Request().Context(), "User logged out", "user_id", userID)

	if err := c.JSON(http.StatusOK, map[string]bool{"success": true}); err != nil {
		return fmt.Errorf("failed to write logout response: %w", err)
	}
	return nil
}

// requireAuth guards API routes behind a valid session. Expired access
// tokens are refreshed transparently; only a failed refresh forces the user
// back through the login flow.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := s.sessionStore.Get(c.Request(), sessionName)
		if err != nil {
			return unauthenticated()
		}

		accessToken, ok := session.Values[sessionKeyAccessToken].(string)
		if !ok || accessToken == "" {
			return unauthenticated()
		}
		userID, ok := session.Values[sessionKeyUserID].(string)
		if !ok || userID == "" {
			return unauthenticated()
		}

		if expiry, ok := session.Values[sessionKeyTokenExpiry].(int64); ok && time.Now().Unix() >= expiry {
			refreshToken, _ := session.Values[sessionKeyRefreshToken].(string)
			if refreshToken == "" {
				return unauthenticated()
			}

			ctx, cancel := s.upstreamContext(c)
			grant, err := s.deps.Gateway.RefreshToken(ctx, refreshToken)
			cancel()
			if err != nil {
				slog.Warn("Token refresh failed, session invalidated", "user_id", userID, "error", err)
				session.Options.MaxAge = -1
				_ = session.Save(c.Request(), c.Response().Writer)
				return unauthenticated()
			}

			s.storeGrant(session, grant)
			if err := session.Save(c.Request(), c.Response().Writer); err != nil {
				return apperrors.InternalError("failed to save refreshed session", err)
			}
			accessToken = grant.AccessToken
		}

		c.Set("accessToken", accessToken)
		c.Set("userID", userID)
		return next(c)
	}
}

func (s *Server) isAuthenticated(c echo.Context) bool {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return false
	}
	accessToken, ok := session.Values[sessionKeyAccessToken].(string)
	return ok && accessToken != ""
}

func (s *Server) storeGrant(session *sessions.Session, grant *domain.TokenGrant) {
	session.Values[sessionKeyAccessToken] = grant.AccessToken
	session.Values[sessionKeyRefreshToken] = grant.RefreshToken
	session.Values[sessionKeyTokenExpiry] = time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second).Unix()
}

func unauthenticated() error {
	return apperrors.AuthError("authentication required").WithField("needsAuth", true)
}
