package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/partnerdeck/partnerdeck/internal/domain"
	apperrors "github.com/partnerdeck/partnerdeck/internal/platform/errors"
)

const (
	guildInfoCacheName = "guild_info"
	channelsCacheName  = "channels"
)

func (s *Server) handleUser(c echo.Context) error {
	accessToken, _ := c.Get("accessToken").(string)

	ctx, cancel := s.upstreamContext(c)
	defer cancel()

	user, err := s.deps.Gateway.UserInfo(ctx, accessToken)
	if err != nil {
		return apperrors.UpstreamError("failed to fetch user", err)
	}

	if err := c.JSON(http.StatusOK, user); err != nil {
		return fmt.Errorf("failed to write user response: %w", err)
	}
	return nil
}

// handleServers lists the servers the user owns, each annotated with whether
// the partner bot is already a member. Servers with the bot sort first.
func (s *Server) handleServers(c echo.Context) error {
	accessToken, _ := c.Get("accessToken").(string)

	ctx, cancel := s.upstreamContext(c)
	defer cancel()

	guilds, err := s.deps.Gateway.UserGuilds(ctx, accessToken)
	if err != nil {
		return apperrors.UpstreamError("failed to fetch servers", err)
	}

	owned := make([]domain.Guild, 0, len(guilds))
	for _, g := range guilds {
		if g.Owner {
			owned = append(owned, g)
		}
	}

	// The presence checks are independent bot-token lookups, one per guild.
	var wg sync.WaitGroup
	for i := range owned {
		wg.Add(1)
		go func() {
			defer wg.Done()
			present, err := s.deps.Gateway.BotInGuild(ctx, owned[i].ID)
			if err != nil {
				slog.WarnContext(ctx, "Bot presence check failed", "server_id", owned[i].ID, "error", err)
				return
			}
			owned[i].BotInServer = present
		}()
	}
	wg.Wait()

	sort.SliceStable(owned, func(a, b int) bool {
		return owned[a].BotInServer && !owned[b].BotInServer
	})

	if err := c.JSON(http.StatusOK, owned); err != nil {
		return fmt.Errorf("failed to write servers response: %w", err)
	}
	return nil
}

func (s *Server) handleServerInfo(c echo.Context) error {
	serverID := c.Param("serverId")

	ctx, cancel := s.upstreamContext(c)
	defer cancel()

	if info, ok := s.deps.GuildInfoCache.Read(ctx, serverID); ok {
		s.cacheHit(guildInfoCacheName)
		if err := c.JSON(http.StatusOK, info); err != nil {
			return fmt.Errorf("failed to write server info response: %w", err)
		}
		return nil
	}
	s.cacheMiss(guildInfoCacheName)

	info, err := s.deps.Gateway.GuildInfo(ctx, serverID)
	if err != nil {
		return apperrors.UpstreamError("failed to fetch server info", err).WithField("server_id", serverID)
	}

	s.deps.GuildInfoCache.Write(ctx, serverID, *info)

	if err := c.JSON(http.StatusOK, info); err != nil {
		return fmt.Errorf("failed to write server info response: %w", err)
	}
	return nil
}

func (s *Server) handleChannels(c echo.Context) error {
	serverID := c.Param("serverId")

	ctx, cancel := s.upstreamContext(c)
	defer cancel()

	if channels, ok := s.deps.ChannelCache.Read(ctx, serverID); ok {
		s.cacheHit(channelsCacheName)
		if err := c.JSON(http.StatusOK, channels); err != nil {
			return fmt.Errorf("failed to write channels response: %w", err)
		}
		return nil
	}
	s.cacheMiss(channelsCacheName)

	channels, err := s.deps.Gateway.GuildChannels(ctx, serverID)
	if err != nil {
		return apperrors.UpstreamError("failed to fetch channels", err).WithField("server_id", serverID)
	}

	s.deps.ChannelCache.Write(ctx, serverID, channels)

	if err := c.JSON(http.StatusOK, channels); err != nil {
		return fmt.Errorf("failed to write channels response: %w", err)
	}
	return nil
}

// handleBotInvite serves both the generic invite and the per-server variant
// that pre-selects the server in Discord's consent screen.
func (s *Server) handleBotInvite(c echo.Context) error {
	url := s.deps.Gateway.BotInviteURL(c.Param("serverId"))
	if err := c.JSON(http.StatusOK, map[string]string{"url": url}); err != nil {
		return fmt.Errorf("failed to write bot invite response: %w", err)
	}
	return nil
}
