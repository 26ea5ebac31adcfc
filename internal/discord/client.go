// Package discord wraps Discord's OAuth and REST APIs behind the
// domain.GatewayClient interface. Guild-scoped calls run under the bot token;
// user-scoped calls run under the user's bearer token.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/partnerdeck/partnerdeck/internal/domain"
)

// botInvitePermissions is the permission bitfield requested when inviting
// the partner bot (Administrator).
const botInvitePermissions = "8"

type Client struct {
	oauth    *oauthClient
	bot      *discordgo.Session
	clientID string
	timeout  time.Duration
}

var _ domain.GatewayClient = (*Client)(nil)

func NewClient(clientID, clientSecret, botToken, redirectURI string, timeout time.Duration) (*Client, error) {
	bot, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot session: %w", err)
	}
	bot.Client.Timeout = timeout

	return &Client{
		oauth:    newOAuthClient(clientID, clientSecret, redirectURI, timeout),
		bot:      bot,
		clientID: clientID,
		timeout:  timeout,
	}, nil
}

// --- OAuth ---

func (c *Client) AuthURL(state string) string {
	return c.oauth.authURL(state)
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (*domain.TokenGrant, error) {
	return c.oauth.exchangeCode(ctx, code)
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
	return c.oauth.refreshToken(ctx, refreshToken)
}

// --- User-scoped calls ---

func (c *Client) UserInfo(ctx context.Context, accessToken string) (*domain.User, error) {
	session, err := c.bearerSession(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	return &domain.User{
		ID:            user.ID,
		Username:      user.Username,
		Discriminator: user.Discriminator,
		Avatar:        optionalString(user.Avatar),
		Email:         user.Email,
	}, nil
}

func (c *Client) UserGuilds(ctx context.Context, accessToken string) ([]domain.Guild, error) {
	session, err := c.bearerSession(accessToken)
	if err != nil {
		return nil, err
	}

	guilds, err := session.UserGuilds(200, "", "", false, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user guilds: %w", err)
	}

	out := make([]domain.Guild, 0, len(guilds))
	for _, g := range guilds {
		features := make([]string, 0, len(g.Features))
		for _, f := range g.Features {
			features = append(features, string(f))
		}
		out = append(out, domain.Guild{
			ID:          g.ID,
			Name:        g.Name,
			Icon:        optionalString(g.Icon),
			Owner:       g.Owner,
			Permissions: strconv.FormatInt(g.Permissions, 10),
			Features:    features,
		})
	}
	return out, nil
}

// --- Bot-scoped calls ---

func (c *Client) GuildInfo(ctx context.Context, guildID string) (*domain.GuildInfo, error) {
	guild, err := c.bot.GuildWithCounts(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild %s: %w", guildID, err)
	}

	memberCount := guild.ApproximateMemberCount
	if memberCount == 0 {
		memberCount = guild.MemberCount
	}

	createdAt := ""
	if ts, err := discordgo.SnowflakeTimestamp(guild.ID); err == nil {
		createdAt = ts.UTC().Format(time.RFC3339)
	}

	return &domain.GuildInfo{
		ID:                guild.ID,
		Name:              guild.Name,
		Icon:              optionalString(guild.Icon),
		MemberCount:       memberCount,
		BoostLevel:        int(guild.PremiumTier),
		VerificationLevel: int(guild.VerificationLevel),
		CreatedAt:         createdAt,
		Description:       optionalString(guild.Description),
	}, nil
}

func (c *Client) GuildChannels(ctx context.Context, guildID string) ([]domain.Channel, error) {
	channels, err := c.bot.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channels for guild %s: %w", guildID, err)
	}

	out := make([]domain.Channel, 0, len(channels))
	for _, ch := range channels {
		out = append(out, domain.Channel{
			ID:       ch.ID,
			Name:     ch.Name,
			Type:     int(ch.Type),
			Position: ch.Position,
			ParentID: optionalString(ch.ParentID),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})

	return out, nil
}

// BotInGuild reports whether the partner bot is a member of the guild. A 403
// or 404 from Discord means the bot is not there; other failures are real
// errors.
func (c *Client) BotInGuild(ctx context.Context, guildID string) (bool, error) {
	_, err := c.bot.Guild(guildID, discordgo.WithContext(ctx))
	if err == nil {
		return true, nil
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusForbidden, http.StatusNotFound:
			return false, nil
		}
	}

	return false, fmt.Errorf("failed to check bot membership in guild %s: %w", guildID, err)
}

func (c *Client) BotInviteURL(guildID string) string {
	inviteURL := fmt.Sprintf(
		"%s?client_id=%s&scope=bot+applications.commands&permissions=%s",
		defaultAuthorizeURL,
		url.QueryEscape(c.clientID),
		botInvitePermissions,
	)
	if guildID != "" {
		inviteURL += "&guild_id=" + url.QueryEscape(guildID) + "&disable_guild_select=true"
	}
	return inviteURL
}

func (c *Client) bearerSession(accessToken string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bearer " + accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bearer session: %w", err)
	}
	session.Client.Timeout = c.timeout
	return session, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
