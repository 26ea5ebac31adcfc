package domain

import "context"

// User is the authenticated Discord account.
type User struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Discriminator string  `json:"discriminator"`
	Avatar        *string `json:"avatar"`
	Email         string  `json:"email,omitempty"`
}

// Guild is a server from the user's guild list, annotated with whether the
// partner bot is present.
type Guild struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Icon        *string  `json:"icon"`
	Owner       bool     `json:"owner"`
	Permissions string   `json:"permissions"`
	Features    []string `json:"features"`
	BotInServer bool     `json:"botInServer"`
}

// GuildInfo is the metadata shown on the dashboard for a selected server.
type GuildInfo struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Icon              *string `json:"icon"`
	MemberCount       int     `json:"memberCount"`
	BoostLevel        int     `json:"boostLevel"`
	VerificationLevel int     `json:"verificationLevel"`
	CreatedAt         string  `json:"createdAt"`
	Description       *string `json:"description"`
}

// Channel is one entry of a guild's channel list.
type Channel struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     int     `json:"type"`
	Position int     `json:"position"`
	ParentID *string `json:"parentId"`
}

// TokenGrant is the result of an OAuth code exchange or token refresh.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// GatewayClient wraps Discord's OAuth and REST APIs. User-scoped calls take
// the user's access token; guild-scoped calls run under the bot token.
type GatewayClient interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*TokenGrant, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenGrant, error)

	UserInfo(ctx context.Context, accessToken string) (*User, error)
	UserGuilds(ctx context.Context, accessToken string) ([]Guild, error)

	GuildInfo(ctx context.Context, guildID string) (*GuildInfo, error)
	GuildChannels(ctx context.Context, guildID string) ([]Channel, error)
	BotInGuild(ctx context.Context, guildID string) (bool, error)

	BotInviteURL(guildID string) string
}
