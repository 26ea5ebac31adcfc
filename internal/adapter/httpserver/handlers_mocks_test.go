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
	"github.com/stretchr/testify/require"
)

// --- Mock gateway ---

type mockGateway struct {
	authURLFn       func(state string) string
	exchangeCodeFn  func(ctx context.Context, code string) (*domain.TokenGrant, error)
	refreshTokenFn  func(ctx context.Context, refreshToken string) (*domain.TokenGrant, error)
	userInfoFn      func(ctx context.Context, accessToken string) (*domain.User, error)
	userGuildsFn    func(ctx context.Context, accessToken string) ([]domain.Guild, error)
	guildInfoFn     func(ctx context.Context, guildID string) (*domain.GuildInfo, error)
	guildChannelsFn func(ctx context.Context, guildID string) ([]domain.Channel, error)
	botInGuildFn    func(ctx context.Context, guildID string) (bool, error)
}

var _ domain.GatewayClient = (*mockGateway)(nil)

func (m *mockGateway) AuthURL(state string) string {
	if m.authURLFn != nil {
		return m.authURLFn(state)
	}
	return "https://discord.test/authorize?state=" + state
}

func (m *mockGateway) ExchangeCode(ctx context.Context, code string) (*domain.TokenGrant, error) {
	if m.exchangeCodeFn != nil {
		return m.exchangeCodeFn(ctx, code)
	}
	return nil, errors.New("not implemented")
}

func (m *mockGateway) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
	if m.refreshTokenFn != nil {
		return m.refreshTokenFn(ctx, refreshToken)
	}
	return nil, errors.New("not implemented")
}

func (m *mockGateway) UserInfo(ctx context.Context, accessToken string) (*domain.User, error) {
	if m.userInfoFn != nil {
		return m.userInfoFn(ctx, accessToken)
	}
	return &domain.User{ID: "user-1", Username: "tester"}, nil
}

func (m *mockGateway) UserGuilds(ctx context.Context, accessToken string) ([]domain.Guild, error) {
	if m.userGuildsFn != nil {
		return m.userGuildsFn(ctx, accessToken)
	}
	return nil, nil
}

func (m *mockGateway) GuildInfo(ctx context.Context, guildID string) (*domain.GuildInfo, error) {
	if m.guildInfoFn != nil {
		return m.guildInfoFn(ctx, guildID)
	}
	return &domain.GuildInfo{ID: guildID, Name: "Test Guild"}, nil
}

func (m *mockGateway) GuildChannels(ctx context.Context, guildID string) ([]domain.Channel, error) {
	if m.guildChannelsFn != nil {
		return m.guildChannelsFn(ctx, guildID)
	}
	return nil, nil
}

func (m *mockGateway) BotInGuild(ctx context.Context, guildID string) (bool, error) {
	if m.botInGuildFn != nil {
		return m.botInGuildFn(ctx, guildID)
	}
	return false, nil
}

func (m *mockGateway) BotInviteURL(guildID string) string {
	if guildID == "" {
		return "https://discord.test/invite"
	}
	return "https://discord.test/invite?guild_id=" + guildID
}

// --- Test server ---

func newTestServer(t *testing.T, gateway domain.GatewayClient) *Server {
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
		Gateway:        gateway,
		Analytics:      analytics.NewGenerator(1),
		GuildInfoCache: cache.NewMemory[domain.GuildInfo](cfg.CacheTTL, clock),
		ChannelCache:   cache.NewMemory[[]domain.Channel](cfg.CacheTTL, clock),
	})
}

func doRequest(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

// loginCookie forges an authenticated session cookie the way the OAuth
// callback would have written it.
func loginCookie(t *testing.T, srv *Server, values map[string]any) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	session, err := srv.sessionStore.New(req, sessionName)
	require.NoError(t, err)

	if values == nil {
		values = map[string]any{
			sessionKeyAccessToken:  "user-token",
			sessionKeyRefreshToken: "refresh-token",
			sessionKeyTokenExpiry:  time.Now().Add(time.Hour).Unix(),
			sessionKeyUserID:       "user-1",
		}
	}
	for k, v := range values {
		session.Values[k] = v
	}
	require.NoError(t, session.Save(req, rec))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}
