package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/partnerdeck/partnerdeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleUser(t *testing.T) {
	srv := newTestServer(t, &mockGateway{})

	req := httptest.NewRequest(http.MethodGet, "/api/discord/user", nil)
	req.AddCookie(loginCookie(t, srv, nil))
	rec := doRequest(srv, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var user domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "tester", user.Username)
}

func TestHandleUser_UpstreamFailure(t *testing.T) {
	gw := &mockGateway{
		userInfoFn: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, errors.New("discord is down")
		},
	}
	srv := newTestServer(t, gw)

	req := httptest.NewRequest(http.MethodGet, "/api/discord/user", nil)
	req.AddCookie(loginCookie(t, srv, nil))
	rec := doRequest(srv, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "upstream", body["type"])
	assert.NotContains(t, rec.Body.String(), "discord is down", "cause must not leak to the client")
}

func TestHandleServers_FiltersAndSorts(t *testing.T) {
	gw := &mockGateway{
		userGuildsFn: func(_ context.Context, _ string) ([]domain.Guild, error) {
			return []domain.Guild{
				{ID: "1", Name: "No Bot", Owner: true},
				{ID: "2", Name: "Not Mine", Owner: false},
				{ID: "3", Name: "Has Bot", Owner: true},
			}, nil
		},
		botInGuildFn: func(_ context.Context, guildID string) (bool, error) {
			return guildID == "3", nil
		},
	}
	srv := newTestServer(t, gw)

	req := httptest.NewRequest(http.MethodGet, "/api/discord/servers", nil)
	req.AddCookie(loginCookie(t, srv, nil))
	rec := doRequest(srv, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var guilds []domain.Guild
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &guilds))
	require.Len(t, guilds, 2, "non-owned servers must be filtered out")

	assert.Equal(t, "3", guilds[0].ID)
	assert.True(t, guilds[0].BotInServer)
	assert.Equal(t, "1", guilds[1].ID)
	assert.False(t, guilds[1].BotInServer)
}

func TestHandleServers_PresenceCheckFailureDefaultsToAbsent(t *testing.T) {
	gw := &mockGateway{
		userGuildsFn: func(_ context.Context, _ string) ([]domain.Guild, error) {
			return []domain.Guild{{ID: "1", Name: "Mine", Owner: true}}, nil
		},
		botInGuildFn: func(_ context.Context, _ string) (bool, error) {
			return false, errors.New("rate limited")
		},
	}
	srv := newTestServer(t, gw)

	req := httptest.NewRequest(http.MethodGet, "/api/discord/servers", nil)
	req.AddCookie(loginCookie(t, srv, nil))
	rec := doRequest(srv, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var guilds []domain.Guild
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &guilds))
	require.Len(t, guilds, 1)
	assert.False(t, guilds[0].BotInServer)
}

func TestHandleServerInfo_SecondRequestServedFromCache(t *testing.T) {
	var calls atomic.Int32
	gw := &mockGateway{
		guildInfoFn: func(_ context.Context, guildID string) (*domain.GuildInfo, error) {
			calls.Add(1)
			return &domain.GuildInfo{ID: guildID, Name: "Cached Guild", MemberCount: 123}, nil
		},
	}
	srv := newTestServer(t, gw)
	cookie := loginCookie(t, srv, nil)

	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/api/discord/server-info/42", nil)
		req.AddCookie(cookie)
		rec := doRequest(srv, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var info domain.GuildInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
		assert.Equal(t, "Cached Guild", info.Name)
		assert.Equal(t, 123, info.MemberCount)
	}

	assert.Equal(t, int32(1), calls.Load(), "second request must hit the cache")
}

func TestHandleServerInfo_UpstreamFailure(t *testing.T) {
	gw := &mockGateway{
		guildInfoFn: func(_ context.Context, _ string) (*domain.GuildInfo, error) {
			return nil, errors.New("missing access")
		},
	}
	srv := newTestServer(t, gw)

	req := httptest.NewRequest(http.MethodGet, "/api/discord/server-info/42", nil)
	req.AddCookie(loginCookie(t, srv, nil))
	rec := doRequest(srv, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleChannels_SecondRequestServedFromCache(t *testing.T) {
	var calls atomic.Int32
	gw := &mockGateway{
		guildChannelsFn: func(_ context.Context, guildID string) ([]domain.Channel, error) {
			calls.Add(1)
			return []domain.Channel{
				{ID: "10", Name: "general", Type: 0, Position: 0},
				{ID: "11", Name: "partners", Type: 0, Position: 1},
			}, nil
		},
	}
	srv := newTestServer(t, gw)
	cookie := loginCookie(t, srv, nil)

	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/api/discord/channels/42", nil)
		req.AddCookie(cookie)
		rec := doRequest(srv, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var channels []domain.Channel
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &channels))
		require.Len(t, channels, 2)
		assert.Equal(t, "general", channels[0].Name)
	}

	assert.Equal(t, int32(1), calls.Load(), "second request must hit the cache")
}

func TestHandleBotInvite(t *testing.T) {
	srv := newTestServer(t, &mockGateway{})

	// The invite link works without a session so it can sit on the landing page.
	req := httptest.NewRequest(http.MethodGet, "/api/discord/bot-invite", nil)
	rec := doRequest(srv, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://discord.test/invite"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/discord/bot-invite/42", nil)
	rec = doRequest(srv, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://discord.test/invite?guild_id=42"}`, rec.Body.String())
}
