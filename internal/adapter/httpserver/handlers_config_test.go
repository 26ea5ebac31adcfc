package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/partnerdeck/partnerdeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getConfig(t *testing.T, srv *Server, cookie *http.Cookie, serverID string) *domain.ServerConfig {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/config/"+serverID, nil)
	req.AddCookie(cookie)
	rec := doRequest(srv, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg domain.ServerConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	return &cfg
}

func postConfig(srv *Server, cookie *http.Cookie, section, serverID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/config/"+section+"/"+serverID, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	return doRequest(srv, req)
}

func TestGetConfig_EmptyRecord(t *testing.T) {
	srv := newTestServer(t, &mockGateway{})
	cookie := loginCookie(t, srv, nil)

	cfg := getConfig(t, srv, cookie, "42")
	assert.Equal(t, "42", cfg.ServerID)
	assert.Nil(t, cfg.MainConfig)
	assert.Nil(t, cfg.ChannelConfig)
	assert.Nil(t, cfg.OtherConfig)
	assert.Nil(t, cfg.PremiumConfig)
}

func TestUpdateMainConfig_RoundTrip(t *testing.T) {
	srv := newTestServer(t, &mockGateway{})
	cookie := loginCookie(t, srv, nil)

	rec := postConfig(srv, cookie, "main", "42", `{
		"adTitle": "Partner with us",
		"adDescription": "A friendly community.",
		"adInviteLink": "https://discord.gg/abc",
		"adOtherLinks": ["https://example.com"],
		"adBanner": ""
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	cfg := getConfig(t, srv, cookie, "42")
	require.NotNil(t, cfg.MainConfig)
	assert.Equal(t, "Partner with us", cfg.MainConfig.AdTitle)
	assert.Equal(t, []string{"https://example.com"}, cfg.MainConfig.AdOtherLinks)
}

func TestUpdateConfig_SectionsIndependent(t *testing.T) {
	srv := newTestServer(t, &mockGateway{})
	cookie := loginCookie(t, srv, nil)

	rec := postConfig(srv, cookie, "other", "42", `{"category":"Gaming"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postConfig(srv, cookie, "channels", "42", `{"partnerChannel":"123456789012345678"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cfg := getConfig(t, srv, cookie, "42")
	require.NotNil(t, cfg.OtherConfig)
	assert.Equal(t, "Gaming", cfg.OtherConfig.Category)
	require.NotNil(t, cfg.ChannelConfig)
	require.NotNil(t, cfg.ChannelConfig.PartnerChannel)
	assert.Equal(t, "123456789012345678", *cfg.ChannelConfig.PartnerChannel)
	assert.Nil(t, cfg.ChannelConfig.ReviewChannel)
	assert.Nil(t, cfg.MainConfig)
}

func TestUpdatePremiumConfig_DefaultColor(t *testing.T) {
	srv := newTestServer(t, &mockGateway{})
	cookie := loginCookie(t, srv, nil)

	rec := postConfig(srv, cookie, "premium", "42", `{"autoApprove":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cfg := getConfig(t, srv, cookie, "42")
	require.NotNil(t, cfg.PremiumConfig)
	assert.Equal(t, "#5865F2", cfg.PremiumConfig.EmbedColor)
	assert.True(t, cfg.PremiumConfig.AutoApprove)
	assert.False(t, cfg.PremiumConfig.AutoBump)
}

func TestUpdatePremiumConfig_CustomColor(t *testing.T) {
	srv := newTestServer(t, &mockGateway{})
	cookie := loginCookie(t, srv, nil)

	rec := postConfig(srv, cookie, "premium", "42", `{"embedColor":"#112233"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cfg := getConfig(t, srv, cookie, "42")
	require.NotNil(t, cfg.PremiumConfig)
	assert.Equal(t, "#112233", cfg.PremiumConfig.EmbedColor)
}

func TestUpdatePremiumConfig_BadColorRejected(t *testing.T) {
	srv := newTestServer(t, &mockGateway{})
	cookie := loginCookie(t, srv, nil)

	rec := postConfig(srv, cookie, "premium", "42", `{"embedColor":"red"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	cfg := getConfig(t, srv, cookie, "42")
	assert.Nil(t, cfg.PremiumConfig, "rejected input must not be persisted")
}

func TestUpdateOtherConfig_InvalidCategory(t *testing.T) {
	srv := newTestServer(t, &mockGateway{})
	cookie := loginCookie(t, srv, nil)

	rec := postConfig(srv, cookie, "other", "42", `{"category":"Sports"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation", body["type"])

	ctx, _ := body["context"].(map[string]any)
	require.NotNil(t, ctx["fields"], "response must carry field-level messages")

	cfg := getConfig(t, srv, cookie, "42")
	assert.Nil(t, cfg.OtherConfig)
}

func TestUpdateMainConfig_ValidationFailure(t *testing.T) {
	srv := newTestServer(t, &mockGateway{})
	cookie := loginCookie(t, srv, nil)

	longDescription := strings.Repeat("x", 4001)
	rec := postConfig(srv, cookie, "main", "42", `{
		"adTitle": "Title",
		"adDescription": "`+longDescription+`",
		"adInviteLink": "https://discord.gg/abc"
	}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "adDescription")
}

func TestUpdateConfig_MalformedJSON(t *testing.T) {
	srv := newTestServer(t, &mockGateway{})
	cookie := loginCookie(t, srv, nil)

	rec := postConfig(srv, cookie, "main", "42", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfigRoutes_RequireAuth(t *testing.T) {
	srv := newTestServer(t, &mockGateway{})

	req := httptest.NewRequest(http.MethodGet, "/api/config/42", nil)
	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/config/other/42", strings.NewReader(`{"category":"Gaming"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = doRequest(srv, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
