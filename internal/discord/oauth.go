package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/partnerdeck/partnerdeck/internal/domain"
)

const (
	defaultAuthorizeURL = "https://discord.com/oauth2/authorize"
	defaultTokenURL     = "https://discord.com/api/oauth2/token"

	// identify for the account page, guilds for the server selector.
	oauthScopes = "identify guilds"
)

// oauthClient handles the Discord OAuth2 authorization-code flow: authorize
// URL construction, code exchange, and refresh grants.
type oauthClient struct {
	clientID     string
	clientSecret string
	redirectURI  string

	authorizeURL string
	tokenURL     string
	httpClient   *http.Client
}

func newOAuthClient(clientID, clientSecret, redirectURI string, timeout time.Duration) *oauthClient {
	return &oauthClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		authorizeURL: defaultAuthorizeURL,
		tokenURL:     defaultTokenURL,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

func (c *oauthClient) authURL(state string) string {
	return fmt.Sprintf(
		"%s?client_id=%s&redirect_uri=%s&response_type=code&scope=%s&state=%s",
		c.authorizeURL,
		url.QueryEscape(c.clientID),
		url.QueryEscape(c.redirectURI),
		url.QueryEscape(oauthScopes),
		url.QueryEscape(state),
	)
}

func (c *oauthClient) exchangeCode(ctx context.Context, code string) (*domain.TokenGrant, error) {
	data := url.Values{}
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", c.redirectURI)

	return c.tokenRequest(ctx, data)
}

func (c *oauthClient) refreshToken(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
	data := url.Values{}
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	return c.tokenRequest(ctx, data)
}

func (c *oauthClient) tokenRequest(ctx context.Context, data url.Values) (*domain.TokenGrant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord token endpoint returned status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &domain.TokenGrant{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresIn:    tokenResp.ExpiresIn,
	}, nil
}
