// Package linkedin wraps the LinkedIn OAuth flow, the member profile API and
// the (simulated) job application submission.
package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobpilot/internal/config"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	oauthlinkedin "golang.org/x/oauth2/linkedin"
)

var (
	ErrNotConfigured      = errors.New("linkedin integration is not configured")
	ErrExchangeFailed     = errors.New("linkedin token exchange failed")
	ErrProfileFetchFailed = errors.New("linkedin profile fetch failed")
)

type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Member is the raw /v2/me document plus the primary email address.
type Member struct {
	ID      string
	Payload json.RawMessage
}

type Client struct {
	oauth   *oauth2.Config
	apiBase string
	enabled bool
	logger  *zap.Logger
}

func New(cfg config.LinkedInConfig, logger *zap.Logger) *Client {
	return newClient(cfg, oauthlinkedin.Endpoint, logger)
}

func newClient(cfg config.LinkedInConfig, endpoint oauth2.Endpoint, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		apiBase: strings.TrimRight(cfg.APIBaseURL, "/"),
		enabled: cfg.Enabled(),
		logger:  logger.Named("linkedin"),
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

func (c *Client) AuthCodeURL(state string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

func (c *Client) Exchange(ctx context.Context, code string) (Token, error) {
	if !c.Enabled() {
		return Token{}, ErrNotConfigured
	}
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		c.logger.Warn("token exchange failed", zap.Error(err))
		return Token{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if tok.AccessToken == "" {
		return Token{}, fmt.Errorf("%w: empty access token", ErrExchangeFailed)
	}
	return Token{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken, Expiry: tok.Expiry}, nil
}

// FetchMember reads the member profile. A failing email lookup is not fatal;
// the profile is returned without the email field.
func (c *Client) FetchMember(ctx context.Context, accessToken string) (Member, error) {
	httpClient := c.oauth.Client(ctx, &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})

	var profile map[string]any
	if err := c.getJSON(ctx, httpClient, "/v2/me", &profile); err != nil {
		return Member{}, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	id, _ := profile["id"].(string)
	if id == "" {
		return Member{}, fmt.Errorf("%w: profile has no id", ErrProfileFetchFailed)
	}

	var emails struct {
		Elements []struct {
			Handle struct {
				EmailAddress string `json:"emailAddress"`
			} `json:"handle~"`
		} `json:"elements"`
	}
	if err := c.getJSON(ctx, httpClient, "/v2/emailAddress?q=members&projection=(elements*(handle~))", &emails); err != nil {
		c.logger.Warn("email lookup failed", zap.String("linkedin_id", id), zap.Error(err))
	} else if len(emails.Elements) > 0 && emails.Elements[0].Handle.EmailAddress != "" {
		profile["email"] = emails.Elements[0].Handle.EmailAddress
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return Member{}, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	return Member{ID: id, Payload: payload}, nil
}

func (c *Client) getJSON(ctx context.Context, httpClient *http.Client, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return fmt.Errorf("GET %s: status=%d", path, resp.StatusCode)
	}
	return json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out)
}
