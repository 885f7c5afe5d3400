// Package auth implements the two token-acquisition stages. Step 1 is an
// OpenID Connect password grant; step 2 is a service-login call that
// bears the step-1 token and mints a second, opaque token. Both stages
// share the retrying httpclient.Client and surface AUTHENTICATION_ERROR on
// any failure.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"masterlist-ingestor/internal/httpclient"
	"masterlist-ingestor/internal/result"
)

// AccessTokenConfig is the AUTH_* configuration for the password grant.
type AccessTokenConfig struct {
	URL          string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	Timeout      time.Duration
}

// AccessTokenProvider acquires the step-1 OIDC access token via a
// password grant.
type AccessTokenProvider struct {
	cfg    AccessTokenConfig
	client *httpclient.Client
	logger hclog.Logger
}

func NewAccessTokenProvider(cfg AccessTokenConfig, logger hclog.Logger) *AccessTokenProvider {
	return &AccessTokenProvider{
		cfg:    cfg,
		client: httpclient.New(cfg.Timeout),
		logger: logger.Named("access-token"),
	}
}

// AcquireToken performs the step-1 password grant and returns the
// access_token field of the JSON response. Any network failure, non-2xx
// status, malformed JSON, or missing field yields AUTHENTICATION_ERROR.
func (p *AccessTokenProvider) AcquireToken(ctx context.Context) result.Result[string] {
	return result.FromComputation(result.AuthenticationError, "access token acquisition", func() (string, error) {
		form := url.Values{}
		form.Set("grant_type", "password")
		form.Set("client_id", p.cfg.ClientID)
		form.Set("client_secret", p.cfg.ClientSecret)
		form.Set("username", p.cfg.Username)
		form.Set("password", p.cfg.Password)
		encoded := form.Encode()

		resp, err := p.client.Do(func() (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, strings.NewReader(encoded))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			return req, nil
		})
		if err != nil {
			return "", fmt.Errorf("requesting access token: %w", err)
		}
		defer resp.Body.Close()

		var payload struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return "", fmt.Errorf("decoding access token response: %w", err)
		}
		if payload.AccessToken == "" {
			return "", errors.New("access token response missing access_token field")
		}

		p.logger.Debug("acquired access token")
		return payload.AccessToken, nil
	})
}
