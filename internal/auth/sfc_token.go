package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"masterlist-ingestor/internal/httpclient"
	"masterlist-ingestor/internal/result"
)

// SfcTokenConfig is the LOGIN_* configuration for the service login.
// BorderPostID, BoxID, and PassengerControlType are deployment-fixed
// values, not per-request parameters.
type SfcTokenConfig struct {
	URL                  string
	BorderPostID         int
	BoxID                int
	PassengerControlType int
	Timeout              time.Duration
}

// SfcTokenProvider performs the service login bearing the step-1 access
// token, returning a second opaque token presented verbatim (not JSON).
type SfcTokenProvider struct {
	cfg    SfcTokenConfig
	client *httpclient.Client
	logger hclog.Logger
}

func NewSfcTokenProvider(cfg SfcTokenConfig, logger hclog.Logger) *SfcTokenProvider {
	return &SfcTokenProvider{
		cfg:    cfg,
		client: httpclient.New(cfg.Timeout),
		logger: logger.Named("sfc-token"),
	}
}

type sfcLoginRequest struct {
	BorderPostID         int `json:"borderPostId"`
	BoxID                int `json:"boxId"`
	PassengerControlType int `json:"passengerControlType"`
}

// AcquireToken performs the step-2 service login, bearing accessToken, and
// returns the response body verbatim as the SFC token string. Any failure
// yields AUTHENTICATION_ERROR.
func (p *SfcTokenProvider) AcquireToken(ctx context.Context, accessToken string) result.Result[string] {
	return result.FromComputation(result.AuthenticationError, "SFC token acquisition", func() (string, error) {
		body, err := json.Marshal(sfcLoginRequest{
			BorderPostID:         p.cfg.BorderPostID,
			BoxID:                p.cfg.BoxID,
			PassengerControlType: p.cfg.PassengerControlType,
		})
		if err != nil {
			return "", fmt.Errorf("encoding login request: %w", err)
		}

		resp, err := p.client.Do(func() (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(body))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+accessToken)
			return req, nil
		})
		if err != nil {
			return "", fmt.Errorf("requesting SFC token: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("reading SFC token response: %w", err)
		}
		token := string(raw)
		if token == "" {
			return "", fmt.Errorf("SFC token response was empty")
		}

		p.logger.Debug("acquired SFC token")
		return token, nil
	})
}
