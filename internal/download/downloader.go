// Package download performs the authenticated binary fetch of the Master
// List bundle, presenting both the access token and the SFC token
// simultaneously.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"masterlist-ingestor/internal/domain"
	"masterlist-ingestor/internal/httpclient"
	"masterlist-ingestor/internal/result"
)

// Config is the DOWNLOAD_URL configuration for the bundle fetch.
type Config struct {
	URL     string
	Timeout time.Duration
}

// BinaryDownloader fetches the raw bundle. It does not validate that the
// returned bytes parse as CMS; that is the parser's responsibility.
type BinaryDownloader struct {
	cfg    Config
	client *httpclient.Client
	logger hclog.Logger
}

func NewBinaryDownloader(cfg Config, logger hclog.Logger) *BinaryDownloader {
	return &BinaryDownloader{
		cfg:    cfg,
		client: httpclient.New(cfg.Timeout),
		logger: logger.Named("downloader"),
	}
}

// Download fetches the bundle under both the Authorization bearer header
// and the x-sfc-authorization bearer header. Any failure yields
// EXTERNAL_SERVICE_ERROR.
func (d *BinaryDownloader) Download(ctx context.Context, creds domain.AuthCredentials) result.Result[[]byte] {
	return result.FromComputation(result.ExternalServiceError, "master list bundle download", func() ([]byte, error) {
		resp, err := d.client.Do(func() (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.cfg.URL, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
			req.Header.Set("x-sfc-authorization", "Bearer "+creds.SfcToken)
			return req, nil
		})
		if err != nil {
			return nil, fmt.Errorf("downloading master list bundle: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading master list bundle: %w", err)
		}

		d.logger.Debug("downloaded master list bundle", "bytes", len(raw))
		return raw, nil
	})
}
