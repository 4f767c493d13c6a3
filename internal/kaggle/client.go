package kaggle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"nba_decade/backend/internal/metrics"
)

// ErrDownloadFailed indicates the dataset download did not succeed within the
// configured attempt budget.
var ErrDownloadFailed = errors.New("dataset download failed")

// Client downloads dataset files from the Kaggle API.
type Client struct {
	baseURL    string
	username   string
	key        string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a new Kaggle API client. Credentials are the standard
// Kaggle username/key pair.
func NewClient(baseURL, username, key string, timeout time.Duration, maxRetries int, retryDelay time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		username:   username,
		key:        key,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// DownloadDataset downloads a single file of a dataset into destDir and
// returns the path of the compressed archive. The download is retried with a
// fixed inter-attempt delay; exhausting the attempt budget returns
// ErrDownloadFailed. An existing archive at the destination is overwritten,
// so a forced re-download needs no special handling.
func (c *Client) DownloadDataset(ctx context.Context, dataset, file, destDir string) (string, error) {
	url := fmt.Sprintf("%s/datasets/download/%s/%s", c.baseURL, dataset, file)
	zipPath := filepath.Join(destDir, file+".zip")

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("delay", c.retryDelay).
				Msg("Retrying dataset download")

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		metrics.DownloadAttemptsTotal.Inc()

		if lastErr = c.downloadOnce(ctx, url, zipPath); lastErr == nil {
			return zipPath, nil
		}

		log.Warn().
			Err(lastErr).
			Str("url", url).
			Int("attempt", attempt).
			Int("max_retries", c.maxRetries).
			Msg("Dataset download attempt failed")
	}

	return "", fmt.Errorf("%w: giving up after %d attempts: %v", ErrDownloadFailed, c.maxRetries, lastErr)
}

// downloadOnce performs a single download attempt, streaming the response
// body to dest.
func (c *Client) downloadOnce(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.username, c.key)
	req.Header.Set("Accept", "application/octet-stream")
	req.Header.Set("User-Agent", "nba-decade-backend/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("download returned status %d: %s", resp.StatusCode, string(body))
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	written, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	log.Debug().
		Str("url", url).
		Str("dest", dest).
		Int64("bytes", written).
		Msg("Dataset archive downloaded")

	return nil
}
