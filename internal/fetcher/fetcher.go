// Package fetcher retrieves pages over HTTP for the crawler. Anything other
// than 200 OK is a failure; 5xx and 429 responses and transport errors are
// retried with backoff, other statuses fail at once.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/config"
	apperrors "github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/errors"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/resilience"
)

const defaultUserAgent = "rank-rangers-crawler/1.0"

// Fetcher is an HTTP page fetcher, safe for concurrent use.
type Fetcher struct {
	client       *http.Client
	attempts     int
	maxBodyBytes int64
	userAgent    string
	logger       *slog.Logger
}

// New builds a Fetcher from the crawler section of the config.
func New(cfg config.CrawlerConfig) *Fetcher {
	return NewWithClient(cfg, &http.Client{Timeout: cfg.FetchTimeout})
}

// NewWithClient is New with a caller-supplied client, e.g. an
// httptest server's.
func NewWithClient(cfg config.CrawlerConfig, client *http.Client) *Fetcher {
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	attempts := cfg.FetchAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return &Fetcher{
		client:       client,
		attempts:     attempts,
		maxBodyBytes: cfg.MaxBodyBytes,
		userAgent:    ua,
		logger:       slog.Default().With("component", "fetcher"),
	}
}

// Fetch returns the body of url. Failures are *apperrors.FetchError values
// and match apperrors.ErrFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var body string
	err := resilience.Retry(ctx, "fetch", resilience.RetryConfig{
		MaxAttempts:  f.attempts,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     5 * time.Second,
	}, func(ctx context.Context) error {
		b, err := f.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return "", err
	}
	return body, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", resilience.Permanent(&apperrors.FetchError{URL: url, Err: err})
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &apperrors.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		fe := &apperrors.FetchError{URL: url, Status: resp.StatusCode}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return "", fe
		}
		return "", resilience.Permanent(fe)
	}

	var r io.Reader = resp.Body
	if f.maxBodyBytes > 0 {
		r = io.LimitReader(resp.Body, f.maxBodyBytes)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", &apperrors.FetchError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}
	f.logger.Debug("fetched", "url", url, "bytes", len(b))
	return string(b), nil
}
