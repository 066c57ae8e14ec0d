package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 15 * time.Second

	// The target site varies its markup by client; a browser-like agent and
	// German locale headers are load-bearing inputs, not cosmetics.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptHeader     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	acceptLanguage   = "de-DE,de;q=0.9,en;q=0.8"

	maxBodyBytes = 4 << 20
)

// StationOptions parameterise the station page fetcher.
type StationOptions struct {
	Timeout   time.Duration
	UserAgent string
}

// Station fetches price pages over HTTP.
type Station struct {
	opts   StationOptions
	client *http.Client
	logger zerolog.Logger
}

// NewStation constructs a station page fetcher.
func NewStation(opts StationOptions, logger zerolog.Logger) *Station {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	return &Station{
		opts:   opts,
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "station_fetcher").Logger(),
	}
}

// FetchPage retrieves the raw HTML for one station URL. Any network error,
// timeout or non-200 status is returned as a transient failure; the caller
// skips the station for the current cycle.
func (s *Station) FetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create station request: %w", err)
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch station page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("station page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read station page: %w", err)
	}

	return string(body), nil
}

var _ PageFetcher = (*Station)(nil)
