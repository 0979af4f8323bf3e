// Package histock provides a client for the HiStock Taiwan index page
package histock

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/twindex/internal/common"
	"github.com/bobmcallan/twindex/internal/interfaces"
	"github.com/bobmcallan/twindex/internal/models"
)

const (
	DefaultBaseURL   = "https://histock.tw"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 2 // requests per second

	indexPath = "/index-tw/TWN"

	// HiStock serves a different (incomplete) page to non-browser clients.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Client fetches the index page over HTTP and extracts the quote fields.
// No API key is required — this is a public page.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

var _ interfaces.IndexSource = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new HiStock page client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchIndexPage retrieves the raw index page HTML. The request carries a
// cache-busting query parameter and no-cache headers so intermediaries never
// serve a stale copy.
func (c *Client) FetchIndexPage(ctx context.Context) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?_nocache=%d", c.baseURL, indexPath, time.Now().Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Expires", "0")

	c.logger.Debug().Str("url", reqURL).Msg("HiStock page request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error().Err(err).Dur("elapsed", elapsed).Msg("HiStock page request failed")
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("HiStock non-OK response")
		return nil, fmt.Errorf("HiStock error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Info().Int("status", resp.StatusCode).Int("bytes", len(body)).Dur("elapsed", elapsed).Msg("HiStock page fetched")

	return body, nil
}

// IndexQuote fetches the index page and extracts the price, change, and
// percent change fields.
func (c *Client) IndexQuote(ctx context.Context) (*models.IndexQuote, error) {
	page, err := c.FetchIndexPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}

	quote, err := ParseIndexPage(page, c.logger)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	return quote, nil
}
