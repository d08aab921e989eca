// Package chpp is a client for the Hattrick CHPP XML API.
//
// Requests are OAuth1a-signed GETs against a single endpoint selected by the
// file and version parameters. Transient 5xx failures are retried with
// jittered exponential backoff; every other failure surfaces once. Response
// bodies are checked for an embedded <ErrorCode> before any parser runs.
package chpp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/dghubble/oauth1"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/htstatus/chpp-client/internal/cache"
)

// Config holds the credentials and transport settings of a Client. Zero
// values fall back to the package defaults, except RetryJitter where zero
// disables jitter.
type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessKey      string
	AccessSecret   string

	BaseURL  string
	OAuthURL string

	RequestTimeout    time.Duration
	RetryTotal        int
	RetryBackoff      time.Duration
	RetryJitter       float64
	RetryRedirects    int
	RequestsPerMinute int

	// HTTPClient supplies the base transport. Signing wraps its Transport.
	HTTPClient *http.Client

	// Cache stores envelope-clean bodies. Nil disables caching.
	Cache *cache.Cache
}

func (c *Config) setDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.OAuthURL == "" {
		c.OAuthURL = DefaultOAuthURL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.RetryTotal <= 0 {
		c.RetryTotal = DefaultRetryTotal
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.RetryJitter < 0 {
		c.RetryJitter = 0
	}
	if c.RetryRedirects <= 0 {
		c.RetryRedirects = DefaultRetryRedirects
	}
}

// Client talks to CHPP on behalf of one set of credentials. It is safe for
// concurrent use; the signed HTTP client is created on the first
// authenticated call and reused afterwards.
type Client struct {
	cfg     Config
	oauth   *oauth1.Config
	limiter *rate.Limiter
	logger  *slog.Logger

	mu     sync.Mutex
	signed *http.Client
}

// NewClient creates a CHPP client. Access credentials may be empty when the
// client is only used for the OAuth handshake.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return nil, errors.New("chpp: consumer key and secret are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.setDefaults()

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}

	return &Client{
		cfg: cfg,
		oauth: &oauth1.Config{
			ConsumerKey:    cfg.ConsumerKey,
			ConsumerSecret: cfg.ConsumerSecret,
			Endpoint:       OAuthEndpoint(cfg.OAuthURL),
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With("component", "chpp"),
	}, nil
}

// HasAccessToken reports whether the client can make authenticated calls.
func (c *Client) HasAccessToken() bool {
	return c.cfg.AccessKey != "" && c.cfg.AccessSecret != ""
}

// session returns the signed HTTP client, creating it on first use.
func (c *Client) session() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.signed != nil {
		return c.signed, nil
	}
	if !c.HasAccessToken() {
		return nil, authErr("open session", ErrMissingAccessToken)
	}

	ctx := context.Background()
	if c.cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth1.HTTPClient, c.cfg.HTTPClient)
	}
	hc := c.oauth.Client(ctx, oauth1.NewToken(c.cfg.AccessKey, c.cfg.AccessSecret))
	maxRedirects := c.cfg.RetryRedirects
	hc.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) > maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}
	c.signed = hc
	return hc, nil
}

// Request performs a signed call to the given endpoint and returns the root
// of the response document once the envelope has been checked.
func (c *Client) Request(ctx context.Context, ep Endpoint, params url.Values) (*etree.Element, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("file", ep.File)
	query.Set("version", ep.Version)

	key := ""
	if c.cfg.Cache.Enabled() {
		key = cache.Key(c.cfg.AccessKey, query.Encode())
		if body, ok := c.cfg.Cache.Get(key); ok {
			c.logger.Debug("chpp cache hit", "file", ep.File, "version", ep.Version)
			return ParseEnvelope(body)
		}
	}

	body, err := c.fetch(ctx, ep, c.cfg.BaseURL+"?"+query.Encode())
	if err != nil {
		return nil, err
	}
	root, err := ParseEnvelope(body)
	if err != nil {
		return nil, err
	}
	if key != "" {
		c.cfg.Cache.Set(key, body)
	}
	return root, nil
}

// fetch runs the retry loop for one call. Only 500, 502, 503 and 504 are
// retried; any other status and any connection error fail immediately.
func (c *Client) fetch(ctx context.Context, ep Endpoint, u string) ([]byte, error) {
	hc, err := c.session()
	if err != nil {
		return nil, err
	}
	op := "request " + ep.String()
	log := c.logger.With("call_id", uuid.NewString(), "file", ep.File, "version", ep.Version)

	var lastErr error
	for attempt := 1; attempt <= c.cfg.RetryTotal; attempt++ {
		if attempt > 1 {
			delay := c.backoff(attempt - 1)
			log.Warn("retrying chpp request", "attempt", attempt, "delay", delay, "error", lastErr)
			if err := sleep(ctx, delay); err != nil {
				return nil, authErr(op, err)
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, authErr(op, fmt.Errorf("rate limit wait: %w", err))
		}

		start := time.Now()
		body, status, err := c.do(ctx, hc, u)
		if err != nil {
			log.Debug("chpp request failed", "attempt", attempt, "error", err)
			return nil, authErr(op, err)
		}
		log.Debug("chpp response", "attempt", attempt, "status", status,
			"bytes", len(body), "duration", time.Since(start).Round(time.Millisecond))

		if status >= 200 && status < 300 {
			return body, nil
		}
		lastErr = &StatusError{StatusCode: status, Body: truncate(body, 200)}
		if !isRetryableStatus(status) {
			return nil, authErr(op, lastErr)
		}
	}
	return nil, authErr(op, fmt.Errorf("giving up after %d attempts: %w", c.cfg.RetryTotal, lastErr))
}

// do performs a single attempt bounded by the request timeout.
func (c *Client) do(ctx context.Context, hc *http.Client, u string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// backoff returns the delay before retry n (1-based): RetryBackoff doubled per
// retry plus up to RetryJitter of that again.
func (c *Client) backoff(n int) time.Duration {
	d := float64(c.cfg.RetryBackoff) * math.Pow(2, float64(n-1))
	if c.cfg.RetryJitter > 0 {
		d += d * c.cfg.RetryJitter * rand.Float64()
	}
	return time.Duration(d)
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CheckToken returns the token information document for the access token.
func (c *Client) CheckToken(ctx context.Context) (*etree.Element, error) {
	body, err := c.oauthGet(ctx, "check token", checkTokenPath)
	if err != nil {
		return nil, err
	}
	return ParseEnvelope(body)
}

// InvalidateToken revokes the access token. The client cannot make
// authenticated calls with it afterwards.
func (c *Client) InvalidateToken(ctx context.Context) error {
	_, err := c.oauthGet(ctx, "invalidate token", invalidateTokenPath)
	return err
}

// oauthGet is a signed single-attempt GET below the OAuth base URL.
func (c *Client) oauthGet(ctx context.Context, op, path string) ([]byte, error) {
	hc, err := c.session()
	if err != nil {
		return nil, err
	}
	base := c.cfg.OAuthURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	body, status, err := c.do(ctx, hc, base+path)
	if err != nil {
		return nil, authErr(op, err)
	}
	if status < 200 || status >= 300 {
		return nil, authErr(op, &StatusError{StatusCode: status, Body: truncate(body, 200)})
	}
	c.logger.Debug("chpp oauth call", "op", op, "status", status)
	return body, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
