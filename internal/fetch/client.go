package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/ttscrape/internal/ratelimit"
)

const (
	// DefaultTimeout bounds a single request including the body read.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the crawler to the timetable host.
	DefaultUserAgent = "ttscrape/1.0 (+https://github.com/nao1215/ttscrape)"

	// DefaultMaxBodySize caps how much of a response body is read.
	DefaultMaxBodySize = 10 * 1024 * 1024
)

// Waiter blocks until the caller may issue a request.
// *ratelimit.Limiter implements it.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Response is a fetched page.
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Client fetches pages under a shared rate limit. It is safe for
// concurrent use.
type Client struct {
	hc          *http.Client
	limiter     Waiter
	userAgent   string
	maxBodySize int64
	timeout     time.Duration
	proxyAddr   string
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLimiter sets the limiter every request waits on.
func WithLimiter(w Waiter) Option {
	return func(c *Client) {
		c.limiter = w
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per response.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBodySize = n
	}
}

// WithProxy routes requests through the SOCKS5 proxy at addr ("host:port").
// An empty addr means a direct connection.
func WithProxy(addr string) Option {
	return func(c *Client) {
		c.proxyAddr = addr
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a Client. Without WithLimiter the client uses a limiter with
// the default budget.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.limiter == nil {
		c.limiter = ratelimit.NewDefault()
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // timetable host serves an incomplete chain
		},
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}
	if c.proxyAddr != "" {
		dial, err := socksDialContext(c.proxyAddr)
		if err != nil {
			return nil, err
		}
		transport.Proxy = nil
		transport.DialContext = dial
	}

	c.hc = &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return c, nil
}

// Get waits on the limiter, then issues a GET for url. Any status is
// returned in the Response; only transport failures and bodies larger than
// the size limit are errors.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNetwork, url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNetwork, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrNetwork, url, err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, fmt.Errorf("%w: %s: body exceeds %d bytes", ErrNetwork, url, c.maxBodySize)
	}

	c.logger.Debug("fetched",
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	return &Response{URL: url, StatusCode: resp.StatusCode, Body: body}, nil
}

// Page fetches url and returns its body. Any status other than 200 fails
// with ErrUnexpectedStatus.
func (c *Client) Page(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, url, resp.StatusCode)
	}
	return resp.Body, nil
}

// Status fetches url and returns only its status code.
func (c *Client) Status(ctx context.Context, url string) (int, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}
