package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/ttscrape/internal/model"
	"github.com/nao1215/ttscrape/internal/schema"
)

const (
	// DefaultTimeout bounds one batch insert request.
	DefaultTimeout = 5 * time.Minute

	writeModeOverwrite = "overwrite"
	apiKeyHeader       = "X-API-Key"
	maxErrorBody       = 1 << 20
)

// Metadata describes the table a payload is written to.
type Metadata struct {
	TableName string   `json:"table_name"`
	Columns   []string `json:"columns"`
	SQLUp     string   `json:"sql_up"`
	SQLDown   string   `json:"sql_down"`
	WriteMode string   `json:"write_mode"`
	SQLBefore *string  `json:"sql_before"`
	SQLAfter  *string  `json:"sql_after"`
	DryRun    bool     `json:"dryrun"`
}

// Request is one table's entry in a batch insert.
type Request struct {
	Metadata Metadata `json:"metadata"`
	Payload  any      `json:"payload"`
}

// Client posts datasets to {baseURL}/batch_insert.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	dryRun  bool
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
	}
}

// WithDryRun asks the endpoint to validate the batch without writing it.
func WithDryRun(dryRun bool) Option {
	return func(c *Client) {
		c.dryRun = dryRun
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New returns a Client for the endpoint at baseURL.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" || apiKey == "" {
		return nil, ErrMissingCredentials
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Requests builds the batch for ds, one entry per table in schema.Order.
func (c *Client) Requests(ds *model.Dataset) ([]Request, error) {
	payloads := map[string]any{
		schema.Courses: ds.Courses,
		schema.Classes: ds.Classes,
		schema.Times:   ds.Times,
	}

	tables, err := schema.All()
	if err != nil {
		return nil, err
	}
	reqs := make([]Request, 0, len(tables))
	for _, t := range tables {
		reqs = append(reqs, Request{
			Metadata: Metadata{
				TableName: t.Name,
				Columns:   t.Columns,
				SQLUp:     t.Up,
				SQLDown:   t.Down,
				WriteMode: writeModeOverwrite,
				DryRun:    c.dryRun,
			},
			Payload: payloads[t.Name],
		})
	}
	return reqs, nil
}

// Upload sends ds in a single batch insert.
func (c *Client) Upload(ctx context.Context, ds *model.Dataset) error {
	reqs, err := c.Requests(ds)
	if err != nil {
		return err
	}
	body, err := json.Marshal(reqs)
	if err != nil {
		return fmt.Errorf("encoding batch: %w", err)
	}

	endpoint := c.baseURL + "/batch_insert"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	courses, classes, times := ds.Counts()
	c.logger.Info("uploading dataset",
		"url", endpoint,
		"courses", courses,
		"classes", classes,
		"times", times,
		"dry_run", c.dryRun,
	)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("posting batch to %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrRejected, errorMessage(respBody))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	c.logger.Info("upload finished", "status", resp.StatusCode, "elapsed", time.Since(start))
	return nil
}

// errorMessage extracts the "error" field of a rejection body, falling
// back to the raw body.
func errorMessage(body []byte) string {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Error) == 0 {
		return strings.TrimSpace(string(body))
	}
	var msg string
	if err := json.Unmarshal(payload.Error, &msg); err == nil {
		return msg
	}
	return string(payload.Error)
}
