// ABOUTME: Apollo HTTP client: one long-lived transport, fixed headers, one request per call
// ABOUTME: Collapses every upstream or transport failure into a nil result plus a diagnostic

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/2389/apollo-gateway/internal/store"
)

// DefaultBaseURL is the Apollo REST API root.
const DefaultBaseURL = "https://api.apollo.io/api/v1"

// maxResponseSize bounds how much of an upstream body is read.
const maxResponseSize = 32 << 20

// Operation names used in logs and failure records.
const (
	OpPeopleEnrichment        = "people_enrichment"
	OpOrganizationEnrichment  = "organization_enrichment"
	OpPeopleSearch            = "people_search"
	OpOrganizationSearch      = "organization_search"
	OpOrganizationJobPostings = "organization_job_postings"
)

// ErrMissingAPIKey is returned by New when no credential is configured.
var ErrMissingAPIKey = errors.New("apollo api key is required")

// Config holds the transport configuration of a Client.
type Config struct {
	APIKey     string
	BaseURL    string                // defaults to DefaultBaseURL
	HTTPClient *http.Client          // defaults to cleanhttp.DefaultClient()
	Logger     *slog.Logger          // defaults to slog.Default()
	Failures   store.FailureRecorder // optional persistent diagnostics
}

// Client issues Apollo requests. It is immutable after New and safe for
// concurrent use.
type Client struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	logger   *slog.Logger
	failures store.FailureRecorder
}

// checker is implemented by every response type; it rejects bodies that
// decode but lack their primary identifiers or required counts.
type checker interface {
	Check() error
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if u, err := url.Parse(baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultClient()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  baseURL,
		http:     httpClient,
		logger:   logger.With("component", "apollo-client"),
		failures: cfg.Failures,
	}, nil
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call is one request description.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

// do sends the request and decodes a 200 body into out. It reports false
// for every other outcome after emitting a diagnostic.
func (c *Client) do(ctx context.Context, req call, out checker) bool {
	requestID := uuid.New().String()

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			c.report(ctx, &store.Failure{
				RequestID: requestID,
				Operation: req.op,
				Method:    req.method,
				URL:       target,
				Reason:    store.ReasonTransport,
				Error:     fmt.Sprintf("encoding request: %v", err),
			})
			return false
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		c.report(ctx, &store.Failure{
			RequestID: requestID,
			Operation: req.op,
			Method:    req.method,
			URL:       target,
			Reason:    store.ReasonTransport,
			Error:     fmt.Sprintf("building request: %v", err),
		})
		return false
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	c.logger.Debug("→ apollo request",
		"request_id", requestID,
		"operation", req.op,
		"method", req.method,
		"url", target,
	)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.report(ctx, &store.Failure{
			RequestID: requestID,
			Operation: req.op,
			Method:    req.method,
			URL:       target,
			Reason:    store.ReasonTransport,
			Error:     err.Error(),
			Duration:  time.Since(start),
		})
		return false
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.report(ctx, &store.Failure{
			RequestID:  requestID,
			Operation:  req.op,
			Method:     req.method,
			URL:        target,
			Reason:     store.ReasonTransport,
			StatusCode: resp.StatusCode,
			Error:      fmt.Sprintf("reading body: %v", err),
			Duration:   time.Since(start),
		})
		return false
	}

	if resp.StatusCode != http.StatusOK {
		c.report(ctx, &store.Failure{
			RequestID:  requestID,
			Operation:  req.op,
			Method:     req.method,
			URL:        target,
			Reason:     classifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			Duration:   time.Since(start),
		})
		return false
	}

	if err := decode(raw, out); err != nil {
		c.report(ctx, &store.Failure{
			RequestID:  requestID,
			Operation:  req.op,
			Method:     req.method,
			URL:        target,
			Reason:     store.ReasonDecode,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			Error:      err.Error(),
			Duration:   time.Since(start),
		})
		return false
	}

	c.logger.Debug("← apollo response",
		"request_id", requestID,
		"operation", req.op,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return true
}

// decode parses a success body. Unknown upstream fields are ignored.
func decode(raw []byte, out checker) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("empty response body")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if err := out.Check(); err != nil {
		return fmt.Errorf("checking response: %w", err)
	}
	return nil
}
