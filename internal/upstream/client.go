// Package upstream executes JSON requests against the catalog and list
// services: per-call timeout, rate limiting, identity/correlation headers,
// latency observation, and status-to-sentinel translation.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
	"github.com/wayfarer/itinerary-orchestrator/internal/ratelimiter"
	"github.com/wayfarer/itinerary-orchestrator/internal/reqctx"
)

// Observer receives one call per completed request. outcome is "ok",
// "not_found", "timeout" or "error".
type Observer func(upstream, outcome string, latency time.Duration)

// Client talks to one upstream service rooted at baseURL.
type Client struct {
	name       ratelimiter.Upstream
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *ratelimiter.UpstreamLimiters
	observe    Observer
}

// Options are the optional collaborators of a Client.
type Options struct {
	Limiter   *ratelimiter.UpstreamLimiters
	Observe   Observer
	Transport http.RoundTripper
}

func New(name ratelimiter.Upstream, baseURL string, timeout time.Duration, opts Options) *Client {
	if opts.Observe == nil {
		opts.Observe = func(string, string, time.Duration) {}
	}
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		httpClient: &http.Client{
			Transport: reqctx.NewTransport(opts.Transport),
		},
		limiter: opts.Limiter,
		observe: opts.Observe,
	}
}

// Do issues method {baseURL}{path}?{query} with body in (if non-nil) and
// decodes a 2xx JSON response into out (if non-nil).
//
//	404                        -> domain.ErrNotFound
//	other non-2xx, transport   -> domain.ErrUpstreamUnavailable
//	timeout                    -> domain.ErrUpstreamUnavailable wrapping context.DeadlineExceeded
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	err := c.do(ctx, method, path, query, in, out)
	c.observe(string(c.name), outcome(err), time.Since(start))
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := c.limiter.Wait(ctx, c.name); err != nil {
		return fmt.Errorf("%w: %s rate limit wait: %w", domain.ErrUpstreamUnavailable, c.name, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrUpstreamUnavailable, method, target, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s %s: %w", method, target, domain.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s %s: unexpected status %d", domain.ErrUpstreamUnavailable, method, target, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: decode response: %w", domain.ErrUpstreamUnavailable, method, target, err)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
