// Package fdsn implements thin clients for FDSN web services: station and
// event metadata in the text format, and waveforms through the IRIS
// timeseries service in GeoCSV. The waveform client satisfies
// events.WaveformFunc, so it plugs straight into the event iterator.
package fdsn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rfkit/rfkit/pkg/errors"
	"github.com/rfkit/rfkit/pkg/httputil"
)

const (
	defaultBaseURL = "https://service.iris.edu"
	defaultTimeout = 30 * time.Second
)

// Client talks to one FDSN data center.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different data center.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the IRIS data center unless overridden.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs one GET with the retry policy: 5xx and 429 retry, everything
// else returns immediately. 204 and 404 map to a skippable absence, which
// the event iterator steps over.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path + "?" + query.Encode()
	var body []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
		}
		c.logger.Debug("fdsn request", "url", u)
		resp, err := c.http.Do(req)
		if err != nil {
			return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "get %s", path)}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound:
			return errors.New(errors.ErrCodeUnavailableWaveform, "no data for %s", path)
		case resp.StatusCode == http.StatusTooManyRequests:
			return &httputil.RetryableError{Err: errors.New(errors.ErrCodeRateLimited,
				"rate limited by %s", c.baseURL)}
		case resp.StatusCode >= 500:
			return &httputil.RetryableError{Err: errors.New(errors.ErrCodeNetwork,
				"%s returned %d", path, resp.StatusCode)}
		case resp.StatusCode != http.StatusOK:
			return errors.New(errors.ErrCodeInvalidInput, "%s returned %d", path, resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "read %s", path)}
		}
		return nil
	})
	return body, err
}

// fdsnTime formats a query timestamp the way the services expect.
func fdsnTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05")
}

func parseFdsnTime(s string) (time.Time, error) {
	for _, layout := range []string{
		"2006-01-02T15:04:05.999999Z",
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}
