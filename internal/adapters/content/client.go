// Package content fetches joke batches from the upstream content API
package content

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dadhumor/internal/core/joke"
	perr "dadhumor/internal/platform/errors"
	"dadhumor/internal/platform/logger"
)

const (
	baseURLDefault   = "https://daily-dad-humor3.azurewebsites.net"
	pathDefault      = "/api/JokesByCategory"
	defaultTimeout   = 10 * time.Second
	defaultUA        = "dadhumor-dispatch"
	defaultMaxRetry  = 2
	defaultRetryBase = 500 * time.Millisecond

	// batches are a few dozen jokes; anything larger is not ours
	maxBody = 1 << 20
)

// Options configures the Client
type Options struct {
	BaseURL   string
	Path      string
	UserAgent string
	Timeout   time.Duration

	// Retry config for transport errors and transient upstream statuses
	// Zero keeps the default; negative disables retries
	MaxRetries int
	RetryBase  time.Duration
}

// Client is a small content API client with bounded in-call retries
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.Path == "" {
		o.Path = pathDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("content"),
		now:  time.Now,
	}
}

// URL returns the fetch url for a dataset
func (c *Client) URL(datasetID int) string {
	q := url.Values{}
	q.Set("dataset", strconv.Itoa(datasetID))
	return c.opts.BaseURL + c.opts.Path + "?" + q.Encode()
}

// Fetch loads the joke batch for datasetID
// Any failure is an upstream error; transient ones are retried within the call
func (c *Client) Fetch(ctx context.Context, datasetID int) (joke.Batch, error) {
	body, err := c.get(ctx, c.URL(datasetID))
	if err != nil {
		return joke.Batch{}, perr.WithOp(err, "content.fetch")
	}
	var b joke.Batch
	if err := json.Unmarshal(body, &b); err != nil {
		return joke.Batch{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "content malformed batch for dataset %d", datasetID)
	}
	c.log.Debug().
		Int("dataset_id", datasetID).
		Int("topics", b.Len()).
		Int("highlights", len(b.Highlights)).
		Msg("content batch fetched")
	return b, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, perr.Wrap(ctx.Err(), perr.ErrorCodeUpstream, "content fetch cancelled")
		default:
		}

		body, err := c.once(ctx, u, attempts)
		if err == nil {
			return body, nil
		}
		if !perr.Retryable(err) || attempts >= c.opts.MaxRetries {
			if perr.Retryable(err) {
				// out of attempts: surface as an upstream failure
				return nil, perr.Wrap(err, perr.ErrorCodeUpstream, "content source unavailable")
			}
			return nil, err
		}
		back := c.backoff(attempts)
		c.log.Warn().Err(err).Dur("retry_in", back).Int("attempt", attempts).Msg("content fetch retrying")
		if err := wait(ctx, back); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUpstream, "content fetch cancelled")
		}
		attempts++
	}
}

// wait blocks for d or until ctx is done
func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) once(ctx context.Context, u string, attempt int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUpstream, "content new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		if ctx.Err() != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUpstream, "content fetch cancelled")
		}
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "content transport error")
	}

	c.log.Debug().
		Str("url", u).
		Int("status", resp.StatusCode).
		Int("attempt", attempt).
		Dur("latency", lat).
		Msg("content http response")

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		defer resp.Body.Close()
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "content read body failed")
		}
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		_ = drainAndClose(resp.Body)
		return nil, perr.Newf(perr.ErrorCodeTooManyRequests, "content rate limited")
	case resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		_ = drainAndClose(resp.Body)
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "content transient status %d", resp.StatusCode)
	default:
		// read a small tail for diagnostics then return
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		_ = resp.Body.Close()
		return nil, perr.Newf(perr.ErrorCodeUpstream, "content unexpected status %d body %s", resp.StatusCode, string(body))
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	// simple exponential with cap
	d := c.opts.RetryBase << uint(attempt)
	if d > 10*time.Second || d <= 0 {
		d = 10 * time.Second
	}
	return d
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
