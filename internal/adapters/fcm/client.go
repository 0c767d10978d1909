// Package fcm delivers composed envelopes to the Firebase Cloud Messaging HTTP v1 API
package fcm

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dadhumor/internal/core/envelope"
	"dadhumor/internal/core/payload"
	perr "dadhumor/internal/platform/errors"
	"dadhumor/internal/platform/logger"
)

const (
	baseURLDefault = "https://fcm.googleapis.com"
	defaultTimeout = 10 * time.Second
)

// Options configures the Client
type Options struct {
	BaseURL string
	Timeout time.Duration
}

// Client posts one message per call; it never retries
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("fcm"),
	}
}

// Endpoint returns the send url for a project
func (c *Client) Endpoint(projectID string) string {
	return c.opts.BaseURL + "/v1/projects/" + url.PathEscape(projectID) + "/messages:send"
}

// Send posts msg; any non-2xx answer is an upstream error carrying the response tail
// projectID and token are resolved once per run and shared by every delivery
func (c *Client) Send(ctx context.Context, projectID, token string, msg envelope.Message) error {
	if projectID == "" {
		return perr.Configf("fcm: project id is empty")
	}
	if token == "" {
		return perr.Configf("fcm: bearer token is empty")
	}
	body, err := payload.Marshal(envelope.Request{Message: msg})
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "fcm: encode message for %s", msg.Topic)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(projectID), bytes.NewReader(body))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUpstream, "fcm: new request failed")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUpstream, "fcm: send to %s failed", msg.Topic)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("topic", msg.Topic).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("latency", time.Since(start)).
		Msg("fcm http response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return perr.Newf(perr.ErrorCodeUpstream, "fcm: topic %s status %d body %s", msg.Topic, resp.StatusCode, strings.TrimSpace(string(tail)))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return nil
}
