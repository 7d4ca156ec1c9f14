// Package relay talks to the Bark push relay.
//
// Every call is a single GET of the form
//
//	{base}/{deviceCode}/{title}/{content}?{query}
//
// answered with a JSON body carrying an application level "code" (200 on success) and an
// optional "message".
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fastjson"

	"github.com/ferux/pushcenter/internal/fcontext"
)

const (
	// DefaultBaseURL of the public relay.
	DefaultBaseURL = "https://api.day.app"
	// DefaultTimeout bounds a single relay call.
	DefaultTimeout = time.Second * 10

	// SuccessCode is the application level code of an accepted push.
	SuccessCode = 200

	maxBodySize = 1 << 20 // 1 MiB
)

// Config of the relay client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Options are applied to every delivered message.
type Options struct {
	Group string
	Icon  string
}

// ProbeKind selects fixed title and content of a probe push.
type ProbeKind uint8

const (
	// ProbeValidation is sent when a device code is being registered.
	ProbeValidation ProbeKind = iota
	// ProbeConnectivity is sent by connectivity tests.
	ProbeConnectivity
)

func (k ProbeKind) texts() (title, content string) {
	switch k {
	case ProbeConnectivity:
		return "Connectivity test", "This is a connectivity test message, please ignore it"
	default:
		return "Device verification", "This is a device verification message, please ignore it"
	}
}

// probeQuery keeps probes out of the device history and the clipboard.
const probeQuery = "isArchive=1&autoCopy=0"

// Client for the relay.
type Client struct {
	c       *http.Client
	base    string
	timeout time.Duration
	logger  zerolog.Logger
}

// New creates relay client. It's acceptable to pass nil http client.
func New(cfg Config, hc *http.Client, logger zerolog.Logger) *Client {
	if hc == nil {
		hc = &http.Client{}
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		c:       hc,
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		logger:  logger.With().Str("pkg", "relay").Logger(),
	}
}

// BaseURL of the relay.
func (c *Client) BaseURL() string { return c.base }

// Deliver pushes a message to a device. A nil error means the relay accepted it.
func (c *Client) Deliver(ctx context.Context, deviceCode, title, content string, opts Options) error {
	query := "group=" + escapeComponent(opts.Group) + "&icon=" + escapeComponent(opts.Icon)

	return c.push(ctx, deviceCode, title, content, query)
}

// Check sends a non-intrusive probe push to a device.
func (c *Client) Check(ctx context.Context, deviceCode string, kind ProbeKind) error {
	title, content := kind.texts()

	return c.push(ctx, deviceCode, title, content, probeQuery)
}

// Probe reports whether the relay accepted a validation probe for the device code.
func (c *Client) Probe(ctx context.Context, deviceCode string) bool {
	return c.Check(ctx, deviceCode, ProbeValidation) == nil
}

// Ping checks that the relay answers at all. Any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base, nil)
	if err != nil {
		return fmt.Errorf("making new request: %w", err)
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return c.transportError(err)
	}

	_, _ = io.Copy(ioutil.Discard, io.LimitReader(resp.Body, maxBodySize))
	_ = resp.Body.Close()

	return nil
}

func (c *Client) pushURL(deviceCode, title, content, query string) string {
	return c.base + "/" + escapeComponent(deviceCode) +
		"/" + escapeComponent(title) +
		"/" + escapeComponent(content) +
		"?" + query
}

func (c *Client) push(ctx context.Context, deviceCode, title, content, query string) error {
	logger := c.logger.With().
		Str("request_id", fcontext.RequestID(ctx)).
		Str("device_id", fcontext.DeviceID(ctx)).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pushURL(deviceCode, title, content, query), nil)
	if err != nil {
		return fmt.Errorf("making new request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if rid := fcontext.RequestID(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	start := time.Now()

	resp, err := c.c.Do(req)
	if err != nil {
		err = c.transportError(err)
		logger.Debug().Err(err).Dur("took", time.Since(start)).Msg("relay unreachable")

		return err
	}

	defer func() {
		errclose := resp.Body.Close()
		if errclose != nil {
			logger.Error().Err(errclose).Msg("closing response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(ioutil.Discard, io.LimitReader(resp.Body, maxBodySize))
		logger.Debug().Int("status", resp.StatusCode).Msg("relay http error")

		return StatusError(resp.StatusCode)
	}

	body, err := ioutil.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return c.transportError(err)
	}

	logger.Debug().RawJSON("response", body).Dur("took", time.Since(start)).Msg("relay answered")

	return parseResponse(body)
}

func (c *Client) transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutError(c.timeout)
	}

	var uerr *url.Error
	if errors.As(err, &uerr) {
		// url.Error repeats the whole request url, which contains the device code.
		return uerr.Err
	}

	return err
}

func parseResponse(body []byte) error {
	v, err := fastjson.ParseBytes(body)
	if err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	code := v.GetInt("code")
	if code == SuccessCode {
		return nil
	}

	return APIError{Code: code, Message: string(v.GetStringBytes("message"))}
}
