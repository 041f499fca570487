// Package market provides a REST client for the remote trading marketplace
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"tradepost/internal/core/catalog"
	perr "tradepost/internal/platform/errors"
	"tradepost/internal/platform/logger"
	salesdom "tradepost/internal/services/sales/domain"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUA        = "tradepost"
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Retry config for transient server responses
	MaxRetries int
	RetryBase  time.Duration
}

// Client talks to the marketplace REST API
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	sleep func(time.Duration)
}

var _ salesdom.MarketplacePort = (*Client)(nil)

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		panic("market: base url is required")
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("market"),
		sleep: time.Sleep,
	}
}

// ListItems fetches the full catalog snapshot
func (c *Client) ListItems(ctx context.Context) ([]catalog.Item, error) {
	body, err := c.do(ctx, http.MethodGet, "/items", "", nil)
	if err != nil {
		return nil, err
	}
	var items []catalog.Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "market items decode failed")
	}
	return items, nil
}

// Sell posts a sell order for the given item on behalf of the token's owner
func (c *Client) Sell(ctx context.Context, token, itemID string, amount int) (salesdom.Receipt, error) {
	payload, err := json.Marshal(map[string]int{"amount": amount})
	if err != nil {
		return salesdom.Receipt{}, perr.Wrapf(err, perr.ErrorCodeJSON, "market sell encode failed")
	}
	body, err := c.do(ctx, http.MethodPost, "/items/"+itemID+"/sell", token, payload)
	if err != nil {
		return salesdom.Receipt{}, err
	}
	var receipt salesdom.Receipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return salesdom.Receipt{}, perr.Wrapf(err, perr.ErrorCodeJSON, "market sell decode failed")
	}
	return receipt, nil
}

// do issues one request with auth and retries on transient server errors
func (c *Client) do(ctx context.Context, method, path, token string, payload []byte) ([]byte, error) {
	url := c.opts.BaseURL + path
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var rdr io.Reader
		if payload != nil {
			rdr = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, rdr)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "market new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		lat := time.Since(start)

		if err != nil {
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "market do failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("market transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("market http response")

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			_ = resp.Body.Close()
			if err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "market body read failed")
			}
			return body, nil
		case http.StatusUnauthorized, http.StatusForbidden:
			_ = drainAndClose(resp.Body)
			return nil, perr.Unauthorizedf("market rejected credential")
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				return nil, perr.Unavailablef("market transient server error")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("market transient error retrying")
			_ = drainAndClose(resp.Body)
			c.sleep(back)
			attempts++
			continue
		default:
			tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, perr.Newf(perr.ErrorCodeUnknown,
				"market unexpected status %d body %s", resp.StatusCode, string(tail))
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	ms := int64(c.opts.RetryBase / time.Millisecond)
	ms = ms << uint(attempt)
	if lim := int64(10 * time.Second / time.Millisecond); ms > lim {
		ms = lim
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 1<<20))
	return rc.Close()
}
