// Package chatgw delivers final workflow messages to the chat gateway webhook
package chatgw

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	perr "tradepost/internal/platform/errors"
	"tradepost/internal/platform/logger"
	salesdom "tradepost/internal/services/sales/domain"
)

const defaultTimeout = 5 * time.Second

// Options configures the Notifier
type Options struct {
	WebhookURL string
	Timeout    time.Duration
}

// Notifier posts final outcome messages to a webhook endpoint
type Notifier struct {
	http *http.Client
	opts Options
	log  logger.Logger
}

var _ salesdom.NotifierPort = (*Notifier)(nil)

// NewNotifier creates a Notifier; an empty webhook URL is allowed and turns
// delivery into a logged no-op so the workflow keeps running without a gateway
func NewNotifier(o Options) *Notifier {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Notifier{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("chatgw"),
	}
}

// FinalOutcome posts the message that replaces the confirmation prompt
func (n *Notifier) FinalOutcome(ctx context.Context, msg salesdom.FinalMessage) error {
	if n.opts.WebhookURL == "" {
		n.log.Debug().
			Str("session_id", msg.SessionID).
			Str("resolution", string(msg.Resolution)).
			Msg("no webhook configured, final message dropped")
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "chatgw encode failed")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.opts.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "chatgw new request failed")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "chatgw post failed")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return perr.Newf(perr.ErrorCodeUnavailable, "chatgw unexpected status %d", resp.StatusCode)
	}
	return nil
}
