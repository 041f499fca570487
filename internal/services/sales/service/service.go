// Package service implements the sell command orchestration and the
// confirmation workflow behind it
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tradepost/internal/core/catalog"
	"tradepost/internal/core/command"
	perr "tradepost/internal/platform/errors"
	"tradepost/internal/platform/logger"
	"tradepost/internal/services/sales/domain"
)

// Options tunes the sell workflow
type Options struct {
	// ConfirmWindow is how long a prompt stays open; zero means the default
	ConfirmWindow time.Duration

	// SuggestLimit caps autocomplete responses; zero means the default
	SuggestLimit int
}

// Svc wires the sell command to the marketplace, the credential store,
// and the confirmation workflow
type Svc struct {
	market       domain.MarketplacePort
	tokens       domain.TokenPort
	wf           *workflow
	suggestLimit int
}

var (
	_ domain.CommandPort  = (*Svc)(nil)
	_ domain.ResolverPort = (*Svc)(nil)
)

// New builds the sales service. All ports are required
func New(market domain.MarketplacePort, tokens domain.TokenPort, notifier domain.NotifierPort, audit domain.AuditPort, opt Options) *Svc {
	if market == nil {
		panic("sales: market port is required")
	}
	if tokens == nil {
		panic("sales: token port is required")
	}
	if notifier == nil {
		panic("sales: notifier port is required")
	}
	if audit == nil {
		panic("sales: audit port is required")
	}

	limit := opt.SuggestLimit
	if limit <= 0 {
		limit = catalog.DefaultSuggestLimit
	}
	return &Svc{
		market:       market,
		tokens:       tokens,
		wf:           newWorkflow(opt.ConfirmWindow, newExecutor(market), notifier, audit),
		suggestLimit: limit,
	}
}

// Sell runs the gated sell pipeline up to the prompt: validate, resolve the
// item against a fresh catalog snapshot, check the requester's credential,
// then open a confirmation session. The sell itself only happens after the
// requester confirms
func (s *Svc) Sell(ctx context.Context, requesterID, itemRef string, amount *int) (domain.Prompt, error) {
	req, err := command.Validate(itemRef, amount)
	if err != nil {
		return domain.Prompt{}, err
	}

	items, err := s.market.ListItems(ctx)
	if err != nil {
		// an unreachable catalog and a missing item look the same to the
		// requester; keep the detail in the log
		logger.C(ctx).Warn().Err(err).Msg("catalog snapshot fetch failed")
		return domain.Prompt{}, perr.NotFoundf("Item not found.")
	}
	item, ok := catalog.Resolve(req.ItemRef, items)
	if !ok {
		return domain.Prompt{}, perr.NotFoundf("Item not found.")
	}

	token, ok, err := s.tokens.Token(ctx, requesterID)
	if err != nil {
		return domain.Prompt{}, perr.Wrap(err, perr.ErrorCodeDB, "credential lookup")
	}
	if !ok {
		return domain.Prompt{}, perr.Unauthorizedf("You are not authenticated. Please link your account.")
	}

	sess := domain.Session{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		Item:        item,
		Amount:      req.Amount,
	}
	deadline := s.wf.Open(sess, token)

	logger.C(ctx).Info().
		Str("session_id", sess.ID).
		Str("item_id", item.ID).
		Int("amount", req.Amount).
		Msg("confirmation session opened")

	total := formatCredits(item.Price * float64(req.Amount))
	return domain.Prompt{
		SessionID: sess.ID,
		Content:   "Are you sure you want to sell `" + item.Name + "` for " + total + " credits?",
		Choices: []domain.PromptChoice{
			{ID: domain.ChoiceConfirm, Label: "Confirm"},
			{ID: domain.ChoiceCancel, Label: "Cancel"},
		},
		ExpiresAt: deadline,
	}, nil
}

// Autocomplete suggests catalog items for a partial reference. A failed
// snapshot fetch degrades to no suggestions rather than an error
func (s *Svc) Autocomplete(ctx context.Context, query string) []catalog.Suggestion {
	items, err := s.market.ListItems(ctx)
	if err != nil {
		logger.C(ctx).Debug().Err(err).Msg("autocomplete snapshot fetch failed")
		return []catalog.Suggestion{}
	}
	return catalog.Suggest(query, items, s.suggestLimit)
}

// Resolve forwards a confirm or cancel choice to the pending session
func (s *Svc) Resolve(ctx context.Context, sessionID, actorID string, choice domain.Choice) {
	s.wf.Resolve(ctx, sessionID, actorID, choice)
}
