// Package http provides http transport for the sell workflow
package http

import (
	stdhttp "net/http"

	"tradepost/internal/core/catalog"
	"tradepost/internal/modkit/httpkit"
	perr "tradepost/internal/platform/errors"
	"tradepost/internal/platform/logger"
	"tradepost/internal/services/sales/domain"
)

// Register mounts the sell endpoints on the given router
func Register(r httpkit.Router, cmd domain.CommandPort, resolver domain.ResolverPort) {
	h := &handlers{cmd: cmd, resolver: resolver}

	httpkit.PostJSON[sellInput](r, "/sell", h.sell)
	httpkit.PostJSON[autocompleteInput](r, "/sell/autocomplete", h.autocomplete)
	httpkit.PostJSON[resolveInput](r, "/sell/{session_id}/resolve", h.resolve)
}

type handlers struct {
	cmd      domain.CommandPort
	resolver domain.ResolverPort
}

type sellInput struct {
	RequesterID string `json:"requester_id" validate:"required"`
	ItemRef     string `json:"itemid" validate:"required"`
	Amount      *int   `json:"amount,omitempty"`
}

type autocompleteInput struct {
	Query string `json:"query"`
}

type autocompleteOutput struct {
	Choices []catalog.Suggestion `json:"choices"`
}

type resolveInput struct {
	ActorID string `json:"actor_id" validate:"required"`
	Choice  string `json:"choice" validate:"required"`
}

// @Summary Open a gated sell: validate, resolve the item, and prompt for confirmation
// @Tags Sell
// @Accept json
// @Produce json
// @Param payload body sellInput true "Sell request"
// @Success 200 {object} httpkit.Envelope{data=domain.Prompt} "confirmation prompt"
// @Failure 400 {object} httpkit.Envelope "invalid input"
// @Failure 401 {object} httpkit.Envelope "no linked account"
// @Failure 404 {object} httpkit.Envelope "unknown item"
// @Router /sell [post]
func (h *handlers) sell(r *stdhttp.Request, in sellInput) (any, error) {
	ctx := logger.WithRequest(r.Context(), "", in.RequesterID)
	prompt, err := h.cmd.Sell(ctx, in.RequesterID, in.ItemRef, in.Amount)
	if err != nil {
		return nil, err
	}
	return httpkit.Ephemeral(httpkit.OK(prompt)), nil
}

// @Summary Suggest catalog items for a partial reference
// @Tags Sell
// @Accept json
// @Produce json
// @Param payload body autocompleteInput true "Query"
// @Success 200 {object} httpkit.Envelope{data=autocompleteOutput} "suggestions"
// @Router /sell/autocomplete [post]
func (h *handlers) autocomplete(r *stdhttp.Request, in autocompleteInput) (any, error) {
	return autocompleteOutput{Choices: h.cmd.Autocomplete(r.Context(), in.Query)}, nil
}

// @Summary Deliver a confirm or cancel choice to a pending session
// @Tags Sell
// @Accept json
// @Produce json
// @Param session_id path string true "Session id"
// @Param payload body resolveInput true "Choice"
// @Success 202 {object} httpkit.Envelope "accepted"
// @Router /sell/{session_id}/resolve [post]
func (h *handlers) resolve(r *stdhttp.Request, in resolveInput) (any, error) {
	choice := domain.Choice(in.Choice)
	if !choice.Valid() {
		return nil, perr.WithField(perr.Validationf("choice must be confirm or cancel"), "choice")
	}

	// accepted regardless of session state: late, duplicate, and
	// foreign-session events are dropped downstream
	sessionID := httpkit.Param(r, "session_id")
	ctx := logger.WithSession(logger.WithRequest(r.Context(), "", in.ActorID), sessionID)
	h.resolver.Resolve(ctx, sessionID, in.ActorID, choice)
	return httpkit.Accepted(map[string]string{"session_id": sessionID}), nil
}
