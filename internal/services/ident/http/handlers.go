// Package http provides http transport for account links
package http

import (
	stdhttp "net/http"

	"tradepost/internal/modkit/httpkit"
	"tradepost/internal/services/ident/domain"
)

// Register mounts account link endpoints on the given router
func Register(r httpkit.Router, linker domain.LinkerPort) {
	h := &handlers{linker: linker}

	httpkit.PostJSON[linkInput](r, "/accounts/link", h.link)
	r.Delete("/accounts/{requester_id}/link", httpkit.Call(h.unlink))
}

type handlers struct{ linker domain.LinkerPort }

type linkInput struct {
	RequesterID string `json:"requester_id" validate:"required"`
	Token       string `json:"token" validate:"required"`
}

// @Summary Link a requester to a marketplace token
// @Tags Accounts
// @Accept json
// @Produce json
// @Param payload body linkInput true "Link"
// @Success 200 {object} httpkit.Envelope "ok"
// @Router /accounts/link [post]
func (h *handlers) link(r *stdhttp.Request, in linkInput) (any, error) {
	if err := h.linker.Link(r.Context(), in.RequesterID, in.Token); err != nil {
		return nil, err
	}
	return map[string]string{"requester_id": in.RequesterID}, nil
}

// @Summary Remove a requester's account link
// @Tags Accounts
// @Produce json
// @Success 204 "no content"
// @Router /accounts/{requester_id}/link [delete]
func (h *handlers) unlink(r *stdhttp.Request) (any, error) {
	id := httpkit.Param(r, "requester_id")
	if err := h.linker.Unlink(r.Context(), id); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}
