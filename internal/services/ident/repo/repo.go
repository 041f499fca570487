// Package repo provides Postgres bindings for domain.Repo
package repo

import (
	"context"
	"errors"
	"fmt"

	"tradepost/internal/modkit/repokit"
	"tradepost/internal/services/ident/domain"

	"github.com/jackc/pgx/v5"
)

type (
	// PG is a Postgres binder for domain.Repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// Compile-time assertion: queries implements domain.Repo
var _ domain.Repo = (*queries)(nil)

// NewPG returns a Postgres binder for Repo
func NewPG() repokit.Binder[domain.Repo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.Repo { return &queries{q: q} }

// GetToken returns the token linked to requesterID, ok=false when absent
func (r *queries) GetToken(ctx context.Context, requesterID string) (string, bool, error) {
	var token string
	err := r.q.QueryRow(ctx, `
		SELECT token
		FROM account_links
		WHERE requester_id = $1
	`, requesterID).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get token: %w", err)
	}
	return token, true, nil
}

// Upsert inserts or replaces the link for a requester
func (r *queries) Upsert(ctx context.Context, link domain.AccountLink) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO account_links (requester_id, token, linked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (requester_id)
		DO UPDATE SET token = EXCLUDED.token, linked_at = EXCLUDED.linked_at
	`, link.RequesterID, link.Token, link.LinkedAt)
	if err != nil {
		return fmt.Errorf("upsert link: %w", err)
	}
	return nil
}

// Delete removes the link for a requester; deleting a missing link is a no-op
func (r *queries) Delete(ctx context.Context, requesterID string) error {
	_, err := r.q.Exec(ctx, `
		DELETE FROM account_links
		WHERE requester_id = $1
	`, requesterID)
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	return nil
}
