// Package service provides the ident service implementation
package service

import (
	"context"
	"strings"
	"time"

	"tradepost/internal/modkit/repokit"
	perr "tradepost/internal/platform/errors"
	"tradepost/internal/services/ident/domain"
)

// Svc implements domain.TokenPort and domain.LinkerPort against the PG repo
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[domain.Repo]
}

// New constructs the ident service
func New(db repokit.TxRunner, binder repokit.Binder[domain.Repo]) *Svc {
	if db == nil {
		panic("ident: nil TxRunner")
	}
	if binder == nil {
		panic("ident: nil binder")
	}
	return &Svc{db: db, binder: binder}
}

var (
	_ domain.TokenPort  = (*Svc)(nil)
	_ domain.LinkerPort = (*Svc)(nil)
)

// Token implements domain.TokenPort
func (s *Svc) Token(ctx context.Context, requesterID string) (string, bool, error) {
	if strings.TrimSpace(requesterID) == "" {
		return "", false, nil
	}
	tok, ok, err := s.binder.Bind(s.db).GetToken(ctx, requesterID)
	if err != nil {
		return "", false, perr.Wrap(err, perr.ErrorCodeDB, "account lookup failed")
	}
	return tok, ok, nil
}

// Link implements domain.LinkerPort
func (s *Svc) Link(ctx context.Context, requesterID, token string) error {
	requesterID = strings.TrimSpace(requesterID)
	token = strings.TrimSpace(token)
	if requesterID == "" || token == "" {
		return perr.Validationf("requester_id and token are required")
	}
	err := s.binder.Bind(s.db).Upsert(ctx, domain.AccountLink{
		RequesterID: requesterID,
		Token:       token,
		LinkedAt:    time.Now().UTC(),
	})
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "link account failed")
	}
	return nil
}

// Unlink implements domain.LinkerPort
func (s *Svc) Unlink(ctx context.Context, requesterID string) error {
	requesterID = strings.TrimSpace(requesterID)
	if requesterID == "" {
		return perr.Validationf("requester_id is required")
	}
	if err := s.binder.Bind(s.db).Delete(ctx, requesterID); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "unlink account failed")
	}
	return nil
}
