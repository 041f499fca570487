package domain

import "context"

// TokenPort resolves the marketplace token for a requester.
// ok=false means the requester has no linked account (not authenticated)
type TokenPort interface {
	Token(ctx context.Context, requesterID string) (token string, ok bool, err error)
}

// LinkerPort manages account links
type LinkerPort interface {
	Link(ctx context.Context, requesterID, token string) error
	Unlink(ctx context.Context, requesterID string) error
}

// Repo abstracts the storage operations for account links
type Repo interface {
	GetToken(ctx context.Context, requesterID string) (string, bool, error)
	Upsert(ctx context.Context, link AccountLink) error
	Delete(ctx context.Context, requesterID string) error
}
