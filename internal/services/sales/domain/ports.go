package domain

import (
	"context"

	"tradepost/internal/core/catalog"
)

// CommandPort is the inbound surface of the sales service
type CommandPort interface {
	// Sell validates a request, resolves the item, and opens a confirmation session
	Sell(ctx context.Context, requesterID, itemRef string, amount *int) (Prompt, error)

	// Autocomplete returns catalog suggestions for a partial item reference
	Autocomplete(ctx context.Context, query string) []catalog.Suggestion
}

// ResolverPort delivers confirm/cancel events into pending sessions
type ResolverPort interface {
	// Resolve routes a choice to the session; unknown sessions, late events,
	// and non-requester actors are dropped without error
	Resolve(ctx context.Context, sessionID, actorID string, choice Choice)
}

// MarketplacePort is the remote trading backend
type MarketplacePort interface {
	ListItems(ctx context.Context) ([]catalog.Item, error)
	Sell(ctx context.Context, token, itemID string, amount int) (Receipt, error)
}

// TokenPort resolves a requester to their marketplace credential
type TokenPort interface {
	Token(ctx context.Context, requesterID string) (string, bool, error)
}

// NotifierPort pushes the final message out to the requester's channel
type NotifierPort interface {
	FinalOutcome(ctx context.Context, msg FinalMessage) error
}

// AuditPort records terminal transitions
type AuditPort interface {
	Append(ctx context.Context, entry AuditEntry) error
}

// ExecutorPort performs the confirmed sell against the marketplace
type ExecutorPort interface {
	Execute(ctx context.Context, token, itemID string, amount int) Outcome
}
