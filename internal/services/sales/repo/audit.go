// Package repo holds the sales persistence adapters
package repo

import (
	"context"

	perr "tradepost/internal/platform/errors"
	"tradepost/internal/platform/store"
	"tradepost/internal/services/sales/domain"
)

const auditTable = "sell_audit"

var auditColumns = []string{
	"session_id",
	"requester_id",
	"item_id",
	"amount",
	"resolution",
	"success",
	"message",
	"at",
}

// CHAudit appends terminal session transitions to ClickHouse
type CHAudit struct {
	ch store.Clickhouse
}

var _ domain.AuditPort = (*CHAudit)(nil)

// NewCHAudit builds the ClickHouse-backed audit sink
func NewCHAudit(ch store.Clickhouse) *CHAudit {
	if ch == nil {
		panic("sales: clickhouse handle is required")
	}
	return &CHAudit{ch: ch}
}

// Append writes one audit row. Callers treat failures as non-fatal
func (a *CHAudit) Append(ctx context.Context, entry domain.AuditEntry) error {
	row := []any{
		entry.SessionID,
		entry.RequesterID,
		entry.ItemID,
		int32(entry.Amount),
		string(entry.Resolution),
		entry.Success,
		entry.Message,
		entry.At,
	}
	if err := a.ch.Insert(ctx, auditTable, auditColumns, [][]any{row}); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "audit append")
	}
	return nil
}
