package service

import (
	"context"
	"strings"

	"tradepost/internal/platform/logger"
	"tradepost/internal/services/sales/domain"
)

// executor performs the confirmed sell against the marketplace and classifies
// the result. The remote does not use status codes to signal business failure,
// so a reply whose message contains "error" counts as a failed sell
type executor struct {
	market domain.MarketplacePort
}

var _ domain.ExecutorPort = (*executor)(nil)

func newExecutor(market domain.MarketplacePort) *executor {
	if market == nil {
		panic("sales: executor requires a marketplace port")
	}
	return &executor{market: market}
}

// Execute never returns an error; every failure mode collapses into a
// requester-facing outcome
func (e *executor) Execute(ctx context.Context, token, itemID string, amount int) domain.Outcome {
	receipt, err := e.market.Sell(ctx, token, itemID, amount)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("item_id", itemID).Msg("marketplace sell call failed")
		return domain.Outcome{Success: false, Message: msgSellFailed}
	}
	if receipt.Message == "" {
		return domain.Outcome{Success: false, Message: msgSellFailed}
	}
	if strings.Contains(strings.ToLower(receipt.Message), "error") {
		// business failures come back with a 200 and an error-bearing
		// message; surface the remote's own wording
		return domain.Outcome{Success: false, Message: receipt.Message}
	}
	return domain.Outcome{Success: true, Message: receipt.Message}
}
