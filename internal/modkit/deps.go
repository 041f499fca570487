package modkit

import (
	"tradepost/internal/modkit/repokit"
	"tradepost/internal/platform/config"
	"tradepost/internal/platform/logger"
	"tradepost/internal/platform/store"
)

// Deps holds core dependencies passed to modules.
// This is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}
