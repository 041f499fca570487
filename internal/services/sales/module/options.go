package module

import (
	"time"

	"tradepost/internal/core/catalog"
	"tradepost/internal/platform/config"
	"tradepost/internal/services/sales/service"
)

// OptionsFromConfig reads workflow tuning from the CORE_SALES_ namespace
func OptionsFromConfig(cfg config.Conf) service.Options {
	sc := cfg.Prefix("CORE_SALES_")
	return service.Options{
		ConfirmWindow: sc.MayDuration("CONFIRM_WINDOW", 15*time.Second),
		SuggestLimit:  sc.MayInt("SUGGEST_LIMIT", catalog.DefaultSuggestLimit),
	}
}
