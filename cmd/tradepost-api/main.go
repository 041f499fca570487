// @title         Tradepost API
// @version       0.1.0
// @description   Confirmation-gated sell workflow over the marketplace

package main

import (
	"context"

	"tradepost/internal/adapters/chatgw"
	"tradepost/internal/adapters/market"
	"tradepost/internal/platform/config"
	"tradepost/internal/platform/logger"
	phttp "tradepost/internal/platform/net/http"
	"tradepost/internal/platform/store"
	"tradepost/internal/services/api"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	marketCfg := root.Prefix("MARKET_")
	chatCfg := root.Prefix("CHATGW_")

	// bring up logging early
	l := logger.Get()

	// open the platform store (postgres for account links, CH for the audit stream)
	st, err := store.Open(
		context.Background(),
		store.Config{
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", true),
			},
			CH: store.CHConfig{
				Enabled:    true,
				URL:        chCfg.MustString("DBURL"),
				ClientName: "tradepost",
				ClientTag:  "api",
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	marketClient := market.NewClient(market.Options{
		BaseURL:    marketCfg.MustString("BASE_URL"),
		UserAgent:  marketCfg.MayString("USER_AGENT", "tradepost"),
		Timeout:    marketCfg.MayDuration("TIMEOUT", 0),
		MaxRetries: marketCfg.MayInt("MAX_RETRIES", 0),
	})
	notifier := chatgw.NewNotifier(chatgw.Options{
		WebhookURL: chatCfg.MayString("WEBHOOK_URL", ""),
		Timeout:    chatCfg.MayDuration("TIMEOUT", 0),
	})

	// http server (reads CORE_API_PORT / CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:        root,
			Store:         st,
			Logger:        l,
			Market:        marketClient,
			Notifier:      notifier,
			EnableSwagger: apiCfg.MayBool("SWAGGER", true),
		},
	)

	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
