// Package api assembles the HTTP API from the service modules
package api

import (
	stdhttp "net/http"

	"tradepost/internal/modkit"
	"tradepost/internal/modkit/httpkit"
	"tradepost/internal/platform/config"
	perr "tradepost/internal/platform/errors"
	"tradepost/internal/platform/logger"
	phttp "tradepost/internal/platform/net/http"
	"tradepost/internal/platform/store"
	identmod "tradepost/internal/services/ident/module"
	"tradepost/internal/services/sales/domain"
	salesmod "tradepost/internal/services/sales/module"
)

// Options are the API options
type Options struct {
	Config        config.Conf
	Store         *store.Store
	Logger        *logger.Logger
	Market        domain.MarketplacePort
	Notifier      domain.NotifierPort
	EnableSwagger bool
}

// Mount wires the modules together and mounts them on the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	// ident first: sales consumes its token port
	ident := identmod.New(deps)
	tokens := ident.Ports().(identmod.Ports).Tokens

	sales := salesmod.New(deps, salesmod.External{
		Market:   opt.Market,
		Tokens:   tokens,
		Notifier: opt.Notifier,
	}, salesmod.OptionsFromConfig(opt.Config))

	mods := []modkit.Module{ident, sales}

	// health endpoints live on the root mux, outside the /v1 middleware stack
	httpkit.Get(r, "/healthz", func(*stdhttp.Request) (any, error) {
		return map[string]string{"status": "ok"}, nil
	})
	httpkit.Get(r, "/readyz", func(req *stdhttp.Request) (any, error) {
		if err := opt.Store.Guard(req.Context()); err != nil {
			return nil, perr.Unavailablef("storage degraded: %v", err)
		}
		return map[string]string{"status": "ready"}, nil
	})

	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		phttp.MountSwagger(r, opt.EnableSwagger)

		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
}
