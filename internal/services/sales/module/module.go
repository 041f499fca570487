// Package module implements the sales service module
package module

import (
	"tradepost/internal/modkit"
	"tradepost/internal/modkit/httpkit"
	"tradepost/internal/services/sales/domain"
	saleshttp "tradepost/internal/services/sales/http"
	"tradepost/internal/services/sales/repo"
	"tradepost/internal/services/sales/service"
)

// External holds the ports the sales module consumes from outside:
// the marketplace client, the requester credential source, and the
// final-message channel
type External struct {
	Market   domain.MarketplacePort
	Tokens   domain.TokenPort
	Notifier domain.NotifierPort
}

// Ports exposed by the sales module
type Ports struct {
	Command  domain.CommandPort
	Resolver domain.ResolverPort
}

// Module implements the sales service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new sales module
func New(deps modkit.Deps, ext External, opt service.Options) *Module {
	audit := repo.NewCHAudit(deps.CH)
	svc := service.New(ext.Market, ext.Tokens, ext.Notifier, audit, opt)

	m := &Module{deps: deps}
	m.ports = Ports{
		Command:  svc,
		Resolver: svc,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "sales" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	saleshttp.Register(r, m.ports.Command, m.ports.Resolver)
}
