// Package module implements the ident service module
package module

import (
	"tradepost/internal/modkit"
	"tradepost/internal/modkit/httpkit"
	"tradepost/internal/services/ident/domain"
	identhttp "tradepost/internal/services/ident/http"
	"tradepost/internal/services/ident/repo"
	"tradepost/internal/services/ident/service"
)

// Ports exposed by the ident module
type Ports struct {
	Tokens domain.TokenPort
	Linker domain.LinkerPort
}

// Module implements the ident service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new ident module
func New(deps modkit.Deps) *Module {
	svc := service.New(deps.PG, repo.NewPG())

	m := &Module{deps: deps}
	m.ports = Ports{
		Tokens: svc,
		Linker: svc,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "ident" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	identhttp.Register(r, m.ports.Linker)
}
