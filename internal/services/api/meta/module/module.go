// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	"dadhumor/internal/core/version"
	modkit "dadhumor/internal/modkit"
	"dadhumor/internal/modkit/httpkit"
	str "dadhumor/internal/platform/strings"

	metahttp "dadhumor/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	deps  modkit.Deps
	built modkit.Built

	startedAt time.Time
	checks    []metahttp.Check
}

// Ports declares the readiness checks other modules hand to meta
type Ports struct {
	Checks []metahttp.Check
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}

	m := &Module{
		deps:      deps,
		built:     b,
		startedAt: time.Now(),
		checks:    injected.Checks,
	}

	return m
}

func (m *Module) routes(r httpkit.Router) {
	metahttp.Register(r, metahttp.Deps{
		ServiceName: version.Info().Service,
		StartedAt:   m.startedAt,
		Checks:      m.checks,
	})
}

// MountRoutes mounts the module under its prefix
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r, m.routes) }

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.built.Name, "meta") }

// Prefix implements the modkit.Module interface
func (m *Module) Prefix() string { return str.MustPrefix(m.built.Prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
