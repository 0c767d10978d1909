package modkit

import (
	"net/http"

	"dadhumor/internal/modkit/httpkit"
)

// Router is the routing seam modules mount onto
type Router = httpkit.Router

// Built is the resolved build configuration a module keeps
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Ports    any
	Register func(Router)
}

// Build applies options in order; later options win
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:     c.name,
		Prefix:   c.prefix,
		Mw:       append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:    c.ports,
		Register: c.register,
	}
}

// Mount routes a module under its prefix: middleware first, then routes, then any extra register hook
func (b Built) Mount(r Router, routes func(Router)) {
	r.Route(b.Prefix, func(rr Router) {
		for _, mw := range b.Mw {
			rr.Use(mw)
		}
		if routes != nil {
			routes(rr)
		}
		if b.Register != nil {
			b.Register(rr)
		}
	})
}
