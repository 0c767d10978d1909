// Package module wires the dispatch pipeline and exposes its ports and trigger routes
package module

import (
	"time"

	"dadhumor/internal/adapters/content"
	"dadhumor/internal/adapters/credentials"
	"dadhumor/internal/adapters/fcm"
	"dadhumor/internal/modkit"
	"dadhumor/internal/modkit/httpkit"
	"dadhumor/internal/platform/logger"
	"dadhumor/internal/platform/net/middleware"
	str "dadhumor/internal/platform/strings"

	"dadhumor/internal/services/dispatch/domain"
	dhttp "dadhumor/internal/services/dispatch/http"
	"dadhumor/internal/services/dispatch/service"
)

// Module defines the dispatch module
type Module struct {
	deps  modkit.Deps
	built modkit.Built

	opts  Options
	ports Ports
}

// New constructs the dispatch module
// Collaborators can be replaced by passing modkit.WithPorts(Collaborators{...})
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("dispatch"),
		modkit.WithPrefix("/dispatch"),
	}, opts...)...)

	o := FromConfig(deps.Cfg).merge(overrides)

	var col Collaborators
	if c, ok := b.Ports.(Collaborators); ok {
		col = c
	}
	if col.Content == nil {
		col.Content = content.NewClient(content.Options{
			BaseURL:    o.ContentBaseURL,
			Path:       o.ContentPath,
			Timeout:    o.ContentTimeout,
			MaxRetries: o.ContentMaxRetries,
		})
	}
	if col.Credentials == nil {
		if o.StaticToken != "" {
			col.Credentials = credentials.Static(o.StaticToken)
		} else {
			col.Credentials = credentials.Default()
		}
	}
	if col.Gateway == nil {
		col.Gateway = fcm.NewClient(fcm.Options{BaseURL: o.GatewayBaseURL, Timeout: o.GatewayTimeout})
	}

	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		logger.Named("dispatch").Warn().Err(err).Str("timezone", o.Timezone).Msg("unknown timezone, using UTC")
		loc = time.UTC
	}

	svc := service.New(service.Config{
		ProjectID:   o.ProjectID,
		Threshold:   o.Threshold,
		TTL:         o.TTL,
		HourLead:    o.HourLead,
		Location:    loc,
		TopicSuffix: o.TopicSuffix,
		Title:       o.Title,
		Body:        o.Body,
	}, col.Content, col.Credentials, col.Gateway, service.NewMetrics(deps.Metrics))

	m := &Module{
		deps:  deps,
		built: b,
		opts:  o,
		ports: Ports{Dispatcher: svc},
	}

	return m
}

// routes guards the trigger endpoints with the shared secret when one is configured
func (m *Module) routes(r httpkit.Router) {
	var guard middleware.AuthPort
	if m.opts.TriggerToken != "" {
		guard = httpkit.NewPortFunc(httpkit.SharedSecret(m.opts.TriggerToken, "operator"))
	}
	httpkit.Protected(r, guard, func(pr httpkit.Router) {
		dhttp.Register(pr, m.ports.Dispatcher)
	})
}

// Collaborators are the outbound dependencies of the pipeline
type Collaborators struct {
	Content     domain.ContentSource
	Credentials domain.Credentials
	Gateway     domain.Gateway
}

// MountRoutes mounts the module under its prefix
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r, m.routes) }

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.built.Name, "dispatch") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.built.Prefix) }

// Ports returns the module ports (Dispatcher)
func (m *Module) Ports() any { return m.ports }

// Options returns the resolved options
func (m *Module) Options() Options { return m.opts }
