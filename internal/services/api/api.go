// Package api provides the HTTP API for the application
package api

import (
	"context"
	"net/http"

	"dadhumor/internal/platform/config"
	perr "dadhumor/internal/platform/errors"
	"dadhumor/internal/platform/logger"
	phttp "dadhumor/internal/platform/net/http"

	"dadhumor/internal/modkit"
	"dadhumor/internal/modkit/httpkit"
	"dadhumor/internal/modkit/module"

	metahttp "dadhumor/internal/services/api/meta/http"
	metamod "dadhumor/internal/services/api/meta/module"
	dispatchmod "dadhumor/internal/services/dispatch/module"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Logger         *logger.Logger
	Registry       *prometheus.Registry
	EnableProfiler bool

	// Dispatch overrides values read from env, Collaborators replaces outbound clients
	Dispatch      dispatchmod.Options
	Collaborators *dispatchmod.Collaborators
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	log := opt.Logger
	if log == nil {
		log = logger.Named("api")
	}
	reg := opt.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// shared deps for modules
	deps := modkit.Deps{
		Log:     *log,
		Cfg:     opt.Config,
		Metrics: reg,
	}

	var dopts []modkit.Option
	if opt.Collaborators != nil {
		dopts = append(dopts, modkit.WithPorts(*opt.Collaborators))
	}
	dispatch := dispatchmod.New(deps, opt.Dispatch, dopts...)

	meta := metamod.New(deps, modkit.WithPorts(metamod.Ports{
		Checks: []metahttp.Check{{Name: "project", Fn: projectCheck(dispatch.Options())}},
	}))

	mods := []module.Module{meta, dispatch}

	// liveness for platform probes outside the versioned tree
	r.Get("/", ok)
	r.Get("/healthz", ok)
	r.Get("/health", ok)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})

	log.Info().Int("modules", len(mods)).Bool("profiler", opt.EnableProfiler).Msg("api mounted")
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func projectCheck(o dispatchmod.Options) func(context.Context) error {
	return func(context.Context) error {
		if o.ProjectID == "" {
			return perr.Configf("project id is not configured")
		}
		return nil
	}
}
