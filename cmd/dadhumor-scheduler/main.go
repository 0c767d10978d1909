// Command dadhumor-scheduler fires one dispatch per dataset on the configured cron spec
package main

import (
	"context"
	"os/signal"
	"syscall"

	"dadhumor/internal/modkit"
	"dadhumor/internal/modkit/module"
	"dadhumor/internal/platform/bootstrap"
	"dadhumor/internal/platform/config"
	"dadhumor/internal/platform/logger"
	phttp "dadhumor/internal/platform/net/http"

	dispatchmod "dadhumor/internal/services/dispatch/module"
	"dadhumor/internal/services/scheduler"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	bootstrap.Init("dadhumor-scheduler")

	root := config.New()
	l := logger.Get()

	deps := modkit.Deps{
		Log:     *l,
		Cfg:     root,
		Metrics: prometheus.DefaultRegisterer,
	}

	dm := dispatchmod.New(deps, dispatchmod.Options{})
	module.Register(dm.Name(), dm.Ports())
	d := module.MustPortsOf[dispatchmod.Ports](dm).Dispatcher

	opts, err := scheduler.FromConfig(root)
	if err != nil {
		l.Fatal().Err(err).Msg("scheduler config")
	}
	s, err := scheduler.New(d, opts)
	if err != nil {
		l.Fatal().Err(err).Msg("scheduler init")
	}
	for _, e := range s.Entries() {
		l.Info().Int("dataset_id", e.DatasetID).Time("next", e.Next).Msg("dispatch scheduled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// metrics listener (reads SCHEDULER_API_PORT)
	schedCfg := root.Prefix("SCHEDULER_")
	if schedCfg.MayBool("METRICS", true) {
		srv := phttp.NewServer(schedCfg)
		srv.Router().Handle("/metrics", promhttp.Handler())
		go func() {
			if err := srv.Run(ctx); err != nil {
				l.Error().Err(err).Msg("metrics listener stopped")
			}
		}()
	}

	if err := s.Run(ctx); err != nil {
		l.Error().Err(err).Msg("scheduler stop")
	}
}
