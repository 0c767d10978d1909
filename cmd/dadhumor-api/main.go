// Command dadhumor-api serves the manual dispatch trigger, meta endpoints and metrics
package main

import (
	"context"
	"os/signal"
	"syscall"

	"dadhumor/internal/platform/bootstrap"
	"dadhumor/internal/platform/config"
	"dadhumor/internal/platform/logger"
	phttp "dadhumor/internal/platform/net/http"

	"dadhumor/internal/services/api"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	bootstrap.Init("dadhumor-api")

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	l := logger.Get()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// http server (reads CORE_API_API_PORT)
	srv := phttp.NewServer(apiCfg)

	api.Mount(srv.Router(), api.Options{
		Config:         root,
		Logger:         l,
		Registry:       reg,
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		l.Fatal().Err(err).Msg("http server stopped")
	}
}
