// Command dadhumor-send runs a single dispatch and prints the result as JSON
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"dadhumor/internal/modkit"
	"dadhumor/internal/modkit/module"
	"dadhumor/internal/platform/bootstrap"
	"dadhumor/internal/platform/config"
	perr "dadhumor/internal/platform/errors"
	"dadhumor/internal/platform/logger"

	"dadhumor/internal/services/dispatch/domain"
	dispatchmod "dadhumor/internal/services/dispatch/module"
)

func main() {
	var (
		fDataset = flag.Int("dataset", 0, "dataset id to fetch")
		fHour    = flag.Int("hour", -1, "hour of day to stamp topics with (0-23, -1 = derive from clock)")
		fProject = flag.String("project", "", "push project id (defaults to GCLOUD_PROJECT)")
		fSuffix  = flag.String("suffix", "", "topic suffix override (\"-\" for none)")
	)
	flag.Parse()

	bootstrap.Init("dadhumor-send")

	root := config.New()
	l := logger.Get()

	dm := dispatchmod.New(
		modkit.Deps{Log: *l, Cfg: root},
		dispatchmod.Options{ProjectID: *fProject, TopicSuffix: *fSuffix},
	)
	module.Register(dm.Name(), dm.Ports())
	ports, ok := module.PortsAs[dispatchmod.Ports](dm.Name())
	if !ok {
		l.Fatal().Str("module", dm.Name()).Msg("dispatch ports not registered")
	}
	d := ports.Dispatcher

	p := domain.Params{DatasetID: *fDataset}
	if *fHour >= 0 {
		h := *fHour
		p.Hour = &h
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := d.Run(ctx, p)
	if err != nil {
		ev := l.Error().Err(err).Stringer("code", perr.CodeOf(err))
		if e, ok := perr.As(err); ok && e.Op() != "" {
			ev = ev.Str("op", e.Op())
		}
		ev.Msg("dispatch failed")
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		l.Fatal().Err(err).Msg("write result")
	}
	if res.Failed > 0 {
		os.Exit(2)
	}
}
