// Package scheduler fires the hourly dispatch for every configured dataset
package scheduler

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"dadhumor/internal/platform/config"
	perr "dadhumor/internal/platform/errors"
	"dadhumor/internal/platform/logger"
	"dadhumor/internal/services/dispatch/domain"

	"github.com/robfig/cron/v3"
)

// DefaultSpec fires at the top of every hour
const DefaultSpec = "0 * * * *"

// Options controls the trigger
type Options struct {
	Spec       string
	Datasets   []int
	Timezone   string
	RunTimeout time.Duration
}

// FromConfig reads SCHEDULER_* values
func FromConfig(cfg config.Conf) (Options, error) {
	sc := cfg.Prefix("SCHEDULER_")
	o := Options{
		Spec:       sc.MayString("SPEC", DefaultSpec),
		Timezone:   sc.MayString("TIMEZONE", "UTC"),
		RunTimeout: sc.MayDuration("RUN_TIMEOUT", 5*time.Minute),
	}
	for _, s := range sc.MayCSV("DATASETS", []string{"0"}) {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 0 {
			return o, perr.WithField(perr.Configf("scheduler: invalid dataset id %q", s), "SCHEDULER_DATASETS")
		}
		o.Datasets = append(o.Datasets, n)
	}
	return o, nil
}

// Entry describes one scheduled dataset
type Entry struct {
	DatasetID int
	Next      time.Time
	Prev      time.Time
}

// Scheduler owns one cron entry per dataset
type Scheduler struct {
	mu   sync.Mutex
	c    *cron.Cron
	d    domain.DispatcherPort
	opts Options
	log  logger.Logger
	ids  map[int]cron.EntryID
	base context.Context
}

// New parses the spec and registers one job per dataset; nothing fires until Start
func New(d domain.DispatcherPort, o Options) (*Scheduler, error) {
	if d == nil {
		return nil, perr.Configf("scheduler: dispatcher is required")
	}
	if o.Spec == "" {
		o.Spec = DefaultSpec
	}
	if len(o.Datasets) == 0 {
		o.Datasets = []int{0}
	}
	loc := time.UTC
	if o.Timezone != "" {
		l, err := time.LoadLocation(o.Timezone)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeConfig, "scheduler: unknown timezone %q", o.Timezone)
		}
		loc = l
	}

	s := &Scheduler{
		d:    d,
		opts: o,
		log:  *logger.Named("scheduler"),
		ids:  make(map[int]cron.EntryID, len(o.Datasets)),
		base: context.Background(),
	}
	cl := cronLogger{l: s.log}
	s.c = cron.New(
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	for _, id := range o.Datasets {
		if _, dup := s.ids[id]; dup {
			continue
		}
		eid, err := s.c.AddFunc(o.Spec, func() { s.fire(id) })
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeConfig, "scheduler: invalid spec %q", o.Spec)
		}
		s.ids[id] = eid
	}
	return s, nil
}

// Start begins firing; ctx is the parent of every run
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.base = ctx
	s.mu.Unlock()
	s.c.Start()
	s.log.Info().
		Str("spec", s.opts.Spec).
		Ints("datasets", s.opts.Datasets).
		Str("tz", s.c.Location().String()).
		Msg("scheduler started")
}

// Stop prevents new runs and waits for in-flight ones or ctx
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.c.Stop().Done()
	select {
	case <-done:
		s.log.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the scheduler and blocks until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start(ctx)
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), s.opts.RunTimeout)
	defer cancel()
	return s.Stop(stopCtx)
}

// Entries lists the registered datasets with their next fire time
func (s *Scheduler) Entries() []Entry {
	out := make([]Entry, 0, len(s.ids))
	for _, id := range s.opts.Datasets {
		eid, ok := s.ids[id]
		if !ok {
			continue
		}
		e := s.c.Entry(eid)
		out = append(out, Entry{DatasetID: id, Next: e.Next, Prev: e.Prev})
	}
	return out
}

func (s *Scheduler) fire(datasetID int) {
	s.mu.Lock()
	base := s.base
	s.mu.Unlock()
	if base.Err() != nil {
		return
	}
	ctx := base
	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(base, s.opts.RunTimeout)
		defer cancel()
	}
	res, err := s.d.Run(ctx, domain.Params{DatasetID: datasetID})
	if err != nil {
		s.log.Error().Err(err).Int("dataset_id", datasetID).Str("run_id", res.RunID).Msg("scheduled dispatch failed")
		return
	}
	s.log.Info().
		Int("dataset_id", datasetID).
		Str("run_id", res.RunID).
		Str("hour", res.Hour).
		Int("sent", res.Sent).
		Int("failed", res.Failed).
		Msg("scheduled dispatch completed")
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct{ l logger.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
