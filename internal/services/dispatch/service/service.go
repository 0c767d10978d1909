// Package service implements the dispatch orchestrator
package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"dadhumor/internal/core/envelope"
	"dadhumor/internal/core/expiry"
	"dadhumor/internal/core/joke"
	"dadhumor/internal/core/payload"
	perr "dadhumor/internal/platform/errors"
	"dadhumor/internal/platform/logger"
	"dadhumor/internal/services/dispatch/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Config holds orchestrator knobs
type Config struct {
	ProjectID   string
	Threshold   int
	TTL         time.Duration
	HourLead    time.Duration
	Location    *time.Location
	TopicSuffix string
	Title       string
	Body        string
}

// Svc fetches a batch and fans it out to the gateway
type Svc struct {
	cfg      Config
	content  domain.ContentSource
	creds    domain.Credentials
	gateway  domain.Gateway
	composer envelope.Composer
	metrics  *Metrics

	now   func() time.Time
	newID func() string
}

var _ domain.DispatcherPort = (*Svc)(nil)

// New constructs the orchestrator; a nil metrics gets an unregistered set
func New(cfg Config, content domain.ContentSource, creds domain.Credentials, gateway domain.Gateway, m *Metrics) *Svc {
	if cfg.Threshold <= 0 {
		cfg.Threshold = payload.DefaultThreshold
	}
	if cfg.TTL <= 0 {
		cfg.TTL = expiry.DefaultTTL
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if m == nil {
		m = NewMetrics(nil)
	}
	return &Svc{
		cfg:      cfg,
		content:  content,
		creds:    creds,
		gateway:  gateway,
		composer: envelope.NewComposer(cfg.Title, cfg.Body),
		metrics:  m,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Run resolves credentials, fetches the dataset and dispatches it
// Config and fetch failures end the run and are returned; delivery failures only show in the result
func (s *Svc) Run(ctx context.Context, p domain.Params) (domain.Result, error) {
	res := domain.Result{
		RunID:     s.newID(),
		DatasetID: p.DatasetID,
		State:     domain.StatePending,
		StartedAt: s.now().UTC(),
	}
	ctx = logger.WithRun(ctx, res.RunID, p.DatasetID)
	log := logger.C(ctx)
	dataset := strconv.Itoa(p.DatasetID)

	if err := checkParams(p); err != nil {
		return res, err
	}

	if s.cfg.ProjectID == "" {
		err := perr.Configf("dispatch: project id is not configured (set GCLOUD_PROJECT)")
		log.Error().Err(err).Msg("dispatch run aborted")
		s.metrics.RunsTotal.WithLabelValues(dataset, runConfigError).Inc()
		return res, perr.WithOp(err, "dispatch.run")
	}

	token, err := s.creds.Token(ctx)
	if err != nil {
		if _, ok := perr.As(err); !ok {
			err = perr.Wrap(err, perr.ErrorCodeConfig, "dispatch: credentials unavailable")
		}
		log.Error().Err(err).Msg("dispatch run aborted")
		s.metrics.RunsTotal.WithLabelValues(dataset, runConfigError).Inc()
		return res, perr.WithOp(err, "dispatch.run")
	}

	res.State = domain.StateFetching
	batch, err := s.content.Fetch(ctx, p.DatasetID)
	if err != nil {
		if _, ok := perr.As(err); !ok {
			err = perr.Wrap(err, perr.ErrorCodeUpstream, "dispatch: fetch failed")
		}
		log.Error().Err(err).Msg("dispatch run aborted")
		s.metrics.RunsTotal.WithLabelValues(dataset, runFetchError).Inc()
		return res, perr.WithOp(err, "dispatch.run")
	}
	if missing := batch.Missing(); len(missing) > 0 {
		log.Info().Strs("categories", missing).Msg("batch is missing known categories")
	}

	out := s.Dispatch(ctx, token, batch, p)
	out.RunID = res.RunID
	out.StartedAt = res.StartedAt
	s.metrics.RunsTotal.WithLabelValues(dataset, runCompleted).Inc()
	s.metrics.RunDuration.Observe(out.FinishedAt.Sub(out.StartedAt).Seconds())
	return out, nil
}

// Dispatch fans batch out to every topic x variant and waits for all of them
// It never fails as a whole; each unit's outcome is recorded in the result
func (s *Svc) Dispatch(ctx context.Context, token string, batch joke.Batch, p domain.Params) domain.Result {
	now := s.now()
	rc := domain.RunContext{
		DatasetID: p.DatasetID,
		Hour:      ResolveHour(now, s.cfg.HourLead, s.cfg.Location),
		Suffix:    s.cfg.TopicSuffix,
	}
	if p.Hour != nil {
		rc.Hour = *p.Hour
	}
	exp := expiry.APNSAt(now, s.cfg.TTL)

	res := domain.Result{
		DatasetID:  p.DatasetID,
		Hour:       rc.HourPadded(),
		State:      domain.StateDispatching,
		StartedAt:  now.UTC(),
		Expiration: exp,
	}
	log := logger.C(ctx).With().Str("hour", rc.HourPadded()).Logger()

	labels := make([]string, 0, batch.Len())
	for label := range batch.Topics {
		labels = append(labels, label)
	}

	// one slot per unit so goroutines never share a write target
	outcomes := make([]domain.Outcome, len(labels)*len(envelope.Variants))
	var g errgroup.Group
	for i, label := range labels {
		base, extended := payload.Encode(batch.Topics[label].Jokes, batch.Highlights)
		data, full := payload.Choose(base, extended, s.cfg.Threshold)
		size := payload.Size(data)
		s.observePayload(size, full, len(batch.Highlights) > 0)
		topic := rc.Topic(label)

		for j, v := range envelope.Variants {
			slot := &outcomes[i*len(envelope.Variants)+j]
			*slot = domain.Outcome{
				Label:        label,
				Topic:        envelope.Topic(topic, v),
				Variant:      v.String(),
				State:        domain.UnitPending,
				Extended:     full,
				PayloadBytes: size,
			}
			msg := s.composer.Compose(topic, data, v, s.cfg.TTL, exp)
			g.Go(func() error {
				if err := s.gateway.Send(ctx, s.cfg.ProjectID, token, msg); err != nil {
					slot.State = domain.UnitFailed
					slot.Error = err.Error()
					log.Warn().Err(err).
						Str("topic", slot.Topic).
						Str("variant", slot.Variant).
						Msg("delivery failed")
					s.metrics.DeliveriesTotal.WithLabelValues(slot.Variant, string(domain.UnitFailed)).Inc()
					return nil
				}
				slot.State = domain.UnitSent
				s.metrics.DeliveriesTotal.WithLabelValues(slot.Variant, string(domain.UnitSent)).Inc()
				return nil
			})
		}
	}
	// units report through their slots; Wait is only the barrier
	_ = g.Wait()

	for _, o := range outcomes {
		switch o.State {
		case domain.UnitSent:
			res.Sent++
		case domain.UnitFailed:
			res.Failed++
		}
	}
	res.Outcomes = outcomes
	res.Topics = res.ByTopic()
	res.State = domain.StateCompleted
	res.FinishedAt = s.now().UTC()

	var degraded []string
	for label, sum := range res.Topics {
		if !sum.OK() {
			degraded = append(degraded, label)
		}
	}
	sort.Strings(degraded)

	log.Info().
		Int("topics", len(labels)).
		Int("attempts", res.Attempts()).
		Int("sent", res.Sent).
		Int("failed", res.Failed).
		Strs("degraded", degraded).
		Dur("took", res.FinishedAt.Sub(res.StartedAt)).
		Msg("dispatch completed")
	return res
}

func (s *Svc) observePayload(size int, extended, hadHighlights bool) {
	shape := "base"
	if extended {
		shape = "extended"
	}
	s.metrics.PayloadBytes.WithLabelValues(shape).Observe(float64(size))
	if hadHighlights && !extended {
		s.metrics.HighlightsDropped.Inc()
	}
}

func checkParams(p domain.Params) error {
	if p.DatasetID < 0 {
		return perr.WithField(perr.InvalidArgf("dataset_id must be at least 0"), "dataset_id")
	}
	if p.Hour != nil && (*p.Hour < 0 || *p.Hour > 23) {
		return perr.WithField(perr.InvalidArgf("hour must be between 0 and 23"), "hour")
	}
	return nil
}
