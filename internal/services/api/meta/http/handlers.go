// Package http serves the meta endpoints: liveness, readiness, build and uptime
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"dadhumor/internal/core/version"
	"dadhumor/internal/modkit/httpkit"

	"golang.org/x/sync/errgroup"
)

// ReadyTimeout bounds one readiness evaluation
const ReadyTimeout = 2 * time.Second

// Check is a named readiness probe
type Check struct {
	Name string
	Fn   func(stdctx.Context) error
}

// Deps are what the meta routes report on
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Checks      []Check
}

// HealthResponse is always ok while the process serves
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// ReadyCheck is one probe outcome; Status is ok or fail
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ReadyResponse fails when any check fails
type ReadyResponse struct {
	Status string       `json:"status"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

// ServiceResponse reports uptime in seconds
type ServiceResponse struct {
	Name    string `json:"name"`
	Started string `json:"started"`
	Uptime  int64  `json:"uptime"`
}

// Register mounts /health, /ready, /version and /service
func Register(r httpkit.Router, d Deps) {
	httpkit.Get(r, "/health", func(*http.Request) (any, error) {
		return HealthResponse{
			OK:      true,
			Service: d.ServiceName,
			Started: stamp(d.StartedAt),
			Now:     stamp(time.Now()),
		}, nil
	})
	httpkit.Get(r, "/ready", func(r *http.Request) (any, error) {
		return ready(r.Context(), d.Checks), nil
	})
	httpkit.Get(r, "/version", func(*http.Request) (any, error) {
		return version.Info(), nil
	})
	httpkit.Get(r, "/service", func(*http.Request) (any, error) {
		return ServiceResponse{
			Name:    d.ServiceName,
			Started: stamp(d.StartedAt),
			Uptime:  int64(time.Since(d.StartedAt) / time.Second),
		}, nil
	})
}

// ready runs every check concurrently under ReadyTimeout; a failing check does not cancel the others
func ready(ctx stdctx.Context, checks []Check) httpkit.Response {
	ctx, cancel := stdctx.WithTimeout(ctx, ReadyTimeout)
	defer cancel()

	out := ReadyResponse{Status: "ok", Checks: make([]ReadyCheck, len(checks)), Now: stamp(time.Now())}
	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			rc := ReadyCheck{Name: c.Name, Status: "ok"}
			if err := c.Fn(ctx); err != nil {
				rc.Status, rc.Error = "fail", err.Error()
			}
			out.Checks[i] = rc
			return nil
		})
	}
	_ = g.Wait()

	status := http.StatusOK
	for _, rc := range out.Checks {
		if rc.Status == "fail" {
			out.Status, status = "fail", http.StatusServiceUnavailable
		}
	}
	return httpkit.Response{Status: status, Body: out}
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }
