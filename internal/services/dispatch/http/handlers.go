// Package http provides the manual dispatch trigger
package http

import (
	stdhttp "net/http"
	"strconv"
	"strings"

	"dadhumor/internal/modkit/httpkit"
	perr "dadhumor/internal/platform/errors"
	"dadhumor/internal/platform/logger"
	pnet "dadhumor/internal/platform/net"
	"dadhumor/internal/platform/net/http/bind"
	"dadhumor/internal/services/dispatch/domain"
)

// Register mounts the trigger routes
func Register(r httpkit.Router, d domain.DispatcherPort) {
	h := &handlers{svc: d}
	httpkit.PostJSON[domain.Params](r, "/send", h.send)
	httpkit.Get(r, "/send", h.sendQuery)
}

type handlers struct{ svc domain.DispatcherPort }

// send runs one dispatch from a JSON body
func (h *handlers) send(r *stdhttp.Request, in domain.Params) (any, error) {
	trace(r, in)
	return h.svc.Run(r.Context(), in)
}

// sendQuery mirrors send with ?dataset=&hour=
func (h *handlers) sendQuery(r *stdhttp.Request) (any, error) {
	p, err := ParamsFromQuery(r)
	if err != nil {
		return nil, err
	}
	trace(r, p)
	return h.svc.Run(r.Context(), p)
}

func trace(r *stdhttp.Request, p domain.Params) {
	ev := logger.C(r.Context()).Info().Int("dataset_id", p.DatasetID)
	if c := pnet.Caller(r.Context()); c != "" {
		ev = ev.Str("caller", c)
	}
	if p.Hour != nil {
		ev = ev.Int("hour", *p.Hour)
	}
	ev.Msg("manual dispatch requested")
}

// ParamsFromQuery reads dataset and hour from the query string and validates them
func ParamsFromQuery(r *stdhttp.Request) (domain.Params, error) {
	var p domain.Params
	q := r.URL.Query()
	if s := strings.TrimSpace(q.Get("dataset")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "dataset must be an integer"), "dataset")
		}
		p.DatasetID = n
	}
	if s := strings.TrimSpace(q.Get("hour")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "hour must be an integer"), "hour")
		}
		p.Hour = &n
	}
	if err := bind.Validate(p); err != nil {
		return p, err
	}
	return p, nil
}
