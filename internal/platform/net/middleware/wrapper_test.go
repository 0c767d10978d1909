package middleware_test

import (
	"compress/flate"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dadhumor/internal/platform/logger"
	pnet "dadhumor/internal/platform/net"
	"dadhumor/internal/platform/net/middleware"
	"dadhumor/internal/platform/testkit"
)

func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func TestRequestIDRealIPNoCache(t *testing.T) {
	var rid, remote string
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid = pnet.RequestID(r.Context())
		remote = r.RemoteAddr
		logger.C(r.Context()).Info().Msg("trigger received")
	}), middleware.RequestID(), middleware.RealIP(), middleware.NoCache())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dispatch/send", nil)
	req.Header.Set("X-Request-Id", "cron-0900")
	req.Header.Set("X-Forwarded-For", "10.1.2.3")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rid != "cron-0900" {
		t.Fatalf("request id = %q", rid)
	}
	if remote != "10.1.2.3" {
		t.Fatalf("remote = %q", remote)
	}
	if rr.Header().Get("Cache-Control") == "" {
		t.Fatalf("NoCache did not set Cache-Control")
	}
	if line := logs.lineWith("trigger received"); !strings.Contains(line, `"request_id":"cron-0900"`) {
		t.Fatalf("context logger missing request id: %s", line)
	}
}

func TestCompress_WhenAccepted(t *testing.T) {
	h := middleware.Compress(flate.BestSpeed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, strings.Repeat(`{"topic":"general-09-0"}`, 200))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dispatch/send", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q", rr.Header().Get("Content-Encoding"))
	}
}

func TestStripSlashesAndTimeout(t *testing.T) {
	var path string
	var hasDeadline bool
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, hasDeadline = r.Context().Deadline()
	}), middleware.StripSlashes(), middleware.Timeout(time.Second))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dispatch/send/", nil))
	if path != "/dispatch/send" {
		t.Fatalf("path = %q", path)
	}
	if !hasDeadline {
		t.Fatalf("Timeout did not set a deadline")
	}
}

func TestCORS_DefaultsFillMissing(t *testing.T) {
	cors := middleware.CORS(middleware.CORSOptions{AllowedOrigins: []string{"https://ops.example.com"}})
	h := cors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/dispatch/send", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	testkit.MustContain(t, rr.Header().Get("Access-Control-Allow-Methods"), "POST")
	testkit.MustContain(t, strings.ToLower(rr.Header().Get("Access-Control-Allow-Headers")), "authorization")
}

func TestAccessLog(t *testing.T) {
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/boom") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, "sent")
	}), middleware.RequestID(), middleware.AccessLog(0))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dispatch/send", nil)
	req.Header.Set("X-Request-Id", "rid-access")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Body.String() != "sent" {
		t.Fatalf("body = %q", rr.Body.String())
	}
	line := logs.lineWith("rid-access")
	testkit.MustContain(t, line, `"status":200`)
	testkit.MustContain(t, line, `"bytes":4`)
	testkit.MustContain(t, line, `"level":"info"`)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/dispatch/boom", nil)
	req.Header.Set("X-Request-Id", "rid-boom")
	h.ServeHTTP(httptest.NewRecorder(), req)
	testkit.MustContain(t, logs.lineWith("rid-boom"), `"level":"error"`)
}

func TestRecoverJSON(t *testing.T) {
	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil batch")
	}), middleware.RequestID(), middleware.RecoverJSON)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dispatch/send", nil)
	req.Header.Set("X-Request-Id", "rid-panic")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") != "rid-panic" {
		t.Fatalf("request id header = %q", rr.Header().Get("X-Request-ID"))
	}
	testkit.MustContain(t, rr.Body.String(), `"request_id":"rid-panic"`)
	testkit.MustContain(t, logs.lineWith("rid-panic"), "panic recovered")
}
