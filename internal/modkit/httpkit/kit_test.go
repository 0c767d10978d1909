package httpkit

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perrs "dadhumor/internal/platform/errors"
	phttp "dadhumor/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

// fakeRouter records registrations without serving anything
type fakeRouter struct {
	prefixes  []string
	useCalls  int
	lastMWLen int
	verbCalls []struct{ verb, path string }
}

func (f *fakeRouter) record(verb, path string) {
	f.verbCalls = append(f.verbCalls, struct{ verb, path string }{verb, path})
}

func (f *fakeRouter) Get(path string, _ phttp.Handler)   { f.record("GET", path) }
func (f *fakeRouter) Post(path string, _ phttp.Handler)  { f.record("POST", path) }
func (f *fakeRouter) Handle(path string, _ http.Handler) { f.record("HANDLE", path) }
func (f *fakeRouter) Group(fn func(Router))              { fn(f) }
func (f *fakeRouter) Mux() http.Handler                  { return http.NewServeMux() }
func (f *fakeRouter) Route(prefix string, fn func(Router)) {
	f.prefixes = append(f.prefixes, prefix)
	fn(f)
}

func (f *fakeRouter) Use(mw ...func(http.Handler) http.Handler) {
	f.useCalls++
	f.lastMWLen = len(mw)
}

type sendBody struct {
	DatasetID int  `json:"dataset_id" validate:"min=0"`
	Hour      *int `json:"hour,omitempty" validate:"omitempty,hour"`
}

func call(t *testing.T, h http.Handler, method, target, body string) (int, Envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v body=%s", err, rec.Body.String())
	}
	return rec.Code, env
}

func TestPostJSON_BindsAndValidates(t *testing.T) {
	m := chi.NewRouter()
	var seen sendBody
	PostJSON(phttp.AdaptChi(m), "/send", func(_ *http.Request, in sendBody) (any, error) {
		seen = in
		return map[string]int{"dataset_id": in.DatasetID}, nil
	})

	code, env := call(t, m, http.MethodPost, "/send", `{"dataset_id":4,"hour":7}`)
	if code != http.StatusOK || env.Data == nil || seen.DatasetID != 4 || seen.Hour == nil || *seen.Hour != 7 {
		t.Fatalf("code=%d env=%+v seen=%+v", code, env, seen)
	}

	code, env = call(t, m, http.MethodPost, "/send", `{"dataset_id":4,"hour":24}`)
	if code != http.StatusBadRequest || env.Code != perrs.ErrorCodeValidation || env.Field != "hour" {
		t.Fatalf("bad hour: code=%d env=%+v", code, env)
	}

	code, env = call(t, m, http.MethodPost, "/send", `{"dataset_id":`)
	if code != http.StatusBadRequest || env.Code != perrs.ErrorCodeJSON {
		t.Fatalf("bad json: code=%d env=%+v", code, env)
	}
}

func TestGet_ErrorsAndCustomResponse(t *testing.T) {
	m := chi.NewRouter()
	r := phttp.AdaptChi(m)
	Get(r, "/fail", func(*http.Request) (any, error) {
		return nil, perrs.Upstreamf("content source returned 503")
	})
	Get(r, "/plain", func(*http.Request) (any, error) { return nil, errors.New("boom") })
	Get(r, "/custom", func(*http.Request) (any, error) {
		return Response{Status: http.StatusAccepted, Body: "queued"}, nil
	})

	if code, env := call(t, m, http.MethodGet, "/fail", ""); code != http.StatusBadGateway || env.Code != perrs.ErrorCodeUpstream {
		t.Fatalf("upstream: code=%d env=%+v", code, env)
	}
	if code, _ := call(t, m, http.MethodGet, "/plain", ""); code != http.StatusInternalServerError {
		t.Fatalf("plain: code=%d", code)
	}
	if code, env := call(t, m, http.MethodGet, "/custom", ""); code != http.StatusAccepted || env.Data != "queued" {
		t.Fatalf("custom: code=%d env=%+v", code, env)
	}
}

func TestMountAPIV1(t *testing.T) {
	root := &fakeRouter{}
	mw := func(next http.Handler) http.Handler { return next }
	MountAPIV1(root, []func(http.Handler) http.Handler{mw, mw}, func(api Router) {
		api.Post("/dispatch/send", nil)
	})
	if len(root.prefixes) != 1 || root.prefixes[0] != "/api/v1" {
		t.Fatalf("prefixes = %v", root.prefixes)
	}
	if root.useCalls != 1 || root.lastMWLen != 2 {
		t.Fatalf("use calls=%d len=%d", root.useCalls, root.lastMWLen)
	}

	bare := &fakeRouter{}
	MountAPI(bare, "/v2/", nil, func(Router) {})
	if bare.prefixes[0] != "/api/v2" || bare.useCalls != 0 {
		t.Fatalf("v2 prefixes=%v use=%d", bare.prefixes, bare.useCalls)
	}
}
