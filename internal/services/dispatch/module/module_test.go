package module

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"dadhumor/internal/adapters/credentials"
	"dadhumor/internal/core/envelope"
	"dadhumor/internal/core/joke"
	"dadhumor/internal/modkit"
	mod "dadhumor/internal/modkit/module"
	"dadhumor/internal/platform/config"
	phttp "dadhumor/internal/platform/net/http"
	"dadhumor/internal/services/dispatch/domain"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

type stubContent struct{ batch joke.Batch }

func (s stubContent) Fetch(context.Context, int) (joke.Batch, error) { return s.batch, nil }

type recGateway struct {
	mu     sync.Mutex
	topics []string
}

func (g *recGateway) Send(_ context.Context, _, _ string, msg envelope.Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.topics = append(g.topics, msg.Topic)
	return nil
}

func TestFromConfig_Defaults(t *testing.T) {
	t.Setenv("GCLOUD_PROJECT", "")
	t.Setenv("DISPATCH_PROJECT_ID", "")
	o := FromConfig(config.New())
	if o.ProjectID != "" || o.Threshold != 4000 || o.TTL != 24*time.Hour+10*time.Minute {
		t.Fatalf("defaults = %+v", o)
	}
	if o.TopicSuffix != "test" || o.HourLead != 25*time.Second || o.Timezone != "UTC" {
		t.Fatalf("defaults = %+v", o)
	}
	if o.ContentPath != "/api/JokesByCategory" || o.GatewayBaseURL != "https://fcm.googleapis.com" {
		t.Fatalf("defaults = %+v", o)
	}
	if o.Title != envelope.DefaultTitle || o.Body != envelope.DefaultBody {
		t.Fatalf("copy defaults = %q %q", o.Title, o.Body)
	}
}

func TestFromConfig_Env(t *testing.T) {
	t.Setenv("GCLOUD_PROJECT", "")
	t.Setenv("DISPATCH_PROJECT_ID", "proj-from-dispatch")
	t.Setenv("DISPATCH_PAYLOAD_THRESHOLD", "3500")
	t.Setenv("DISPATCH_TOPIC_SUFFIX", "prod")
	t.Setenv("CONTENT_MAX_RETRIES", "5")
	o := FromConfig(config.New())
	if o.ProjectID != "proj-from-dispatch" || o.Threshold != 3500 || o.TopicSuffix != "prod" || o.ContentMaxRetries != 5 {
		t.Fatalf("env = %+v", o)
	}

	t.Setenv("GCLOUD_PROJECT", "proj-gcloud")
	if got := FromConfig(config.New()).ProjectID; got != "proj-gcloud" {
		t.Fatalf("GCLOUD_PROJECT should win, got %q", got)
	}
}

func TestTopicSuffix_ExplicitNone(t *testing.T) {
	cases := []struct {
		name     string
		env      string
		override string
		want     string
	}{
		{"default", "", "", "test"},
		{"env value", "prod", "", "prod"},
		{"env dash", "-", "", ""},
		{"env none", "NONE", "", ""},
		{"override wins", "prod", "qa", "qa"},
		{"override dash clears env", "prod", "-", ""},
		{"override none clears default", "", "none", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DISPATCH_TOPIC_SUFFIX", tc.env)
			o := FromConfig(config.New()).merge(Options{TopicSuffix: tc.override})
			if o.TopicSuffix != tc.want {
				t.Fatalf("suffix = %q, want %q", o.TopicSuffix, tc.want)
			}
		})
	}
}

func TestNew_NoSuffixTopics(t *testing.T) {
	t.Setenv("GCLOUD_PROJECT", "proj-1")
	gw := &recGateway{}
	m := New(modkit.Deps{Cfg: config.New(), Metrics: prometheus.NewRegistry()}, Options{TopicSuffix: NoSuffix},
		modkit.WithPorts(Collaborators{
			Content: stubContent{batch: joke.Batch{Topics: map[string]joke.Group{
				"general": {Topic: "general", Jokes: []joke.Joke{{ID: "1", Content: "hi"}}},
			}}},
			Credentials: credentials.Static("tok"),
			Gateway:     gw,
		}),
	)
	d, ok := mod.PortsOf[domain.DispatcherPort](m)
	if !ok {
		t.Fatalf("dispatcher port missing")
	}
	hour := 9
	if _, err := d.Run(context.Background(), domain.Params{DatasetID: 0, Hour: &hour}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	gw.mu.Lock()
	defer gw.mu.Unlock()
	got := strings.Join(gw.topics, ",")
	if !strings.Contains(got, "general-09-0-silent") || strings.Contains(got, "-test") {
		t.Fatalf("topics = %v", gw.topics)
	}
}

func TestNew_MountsTriggerAndExposesPorts(t *testing.T) {
	t.Setenv("GCLOUD_PROJECT", "proj-1")
	gw := &recGateway{}
	m := New(modkit.Deps{Cfg: config.New(), Metrics: prometheus.NewRegistry()}, Options{TopicSuffix: "qa"},
		modkit.WithPorts(Collaborators{
			Content: stubContent{batch: joke.Batch{Topics: map[string]joke.Group{
				"general": {Topic: "general", Jokes: []joke.Joke{{ID: "1", Content: "hi"}}},
			}}},
			Credentials: credentials.Static("tok"),
			Gateway:     gw,
		}),
	)

	if m.Name() != "dispatch" || m.Prefix() != "/dispatch" {
		t.Fatalf("name/prefix = %s %s", m.Name(), m.Prefix())
	}
	if m.Options().TopicSuffix != "qa" {
		t.Fatalf("override not applied: %+v", m.Options())
	}
	if _, ok := mod.PortsOf[domain.DispatcherPort](m); !ok {
		t.Fatalf("dispatcher port missing")
	}

	r := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(r))
	req := httptest.NewRequest(http.MethodPost, "/dispatch/send", strings.NewReader(`{"dataset_id":3,"hour":5}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	gw.mu.Lock()
	defer gw.mu.Unlock()
	if len(gw.topics) != 2 {
		t.Fatalf("topics = %v", gw.topics)
	}
	for _, tp := range gw.topics {
		if !strings.HasPrefix(tp, "general-05-3-qa") {
			t.Fatalf("topic = %q", tp)
		}
	}
}

func TestNew_MissingProjectAnswers500(t *testing.T) {
	t.Setenv("GCLOUD_PROJECT", "")
	t.Setenv("DISPATCH_PROJECT_ID", "")
	m := New(modkit.Deps{Cfg: config.New()}, Options{}, modkit.WithPorts(Collaborators{
		Content:     stubContent{},
		Credentials: credentials.Static("tok"),
		Gateway:     &recGateway{},
	}))
	r := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(r))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dispatch/send?dataset=0", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestNew_TriggerTokenGuardsRoutes(t *testing.T) {
	t.Setenv("GCLOUD_PROJECT", "proj-1")
	gw := &recGateway{}
	m := New(modkit.Deps{Cfg: config.New()}, Options{TriggerToken: "s3cret"}, modkit.WithPorts(Collaborators{
		Content:     stubContent{},
		Credentials: credentials.Static("tok"),
		Gateway:     gw,
	}))
	r := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(r))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dispatch/send", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d body = %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/dispatch/send", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("with token status = %d body = %s", rec.Code, rec.Body.String())
	}
}
