package module

import (
	"strings"
	"time"

	"dadhumor/internal/core/envelope"
	"dadhumor/internal/core/expiry"
	"dadhumor/internal/core/payload"
	"dadhumor/internal/platform/config"
	"dadhumor/internal/services/dispatch/service"
)

// Options controls the dispatch pipeline. Values are read from env and may be overridden
type Options struct {
	ProjectID string

	// content source
	ContentBaseURL    string
	ContentPath       string
	ContentTimeout    time.Duration
	ContentMaxRetries int

	// push gateway
	GatewayBaseURL string
	GatewayTimeout time.Duration
	StaticToken    string

	// orchestrator
	Threshold   int
	TTL         time.Duration
	HourLead    time.Duration
	Timezone    string
	TopicSuffix string
	Title       string
	Body        string

	// bearer token required on the trigger routes, empty leaves them open
	TriggerToken string
}

// NoSuffix in DISPATCH_TOPIC_SUFFIX or an override publishes topics without a suffix
// "none" is accepted too
const NoSuffix = "-"

func topicSuffix(s string) string {
	if s == NoSuffix || strings.EqualFold(s, "none") {
		return ""
	}
	return s
}

// FromConfig reads options from GCLOUD_PROJECT and the CONTENT_, FCM_ and DISPATCH_ prefixes
func FromConfig(cfg config.Conf) Options {
	ct := cfg.Prefix("CONTENT_")
	fc := cfg.Prefix("FCM_")
	dc := cfg.Prefix("DISPATCH_")
	return Options{
		ProjectID: cfg.MayString("GCLOUD_PROJECT", dc.MayString("PROJECT_ID", "")),

		ContentBaseURL:    ct.MayString("BASE_URL", "https://daily-dad-humor3.azurewebsites.net"),
		ContentPath:       ct.MayString("PATH", "/api/JokesByCategory"),
		ContentTimeout:    ct.MayDuration("TIMEOUT", 10*time.Second),
		ContentMaxRetries: ct.MayInt("MAX_RETRIES", 2),

		GatewayBaseURL: fc.MayString("BASE_URL", "https://fcm.googleapis.com"),
		GatewayTimeout: fc.MayDuration("TIMEOUT", 10*time.Second),
		StaticToken:    fc.MayString("STATIC_TOKEN", ""),

		Threshold:   dc.MayInt("PAYLOAD_THRESHOLD", payload.DefaultThreshold),
		TTL:         dc.MayDuration("TTL", expiry.DefaultTTL),
		HourLead:    dc.MayDuration("HOUR_LEAD", service.DefaultHourLead),
		Timezone:    dc.MayString("TIMEZONE", "UTC"),
		TopicSuffix: topicSuffix(dc.MayString("TOPIC_SUFFIX", "test")),
		Title:       dc.MayString("TITLE", envelope.DefaultTitle),
		Body:        dc.MayString("BODY", envelope.DefaultBody),

		TriggerToken: dc.MayString("TRIGGER_TOKEN", ""),
	}
}

// merge applies non-zero overrides on top of o
func (o Options) merge(ov Options) Options {
	if ov.ProjectID != "" {
		o.ProjectID = ov.ProjectID
	}
	if ov.ContentBaseURL != "" {
		o.ContentBaseURL = ov.ContentBaseURL
	}
	if ov.ContentPath != "" {
		o.ContentPath = ov.ContentPath
	}
	if ov.ContentTimeout != 0 {
		o.ContentTimeout = ov.ContentTimeout
	}
	if ov.ContentMaxRetries != 0 {
		o.ContentMaxRetries = ov.ContentMaxRetries
	}
	if ov.GatewayBaseURL != "" {
		o.GatewayBaseURL = ov.GatewayBaseURL
	}
	if ov.GatewayTimeout != 0 {
		o.GatewayTimeout = ov.GatewayTimeout
	}
	if ov.StaticToken != "" {
		o.StaticToken = ov.StaticToken
	}
	if ov.Threshold != 0 {
		o.Threshold = ov.Threshold
	}
	if ov.TTL != 0 {
		o.TTL = ov.TTL
	}
	if ov.HourLead != 0 {
		o.HourLead = ov.HourLead
	}
	if ov.Timezone != "" {
		o.Timezone = ov.Timezone
	}
	if ov.TopicSuffix != "" {
		o.TopicSuffix = topicSuffix(ov.TopicSuffix)
	}
	if ov.Title != "" {
		o.Title = ov.Title
	}
	if ov.Body != "" {
		o.Body = ov.Body
	}
	if ov.TriggerToken != "" {
		o.TriggerToken = ov.TriggerToken
	}
	return o
}
