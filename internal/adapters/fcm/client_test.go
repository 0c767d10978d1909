package fcm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dadhumor/internal/core/envelope"
	"dadhumor/internal/core/payload"
	perr "dadhumor/internal/platform/errors"
	kit "dadhumor/internal/platform/testkit"
)

func testMessage() envelope.Message {
	c := envelope.NewComposer("", "")
	return c.Compose("general-09-0-test", payload.Fields{"content1": "hi"}, envelope.Silent, time.Hour, 1700000000)
}

func TestSend_PostsEnvelope(t *testing.T) {
	var got envelope.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/v1/projects/proj-1/messages:send" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("auth = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"name":"projects/proj-1/messages/1"}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL + "/"})
	if err := c.Send(context.Background(), "proj-1", "tok", testMessage()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Message.Topic != "general-09-0-test-silent" {
		t.Fatalf("topic = %q", got.Message.Topic)
	}
	if got.Message.Data["content1"] != "hi" {
		t.Fatalf("data = %v", got.Message.Data)
	}
	if got.Message.APNS.Headers["apns-expiration"] != "1700000000" {
		t.Fatalf("apns headers = %v", got.Message.APNS.Headers)
	}
}

func TestSend_DataBytesMatchMeasuredSize(t *testing.T) {
	cases := []struct {
		name string
		data payload.Fields
	}{
		{"plain", payload.Fields{"content1": "hi"}},
		{"html chars", payload.Fields{"content1": "Tom & Jerry <3 > cats", "category": "a&b"}},
		{"only escapes", payload.Fields{"x": "<<<&&&>>>"}},
		{"non ascii", payload.Fields{"content1": "caf\u00e9 \u2014 na\u00efve"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var wire struct {
				Message struct {
					Data json.RawMessage `json:"data"`
				} `json:"message"`
			}
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				if err := json.Unmarshal(b, &wire); err != nil {
					t.Errorf("decode: %v", err)
				}
				_, _ = w.Write([]byte(`{}`))
			}))
			defer srv.Close()

			msg := envelope.NewComposer("", "").Compose("general-09-0-test", tc.data, envelope.Silent, time.Hour, 1700000000)
			if err := NewClient(Options{BaseURL: srv.URL}).Send(context.Background(), "p", "t", msg); err != nil {
				t.Fatalf("Send: %v", err)
			}
			if got, want := len(wire.Message.Data), payload.Size(tc.data); got != want {
				t.Fatalf("wire data = %d bytes (%s), measured %d", got, wire.Message.Data, want)
			}
		})
	}
}

func TestSend_Non2xxIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"status":"INVALID_ARGUMENT"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewClient(Options{BaseURL: srv.URL}).Send(context.Background(), "p", "t", testMessage())
	if !perr.IsCode(err, perr.ErrorCodeUpstream) {
		t.Fatalf("want upstream error, got %v", err)
	}
	kit.MustContain(t, err.Error(), "status 400")
	kit.MustContain(t, err.Error(), "INVALID_ARGUMENT")
	kit.MustContain(t, err.Error(), "general-09-0-test-silent")
}

func TestSend_TransportErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	err := NewClient(Options{BaseURL: base}).Send(context.Background(), "p", "t", testMessage())
	if !perr.IsCode(err, perr.ErrorCodeUpstream) {
		t.Fatalf("want upstream error, got %v", err)
	}
}

func TestSend_MissingAuthIsConfig(t *testing.T) {
	c := NewClient(Options{})
	if err := c.Send(context.Background(), "", "t", testMessage()); !perr.IsCode(err, perr.ErrorCodeConfig) {
		t.Fatalf("missing project: %v", err)
	}
	if err := c.Send(context.Background(), "p", "", testMessage()); !perr.IsCode(err, perr.ErrorCodeConfig) {
		t.Fatalf("missing token: %v", err)
	}
}

func TestEndpoint(t *testing.T) {
	c := NewClient(Options{})
	if got := c.Endpoint("daily-dad"); got != "https://fcm.googleapis.com/v1/projects/daily-dad/messages:send" {
		t.Fatalf("Endpoint = %q", got)
	}
}
