package expiry

import (
	"testing"
	"time"
)

func TestAPNSAt_AddsWholeSeconds(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	got := APNSAt(now, DefaultTTL)
	want := now.Unix() + 86400 + 600
	if got != want {
		t.Fatalf("APNSAt = %d, want %d", got, want)
	}
	if got := APNSAt(now, 1500*time.Millisecond); got != now.Unix()+1 {
		t.Fatalf("sub-second ttl should truncate, got %d", got)
	}
}

func TestAPNS_TracksWallClock(t *testing.T) {
	ttl := 90 * time.Second
	first := APNS(ttl)
	time.Sleep(5 * time.Millisecond)
	second := APNS(ttl)
	if second < first {
		t.Fatalf("expiration went backwards: %d then %d", first, second)
	}
	delta := first - time.Now().Unix()
	if delta < 89 || delta > 91 {
		t.Fatalf("APNS - now = %d, want about 90", delta)
	}
}

func TestAndroidTTL(t *testing.T) {
	if got := AndroidTTL(DefaultTTL); got != "87000s" {
		t.Fatalf("AndroidTTL = %q", got)
	}
	if got := AndroidTTL(0); got != "0s" {
		t.Fatalf("AndroidTTL(0) = %q", got)
	}
}
