// Package envelope builds gateway message envelopes for one delivery variant
// The composer never performs I/O
package envelope

import (
	"strconv"
	"time"

	"dadhumor/internal/core/expiry"
	"dadhumor/internal/core/payload"
)

// Variant selects how the client presents the notification
type Variant uint8

const (
	// Sound plays the platform default alert sound
	Sound Variant = iota
	// Silent delivers the banner without an alert sound
	Silent
)

// Variants lists every delivery variant in dispatch order
var Variants = []Variant{Sound, Silent}

// String implements fmt.Stringer
func (v Variant) String() string {
	switch v {
	case Sound:
		return "sound"
	case Silent:
		return "silent"
	default:
		return "unknown"
	}
}

// SilentSuffix is appended to the topic for the silent variant
const SilentSuffix = "-silent"

const (
	soundDefault     = "default"
	channelDefault   = "default_channel"
	channelSilent    = "silent_channel"
	priorityHigh     = "high"
	clickActionApp   = "FLUTTER_NOTIFICATION_CLICK"
	headerExpiration = "apns-expiration"

	// DefaultTitle is the notification title shown on every device
	DefaultTitle = "Your Daily Joke!"
	// DefaultBody is the notification body shown on every device
	DefaultBody = "Tap to reveal the punchline 😄"
)

// Topic returns the gateway topic for variant v
func Topic(base string, v Variant) string {
	if v == Silent {
		return base + SilentSuffix
	}
	return base
}

// Request is the POST body of the gateway send call
type Request struct {
	Message Message `json:"message"`
}

// Message is a single topic message
type Message struct {
	Topic        string         `json:"topic"`
	Notification Notification   `json:"notification"`
	Data         payload.Fields `json:"data"`
	Android      Android        `json:"android"`
	APNS         APNS           `json:"apns"`
}

// Notification is the cross-platform visible part
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Android carries android specific delivery options
type Android struct {
	TTL          string              `json:"ttl"`
	Priority     string              `json:"priority"`
	Notification AndroidNotification `json:"notification"`
}

// AndroidNotification routes display behavior on the device
type AndroidNotification struct {
	Sound       string `json:"sound,omitempty"`
	ChannelID   string `json:"channelId"`
	ClickAction string `json:"click_action,omitempty"`
}

// APNS carries apple specific delivery options
type APNS struct {
	Headers map[string]string `json:"headers"`
	Payload APNSPayload       `json:"payload"`
}

// APNSPayload wraps the aps dictionary
type APNSPayload struct {
	Aps Aps `json:"aps"`
}

// Aps holds the apple alert options; an empty sound disables the alert sound but still delivers
type Aps struct {
	Sound string `json:"sound"`
}

// Composer builds envelopes with a fixed notification copy
type Composer struct {
	Title       string
	Body        string
	ClickAction string
}

// NewComposer returns a Composer with the default copy filled in where blank
func NewComposer(title, body string) Composer {
	if title == "" {
		title = DefaultTitle
	}
	if body == "" {
		body = DefaultBody
	}
	return Composer{Title: title, Body: body, ClickAction: clickActionApp}
}

// Compose builds the message for topic (the sound topic) and variant v
// apnsExpiration is an absolute unix timestamp shared by every variant of a run
func (c Composer) Compose(topic string, data payload.Fields, v Variant, ttl time.Duration, apnsExpiration int64) Message {
	sound, channel := soundDefault, channelDefault
	if v == Silent {
		sound, channel = "", channelSilent
	}
	if data == nil {
		data = payload.Fields{}
	}
	return Message{
		Topic:        Topic(topic, v),
		Notification: Notification{Title: c.Title, Body: c.Body},
		Data:         data,
		Android: Android{
			TTL:      expiry.AndroidTTL(ttl),
			Priority: priorityHigh,
			Notification: AndroidNotification{
				Sound:       sound,
				ChannelID:   channel,
				ClickAction: c.ClickAction,
			},
		},
		APNS: APNS{
			Headers: map[string]string{headerExpiration: strconv.FormatInt(apnsExpiration, 10)},
			Payload: APNSPayload{Aps: Aps{Sound: sound}},
		},
	}
}
