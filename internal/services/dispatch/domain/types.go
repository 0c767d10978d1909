// Package domain holds the dispatch run model and the ports it talks to
package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Params selects the dataset and optionally pins the hour bucket
type Params struct {
	DatasetID int  `json:"dataset_id" validate:"min=0"`
	Hour      *int `json:"hour,omitempty" validate:"omitempty,hour"`
}

// State is the lifecycle of a run
type State string

// Run states. A run that stops early keeps the state it stopped in
const (
	StatePending     State = "pending"
	StateFetching    State = "fetching"
	StateDispatching State = "dispatching"
	StateCompleted   State = "completed"
)

// UnitState is the outcome of one topic x variant delivery
type UnitState string

// Unit states
const (
	UnitPending UnitState = "pending"
	UnitSent    UnitState = "sent"
	UnitFailed  UnitState = "failed"
)

// RunContext is resolved once per run and read-only afterwards
type RunContext struct {
	DatasetID int
	Hour      int
	Suffix    string
}

// HourPadded returns the hour as two digits
func (rc RunContext) HourPadded() string { return fmt.Sprintf("%02d", rc.Hour) }

// Topic returns the sound topic for a label, e.g. general-09-0-test
func (rc RunContext) Topic(label string) string {
	t := label + "-" + rc.HourPadded() + "-" + strconv.Itoa(rc.DatasetID)
	if rc.Suffix != "" {
		t += "-" + rc.Suffix
	}
	return t
}

// Outcome records one delivery attempt
type Outcome struct {
	Label        string    `json:"label"`
	Topic        string    `json:"topic"`
	Variant      string    `json:"variant"`
	State        UnitState `json:"state"`
	Extended     bool      `json:"extended"`
	PayloadBytes int       `json:"payload_bytes"`
	Error        string    `json:"error,omitempty"`
}

// TopicSummary aggregates both variants of one label
type TopicSummary struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// OK reports whether every delivery for the label went through
func (s TopicSummary) OK() bool { return s.Failed == 0 }

// Result is the report of a run
type Result struct {
	RunID      string    `json:"run_id"`
	DatasetID  int       `json:"dataset_id"`
	Hour       string    `json:"hour"`
	State      State     `json:"state"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Expiration int64     `json:"apns_expiration,omitempty"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	Outcomes   []Outcome `json:"outcomes"`

	Topics map[string]TopicSummary `json:"topics,omitempty"`
}

// Attempts returns the number of delivery attempts made
func (r Result) Attempts() int { return r.Sent + r.Failed }

// ByTopic groups outcomes per label
func (r Result) ByTopic() map[string]TopicSummary {
	out := make(map[string]TopicSummary)
	for _, o := range r.Outcomes {
		s := out[o.Label]
		switch o.State {
		case UnitSent:
			s.Sent++
		case UnitFailed:
			s.Failed++
		}
		out[o.Label] = s
	}
	return out
}
