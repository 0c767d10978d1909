package domain

import "testing"

func TestRunContextTopic(t *testing.T) {
	rc := RunContext{DatasetID: 0, Hour: 9, Suffix: "test"}
	if got := rc.Topic("general"); got != "general-09-0-test" {
		t.Fatalf("Topic = %q", got)
	}
	rc = RunContext{DatasetID: 12, Hour: 23}
	if got := rc.Topic("nerd"); got != "nerd-23-12" {
		t.Fatalf("Topic without suffix = %q", got)
	}
	if (RunContext{Hour: 0}).HourPadded() != "00" {
		t.Fatalf("hour zero must pad")
	}
}

func TestResultByTopic(t *testing.T) {
	r := Result{
		Sent:   3,
		Failed: 1,
		Outcomes: []Outcome{
			{Label: "general", State: UnitSent},
			{Label: "general", State: UnitFailed},
			{Label: "nerd", State: UnitSent},
			{Label: "nerd", State: UnitSent},
		},
	}
	by := r.ByTopic()
	if by["general"] != (TopicSummary{Sent: 1, Failed: 1}) || by["general"].OK() {
		t.Fatalf("general = %+v", by["general"])
	}
	if !by["nerd"].OK() || by["nerd"].Sent != 2 {
		t.Fatalf("nerd = %+v", by["nerd"])
	}
	if r.Attempts() != 4 {
		t.Fatalf("Attempts = %d", r.Attempts())
	}
}
