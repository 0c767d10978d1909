// Package joke holds the content model served by the upstream joke source
package joke

import (
	"encoding/json"
	"fmt"
)

// HighlightsKey is the batch key carrying the shared best-of list
const HighlightsKey = "highlights"

// Categories are the topic labels the upstream source publishes today
var Categories = []string{"general", "nerd", "nature", "culture"}

// Joke is a single content item. Optional fields are nil when the source omits them
type Joke struct {
	ID          string   `json:"rowKey"`
	Category    string   `json:"category,omitempty"`
	Content     string   `json:"content"`
	Author      *string  `json:"author,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Explanation *string  `json:"explanation,omitempty"`
}

// Group is an ordered list of jokes published under one topic label
type Group struct {
	Topic string
	Jokes []Joke
}

// Batch is one fetch result: topic label -> group, plus highlights shared by every topic
type Batch struct {
	Topics     map[string]Group
	Highlights []Joke
}

// Len returns the number of topic groups
func (b Batch) Len() int { return len(b.Topics) }

// Missing returns the known categories that the batch does not carry
func (b Batch) Missing() []string {
	var out []string
	for _, c := range Categories {
		if _, ok := b.Topics[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// UnmarshalJSON decodes { "<topic>": [...], "highlights": [...] }
func (b *Batch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("joke batch: expected object, got null")
	}
	out := Batch{Topics: make(map[string]Group, len(raw))}
	for key, msg := range raw {
		var jokes []Joke
		if err := json.Unmarshal(msg, &jokes); err != nil {
			return fmt.Errorf("joke batch: key %q: %w", key, err)
		}
		if key == HighlightsKey {
			out.Highlights = jokes
			continue
		}
		out.Topics[key] = Group{Topic: key, Jokes: jokes}
	}
	*b = out
	return nil
}

// MarshalJSON encodes the batch back into the upstream wire shape
func (b Batch) MarshalJSON() ([]byte, error) {
	raw := make(map[string][]Joke, len(b.Topics)+1)
	for key, g := range b.Topics {
		raw[key] = g.Jokes
	}
	if b.Highlights != nil {
		raw[HighlightsKey] = b.Highlights
	}
	return json.Marshal(raw)
}
