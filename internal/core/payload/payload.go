// Package payload flattens jokes into the string map carried in a push data block
// and picks the largest variant that fits the gateway size budget
package payload

import (
	"strconv"

	"dadhumor/internal/core/joke"
	"dadhumor/internal/core/normalize"
)

// HighlightPrefix marks keys produced from the shared highlight list
const HighlightPrefix = "b_"

// FieldsPerJoke is the number of keys emitted for every encoded joke
const FieldsPerJoke = 5

// key stems in emission order
const (
	keyContent     = "content"
	keyAuthor      = "author"
	keyID          = "jokeId"
	keyExplanation = "explanation"
	keyRating      = "rating"
)

// Fields is a flat string keyed map. Values are never absent for emitted keys:
// missing text becomes "" and missing ratings become "0"
type Fields map[string]string

// Encode returns the base payload built from items and the extended payload that
// also carries highlights under the b_ prefix with their own 1-based numbering
func Encode(items, highlights []joke.Joke) (base, extended Fields) {
	base = make(Fields, len(items)*FieldsPerJoke)
	encodeInto(base, "", items)

	extended = make(Fields, (len(items)+len(highlights))*FieldsPerJoke)
	encodeInto(extended, "", items)
	encodeInto(extended, HighlightPrefix, highlights)
	return base, extended
}

func encodeInto(dst Fields, prefix string, items []joke.Joke) {
	for i, j := range items {
		n := strconv.Itoa(i + 1)
		dst[prefix+keyContent+n] = normalize.ASCII(j.Content)
		dst[prefix+keyAuthor+n] = text(j.Author)
		dst[prefix+keyID+n] = normalize.ASCII(j.ID)
		dst[prefix+keyExplanation+n] = text(j.Explanation)
		dst[prefix+keyRating+n] = rating(j.Rating)
	}
}

func text(p *string) string {
	if p == nil {
		return ""
	}
	return normalize.ASCII(*p)
}

func rating(p *float64) string {
	if p == nil {
		return "0"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
