// Package normalize folds free text into the 7-bit ASCII form the push gateway accepts
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFD decomposition so accented letters split into base letter + mark
// 3 Remove every rune above 0x7F (marks, symbols, emoji, non-latin scripts)
// ASCII input, control characters included, passes through untouched
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFD,
			runes.Remove(runes.Predicate(dropped)),
		)
	},
}

// dropped reports runes that never survive ASCII folding
func dropped(r rune) bool { return r > unicode.MaxASCII }

// ASCII returns s decomposed and stripped to 7-bit ASCII
// Lossy but deterministic: "café" -> "cafe", "日本" -> ""
// ASCII(ASCII(s)) == ASCII(s) for every s
func ASCII(s string) string {
	if s == "" {
		return ""
	}
	if clean(s) {
		return s
	}

	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		// chain only fails on malformed input which ToValidUTF8 already removed, keep a slow path anyway
		return strings.Map(func(r rune) rune {
			if dropped(r) {
				return -1
			}
			return r
		}, s)
	}
	return out
}

// clean is the fast path: true when nothing would be removed
func clean(s string) bool {
	for i := 0; i < len(s); i++ {
		if dropped(rune(s[i])) {
			return false
		}
	}
	return true
}
