package payload

import (
	"bytes"
	"encoding/json"
)

// DefaultThreshold keeps the data block under the gateway's 4KB payload limit
const DefaultThreshold = 4000

// Marshal is the wire encoding shared by the size check and the gateway client
// HTML escaping is off so "&", "<" and ">" cost one byte each
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Size returns the UTF-8 byte length of f as Marshal writes it
func Size(f Fields) int {
	// a map[string]string always encodes
	b, _ := Marshal(f)
	return len(b)
}

// Choose returns extended when its wire size is within threshold, otherwise base
// The bool reports whether extended was chosen
func Choose(base, extended Fields, threshold int) (Fields, bool) {
	if Size(extended) > threshold {
		return base, false
	}
	return extended, true
}

// Select is Choose without the report
func Select(base, extended Fields, threshold int) Fields {
	f, _ := Choose(base, extended, threshold)
	return f
}
