// Package expiry derives push expiration values from a relative time to live
package expiry

import (
	"strconv"
	"time"
)

// DefaultTTL is slightly over a day so a missed hourly run still leaves a live notification window
const DefaultTTL = 24*time.Hour + 10*time.Minute

// APNSAt returns the absolute unix expiration (seconds) for ttl measured from now
func APNSAt(now time.Time, ttl time.Duration) int64 {
	return now.Unix() + int64(ttl/time.Second)
}

// APNS returns the absolute unix expiration (seconds) for ttl measured from the wall clock
func APNS(ttl time.Duration) int64 { return APNSAt(time.Now(), ttl) }

// AndroidTTL renders ttl as the gateway's duration string, e.g. "87000s"
func AndroidTTL(ttl time.Duration) string {
	return strconv.FormatInt(int64(ttl/time.Second), 10) + "s"
}
