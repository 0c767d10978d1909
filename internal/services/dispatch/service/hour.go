package service

import "time"

// DefaultHourLead nudges the sampled clock so a run firing just before the hour lands in the next slot
const DefaultHourLead = 25 * time.Second

// ResolveHour returns the hour bucket for now shifted by lead, in loc (UTC when nil)
func ResolveHour(now time.Time, lead time.Duration, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	return now.Add(lead).In(loc).Hour()
}
