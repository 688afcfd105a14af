package board

import (
	"github.com/skypies/solari1090/state"
)

// Trend estimates the vertical rate, in feet per minute, from the history. It compares
// the current altitude against the newest sample at least windowSecs old; if no sample is
// that old it uses the oldest one we have, which can give a jumpy estimate for an
// aircraft we've only just started tracking. Returns nil when there is nothing to compare
// against.
func Trend(history []state.Sample, altitude int, now, windowSecs int64) *float64 {
	if len(history) == 0 {
		return nil
	}

	target := now - windowSecs
	ref := history[0]
	for _, s := range history {
		if s.Time <= target {
			ref = s
		}
	}

	if ref.Time >= now {
		return nil
	}
	minutes := float64(now-ref.Time) / 60.0
	fpm := float64(altitude-ref.Altitude) / minutes
	return &fpm
}
