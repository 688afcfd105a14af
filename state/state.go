// Package state holds the only memory the board carries from one cycle to the next: a
// short altitude history per aircraft, plus when we last saw it and how far away it was.
package state

import (
	"context"
	"fmt"
	"sort"
)

// A Sample is one (time, altitude) observation. Samples are only ever appended, in time
// order, and trimmed from the front.
type Sample struct {
	Time     int64 // epoch seconds
	Altitude int   // feet
}

func (s Sample) String() string { return fmt.Sprintf("[%d,%dft]", s.Time, s.Altitude) }

// TrackState is everything we remember about one aircraft.
type TrackState struct {
	History    []Sample `json:"history"`
	LastSeen   *int64   `json:"last_seen"`    // nil means we never knew; such entries are evicted
	LastDistKM *float64 `json:"last_dist_km"` // distance to the airport, as of the last cycle
}

// Trim drops samples that are too old to ever be used for a trend. The cutoff is padded
// past the trend window, so the sample closest to the window edge always survives.
func (ts *TrackState) Trim(now, windowSecs int64) {
	cutoff := TrimCutoff(now, windowSecs)
	kept := make([]Sample, 0, len(ts.History))
	for _, s := range ts.History {
		if s.Time >= cutoff {
			kept = append(kept, s)
		}
	}
	ts.History = kept
}

func TrimCutoff(now, windowSecs int64) int64 {
	return now - max(10, windowSecs+10)
}

// State is the full set of tracked aircraft, keyed by lower-case hex identifier.
type State map[string]*TrackState

func New() State { return State{} }

func (s State) Get(id string) *TrackState { return s[id] }

// EvictStale removes aircraft we haven't seen for more than ttlSecs (or whose last-seen
// time was never recorded). It returns the identifiers it removed, in sorted order.
func (s State) EvictStale(now, ttlSecs int64) []string {
	evicted := []string{}
	for id, ts := range s {
		if ts == nil || ts.LastSeen == nil || now-*ts.LastSeen > ttlSecs {
			delete(s, id)
			evicted = append(evicted, id)
		}
	}
	sort.Strings(evicted)
	return evicted
}

// Update records a sighting: it creates the entry if need be, appends the sample, and
// marks the aircraft as seen now.
func (s State) Update(id string, now int64, altitude int) *TrackState {
	ts := s[id]
	if ts == nil {
		ts = &TrackState{History: []Sample{}}
		s[id] = ts
	}
	seen := now
	ts.LastSeen = &seen
	ts.History = append(ts.History, Sample{Time: now, Altitude: altitude})
	return ts
}

// RecordDistance stores the latest distance for an aircraft, and hands back whatever was
// stored before (nil if nothing was).
func (s State) RecordDistance(id string, km float64) (prev *float64) {
	ts := s[id]
	if ts == nil {
		ts = &TrackState{History: []Sample{}}
		s[id] = ts
	}
	prev = ts.LastDistKM
	cur := km
	ts.LastDistKM = &cur
	return prev
}

func (s State) Trim(id string, now, windowSecs int64) {
	if ts := s[id]; ts != nil {
		ts.Trim(now, windowSecs)
	}
}

// Clone is a deep copy; stores use it so callers never share memory with them.
func (s State) Clone() State {
	out := make(State, len(s))
	for id, ts := range s {
		if ts == nil {
			continue
		}
		c := &TrackState{History: append([]Sample{}, ts.History...)}
		if ts.LastSeen != nil {
			v := *ts.LastSeen
			c.LastSeen = &v
		}
		if ts.LastDistKM != nil {
			v := *ts.LastDistKM
			c.LastDistKM = &v
		}
		out[id] = c
	}
	return out
}

// Store persists State between cycles. Implementations are best-effort caches; the
// engine treats a failed Load as an empty state, and a failed Save as a warning.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
}
