package state

import (
	"encoding/json"
	"errors"
	"fmt"
)

/* The persisted layout is one JSON object, keyed by hex id:

{
    "3c6444": {
        "history": [[1700000000, 3175], [1700000005, 3050]],
        "last_seen": 1700000005,
        "last_dist_km": 12.43
    }
}

Decoding is forgiving, since this is just a cache: entries that aren't objects, and
samples that aren't [time, altitude] pairs, are dropped rather than failing the load.
*/

// ErrCorrupt is returned (wrapped) when a persisted document isn't a JSON object at all.
var ErrCorrupt = errors.New("state document is corrupt")

func (s Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int64{s.Time, int64(s.Altitude)})
}

func (s *Sample) UnmarshalJSON(data []byte) error {
	pair := []float64{}
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	} else if len(pair) != 2 {
		return fmt.Errorf("sample has %d elements, not 2", len(pair))
	}
	s.Time, s.Altitude = int64(pair[0]), int(pair[1])
	return nil
}

func (ts TrackState) MarshalJSON() ([]byte, error) {
	type plain TrackState
	p := plain(ts)
	if p.History == nil {
		p.History = []Sample{}
	}
	return json.Marshal(p)
}

func (ts *TrackState) UnmarshalJSON(data []byte) error {
	raw := struct {
		History    []json.RawMessage `json:"history"`
		LastSeen   *float64          `json:"last_seen"`
		LastDistKM *float64          `json:"last_dist_km"`
	}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ts.History = make([]Sample, 0, len(raw.History))
	for _, r := range raw.History {
		s := Sample{}
		if err := json.Unmarshal(r, &s); err == nil {
			ts.History = append(ts.History, s)
		}
	}
	ts.LastSeen = nil
	if raw.LastSeen != nil {
		v := int64(*raw.LastSeen)
		ts.LastSeen = &v
	}
	ts.LastDistKM = raw.LastDistKM
	return nil
}

func EncodeState(s State) ([]byte, error) {
	if s == nil {
		s = State{}
	}
	return json.MarshalIndent(s, "", "    ")
}

func DecodeState(data []byte) (State, error) {
	entries := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	s := make(State, len(entries))
	for id, raw := range entries {
		ts := TrackState{}
		if err := json.Unmarshal(raw, &ts); err != nil {
			continue
		}
		s[id] = &ts
	}
	return s, nil
}
