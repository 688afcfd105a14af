package solari

import (
	"encoding/json"
	"fmt"
)

// Row is one line on the board. The JSON names are what the front end reads.
type Row struct {
	Flight        string      `json:"flight"`
	Icao          string      `json:"icao"` // upper-cased, for display
	AltitudeFt    int         `json:"alt_ft"`
	DistKM        float64     `json:"dist_km"` // rounded to 0.1
	GroundSpeedKt *int        `json:"gs_kt"`
	TrendFpm      *int        `json:"trend_fpm"`
	Status        Status      `json:"status"`
	StatusClass   StatusClass `json:"status_cls"`
	SeenS         int         `json:"seen_s"`
	LastSeenEpoch int64       `json:"last_seen_epoch"`

	AirlineIataGuess string `json:"airline_iata_guess"`
	AirlineIcaoGuess string `json:"airline_icao_guess"`
	AirlineName      string `json:"airline_name,omitempty"`

	// Only present when a route table is loaded
	From *string `json:"from,omitempty"`
	To   *string `json:"to,omitempty"`
}

func (r Row) String() string {
	trend := "-"
	if r.TrendFpm != nil {
		trend = fmt.Sprintf("%+d", *r.TrendFpm)
	}
	return fmt.Sprintf("%-8.8s [%s] %6dft %5.1fKM %6sfpm %-8s", r.Flight, r.Icao, r.AltitudeFt,
		r.DistKM, trend, r.Status)
}

type Counts struct {
	ArrivalsInRadius   int `json:"arrivals_in_radius"`
	DeparturesInRadius int `json:"departures_in_radius"`
	Shown              int `json:"shown"`
}

// Envelope is the result of one cycle. A failed cycle has OK=false and an Error message,
// and nothing else; an empty but successful one has OK=true, no rows, and zero counts.
type Envelope struct {
	OK           bool   `json:"ok"`
	Error        string `json:"error,omitempty"`
	Mode         Mode   `json:"mode"`
	Airport      string `json:"airport"`
	UpdatedEpoch int64  `json:"updated_epoch"`
	Rows         []Row  `json:"rows"`
	Counts       Counts `json:"counts"`
}

func FailedEnvelope(msg string) Envelope {
	return Envelope{OK: false, Error: msg}
}

type failedEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if !e.OK {
		return json.Marshal(failedEnvelope{OK: false, Error: e.Error})
	}
	type plain Envelope // drops the methods, so no recursion
	p := plain(e)
	if p.Rows == nil {
		p.Rows = []Row{}
	}
	return json.Marshal(p)
}
