// Package board turns one poll of the live feed, plus the remembered track state, into
// the arrivals and departures lists.
package board

import (
	"strings"

	"github.com/skypies/adsb"
	"github.com/skypies/geo"

	solari "github.com/skypies/solari1090"
	"github.com/skypies/solari1090/config"
	"github.com/skypies/solari1090/dump1090"
)

// DropReason says why the filter rejected a record. The zero value means it was kept.
type DropReason string

const (
	Kept       DropReason = ""
	NoHex      DropReason = "no_hex"
	NotRecent  DropReason = "not_recent"   // seen is missing, non-numeric, or too old
	NoPosition DropReason = "no_position"  // lat or lon missing or non-numeric
	NoAltitude DropReason = "no_altitude"  // missing, non-numeric, or "ground"
	OutOfLayer DropReason = "out_of_layer" // below the floor or above the ceiling
	TooFar     DropReason = "too_far"
)

// Filter decides which feed records are worth tracking: recently heard, with a position
// and altitude, within the altitude band, and inside the radius around the airport.
type Filter struct {
	Reference    geo.Latlong
	RadiusKM     float64
	MinAltFt     int
	AltCeilingFt int
	MinSeenS     float64
}

func NewFilter(cfg config.Config, reference geo.Latlong) Filter {
	return Filter{
		Reference:    reference,
		RadiusKM:     cfg.RadiusKM,
		MinAltFt:     cfg.MinAltFt,
		AltCeilingFt: cfg.AltCeilingFt,
		MinSeenS:     cfg.MinSeenS,
	}
}

// Apply runs the checks in a fixed order, and stops at the first one that fails.
func (f Filter) Apply(a dump1090.Aircraft) (solari.Snapshot, DropReason) {
	s := solari.Snapshot{}

	hex, _ := dump1090.String(a.Hex)
	hex = strings.ToLower(strings.TrimSpace(hex))
	if hex == "" {
		return s, NoHex
	}
	s.IcaoId = adsb.IcaoId(hex)

	seen, ok := dump1090.Number(a.Seen)
	if !ok || seen > f.MinSeenS {
		return s, NotRecent
	}
	s.Seen = seen

	lat, latOk := dump1090.Number(a.Lat)
	long, longOk := dump1090.Number(a.Lon)
	if !latOk || !longOk {
		return s, NoPosition
	}
	s.Latlong = geo.Latlong{Lat: lat, Long: long}

	alt, ok := dump1090.Number(a.RawAltitude())
	if !ok {
		return s, NoAltitude
	}
	s.Altitude = int(alt)
	if s.Altitude < f.MinAltFt || s.Altitude > f.AltCeilingFt {
		return s, OutOfLayer
	}

	s.LocalizeTo(f.Reference)
	if s.DistToReferenceKM > f.RadiusKM {
		return s, TooFar
	}

	if gs, ok := dump1090.Number(a.GS); ok {
		s.GroundSpeed = &gs
	}
	if flight, ok := dump1090.String(a.Flight); ok {
		s.Flight = strings.TrimSpace(flight)
	}

	return s, Kept
}
