package solari

import (
	"fmt"

	"github.com/skypies/adsb"
	"github.com/skypies/geo"
)

// A Snapshot is a single aircraft, as seen in one poll of the live feed, that has made it
// through the filters. It lives for one cycle only.
type Snapshot struct {
	IcaoId adsb.IcaoId // lower-cased hex; the state-tracking key

	geo.Latlong // Embedded, so we can call the geo stuff directly

	Altitude    int      // Pressure altitude, truncated to whole feet
	GroundSpeed *float64 // In knots; nil if the feed didn't have it
	Flight      string   // Callsign, trimmed; may be empty
	Seen        float64  // Seconds since the feed last heard from the aircraft

	// Populated by LocalizeTo
	Reference         geo.Latlong
	DistToReferenceKM float64
}

func (s Snapshot) String() string {
	return fmt.Sprintf("[%s] %-8.8s %s %dft %.1fKM seen=%.1fs", s.IcaoId, s.Flight, s.Latlong,
		s.Altitude, s.DistToReferenceKM, s.Seen)
}

func (s *Snapshot) LocalizeTo(refpt geo.Latlong) {
	s.Reference = refpt
	s.DistToReferenceKM = DistKM(refpt, s.Latlong)
}
