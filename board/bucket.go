package board

import (
	solari "github.com/skypies/solari1090"
	"github.com/skypies/solari1090/config"
	"github.com/skypies/solari1090/ref"
)

// Bucket is which list an aircraft ends up on, if any.
type Bucket int

const (
	NoBucket Bucket = iota
	ArrivalsBucket
	DeparturesBucket
)

func (b Bucket) String() string {
	switch b {
	case ArrivalsBucket:
		return "arrivals"
	case DeparturesBucket:
		return "departures"
	default:
		return "none"
	}
}

func BucketFor(m solari.Mode) Bucket {
	if m == solari.Arrivals {
		return ArrivalsBucket
	}
	return DeparturesBucket
}

type Bucketizer struct {
	StatusDriven    bool    // the status label, when it has an opinion, picks the list
	ArrivalTrendFpm float64 // at or below this, arriving
	DepartTrendFpm  float64 // at or above this, departing
}

func NewBucketizer(cfg config.Config) Bucketizer {
	return Bucketizer{
		StatusDriven:    cfg.Status.Enable && cfg.Status.InfluenceLists,
		ArrivalTrendFpm: cfg.ArrivalTrendFpm,
		DepartTrendFpm:  cfg.DepartTrendFpm,
	}
}

// Bucket picks a list from the status label, falling back to the trend thresholds. An
// aircraft with no trend, and no decisive label, goes on neither list.
func (b Bucketizer) Bucket(c Classification, trendFpm *float64) Bucket {
	if b.StatusDriven {
		switch c.Status {
		case solari.StatusTakeOff:
			return DeparturesBucket
		case solari.StatusLanding, solari.StatusLanded:
			return ArrivalsBucket
		}
	}

	switch {
	case trendFpm == nil:
		return NoBucket
	case *trendFpm <= b.ArrivalTrendFpm:
		return ArrivalsBucket
	case *trendFpm >= b.DepartTrendFpm:
		return DeparturesBucket
	}
	return NoBucket
}

// RouteEndpoints fills in the from/to columns. The airport end of the route is always the
// board's own airport; the other end comes from the route table, or is left blank.
func RouteEndpoints(b Bucket, route ref.Route, known bool, airportCode string) (from, to string) {
	if !known {
		route = ref.Route{}
	}
	switch b {
	case ArrivalsBucket:
		return route.Origin, airportCode
	case DeparturesBucket:
		return airportCode, route.Destination
	default:
		return route.Origin, route.Destination
	}
}
