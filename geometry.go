package solari

import (
	"math"

	"github.com/skypies/geo"
)

const KEarthRadiusKM = 6371.0

// DistKM is the great-circle distance between two points, by the haversine formula. The
// sqrt term is clamped to 1.0, as rounding can push it over for near-antipodal points.
func DistKM(a, b geo.Latlong) float64 {
	dLat := deg2rad(b.Lat - a.Lat)
	dLong := deg2rad(b.Long - a.Long)
	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(deg2rad(a.Lat))*math.Cos(deg2rad(b.Lat))*math.Pow(math.Sin(dLong/2), 2)
	return 2 * KEarthRadiusKM * math.Asin(math.Min(1.0, math.Sqrt(h)))
}

func deg2rad(d float64) float64 { return d * math.Pi / 180.0 }

// Round1 rounds to one decimal place, halves away from zero.
func Round1(f float64) float64 { return math.Round(f*10) / 10 }
