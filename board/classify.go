package board

import (
	solari "github.com/skypies/solari1090"
	"github.com/skypies/solari1090/config"
)

// kDistDeltaKM is how far an aircraft must have moved towards (or away from) the airport
// since the last cycle for us to call it landing (or taking off) without a usable trend.
const kDistDeltaKM = 0.20

type Classification struct {
	Status solari.Status
	Class  solari.StatusClass
}

var (
	landed  = Classification{solari.StatusLanded, solari.ClassGood}
	takeOff = Classification{solari.StatusTakeOff, solari.ClassGood}
	landing = Classification{solari.StatusLanding, solari.ClassWarn}
	lowAlt  = Classification{solari.StatusLowAlt, solari.ClassWarn}
)

// Classifier labels aircraft near the ground with a flight phase.
type Classifier struct {
	Enable      bool
	LowAltFt    int
	LandedAltFt int
	UpFpm       float64
	DownFpm     float64 // a magnitude; descending faster than this is landing
}

func NewClassifier(cfg config.StatusConfig) Classifier {
	return Classifier{
		Enable:      cfg.Enable,
		LowAltFt:    cfg.LowAltFt,
		LandedAltFt: cfg.LandedAltFt,
		UpFpm:       cfg.UpFpm,
		DownFpm:     cfg.DownFpm,
	}
}

// Classify looks at the altitude first, then the trend, and only then at whether the
// aircraft got nearer or further since last time. Aircraft above the low altitude band
// get no label. curDistKM and prevDistKM may be nil.
func (c Classifier) Classify(altitude int, trendFpm, curDistKM, prevDistKM *float64) Classification {
	if !c.Enable {
		return Classification{}
	}

	switch {
	case altitude <= c.LandedAltFt:
		return landed
	case altitude > c.LowAltFt:
		return Classification{}
	case trendFpm != nil && *trendFpm >= c.UpFpm:
		return takeOff
	case trendFpm != nil && *trendFpm <= -c.DownFpm:
		return landing
	}

	if curDistKM != nil && prevDistKM != nil {
		delta := *curDistKM - *prevDistKM
		if delta <= -kDistDeltaKM {
			return landing
		} else if delta >= kDistDeltaKM {
			return takeOff
		}
	}
	return lowAlt
}
