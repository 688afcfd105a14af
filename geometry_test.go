package solari

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/skypies/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kEDDF = geo.Latlong{Lat: 50.0333, Long: 8.5706}

func TestDistKM(t *testing.T) {
	tests := []struct {
		name     string
		a, b     geo.Latlong
		expected float64
		delta    float64
	}{
		{"same point", kEDDF, kEDDF, 0.0, 1e-9},
		{"one degree of latitude", geo.Latlong{Lat: 0, Long: 0}, geo.Latlong{Lat: 1, Long: 0}, 111.195, 0.001},
		{"quarter circumference", geo.Latlong{Lat: 0, Long: 0}, geo.Latlong{Lat: 0, Long: 90}, math.Pi * KEarthRadiusKM / 2, 1e-6},
		{"antipodes are clamped", geo.Latlong{Lat: 0, Long: 0}, geo.Latlong{Lat: 0, Long: 180}, math.Pi * KEarthRadiusKM, 1e-6},
		{"FRA to MUC", kEDDF, geo.Latlong{Lat: 48.3538, Long: 11.7861}, 299.07, 0.01},
	}
	for _, test := range tests {
		d := DistKM(test.a, test.b)
		assert.InDelta(t, test.expected, d, test.delta, test.name)
		assert.False(t, math.IsNaN(d), test.name)
		assert.Equal(t, d, DistKM(test.b, test.a), "%s: symmetric", test.name)
	}
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 12.3, Round1(12.34))
	assert.Equal(t, 12.4, Round1(12.35001))
	assert.Equal(t, 0.0, Round1(0.04))
	assert.Equal(t, -1.5, Round1(-1.45001))
}

func TestSnapshotLocalizeTo(t *testing.T) {
	s := Snapshot{Latlong: geo.Latlong{Lat: 50.1, Long: 8.6}}
	s.LocalizeTo(kEDDF)
	assert.Equal(t, kEDDF, s.Reference)
	assert.Equal(t, DistKM(kEDDF, s.Latlong), s.DistToReferenceKM)
}

func TestEnvelopeJSON(t *testing.T) {
	t.Run("failure carries only ok and error", func(t *testing.T) {
		b, err := json.Marshal(FailedEnvelope("Could not read http://x/data/aircraft.json"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":false,"error":"Could not read http://x/data/aircraft.json"}`, string(b))
	})

	t.Run("empty success has empty rows and zero counts", func(t *testing.T) {
		b, err := json.Marshal(Envelope{OK: true, Mode: Arrivals, Airport: "EDDF", UpdatedEpoch: 100})
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true,"mode":"arrivals","airport":"EDDF","updated_epoch":100,"rows":[],
			"counts":{"arrivals_in_radius":0,"departures_in_radius":0,"shown":0}}`, string(b))
	})

	t.Run("null status, speed and trend", func(t *testing.T) {
		b, err := json.Marshal(Row{Flight: "DLH400", Icao: "3C6444", AltitudeFt: 3000, DistKM: 12.3})
		require.NoError(t, err)
		m := map[string]interface{}{}
		require.NoError(t, json.Unmarshal(b, &m))
		for _, k := range []string{"status", "status_cls", "gs_kt", "trend_fpm"} {
			v, exists := m[k]
			assert.True(t, exists, k)
			assert.Nil(t, v, k)
		}
		_, hasFrom := m["from"]
		assert.False(t, hasFrom)
	})

	t.Run("status labels", func(t *testing.T) {
		b, err := json.Marshal(Row{Status: StatusTakeOff, StatusClass: ClassGood})
		require.NoError(t, err)
		var r Row
		require.NoError(t, json.Unmarshal(b, &r))
		assert.Equal(t, StatusTakeOff, r.Status)
		assert.Equal(t, ClassGood, r.StatusClass)
	})
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, Arrivals, ParseMode("arrivals"))
	assert.Equal(t, Arrivals, ParseMode("ARRIVALS"))
	assert.Equal(t, Departures, ParseMode("departures"))
	assert.Equal(t, Departures, ParseMode(""))
	assert.Equal(t, Departures, ParseMode("bogus"))
}
