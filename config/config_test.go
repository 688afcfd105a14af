package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadBytes(nil)
	require.NoError(t, err)

	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, "EDDF", cfg.Airport.ICAO)
	assert.Equal(t, 30.0, cfg.RadiusKM)
	assert.Equal(t, int64(90), cfg.TrendWindowS)
	assert.Equal(t, 2*time.Second, cfg.Feed.Timeout)
	assert.True(t, cfg.Status.Enable)
	assert.True(t, cfg.Status.InfluenceLists)
	assert.Equal(t, 2500, cfg.Status.LowAltFt)
}

func TestYAMLOverrides(t *testing.T) {
	doc := `
airport:
  icao: EGLL
  iata: LHR
  name: Heathrow
  lat: 51.4706
  lon: -0.461941
radius_km: 20
max_rows: 12
feed:
  base_url: http://pi.local/tar1090
  timeout: 500ms
status:
  low_alt_ft: 3000
  influence_lists: false
`
	cfg, err := LoadBytes([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "EGLL", cfg.Airport.ICAO)
	assert.Equal(t, 20.0, cfg.RadiusKM)
	assert.Equal(t, 12, cfg.MaxRows)
	assert.Equal(t, 500*time.Millisecond, cfg.Feed.Timeout)
	assert.Equal(t, "airport-board", cfg.Feed.UserAgent)

	// Partial status section keeps the other defaults
	assert.Equal(t, 3000, cfg.Status.LowAltFt)
	assert.False(t, cfg.Status.InfluenceLists)
	assert.True(t, cfg.Status.Enable)
	assert.Equal(t, 1000, cfg.Status.LandedAltFt)
	assert.Equal(t, 150.0, cfg.Status.UpFpm)
}

func TestAirportDefaultsAreAllOrNothing(t *testing.T) {
	cfg, err := LoadBytes([]byte("airport:\n  icao: KSFO\n"))
	require.NoError(t, err)
	assert.Equal(t, AirportConfig{ICAO: "KSFO"}, cfg.Airport)

	cfg, err = LoadBytes([]byte("airport:\n  lat: 37.6188\n  lon: -122.3754\n"))
	require.NoError(t, err)
	assert.Equal(t, AirportConfig{Lat: 37.6188, Lon: -122.3754}, cfg.Airport)

	t.Setenv("SOLARI_AIRPORT__IATA", "LHR")
	cfg, err = LoadBytes(nil)
	require.NoError(t, err)
	assert.Equal(t, AirportConfig{IATA: "LHR"}, cfg.Airport)
}

func TestAirportNameOnlyKeepsDefaultPosition(t *testing.T) {
	cfg, err := LoadBytes([]byte("airport:\n  name: Home\n"))
	require.NoError(t, err)
	assert.Equal(t, "EDDF", cfg.Airport.ICAO)
	assert.Equal(t, 50.0333, cfg.Airport.Lat)
	assert.Equal(t, "Home", cfg.Airport.Name)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SOLARI_RADIUS_KM", "42.5")
	t.Setenv("SOLARI_STATUS__DOWN_FPM", "250")
	t.Setenv("SOLARI_STATE__BACKEND", "memory")

	cfg, err := LoadBytes([]byte("radius_km: 10\n"))
	require.NoError(t, err)
	assert.Equal(t, 42.5, cfg.RadiusKM)
	assert.Equal(t, 250.0, cfg.Status.DownFpm)
	assert.Equal(t, "memory", cfg.State.Backend)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solari.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_rows: 3\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxRows)

	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxRows)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"radius", func(c *Config) { c.RadiusKM = 0 }},
		{"ceiling below floor", func(c *Config) { c.AltCeilingFt = 100; c.MinAltFt = 200 }},
		{"window", func(c *Config) { c.TrendWindowS = 0 }},
		{"arrival positive", func(c *Config) { c.ArrivalTrendFpm = 10 }},
		{"depart negative", func(c *Config) { c.DepartTrendFpm = -10 }},
		{"rows", func(c *Config) { c.MaxRows = 0 }},
		{"ttl", func(c *Config) { c.StateTTLS = -1 }},
		{"timeout", func(c *Config) { c.Feed.Timeout = 0 }},
		{"backend", func(c *Config) { c.State.Backend = "redis" }},
		{"gcs bucket", func(c *Config) { c.State.Backend = "gcs" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"no airport", func(c *Config) { c.Airport = AirportConfig{} }},
		{"landed above low alt", func(c *Config) { c.Status.LandedAltFt = 3000 }},
		{"negative up", func(c *Config) { c.Status.UpFpm = -1 }},
		{"negative down", func(c *Config) { c.Status.DownFpm = -100 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mod(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	cfg := Default()
	assert.NoError(t, cfg.Validate())

	_, err := LoadBytes([]byte("max_rows: -2\n"))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = LoadBytes([]byte("radius_km: [\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}
