package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/skypies/geo/sfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skypies/solari1090/ref"
	"github.com/skypies/solari1090/state"
)

func writeConfig(t *testing.T, doc string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "solari.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))
	configFile = path
	t.Cleanup(func() { configFile = "" })
}

func TestNewAppMemory(t *testing.T) {
	writeConfig(t, "state:\n  backend: memory\nlog:\n  level: error\n")

	a, err := newApp(context.Background(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "EDDF", a.engine.Airport.ICAO)
	assert.Equal(t, "FRA", a.engine.Airport.Code())
	assert.IsType(t, &state.MemoryStore{}, a.engine.Store)
}

func TestNewAppAirportFromCodeOnly(t *testing.T) {
	writeConfig(t, "airport:\n  icao: KSFO\nstate:\n  backend: memory\nlog:\n  level: error\n")

	a, err := newApp(context.Background(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	ap := a.engine.Airport
	assert.Equal(t, "KSFO", ap.ICAO)
	assert.Equal(t, "KSFO", ap.Code())
	assert.Equal(t, "KSFO", ap.Name)
	assert.Equal(t, sfo.KAirports["KSFO"], ap.Latlong)
}

func TestNewAppSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")
	writeConfig(t, "state:\n  backend: sqlite\n  path: "+dbPath+"\nlog:\n  level: error\n")

	a, err := newApp(context.Background(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &state.SQLiteStore{}, a.engine.Store)
	assert.Len(t, a.closers, 1)
}

func TestNewAppBadTables(t *testing.T) {
	writeConfig(t, "ref:\n  airlines_file: /no/such/airlines.csv\nlog:\n  level: error\n")

	_, err := newApp(context.Background(), prometheus.NewRegistry())
	assert.ErrorIs(t, err, ref.ErrTableUnreadable)
}
