package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func TestUpdateAndRecordDistance(t *testing.T) {
	s := New()

	ts := s.Update("3c6444", 1000, 3175)
	require.NotNil(t, ts)
	assert.Equal(t, []Sample{{1000, 3175}}, ts.History)
	assert.Equal(t, int64(1000), *ts.LastSeen)

	s.Update("3c6444", 1005, 3050)
	assert.Equal(t, []Sample{{1000, 3175}, {1005, 3050}}, s.Get("3c6444").History)
	assert.Equal(t, int64(1005), *s.Get("3c6444").LastSeen)

	assert.Nil(t, s.RecordDistance("3c6444", 12.5))
	prev := s.RecordDistance("3c6444", 11.9)
	require.NotNil(t, prev)
	assert.Equal(t, 12.5, *prev)
	assert.Equal(t, 11.9, *s.Get("3c6444").LastDistKM)
}

func TestTrim(t *testing.T) {
	tests := []struct {
		name   string
		window int64
		in     []Sample
		out    []Sample
	}{
		{"keeps pad", 90, []Sample{{0, 1}, {900, 2}, {901, 3}, {1000, 4}}, []Sample{{900, 2}, {901, 3}, {1000, 4}}},
		{"zero window keeps ten seconds", 0, []Sample{{989, 1}, {990, 2}, {1000, 3}}, []Sample{{990, 2}, {1000, 3}}},
		{"negative window", -50, []Sample{{989, 1}, {995, 2}}, []Sample{{995, 2}}},
		{"all gone", 90, []Sample{{1, 1}}, []Sample{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := &TrackState{History: append([]Sample{}, tc.in...)}
			ts.Trim(1000, tc.window)
			assert.Equal(t, tc.out, ts.History)

			// Trimming twice changes nothing more
			ts.Trim(1000, tc.window)
			assert.Equal(t, tc.out, ts.History)
		})
	}
}

func TestEvictStale(t *testing.T) {
	s := State{
		"fresh":   {LastSeen: i64(1000)},
		"edge":    {LastSeen: i64(400)},
		"stale":   {LastSeen: i64(399)},
		"unknown": {},
		"nil":     nil,
	}

	evicted := s.EvictStale(1000, 600)
	assert.Equal(t, []string{"nil", "stale", "unknown"}, evicted)
	assert.Len(t, s, 2)
	assert.Contains(t, s, "fresh")
	assert.Contains(t, s, "edge")

	assert.Empty(t, s.EvictStale(1000, 600))
}

func TestClone(t *testing.T) {
	s := State{"a": {History: []Sample{{1, 100}}, LastSeen: i64(1), LastDistKM: f64(2.5)}}
	c := s.Clone()

	c["a"].History[0].Altitude = 999
	*c["a"].LastSeen = 42
	*c["a"].LastDistKM = 9
	c["b"] = &TrackState{}

	assert.Equal(t, 100, s["a"].History[0].Altitude)
	assert.Equal(t, int64(1), *s["a"].LastSeen)
	assert.Equal(t, 2.5, *s["a"].LastDistKM)
	assert.NotContains(t, s, "b")
}

func TestCodecRoundTrip(t *testing.T) {
	s := State{
		"3c6444": {
			History:    []Sample{{1700000000, 3175}, {1700000005, 3050}, {1700000010, 2900}},
			LastSeen:   i64(1700000010),
			LastDistKM: f64(12.43),
		},
		"4ca7b1": {History: []Sample{}, LastSeen: i64(1700000000)},
		"a1b2c3": {},
	}

	data, err := EncodeState(s)
	require.NoError(t, err)

	back, err := DecodeState(data)
	require.NoError(t, err)
	assert.Equal(t, s["3c6444"], back["3c6444"])
	assert.Equal(t, s["4ca7b1"], back["4ca7b1"])

	// Empty history is written as [], never null
	assert.Equal(t, []Sample{}, back["a1b2c3"].History)
	assert.Nil(t, back["a1b2c3"].LastSeen)
	assert.Nil(t, back["a1b2c3"].LastDistKM)
	assert.NotContains(t, string(data), `"history": null`)
}

func TestDecodeForgiving(t *testing.T) {
	doc := `{
		"good": {"history": [[10, 100], [11], "x", [12, 120.0]], "last_seen": 12.0, "last_dist_km": null},
		"notobj": [1, 2, 3],
		"bare": {}
	}`
	s, err := DecodeState([]byte(doc))
	require.NoError(t, err)

	require.Contains(t, s, "good")
	assert.Equal(t, []Sample{{10, 100}, {12, 120}}, s["good"].History)
	assert.Equal(t, int64(12), *s["good"].LastSeen)
	assert.Nil(t, s["good"].LastDistKM)
	assert.NotContains(t, s, "notobj")
	assert.Contains(t, s, "bare")

	for _, bad := range []string{``, `[`, `[1,2]`, `"str"`} {
		_, err := DecodeState([]byte(bad))
		assert.ErrorIs(t, err, ErrCorrupt, "doc %q", bad)
	}
}

func testStoreRoundTrip(t *testing.T, store Store) {
	ctx := context.Background()

	s, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, s)

	s = State{"3c6444": {History: []Sample{{100, 5000}, {105, 4800}}, LastSeen: i64(105), LastDistKM: f64(7.25)}}
	require.NoError(t, store.Save(ctx, s))

	back, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s, back)

	// A second save replaces, rather than merges
	require.NoError(t, store.Save(ctx, State{"abcdef": {History: []Sample{}, LastSeen: i64(1)}}))
	back, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, back, 1)
	assert.Contains(t, back, "abcdef")
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore(nil)
	testStoreRoundTrip(t, m)
	assert.Equal(t, 2, m.Saves)

	// Mutating a loaded state doesn't leak into the store
	s, _ := m.Load(context.Background())
	s["abcdef"].History = append(s["abcdef"].History, Sample{2, 2})
	again, _ := m.Load(context.Background())
	assert.Empty(t, again["abcdef"].History)
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state_cache.json")
	testStoreRoundTrip(t, NewFileStore(path))

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state_cache.json", entries[0].Name())
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state_cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestFileStoreUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "state.json")
	err := NewFileStore(path).Save(context.Background(), State{})
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer store.Close()

	testStoreRoundTrip(t, store)
}
