package board

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	solari "github.com/skypies/solari1090"
	"github.com/skypies/solari1090/config"
	"github.com/skypies/solari1090/dump1090"
	"github.com/skypies/solari1090/metrics"
	"github.com/skypies/solari1090/ref"
	"github.com/skypies/solari1090/state"
)

// Fetcher is the live feed; *dump1090.Client is the real one.
type Fetcher interface {
	Fetch(ctx context.Context) (*dump1090.Report, error)
	AircraftURL() string
}

// Engine runs board cycles. Cycles are serialized from state load through state save, so
// concurrent requests can't lose each other's updates; the feed fetch happens outside the
// lock.
type Engine struct {
	Fetcher Fetcher
	Store   state.Store
	Tables  *ref.Tables
	Airport ref.Airport
	Config  config.Config
	Logger  *zap.Logger
	Metrics *metrics.Collector
	Clock   func() time.Time

	filter     Filter
	classifier Classifier
	bucketizer Bucketizer

	mu sync.Mutex
}

func NewEngine(cfg config.Config, airport ref.Airport, f Fetcher, store state.Store, tables *ref.Tables, logger *zap.Logger, m *metrics.Collector) *Engine {
	if tables == nil {
		tables = ref.NewTables()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		Fetcher:    f,
		Store:      store,
		Tables:     tables,
		Airport:    airport,
		Config:     cfg,
		Logger:     logger,
		Metrics:    m,
		Clock:      time.Now,
		filter:     NewFilter(cfg, airport.Latlong),
		classifier: NewClassifier(cfg.Status),
		bucketizer: NewBucketizer(cfg),
	}
}

// CycleStats is what a cycle saw, for logging and metrics.
type CycleStats struct {
	Records    int
	Dropped    map[DropReason]int
	Arrivals   int
	Departures int
	Evicted    []string
	Tracked    int
}

// Run fetches the feed and runs one cycle against the stored state.
func (e *Engine) Run(ctx context.Context, mode solari.Mode) (solari.Envelope, error) {
	return e.RunWithRows(ctx, mode, e.Config.MaxRows)
}

// RunWithRows is Run, showing at most maxRows rows. Values outside 1..max_rows mean
// max_rows.
func (e *Engine) RunWithRows(ctx context.Context, mode solari.Mode, maxRows int) (solari.Envelope, error) {
	start := time.Now()
	logger := e.Logger.With(zap.String("cycle", uuid.NewString()), zap.String("mode", string(mode)))

	if maxRows <= 0 || maxRows > e.Config.MaxRows {
		maxRows = e.Config.MaxRows
	}

	report, err := e.Fetcher.Fetch(ctx)
	if err != nil {
		logger.Error("feed fetch failed", zap.Error(err))
		e.Metrics.ObserveCycle("fetch_failed", time.Since(start))
		return solari.FailedEnvelope("Could not read " + e.Fetcher.AircraftURL()), err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.Clock().Unix()

	st, err := e.Store.Load(ctx)
	if err != nil {
		logger.Warn("state load failed, starting empty", zap.Error(err))
		st = state.New()
	}

	env, stats := e.cycle(st, report.Aircraft, now, mode, maxRows, logger)

	if err := e.Store.Save(ctx, st); err != nil {
		logger.Warn("state save failed", zap.Error(err))
		e.Metrics.SaveFailed()
	}

	e.Metrics.ObserveCycle("ok", time.Since(start))
	e.Metrics.SetCounts(stats.Tracked, stats.Arrivals, stats.Departures)

	logger.Info("cycle complete",
		zap.Int("records", stats.Records),
		zap.Int("dropped", stats.DroppedTotal()),
		zap.Int("evicted", len(stats.Evicted)),
		zap.Int("tracked", stats.Tracked),
		zap.Int("arrivals", stats.Arrivals),
		zap.Int("departures", stats.Departures),
		zap.Int("shown", env.Counts.Shown),
		zap.Duration("elapsed", time.Since(start)))

	return env, nil
}

func (cs CycleStats) DroppedTotal() int {
	n := 0
	for _, v := range cs.Dropped {
		n += v
	}
	return n
}

// Cycle is the whole pipeline, minus the I/O: it evicts stale entries from st, folds the
// feed records into it, and builds the envelope for mode. st is modified in place.
func (e *Engine) Cycle(st state.State, records []dump1090.Aircraft, now int64, mode solari.Mode) solari.Envelope {
	env, _ := e.cycle(st, records, now, mode, e.Config.MaxRows, e.Logger)
	return env
}

func (e *Engine) cycle(st state.State, records []dump1090.Aircraft, now int64, mode solari.Mode, maxRows int, logger *zap.Logger) (solari.Envelope, CycleStats) {
	stats := CycleStats{Records: len(records), Dropped: map[DropReason]int{}}

	stats.Evicted = st.EvictStale(now, e.Config.StateTTLS)
	if len(stats.Evicted) > 0 {
		logger.Debug("evicted stale aircraft", zap.Strings("ids", stats.Evicted))
	}

	arrivals, departures := []solari.Row{}, []solari.Row{}

	for _, rec := range records {
		snap, reason := e.filter.Apply(rec)
		if reason != Kept {
			stats.Dropped[reason]++
			e.Metrics.RecordDrop(string(reason))
			logger.Debug("record dropped", zap.String("hex", string(snap.IcaoId)),
				zap.String("reason", string(reason)))
			continue
		}

		row, b := e.track(st, snap, now)
		logger.Debug("tracked", zap.Stringer("aircraft", snap), zap.String("status", string(row.Status)),
			zap.Stringer("bucket", b))

		switch b {
		case ArrivalsBucket:
			arrivals = append(arrivals, row)
		case DeparturesBucket:
			departures = append(departures, row)
		}
	}

	Rank(arrivals, ArrivalsBucket)
	Rank(departures, DeparturesBucket)
	stats.Arrivals, stats.Departures = len(arrivals), len(departures)
	stats.Tracked = len(st)

	list := departures
	if BucketFor(mode) == ArrivalsBucket {
		list = arrivals
	}
	list = Truncate(list, maxRows)

	env := solari.Envelope{
		OK:           true,
		Mode:         mode,
		Airport:      e.Airport.Name,
		UpdatedEpoch: now,
		Rows:         list,
		Counts: solari.Counts{
			ArrivalsInRadius:   len(arrivals),
			DeparturesInRadius: len(departures),
			Shown:              len(list),
		},
	}
	return env, stats
}

// track folds one accepted snapshot into the state, and works out its row and list.
func (e *Engine) track(st state.State, snap solari.Snapshot, now int64) (solari.Row, Bucket) {
	id := string(snap.IcaoId)

	ts := st.Update(id, now, snap.Altitude)
	cur := snap.DistToReferenceKM
	prev := st.RecordDistance(id, cur)
	st.Trim(id, now, e.Config.TrendWindowS)

	trend := Trend(ts.History, snap.Altitude, now, e.Config.TrendWindowS)
	class := e.classifier.Classify(snap.Altitude, trend, &cur, prev)
	b := e.bucketizer.Bucket(class, trend)

	seen := int(math.Round(snap.Seen))
	row := solari.Row{
		Flight:        snap.Flight,
		Icao:          strings.ToUpper(id),
		AltitudeFt:    snap.Altitude,
		DistKM:        solari.Round1(snap.DistToReferenceKM),
		Status:        class.Status,
		StatusClass:   class.Class,
		SeenS:         seen,
		LastSeenEpoch: now - int64(seen),
	}
	if snap.GroundSpeed != nil {
		gs := int(math.Round(*snap.GroundSpeed))
		row.GroundSpeedKt = &gs
	}
	if trend != nil {
		t := int(math.Round(*trend))
		row.TrendFpm = &t
	}

	row.AirlineIataGuess, row.AirlineIcaoGuess = solari.AirlineGuess(snap.Flight)
	if airline, exists := e.Tables.Airline(row.AirlineIcaoGuess); exists && row.AirlineIcaoGuess != "" {
		if airline.IATA != "" {
			row.AirlineIataGuess = airline.IATA
		}
		row.AirlineName = airline.Name
	}

	if e.Tables.HasRoutes() {
		route, known := e.Tables.Route(snap.Flight)
		from, to := RouteEndpoints(b, route, known, e.Airport.Code())
		row.From, row.To = &from, &to
	}

	return row, b
}
