package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/skypies/geo"
	"go.uber.org/zap"

	"github.com/skypies/solari1090/board"
	"github.com/skypies/solari1090/config"
	"github.com/skypies/solari1090/dump1090"
	"github.com/skypies/solari1090/logging"
	"github.com/skypies/solari1090/metrics"
	"github.com/skypies/solari1090/ref"
	"github.com/skypies/solari1090/state"
)

// app is everything a command needs, built from the config.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Collector
	engine  *board.Engine
	closers []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		c.Close()
	}
	a.logger.Sync()
}

func newApp(ctx context.Context, reg prometheus.Registerer) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}

	tables, err := ref.Load(cfg.Ref.AirlinesFile, cfg.Ref.AirportsFile, cfg.Ref.RoutesFile, logger)
	if err != nil {
		return nil, err
	}

	airport, err := tables.ResolveAirport(cfg.Airport.ICAO, cfg.Airport.IATA, cfg.Airport.Name,
		geo.Latlong{Lat: cfg.Airport.Lat, Long: cfg.Airport.Lon})
	if err != nil {
		return nil, err
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	if a.metrics, err = metrics.NewCollector(reg); err != nil {
		return nil, err
	}

	client := dump1090.NewClient(&http.Client{}, cfg.Feed.BaseURL, cfg.Feed.Timeout)
	client.UserAgent = cfg.Feed.UserAgent

	a.engine = board.NewEngine(*cfg, airport, client, store, tables, logger, a.metrics)

	logger.Info("board ready",
		zap.String("airport", airport.String()),
		zap.String("feed", client.AircraftURL()),
		zap.String("state", fmt.Sprintf("%v", store)))

	return a, nil
}

func (a *app) openStore(ctx context.Context) (state.Store, error) {
	sc := a.cfg.State
	switch sc.Backend {
	case "file":
		return state.NewFileStore(sc.Path), nil
	case "sqlite":
		s, err := state.OpenSQLiteStore(sc.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	case "gcs":
		s, err := state.NewGCSStore(ctx, sc.Bucket, sc.Object)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	case "memory":
		return state.NewMemoryStore(nil), nil
	}
	return nil, fmt.Errorf("%w: unknown state backend %q", config.ErrInvalid, sc.Backend)
}
