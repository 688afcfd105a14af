// Package config loads the board's settings. Precedence, highest first: environment
// variables, the YAML file, and the compiled-in defaults.
//
// Environment variables take the SOLARI_ prefix; a double underscore separates sections.
//
//	SOLARI_RADIUS_KM=25             -> radius_km
//	SOLARI_STATUS__LOW_ALT_FT=3000  -> status.low_alt_ft
//	SOLARI_FEED__BASE_URL=http://pi -> feed.base_url
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix         = "SOLARI_"
	maxConfigFileSize = 1024 * 1024
)

// ErrInvalid is returned (wrapped) for any setting that fails validation.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Airport AirportConfig `koanf:"airport"`
	Feed    FeedConfig    `koanf:"feed"`

	RadiusKM        float64 `koanf:"radius_km"`
	AltCeilingFt    int     `koanf:"alt_ceiling_ft"`
	MinAltFt        int     `koanf:"min_alt_ft"`
	MinSeenS        float64 `koanf:"min_seen_s"`
	TrendWindowS    int64   `koanf:"trend_window_s"`
	ArrivalTrendFpm float64 `koanf:"arrival_trend_fpm"` // at or below this, an aircraft is arriving
	DepartTrendFpm  float64 `koanf:"depart_trend_fpm"`  // at or above this, it's departing
	MaxRows         int     `koanf:"max_rows"`
	StateTTLS       int64   `koanf:"state_ttl_s"`

	Status StatusConfig `koanf:"status"`
	State  StateConfig  `koanf:"state"`
	Ref    RefConfig    `koanf:"ref"`
	Log    LogConfig    `koanf:"log"`
	HTTP   HTTPConfig   `koanf:"http"`
}

// AirportConfig is the reference point. Lat/Lon may be left at zero if the airport is in
// one of the airport tables.
type AirportConfig struct {
	ICAO string  `koanf:"icao"`
	IATA string  `koanf:"iata"`
	Name string  `koanf:"name"`
	Lat  float64 `koanf:"lat"`
	Lon  float64 `koanf:"lon"`
}

type FeedConfig struct {
	BaseURL   string        `koanf:"base_url"`
	Timeout   time.Duration `koanf:"timeout"`
	UserAgent string        `koanf:"user_agent"`
}

type StatusConfig struct {
	Enable         bool    `koanf:"enable"`
	InfluenceLists bool    `koanf:"influence_lists"` // let the status label pick the list
	LowAltFt       int     `koanf:"low_alt_ft"`
	LandedAltFt    int     `koanf:"landed_alt_ft"`
	UpFpm          float64 `koanf:"up_fpm"`
	DownFpm        float64 `koanf:"down_fpm"`
}

type StateConfig struct {
	Backend string `koanf:"backend"` // file, sqlite, gcs, memory
	Path    string `koanf:"path"`    // for file and sqlite
	Bucket  string `koanf:"bucket"`  // for gcs
	Object  string `koanf:"object"`
}

type RefConfig struct {
	AirlinesFile string `koanf:"airlines_file"`
	AirportsFile string `koanf:"airports_file"`
	RoutesFile   string `koanf:"routes_file"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or console
}

type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

func Default() Config {
	return Config{
		Airport: AirportConfig{
			ICAO: "EDDF",
			IATA: "FRA",
			Name: "Frankfurt Main Airport | EDDF",
			Lat:  50.0333,
			Lon:  8.5706,
		},
		Feed: FeedConfig{
			BaseURL:   "http://localhost/skyaware",
			Timeout:   2 * time.Second,
			UserAgent: "airport-board",
		},
		RadiusKM:        30.0,
		AltCeilingFt:    12000,
		MinAltFt:        0,
		MinSeenS:        8,
		TrendWindowS:    90,
		ArrivalTrendFpm: -300,
		DepartTrendFpm:  300,
		MaxRows:         8,
		StateTTLS:       600,
		Status: StatusConfig{
			Enable:         true,
			InfluenceLists: true,
			LowAltFt:       2500,
			LandedAltFt:    1000,
			UpFpm:          150,
			DownFpm:        100,
		},
		State: StateConfig{
			Backend: "file",
			Path:    "state_cache.json",
			Object:  "state_cache.json",
		},
		Log:  LogConfig{Level: "info", Format: "json"},
		HTTP: HTTPConfig{Addr: ":8080"},
	}
}

// Load reads the YAML file at path (if path is non-empty), applies the environment on
// top, and validates. Anything not mentioned keeps its default, so a partial status
// section only overrides the thresholds it names.
func Load(path string) (*Config, error) {
	var content []byte
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		} else if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("%w: config file %s is larger than %d bytes", ErrInvalid, path, maxConfigFileSize)
		}
		if content, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}
	return LoadBytes(content)
}

func LoadBytes(content []byte) (*Config, error) {
	k := koanf.New(".")

	if len(content) > 0 {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: parse yaml: %v", ErrInvalid, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	// The default airport is all or nothing: naming any airport drops every default
	// airport field, so the tables can resolve what's left out.
	cfg := Default()
	cfg.Airport = AirportConfig{}
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !cfg.Airport.named() {
		name := cfg.Airport.Name
		cfg.Airport = Default().Airport
		if name != "" {
			cfg.Airport.Name = name
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// named reports whether the airport is identified by a code or a position.
func (a AirportConfig) named() bool {
	return a.ICAO != "" || a.IATA != "" || a.Lat != 0 || a.Lon != 0
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func (c *Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	switch {
	case c.Airport.ICAO == "" && (c.Airport.Lat == 0 && c.Airport.Lon == 0):
		return invalid("airport needs an icao code or a position")
	case c.Feed.BaseURL == "":
		return invalid("feed.base_url is empty")
	case c.Feed.Timeout <= 0:
		return invalid("feed.timeout must be positive, not %s", c.Feed.Timeout)
	case c.RadiusKM <= 0:
		return invalid("radius_km must be positive, not %v", c.RadiusKM)
	case c.AltCeilingFt < c.MinAltFt:
		return invalid("alt_ceiling_ft (%d) is below min_alt_ft (%d)", c.AltCeilingFt, c.MinAltFt)
	case c.MinSeenS < 0:
		return invalid("min_seen_s must not be negative")
	case c.TrendWindowS <= 0:
		return invalid("trend_window_s must be positive, not %d", c.TrendWindowS)
	case c.ArrivalTrendFpm > 0:
		return invalid("arrival_trend_fpm must not be positive, not %v", c.ArrivalTrendFpm)
	case c.DepartTrendFpm < 0:
		return invalid("depart_trend_fpm must not be negative, not %v", c.DepartTrendFpm)
	case c.MaxRows <= 0:
		return invalid("max_rows must be positive, not %d", c.MaxRows)
	case c.StateTTLS <= 0:
		return invalid("state_ttl_s must be positive, not %d", c.StateTTLS)
	case c.Status.LandedAltFt > c.Status.LowAltFt:
		return invalid("status.landed_alt_ft (%d) is above status.low_alt_ft (%d)",
			c.Status.LandedAltFt, c.Status.LowAltFt)
	case c.Status.UpFpm < 0:
		return invalid("status.up_fpm must not be negative, not %v", c.Status.UpFpm)
	case c.Status.DownFpm < 0:
		return invalid("status.down_fpm must not be negative, not %v", c.Status.DownFpm)
	}

	switch c.State.Backend {
	case "file", "sqlite":
		if c.State.Path == "" {
			return invalid("state.path is required for the %s backend", c.State.Backend)
		}
	case "gcs":
		if c.State.Bucket == "" || c.State.Object == "" {
			return invalid("state.bucket and state.object are required for the gcs backend")
		}
	case "memory":
	default:
		return invalid("unknown state.backend %q", c.State.Backend)
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return invalid("unknown log.format %q", c.Log.Format)
	}

	return nil
}
