// Package ref contains the static reference lookups the board consults: airlines,
// airports and flight routes. Tables are loaded once at start-up and never change after.
package ref

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/skypies/geo"
	"github.com/skypies/geo/sfo"
	"go.uber.org/zap"

	solari "github.com/skypies/solari1090"
)

// ErrTableUnreadable is returned (wrapped) when a configured table file can't be opened or parsed.
var ErrTableUnreadable = errors.New("reference table unreadable")

type Airline struct {
	ICAO string // three letters, e.g. DLH
	IATA string // two characters, e.g. LH
	Name string
}

type Airport struct {
	ICAO string
	IATA string
	Name string
	geo.Latlong
}

// Code is what route endpoints use for this airport: its IATA code if it has one.
func (a Airport) Code() string {
	if a.IATA != "" {
		return a.IATA
	}
	return a.ICAO
}

func (a Airport) String() string {
	return fmt.Sprintf("%s/%s %q %s", a.ICAO, a.IATA, a.Name, a.Latlong)
}

type Route struct {
	Origin      string
	Destination string
}

// AirportTable indexes the airports file both ways. When two rows share an IATA code,
// the first one in the file owns it.
type AirportTable struct {
	ByICAO map[string]Airport
	ByIATA map[string]Airport
}

// Tables is the full set of lookups. A nil map just means that table wasn't configured.
type Tables struct {
	Airlines map[string]Airline // by ICAO prefix
	Airports AirportTable
	Routes   map[string]Route // by callsign, as written in the routes file
}

func NewTables() *Tables { return &Tables{} }

// Load reads whichever tables have a non-empty path. Broken airline or airport files are
// fatal; a broken routes file only loses the route columns, so it's logged and skipped.
func Load(airlinesFile, airportsFile, routesFile string, logger *zap.Logger) (*Tables, error) {
	t := NewTables()

	if airlinesFile != "" {
		m, err := withFile(airlinesFile, ParseAirlines)
		if err != nil {
			return nil, err
		}
		t.Airlines = m
	}

	if airportsFile != "" {
		m, err := withFile(airportsFile, ParseAirports)
		if err != nil {
			return nil, err
		}
		t.Airports = m
	}

	if routesFile != "" {
		m, err := withFile(routesFile, ParseRoutes)
		if err != nil {
			logger.Warn("route table unavailable, from/to will be omitted",
				zap.String("path", routesFile), zap.Error(err))
		} else {
			t.Routes = m
		}
	}

	logger.Info("reference tables loaded",
		zap.Int("airlines", len(t.Airlines)),
		zap.Int("airports", len(t.Airports.ByICAO)),
		zap.Int("routes", len(t.Routes)))

	return t, nil
}

func withFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrTableUnreadable, err)
	}
	defer f.Close()

	v, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("%w: %s: %v", ErrTableUnreadable, path, err)
	}
	return v, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// ParseAirlines reads `icao,iata,name` rows. The first row is a header.
func ParseAirlines(r io.Reader) (map[string]Airline, error) {
	recs, err := newCSVReader(r).ReadAll()
	if err != nil {
		return nil, err
	}

	m := map[string]Airline{}
	for i, rec := range recs {
		if i == 0 {
			continue
		} else if len(rec) < 3 {
			return nil, fmt.Errorf("line %d: want 3 fields, got %d", i+1, len(rec))
		}
		a := Airline{
			ICAO: strings.ToUpper(strings.TrimSpace(rec[0])),
			IATA: strings.ToUpper(strings.TrimSpace(rec[1])),
			Name: strings.TrimSpace(rec[2]),
		}
		if a.ICAO == "" {
			continue
		}
		m[a.ICAO] = a
	}
	return m, nil
}

// ParseAirports reads `icao,iata,name,lat,lon` rows. The first row is a header.
func ParseAirports(r io.Reader) (AirportTable, error) {
	recs, err := newCSVReader(r).ReadAll()
	if err != nil {
		return AirportTable{}, err
	}

	t := AirportTable{ByICAO: map[string]Airport{}, ByIATA: map[string]Airport{}}
	for i, rec := range recs {
		if i == 0 {
			continue
		} else if len(rec) < 5 {
			return AirportTable{}, fmt.Errorf("line %d: want 5 fields, got %d", i+1, len(rec))
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		if err != nil {
			return AirportTable{}, fmt.Errorf("line %d: lat: %v", i+1, err)
		}
		long, err := strconv.ParseFloat(strings.TrimSpace(rec[4]), 64)
		if err != nil {
			return AirportTable{}, fmt.Errorf("line %d: lon: %v", i+1, err)
		}
		a := Airport{
			ICAO:    strings.ToUpper(strings.TrimSpace(rec[0])),
			IATA:    strings.ToUpper(strings.TrimSpace(rec[1])),
			Name:    strings.TrimSpace(rec[2]),
			Latlong: geo.Latlong{Lat: lat, Long: long},
		}
		if a.ICAO == "" {
			continue
		}
		t.ByICAO[a.ICAO] = a
		if _, exists := t.ByIATA[a.IATA]; a.IATA != "" && !exists {
			t.ByIATA[a.IATA] = a
		}
	}
	return t, nil
}

// ParseRoutes reads a JSON object of callsign -> [origin, destination].
func ParseRoutes(r io.Reader) (map[string]Route, error) {
	raw := map[string][]string{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	m := make(map[string]Route, len(raw))
	for k, v := range raw {
		if len(v) != 2 {
			continue
		}
		m[strings.ToUpper(strings.TrimSpace(k))] = Route{Origin: v[0], Destination: v[1]}
	}
	return m, nil
}

func (t *Tables) Airline(icao string) (Airline, bool) {
	a, exists := t.Airlines[strings.ToUpper(icao)]
	return a, exists
}

// Airport finds an airport by its ICAO code, falling back to IATA code.
func (t *Tables) Airport(code string) (Airport, bool) {
	code = strings.ToUpper(code)
	if a, exists := t.Airports.ByICAO[code]; exists {
		return a, true
	}
	a, exists := t.Airports.ByIATA[code]
	return a, exists
}

// Route looks up the callsign as given, and then in its normalized form (so DLH0400
// will match an entry for DLH400).
func (t *Tables) Route(flight string) (Route, bool) {
	if t.Routes == nil {
		return Route{}, false
	}
	key := strings.ToUpper(strings.TrimSpace(flight))
	if key == "" {
		return Route{}, false
	}
	if r, exists := t.Routes[key]; exists {
		return r, true
	}
	if norm := solari.NewCallsign(key).String(); norm != key {
		if r, exists := t.Routes[norm]; exists {
			return r, true
		}
	}
	return Route{}, false
}

func (t *Tables) HasRoutes() bool { return t.Routes != nil }

// ResolveAirport fills in whatever the configuration left out: the position (from the
// airport table, then the compiled-in table), the IATA code and the name.
func (t *Tables) ResolveAirport(icao, iata, name string, pos geo.Latlong) (Airport, error) {
	ap := Airport{ICAO: strings.ToUpper(icao), IATA: strings.ToUpper(iata), Name: name, Latlong: pos}

	known, isKnown := t.Airport(ap.ICAO)
	if !isKnown && ap.IATA != "" {
		known, isKnown = t.Airport(ap.IATA)
	}
	if isKnown {
		if ap.ICAO == "" {
			ap.ICAO = known.ICAO
		}
		if ap.IATA == "" {
			ap.IATA = known.IATA
		}
		if ap.Name == "" {
			ap.Name = known.Name
		}
		if ap.Latlong.IsNil() {
			ap.Latlong = known.Latlong
		}
	}

	if ap.Latlong.IsNil() {
		if pos, exists := sfo.KAirports[ap.ICAO]; exists {
			ap.Latlong = pos
		}
	}

	if ap.Latlong.IsNil() {
		return Airport{}, fmt.Errorf("no position known for airport %q", ap.ICAO)
	}
	if ap.Name == "" {
		ap.Name = ap.ICAO
	}
	return ap, nil
}
