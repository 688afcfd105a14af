package solari

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

/* Callsigns, as broadcast over ADS-B and relayed by dump1090 in the "flight" field.

1. Most airlines use the ICAO flight number: DLH400, often zero padded (DLH0400)
2. Private aircraft use their registration: DEIAB, N839AL
3. Some airlines broadcast a bare flight number: 1106
4. Junk: "", "????????", "00000000"

dump1090 pads the field with trailing spaces; we trim before parsing.
*/

type CallsignType int

const (
	Undefined CallsignType = iota
	JunkCallsign
	Registration     // Callsign Type A
	IcaoFlightNumber // Callsign Type C
	BareFlightNumber // Some airlines omit the Icao carrier code
)

type Callsign struct {
	Raw string

	CallsignType
	Registration string
	IcaoPrefix   string
	ATCSuffix    string // should be one char, really
	Number       int64
}

var (
	reRegistration  = regexp.MustCompile("^(N[1-9][0-9A-HJ-NP-Z]{0,4})$")
	reIcaoFlight    = regexp.MustCompile("^([A-Z]{3})([0-9]{1,4})([A-Z]?)$")
	reBareFlight    = regexp.MustCompile("^([0-9]{2,4})$")
	reAirlinePrefix = regexp.MustCompile("^([A-Z]{2,3})")
)

func (c Callsign) String() string {
	switch c.CallsignType {
	case IcaoFlightNumber:
		return fmt.Sprintf("%s%d", c.IcaoPrefix, c.Number) // Strips leading zeroes and ATC suffix
	default:
		return c.Raw
	}
}

func NewCallsign(callsign string) (ret Callsign) {
	callsign = strings.ToUpper(strings.TrimSpace(callsign))
	ret.Raw = callsign

	// US registrations (e.g. N23ST): one to five characters, first digit non-zero, no I or O.
	if reg := reRegistration.FindStringSubmatch(callsign); len(reg) == 2 {
		ret.Registration = callsign
		ret.CallsignType = Registration
		return
	}

	if icao := reIcaoFlight.FindStringSubmatch(callsign); len(icao) == 4 {
		ret.Number, _ = strconv.ParseInt(icao[2], 10, 64) // regexp guarantees digits
		ret.IcaoPrefix = icao[1]
		ret.ATCSuffix = icao[3]
		ret.CallsignType = IcaoFlightNumber
		return
	}

	if bare := reBareFlight.FindStringSubmatch(callsign); len(bare) == 2 {
		ret.Number, _ = strconv.ParseInt(bare[1], 10, 64)
		ret.CallsignType = BareFlightNumber
		return
	}

	ret.CallsignType = JunkCallsign
	return
}

// AirlineGuess takes the leading run of two or three letters from a callsign, and
// guesses airline codes from it: the first two letters as an IATA code, and all
// three (if there are three) as an ICAO code. Either may be empty.
func AirlineGuess(flight string) (iata, icao string) {
	f := strings.ToUpper(strings.TrimSpace(flight))
	m := reAirlinePrefix.FindStringSubmatch(f)
	if m == nil {
		return "", ""
	}
	p := m[1]
	iata = p[:2]
	if len(p) >= 3 {
		icao = p[:3]
	}
	return
}
