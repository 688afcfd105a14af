package dump1090

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Report is the top level of aircraft.json.
type Report struct {
	Now      float64 // receiver clock, epoch seconds; zero if absent
	Aircraft []Aircraft
}

/* An Aircraft is one entry in the list, left raw. Every field is optional, and
 receivers disagree about types: alt_baro is a number, or the string "ground";
 some feeds quote their numbers; older dump1090 builds send "altitude" instead
 of "alt_baro". So we keep the raw JSON and let the filter decide.

{"hex":"3c6444","flight":"DLH400  ","alt_baro":3175,"gs":172.4,"lat":50.0481,"lon":8.6934,"seen":0.3}
{"hex":"4ca7b6","alt_baro":"ground","gs":12.1,"seen":1.1}
*/
type Aircraft struct {
	Hex      json.RawMessage
	Lat      json.RawMessage
	Lon      json.RawMessage
	AltBaro  json.RawMessage
	Altitude json.RawMessage
	GS       json.RawMessage
	Flight   json.RawMessage
	Seen     json.RawMessage
}

// RawAltitude prefers alt_baro, only falling back to the legacy field when alt_baro is
// missing altogether; alt_baro:"ground" does not fall back.
func (a Aircraft) RawAltitude() json.RawMessage {
	if !isNull(a.AltBaro) {
		return a.AltBaro
	}
	return a.Altitude
}

// Number interprets a raw field as a number. JSON numbers count, as do strings that hold
// a plain finite decimal number (optionally surrounded by whitespace). Everything else,
// including null, booleans and "ground", does not.
func Number(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	var text string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(text)
		if text == "" || strings.ContainsAny(text, "xXpP_") {
			return 0, false
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		text = string(raw)
	default:
		return 0, false
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// String interprets a raw field as text. Numbers are taken as their literal text, since
// some feeds send all-digit hex ids unquoted.
func String(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		s := ""
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw), true
	}
	return "", false
}
