package solari

import (
	"encoding/json"
	"strings"
)

// Status is the coarse flight-phase label shown on the board. The zero value means
// "no label", and is rendered as JSON null.
type Status string

const (
	StatusNone    Status = ""
	StatusLanded  Status = "LANDED"
	StatusTakeOff Status = "TAKE OFF"
	StatusLanding Status = "LANDING"
	StatusLowAlt  Status = "LOW ALT"
)

// StatusClass drives the colour of the status cell.
type StatusClass string

const (
	ClassNone StatusClass = ""
	ClassGood StatusClass = "good"
	ClassWarn StatusClass = "warn"
	ClassBad  StatusClass = "bad"
)

// Mode selects which list the board is showing.
type Mode string

const (
	Arrivals   Mode = "arrivals"
	Departures Mode = "departures"
)

// ParseMode maps anything unrecognised onto departures, which is what the board
// shows by default.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(s)) {
	case Arrivals:
		return Arrivals
	default:
		return Departures
	}
}

func marshalNullableString(s string) ([]byte, error) {
	if s == "" {
		return []byte("null"), nil
	}
	return json.Marshal(s)
}

func unmarshalNullableString(data []byte, s *string) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	return json.Unmarshal(data, s)
}

func (s Status) MarshalJSON() ([]byte, error) { return marshalNullableString(string(s)) }
func (s *Status) UnmarshalJSON(data []byte) error {
	return unmarshalNullableString(data, (*string)(s))
}

func (c StatusClass) MarshalJSON() ([]byte, error) { return marshalNullableString(string(c)) }
func (c *StatusClass) UnmarshalJSON(data []byte) error {
	return unmarshalNullableString(data, (*string)(c))
}
