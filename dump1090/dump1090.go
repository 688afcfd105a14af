// Package dump1090 fetches the live aircraft list from a dump1090 / readsb / SkyAware
// receiver, via its aircraft.json endpoint.
package dump1090

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	kAircraftPath     = "/data/aircraft.json"
	kDefaultTimeout   = 2 * time.Second
	kDefaultUserAgent = "airport-board"
	kMaxBodyBytes     = 16 << 20
)

// ErrFetchFailed is returned (wrapped) for every way a fetch can go wrong: transport
// errors, timeouts, bad status codes, and bodies that aren't the JSON object we expect.
var ErrFetchFailed = errors.New("could not read aircraft feed")

// {{{ Client{}

type Client struct {
	Client    *http.Client
	BaseURL   string        // e.g. http://localhost/skyaware
	Timeout   time.Duration // bounds the whole request, including reading the body
	UserAgent string
}

func NewClient(c *http.Client, baseURL string, timeout time.Duration) *Client {
	if c == nil {
		c = &http.Client{}
	}
	if timeout <= 0 {
		timeout = kDefaultTimeout
	}
	return &Client{Client: c, BaseURL: baseURL, Timeout: timeout, UserAgent: kDefaultUserAgent}
}

func (c *Client) AircraftURL() string {
	return strings.TrimRight(c.BaseURL, "/") + kAircraftPath
}

// }}}
// {{{ client.url2body

func (c *Client) url2body(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %v", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, kMaxBodyBytes))
}

// }}}
// {{{ client.Fetch

// Fetch does one bounded-time read of the feed. No retries; callers that want them
// should just run another cycle.
func (c *Client) Fetch(ctx context.Context) (*Report, error) {
	url := c.AircraftURL()

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	body, err := c.url2body(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, url, err)
	}

	r, err := ParseReport(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, url, err)
	}
	return r, nil
}

// }}}

// {{{ ParseReport

// ParseReport unpacks an aircraft.json document. The document must be a JSON object with
// an array called "aircraft"; anything else is an error. Entries in the array that aren't
// objects come back as empty Aircraft, which will fail validation later.
func ParseReport(body []byte) (*Report, error) {
	top := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("bad JSON: %v", err)
	} else if top == nil {
		return nil, fmt.Errorf("document is null, not an object")
	}

	rawList, exists := top["aircraft"]
	if !exists || isNull(rawList) {
		return nil, fmt.Errorf("no aircraft list")
	}
	entries := []json.RawMessage{}
	if err := json.Unmarshal(rawList, &entries); err != nil {
		return nil, fmt.Errorf("aircraft is not a list: %v", err)
	}

	r := Report{Aircraft: make([]Aircraft, 0, len(entries))}
	if now, ok := Number(top["now"]); ok {
		r.Now = now
	}
	for _, e := range entries {
		r.Aircraft = append(r.Aircraft, parseAircraft(e))
	}
	return &r, nil
}

func parseAircraft(raw json.RawMessage) Aircraft {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Aircraft{}
	}
	return Aircraft{
		Hex:      fields["hex"],
		Lat:      fields["lat"],
		Lon:      fields["lon"],
		AltBaro:  fields["alt_baro"],
		Altitude: fields["altitude"],
		GS:       fields["gs"],
		Flight:   fields["flight"],
		Seen:     fields["seen"],
	}
}

// }}}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
