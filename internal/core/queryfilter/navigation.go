package queryfilter

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Location is a path plus query, the addressable state of a page
// Path is kept unescaped
type Location struct {
	Path  string
	Query url.Values
}

// ParseLocation reads "/path?query"; a malformed query yields an error
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, err
	}
	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return Location{}, err
	}
	return Location{Path: u.Path, Query: q}, nil
}

// String renders the location with a sorted query
func (l Location) String() string {
	p := l.Path
	if p == "" {
		p = "/"
	}
	u := url.URL{Path: p, RawQuery: l.Query.Encode()}
	return u.String()
}

// Clone deep copies the query
func (l Location) Clone() Location {
	q := make(url.Values, len(l.Query))
	for k, v := range l.Query {
		q[k] = append([]string(nil), v...)
	}
	return Location{Path: l.Path, Query: q}
}

// MarshalJSON writes the location as its string form
func (l Location) MarshalJSON() ([]byte, error) { return json.Marshal(l.String()) }

// UnmarshalJSON reads the string form
func (l *Location) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	loc, err := ParseLocation(s)
	if err != nil {
		return err
	}
	*l = loc
	return nil
}

// Mode is how a navigation treats the history stack
type Mode string

const (
	// Push adds an entry
	Push Mode = "push"
	// Replace overwrites the current entry
	Replace Mode = "replace"
)

// Navigation is one request to move to a location
// shallow navigations update the address without refetching server data
type Navigation struct {
	Location Location `json:"location"`
	Mode     Mode     `json:"mode"`
	Shallow  bool     `json:"shallow"`
}

// Navigator is the routing primitive the controller and the selection router write through
type Navigator interface {
	Location() Location
	Navigate(Navigation)
}

// History is an in memory Navigator with back and forward
// it records every navigation so a caller can replay them elsewhere
type History struct {
	entries   []Location
	cur       int
	log       []Navigation
	listeners []func(Location)
}

// NewHistory starts a history at initial
func NewHistory(initial Location) *History {
	return &History{entries: []Location{initial.Clone()}}
}

// Location returns the current entry
func (h *History) Location() Location { return h.entries[h.cur].Clone() }

// Navigate applies n; a push drops any forward entries
func (h *History) Navigate(n Navigation) {
	h.log = append(h.log, n)
	loc := n.Location.Clone()
	if n.Mode == Replace {
		h.entries[h.cur] = loc
		return
	}
	h.entries = append(h.entries[:h.cur+1], loc)
	h.cur++
}

// Back moves one entry back and notifies listeners
func (h *History) Back() bool {
	if h.cur == 0 {
		return false
	}
	h.cur--
	h.pop()
	return true
}

// Forward moves one entry forward and notifies listeners
func (h *History) Forward() bool {
	if h.cur >= len(h.entries)-1 {
		return false
	}
	h.cur++
	h.pop()
	return true
}

// Listen registers fn for back and forward moves, like a popstate handler
func (h *History) Listen(fn func(Location)) {
	if fn != nil {
		h.listeners = append(h.listeners, fn)
	}
}

// Navigations returns every navigation applied so far
func (h *History) Navigations() []Navigation { return append([]Navigation(nil), h.log...) }

// Len returns the number of entries on the stack
func (h *History) Len() int { return len(h.entries) }

func (h *History) pop() {
	loc := h.Location()
	for _, fn := range h.listeners {
		fn(loc)
	}
}

// cleanPath trims a trailing slash except for the root
func cleanPath(p string) string {
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}
