package queryfilter

import (
	"fmt"
	"strings"
)

// View is a named preset that pre populates filters
// Count comes from a separate metadata fetch and may lag the list
type View struct {
	ID     string
	Label  string
	Filter Values
	Count  *int
}

// Views is an ordered set of presets checked against a schema
type Views []View

// NewViews checks each preset filter against the schema
func NewViews(s *Schema, views ...View) (Views, error) {
	seen := make(map[string]bool, len(views))
	out := make(Views, 0, len(views))
	for _, v := range views {
		if strings.TrimSpace(v.ID) == "" {
			return nil, fmt.Errorf("queryfilter: view id is required")
		}
		if seen[v.ID] {
			return nil, fmt.Errorf("queryfilter: duplicate view %q", v.ID)
		}
		seen[v.ID] = true
		checked, err := s.Check(v.Filter)
		if err != nil {
			return nil, fmt.Errorf("queryfilter: view %q: %w", v.ID, err)
		}
		v.Filter = checked
		out = append(out, v)
	}
	return out, nil
}

// MustViews is NewViews for package level declarations
func MustViews(s *Schema, views ...View) Views {
	out, err := NewViews(s, views...)
	if err != nil {
		panic(err)
	}
	return out
}

// ByID finds a view
func (vs Views) ByID(id string) (View, bool) {
	for _, v := range vs {
		if v.ID == id {
			return v, true
		}
	}
	return View{}, false
}

// WithCounts returns a copy with counts attached; views missing from counts keep a nil count
func (vs Views) WithCounts(counts map[string]int) Views {
	out := make(Views, len(vs))
	for i, v := range vs {
		v.Count = nil
		if n, ok := counts[v.ID]; ok {
			v.Count = &n
		}
		out[i] = v
	}
	return out
}

// Match returns the first view whose defaults plus filter equal values on non static fields
func (vs Views) Match(s *Schema, values Values) (View, bool) {
	defaults := s.Defaults()
	for _, v := range vs {
		if !s.Differs(values, defaults.Merge(v.Filter)) {
			return v, true
		}
	}
	return View{}, false
}
