package queryfilter

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"
)

// Record is anything a detail drawer can show
type Record interface {
	RecordID() string
}

// SelectionKind tells the three selection states apart
type SelectionKind uint8

const (
	// SelNone means the drawer is closed
	SelNone SelectionKind = iota
	// SelID means an id is selected and its record is not loaded yet
	SelID
	// SelLoaded means the record is in hand
	SelLoaded
)

// Selection is None, ID(x) or Loaded(r); it has no truthiness
type Selection struct {
	kind   SelectionKind
	id     string
	record Record
}

// None is the closed drawer
func None() Selection { return Selection{} }

// SelectID selects an id, the empty string included
func SelectID(id string) Selection { return Selection{kind: SelID, id: id} }

// Loaded selects a fetched record
func Loaded(r Record) Selection {
	if r == nil {
		return None()
	}
	return Selection{kind: SelLoaded, id: r.RecordID(), record: r}
}

// Kind returns the state
func (s Selection) Kind() SelectionKind { return s.kind }

// ID returns the selected id; ok is false for None
func (s Selection) ID() (string, bool) { return s.id, s.kind != SelNone }

// Record returns the loaded record; ok is false unless Loaded
func (s Selection) Record() (Record, bool) { return s.record, s.kind == SelLoaded }

// Refetcher reloads data after an edit
type Refetcher func(ctx context.Context) error

// SelectionRouter maps the sub-path after base to the selected record id
// it never touches filter state
// a SelectionRouter is not safe for concurrent use
type SelectionRouter struct {
	nav       Navigator
	base      string
	sel       Selection
	refetches []Refetcher
}

// NewSelectionRouter derives the selection from the navigator's current path
func NewSelectionRouter(nav Navigator, base string) *SelectionRouter {
	r := &SelectionRouter{nav: nav, base: cleanPath(base)}
	r.Sync()
	return r
}

// Base returns the section base path
func (r *SelectionRouter) Base() string { return r.base }

// Selection returns the current selection
func (r *SelectionRouter) Selection() Selection { return r.sel }

// Sync re-derives the selection from the current path without navigating
// a loaded record survives while its id still matches
func (r *SelectionRouter) Sync() {
	id, ok := subpath(r.nav.Location().Path, r.base)
	switch {
	case !ok:
		r.sel = None()
	case r.sel.kind == SelLoaded && r.sel.id == id:
	default:
		r.sel = SelectID(id)
	}
}

// HandleDrawer opens the drawer on sel, or closes it for None
// the query is kept minus routing keys
// SelectID("") pushes base + "/"; behind a slash stripping router that lands closed
func (r *SelectionRouter) HandleDrawer(sel Selection) {
	cur := r.nav.Location()
	q := make(url.Values, len(cur.Query))
	for k, vs := range cur.Query {
		if slices.Contains(routingKeys, k) {
			continue
		}
		q[k] = slices.Clone(vs)
	}
	path := r.base
	if id, ok := sel.ID(); ok {
		path = r.base + "/" + id
	}
	r.sel = sel
	r.nav.Navigate(Navigation{Location: Location{Path: path, Query: q}, Mode: Push, Shallow: true})
}

// Resolve upgrades ID(x) to Loaded(rec) when rec carries x
func (r *SelectionRouter) Resolve(rec Record) bool {
	if rec == nil || r.sel.kind != SelID || rec.RecordID() != r.sel.id {
		return false
	}
	r.sel = Loaded(rec)
	return true
}

// OnEdit registers refetchers run by Edited, in registration order
func (r *SelectionRouter) OnEdit(fns ...Refetcher) {
	for _, fn := range fns {
		if fn != nil {
			r.refetches = append(r.refetches, fn)
		}
	}
}

// Edited runs every refetcher; the drawer and filters stay as they are
func (r *SelectionRouter) Edited(ctx context.Context) error {
	var errs []error
	for _, fn := range r.refetches {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// subpath returns the first segment after base; "base/" selects the empty id
func subpath(path, base string) (string, bool) {
	if base == "/" {
		base = ""
	}
	rest, ok := strings.CutPrefix(path, base+"/")
	if !ok {
		return "", false
	}
	seg, _, _ := strings.Cut(rest, "/")
	return seg, true
}
