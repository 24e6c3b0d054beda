package queryfilter

import (
	"net/url"
	"slices"

	perr "hostdesk/internal/platform/errors"
)

// State is the controller state at one point in time
type State struct {
	Values Values
	View   *View
	Limit  int
	Offset int
}

// Controller owns the filter state of one list and writes it back to the URL
// every mutation ends in exactly one navigation
// a Controller is not safe for concurrent use
type Controller struct {
	schema *Schema
	views  Views
	nav    Navigator

	values Values
	view   *View
	limit  int
	offset int
	issues []Issue
}

// NewController loads state from the navigator's current location
// view=<id> applies that preset without navigating
func NewController(s *Schema, views Views, nav Navigator) *Controller {
	c := &Controller{schema: s, views: views, nav: nav}
	c.load()
	return c
}

// Sync re-derives state from the current location, e.g. after back or forward
func (c *Controller) Sync() { c.load() }

func (c *Controller) load() {
	q := c.nav.Location().Query
	values, issues := c.schema.Parse(q)
	limit, offset, pageIssues := c.schema.ParsePage(q)
	c.values, c.limit, c.offset = values, limit, offset
	c.issues = append(issues, pageIssues...)
	c.view = nil

	if id := q.Get(KeyView); id != "" {
		if v, ok := c.views.ByID(id); ok {
			c.values = c.schema.Defaults().Merge(v.Filter)
			c.offset = 0
			c.view = &v
			return
		}
		c.issues = append(c.issues, Issue{Key: KeyView, Raw: q[KeyView], Reason: "unknown view"})
	}
	if v, ok := c.views.Match(c.schema, c.values); ok {
		c.view = &v
	}
}

// Schema returns the schema in use
func (c *Controller) Schema() *Schema { return c.schema }

// Views returns the declared presets
func (c *Controller) Views() Views { return c.views }

// Values returns the fully defaulted value set
func (c *Controller) Values() Values { return c.values.Merge(nil) }

// State returns a snapshot
func (c *Controller) State() State {
	st := State{Values: c.Values(), Limit: c.limit, Offset: c.offset}
	if c.view != nil {
		v := *c.view
		st.View = &v
	}
	return st
}

// Issues returns the URL values dropped during the last load
func (c *Controller) Issues() []Issue { return slices.Clone(c.issues) }

// Location returns the navigator's current location
func (c *Controller) Location() Location { return c.nav.Location() }

// Variables returns the complete query variables for the current state
func (c *Controller) Variables() Variables {
	return c.schema.Variables(c.values, c.limit, c.offset)
}

// HasCustomFilters reports whether values leave the defaults plus the active view
func (c *Controller) HasCustomFilters() bool {
	return c.schema.Differs(c.values, c.baseline())
}

func (c *Controller) baseline() Values {
	d := c.schema.Defaults()
	if c.view != nil {
		return d.Merge(c.view.Filter)
	}
	return d
}

// Set changes one field
func (c *Controller) Set(name string, v any) error { return c.SetValues(Values{name: v}) }

// SetValues merges a partial value set, resets paging and navigates once
// invalid input leaves state untouched and does not navigate
func (c *Controller) SetValues(partial Values) error {
	checked, err := c.schema.Check(partial)
	if err != nil {
		return err
	}
	c.values = c.values.Merge(checked)
	c.offset = 0
	c.commit()
	return nil
}

// SetRaw is SetValues for raw tokens keyed by url key
func (c *Controller) SetRaw(raw url.Values) error {
	parsed, err := c.schema.ParseStrict(raw)
	if err != nil {
		return err
	}
	c.values = c.values.Merge(parsed)
	c.offset = 0
	c.commit()
	return nil
}

// Paginate moves to another page; the limit is clamped to the schema bounds
func (c *Controller) Paginate(limit, offset int) {
	c.limit = min(max(limit, 1), c.schema.MaxPageSize())
	c.offset = max(offset, 0)
	c.commit()
}

// Reset replaces values with defaults plus overrides
func (c *Controller) Reset(overrides Values) error {
	checked, err := c.schema.Check(overrides)
	if err != nil {
		return err
	}
	c.values = c.schema.Defaults().Merge(checked)
	c.offset = 0
	c.view = nil
	if v, ok := c.views.Match(c.schema, c.values); ok {
		c.view = &v
	}
	c.commit()
	return nil
}

// ApplyView replaces values with defaults plus the preset filter
func (c *Controller) ApplyView(id string) error {
	v, ok := c.views.ByID(id)
	if !ok {
		return perr.WithField(perr.NotFoundf("view %q not found", id), KeyView)
	}
	c.values = c.schema.Defaults().Merge(v.Filter)
	c.offset = 0
	c.view = &v
	c.commit()
	return nil
}

// commit writes the canonical query, keeping keys this schema does not own
func (c *Controller) commit() {
	cur := c.nav.Location()
	q := c.schema.Encode(c.values, c.limit, c.offset)
	for k, vs := range cur.Query {
		if k == KeyView || c.schema.Owns(k) {
			continue
		}
		q[k] = slices.Clone(vs)
	}
	c.nav.Navigate(Navigation{
		Location: Location{Path: cur.Path, Query: q},
		Mode:     Push,
		Shallow:  true,
	})
}
