package queryfilter

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"

	perr "hostdesk/internal/platform/errors"
)

// Reserved query keys
const (
	KeyLimit   = "limit"
	KeyOffset  = "offset"
	KeyView    = "view"
	KeySlug    = "slug"
	KeySection = "section"
	KeySubpath = "subpath"
)

// reserved keys cannot be claimed by a field
var reserved = []string{KeyLimit, KeyOffset, KeyView, KeySlug, KeySection, KeySubpath}

// routing keys never survive a drawer navigation
var routingKeys = []string{KeySlug, KeySection, KeyView, KeySubpath}

const (
	defaultPageSize    = 20
	defaultMaxPageSize = 100
)

// Values maps field names to typed values, nil meaning unset
// treat a Values as immutable once handed out; mutations go through Merge
type Values map[string]any

// Merge returns a copy of v overlaid with other
func (v Values) Merge(other Values) Values {
	out := make(Values, len(v)+len(other))
	maps.Copy(out, v)
	maps.Copy(out, other)
	return out
}

// Get reads a typed value; ok is false when unset or of another type
func Get[T any](v Values, name string) (T, bool) {
	t, ok := v[name].(T)
	return t, ok
}

// Issue is a URL value that was dropped in favor of the default
type Issue struct {
	Key    string   `json:"key"`
	Raw    []string `json:"raw"`
	Reason string   `json:"reason"`
}

// Chip is one active filter shown in the filter bar
type Chip struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// FieldInfo describes one filter control for the filter bar
type FieldInfo struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Multi   bool     `json:"multi"`
	Choices []Choice `json:"choices,omitempty"`
}

// SchemaOption configures a Schema
type SchemaOption func(*Schema)

// WithPageSize sets the default limit
func WithPageSize(n int) SchemaOption { return func(s *Schema) { s.pageSize = n } }

// WithMaxPageSize sets the largest accepted limit
func WithMaxPageSize(n int) SchemaOption { return func(s *Schema) { s.maxPageSize = n } }

// Schema is an ordered set of fields plus the built in limit and offset
type Schema struct {
	fields      []Field
	byName      map[string]Field
	byKey       map[string]Field
	pageSize    int
	maxPageSize int
}

// NewSchema validates the declarations and returns a schema
func NewSchema(fields []Field, opts ...SchemaOption) (*Schema, error) {
	s := &Schema{
		byName:      make(map[string]Field, len(fields)),
		byKey:       make(map[string]Field, len(fields)),
		pageSize:    defaultPageSize,
		maxPageSize: defaultMaxPageSize,
	}
	for _, o := range opts {
		o(s)
	}
	if s.maxPageSize < 1 || s.pageSize < 1 || s.pageSize > s.maxPageSize {
		return nil, fmt.Errorf("queryfilter: page size %d must be within 1..%d", s.pageSize, s.maxPageSize)
	}

	varOwner := map[string]string{KeyLimit: KeyLimit, KeyOffset: KeyOffset}
	for _, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("queryfilter: nil field")
		}
		if err := f.configErr(); err != nil {
			return nil, err
		}
		if _, dup := s.byName[f.Name()]; dup {
			return nil, fmt.Errorf("queryfilter: duplicate field %q", f.Name())
		}
		if prev, dup := s.byKey[f.URLKey()]; dup {
			return nil, fmt.Errorf("queryfilter: fields %q and %q share url key %q", prev.Name(), f.Name(), f.URLKey())
		}
		if slices.Contains(reserved, f.URLKey()) {
			return nil, fmt.Errorf("queryfilter: field %q uses reserved url key %q", f.Name(), f.URLKey())
		}
		for _, k := range f.VariableKeys() {
			if owner, dup := varOwner[k]; dup {
				return nil, fmt.Errorf("queryfilter: variable %q of field %q collides with %q", k, f.Name(), owner)
			}
			varOwner[k] = f.Name()
		}
		if !f.Optional() {
			def := f.Default()
			got, err := f.Decode(f.Encode(def))
			if err != nil || !f.Equal(got, def) {
				return nil, fmt.Errorf("queryfilter: default of field %q does not survive a url round trip", f.Name())
			}
		}
		s.fields = append(s.fields, f)
		s.byName[f.Name()] = f
		s.byKey[f.URLKey()] = f
	}
	return s, nil
}

// MustSchema is NewSchema for package level declarations
func MustSchema(fields []Field, opts ...SchemaOption) *Schema {
	s, err := NewSchema(fields, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the fields in declaration order
func (s *Schema) Fields() []Field { return slices.Clone(s.fields) }

// Describe returns the filter controls in declaration order, static fields excluded
func (s *Schema) Describe() []FieldInfo {
	out := make([]FieldInfo, 0, len(s.fields))
	for _, f := range s.fields {
		if f.Static() {
			continue
		}
		out = append(out, FieldInfo{
			Key:     f.URLKey(),
			Label:   f.Label(),
			Multi:   f.Multiplicity() == Multi,
			Choices: f.Choices(),
		})
	}
	return out
}

// Field looks a field up by name
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// PageSize returns the default limit
func (s *Schema) PageSize() int { return s.pageSize }

// MaxPageSize returns the largest accepted limit
func (s *Schema) MaxPageSize() int { return s.maxPageSize }

// Defaults returns a fresh value set holding every default
func (s *Schema) Defaults() Values {
	out := make(Values, len(s.fields))
	for _, f := range s.fields {
		out[f.Name()] = f.Default()
	}
	return out
}

// Parse reads every field from q; bad or missing values fall back to defaults
// unknown keys are ignored
func (s *Schema) Parse(q url.Values) (Values, []Issue) {
	out := s.Defaults()
	var issues []Issue
	for _, f := range s.fields {
		raw, ok := q[f.URLKey()]
		if !ok || len(raw) == 0 {
			continue
		}
		if f.Multiplicity() == Single {
			raw = raw[:1]
		}
		v, err := f.Decode(raw)
		if err != nil {
			issues = append(issues, Issue{Key: f.URLKey(), Raw: raw, Reason: err.Error()})
			continue
		}
		out[f.Name()] = v
	}
	return out, issues
}

// ParsePage reads limit and offset from q with the same lenient rules
func (s *Schema) ParsePage(q url.Values) (limit, offset int, issues []Issue) {
	limit, offset = s.pageSize, 0
	if raw := q.Get(KeyLimit); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			issues = append(issues, Issue{Key: KeyLimit, Raw: q[KeyLimit], Reason: "not an integer"})
		case n < 1 || n > s.maxPageSize:
			issues = append(issues, Issue{Key: KeyLimit, Raw: q[KeyLimit], Reason: fmt.Sprintf("must be within 1..%d", s.maxPageSize)})
		default:
			limit = n
		}
	}
	if raw := q.Get(KeyOffset); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			issues = append(issues, Issue{Key: KeyOffset, Raw: q[KeyOffset], Reason: "not an integer"})
		case n < 0:
			issues = append(issues, Issue{Key: KeyOffset, Raw: q[KeyOffset], Reason: "must be at least 0"})
		default:
			offset = n
		}
	}
	return limit, offset, issues
}

// ParseStrict decodes user supplied tokens keyed by url key
// unlike Parse it rejects unknown keys and bad values
func (s *Schema) ParseStrict(raw url.Values) (Values, error) {
	out := make(Values, len(raw))
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		f, ok := s.byKey[key]
		if !ok {
			return nil, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "unknown filter %q", key), key)
		}
		toks := raw[key]
		if len(toks) == 0 || (len(toks) == 1 && toks[0] == "") {
			if !f.Optional() {
				out[f.Name()] = f.Default()
			} else {
				out[f.Name()] = nil
			}
			continue
		}
		v, err := f.DecodeStrict(toks)
		if err != nil {
			return nil, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", err.Error()), key)
		}
		out[f.Name()] = v
	}
	return out, nil
}

// Check validates a partial value set coming from code
func (s *Schema) Check(partial Values) (Values, error) {
	out := make(Values, len(partial))
	for _, name := range slices.Sorted(maps.Keys(partial)) {
		f, ok := s.byName[name]
		if !ok {
			return nil, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "unknown filter %q", name), name)
		}
		v, err := f.Check(partial[name])
		if err != nil {
			return nil, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", err.Error()), name)
		}
		out[name] = v
	}
	return out, nil
}

// Encode writes the canonical query for values; defaults are omitted
func (s *Schema) Encode(values Values, limit, offset int) url.Values {
	q := url.Values{}
	for _, f := range s.fields {
		v := values[f.Name()]
		if f.Equal(v, f.Default()) {
			continue
		}
		if toks := f.Encode(v); len(toks) > 0 {
			q[f.URLKey()] = toks
		}
	}
	if limit != s.pageSize {
		q.Set(KeyLimit, strconv.Itoa(limit))
	}
	if offset != 0 {
		q.Set(KeyOffset, strconv.Itoa(offset))
	}
	return q
}

// Owns reports whether key is written by Encode
func (s *Schema) Owns(key string) bool {
	if key == KeyLimit || key == KeyOffset {
		return true
	}
	_, ok := s.byKey[key]
	return ok
}

// Variables maps values plus paging to the flat query variables
// every field appears, unset optional ones with nil
func (s *Schema) Variables(values Values, limit, offset int) Variables {
	out := Variables{KeyLimit: limit, KeyOffset: offset}
	for _, f := range s.fields {
		maps.Copy(out, f.Variables(values[f.Name()]))
	}
	return out
}

// Differs reports whether values leave the baseline on any non static field
func (s *Schema) Differs(values, baseline Values) bool {
	for _, f := range s.fields {
		if f.Static() {
			continue
		}
		if !f.Equal(values[f.Name()], baseline[f.Name()]) {
			return true
		}
	}
	return false
}

// Chips lists the non static fields set away from their default
func (s *Schema) Chips(values Values) []Chip {
	var out []Chip
	for _, f := range s.fields {
		v := values[f.Name()]
		if f.Static() || v == nil || f.Equal(v, f.Default()) {
			continue
		}
		out = append(out, Chip{Key: f.URLKey(), Label: f.Label(), Value: f.Render(v)})
	}
	return out
}

// Order returns the first ordering field, if any
func (s *Schema) Order() (*OrderField, bool) {
	for _, f := range s.fields {
		if o, ok := f.(*OrderField); ok {
			return o, true
		}
	}
	return nil, false
}
