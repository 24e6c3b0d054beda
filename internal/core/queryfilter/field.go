// Package queryfilter keeps a URL query, a typed filter value set and the
// variables sent to a list query consistent with each other
//
// A Schema declares the fields, a Controller owns the state and writes it back
// through a Navigator, and a SelectionRouter maps the trailing sub-path segment
// to the record shown in a detail drawer
package queryfilter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Multiplicity tells whether a field holds one value or a set
type Multiplicity uint8

const (
	// Single fields hold at most one value
	Single Multiplicity = iota
	// Multi fields hold an ordered set of enum members
	Multi
)

// Encoding is how a multi field is written to the URL
// parsing accepts both forms regardless of the declared one
type Encoding uint8

const (
	// Repeated writes ?type=A&type=B
	Repeated Encoding = iota
	// Comma writes ?type=A,B
	Comma
)

// Field is one declared filter
// values cross this interface as any; the concrete type is fixed per field
type Field interface {
	Name() string
	URLKey() string
	Label() string
	Multiplicity() Multiplicity
	Encoding() Encoding
	// Static fields (ordering) never count as custom filters
	Static() bool
	// Optional fields default to unset, which is carried as nil
	Optional() bool
	Default() any

	// Decode coerces raw URL tokens and runs the field rule
	// unknown members of a multi field are dropped one by one
	Decode(raw []string) (any, error)
	// DecodeStrict is Decode that rejects any unknown member
	DecodeStrict(raw []string) (any, error)
	// Check coerces a typed value coming from code or a widget
	Check(v any) (any, error)
	// Encode returns the URL tokens for v, nil when v is unset
	Encode(v any) []string
	Equal(a, b any) bool

	Variables(v any) map[string]any
	VariableKeys() []string
	// Render is the value renderer used for filter chips
	Render(v any) string
	// Choices are the offered members of an enum field, nil otherwise
	Choices() []Choice

	configErr() error
}

// Option is one declared enum member with its display label
// members and labels are declared together so a member cannot lack a label
type Option[T ~string] struct {
	Value T
	Label string
	// Hidden members parse but are not offered as a choice
	Hidden bool
}

// Choice is an enum member prepared for a select widget
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldOption configures a field at declaration time
type FieldOption func(*fieldConfig)

type fieldConfig struct {
	key      string
	label    string
	static   bool
	encoding Encoding
	rule     string
	def      any
	hasDef   bool
	vars     any
	varKeys  []string
	coerce   any
}

// WithKey overrides the URL key, which defaults to the field name
func WithKey(key string) FieldOption {
	return func(c *fieldConfig) { c.key = key }
}

// WithLabel sets the display label
func WithLabel(label string) FieldOption {
	return func(c *fieldConfig) { c.label = label }
}

// Static marks a field that never counts as a custom filter
func Static() FieldOption {
	return func(c *fieldConfig) { c.static = true }
}

// WithEncoding sets the URL encoding of a multi field
func WithEncoding(e Encoding) FieldOption {
	return func(c *fieldConfig) { c.encoding = e }
}

// WithRule attaches a validator tag run on every decoded or checked value
// e.g. "min=0" or "max=100"
func WithRule(tag string) FieldOption {
	return func(c *fieldConfig) { c.rule = tag }
}

// WithDefault sets the value used when the key is absent
// without it a field is optional and defaults to unset
func WithDefault[T any](v T) FieldOption {
	return func(c *fieldConfig) { c.def, c.hasDef = v, true }
}

// WithVariables replaces the default {key: value} mapping for the query layer
// keys lists every variable the mapper may emit so collisions surface at construction
func WithVariables[T any](fn func(v T, key string) map[string]any, keys ...string) FieldOption {
	return func(c *fieldConfig) { c.vars, c.varKeys = fn, keys }
}

// WithCoerce runs fn on a value before validation, e.g. trimming a search term
func WithCoerce[T any](fn func(T) T) FieldOption {
	return func(c *fieldConfig) { c.coerce = fn }
}

// Def is the generic field implementation behind every constructor
type Def[T any] struct {
	name     string
	key      string
	label    string
	multi    bool
	static   bool
	optional bool
	encoding Encoding
	rule     string
	def      T

	parse  func(raw []string) (T, error)
	// strict replaces parse on command input, nil when parse is already strict
	strict func(raw []string) (T, error)
	format func(T) []string
	equal  func(a, b T) bool
	empty  func(T) bool
	render func(T) string
	coerce func(T) T
	vars   func(v T, key string) map[string]any

	choices []Choice
	varKeys []string
	err     error
}

func newDef[T any](name string, opts []FieldOption) (*Def[T], fieldConfig) {
	c := fieldConfig{key: name, label: name}
	for _, o := range opts {
		o(&c)
	}
	d := &Def[T]{
		name:     name,
		key:      c.key,
		label:    c.label,
		static:   c.static,
		encoding: c.encoding,
		rule:     c.rule,
		optional: !c.hasDef,
	}
	if strings.TrimSpace(name) == "" {
		d.err = fmt.Errorf("queryfilter: field name is required")
	}
	if strings.TrimSpace(d.key) == "" {
		d.err = fmt.Errorf("queryfilter: field %q has an empty url key", name)
	}
	if c.hasDef {
		v, ok := c.def.(T)
		if !ok {
			d.err = fmt.Errorf("queryfilter: field %q default is %T, want %T", name, c.def, *new(T))
		}
		d.def = v
	}
	if c.coerce != nil {
		fn, ok := c.coerce.(func(T) T)
		if !ok {
			d.err = fmt.Errorf("queryfilter: field %q coerce func has the wrong type %T", name, c.coerce)
		}
		d.coerce = fn
	}
	if c.vars != nil {
		fn, ok := c.vars.(func(T, string) map[string]any)
		if !ok {
			d.err = fmt.Errorf("queryfilter: field %q variables mapper has the wrong type %T", name, c.vars)
		}
		d.vars = fn
		d.varKeys = append([]string(nil), c.varKeys...)
		if len(d.varKeys) == 0 {
			d.err = fmt.Errorf("queryfilter: field %q variables mapper must declare its keys", name)
		}
	} else {
		d.varKeys = []string{name}
	}
	return d, c
}

// Name returns the field name, the key used in Values
func (d *Def[T]) Name() string { return d.name }

// URLKey returns the query string key
func (d *Def[T]) URLKey() string { return d.key }

// Label returns the display label
func (d *Def[T]) Label() string { return d.label }

// Multiplicity reports single or multi
func (d *Def[T]) Multiplicity() Multiplicity {
	if d.multi {
		return Multi
	}
	return Single
}

// Encoding returns the declared multi encoding
func (d *Def[T]) Encoding() Encoding { return d.encoding }

// Static reports whether the field is excluded from custom filter detection
func (d *Def[T]) Static() bool { return d.static }

// Optional reports whether the field defaults to unset
func (d *Def[T]) Optional() bool { return d.optional }

// Default returns the default value, nil for optional fields
func (d *Def[T]) Default() any {
	if d.optional {
		return nil
	}
	return d.def
}

// Decode parses raw tokens into T and validates the result
func (d *Def[T]) Decode(raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: no value", d.key)
	}
	v, err := d.parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.key, err)
	}
	return d.finish(v)
}

// DecodeStrict parses raw tokens, rejecting anything Decode would drop
func (d *Def[T]) DecodeStrict(raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: no value", d.key)
	}
	v, err := d.strictParse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.key, err)
	}
	return d.finish(v)
}

func (d *Def[T]) strictParse(raw []string) (T, error) {
	if d.strict != nil {
		return d.strict(raw)
	}
	return d.parse(raw)
}

// Check accepts T (or nil for optional fields) and validates it
func (d *Def[T]) Check(v any) (any, error) {
	if v == nil {
		if d.optional {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: value is required", d.name)
	}
	tv, ok := v.(T)
	if !ok {
		return nil, fmt.Errorf("%s: got %T, want %T", d.name, v, *new(T))
	}
	// run typed values through the same parser so enum membership and ordering hold
	if d.format != nil {
		toks := d.format(tv)
		if len(toks) == 0 {
			if d.optional {
				return nil, nil
			}
			return nil, fmt.Errorf("%s: value is required", d.name)
		}
		pv, err := d.strictParse(toks)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.name, err)
		}
		tv = pv
	}
	return d.finish(tv)
}

func (d *Def[T]) finish(v T) (any, error) {
	if d.coerce != nil {
		v = d.coerce(v)
	}
	if d.empty != nil && d.empty(v) {
		if d.optional {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: value is required", d.name)
	}
	if d.rule != "" {
		if err := rules().Var(v, d.rule); err != nil {
			return nil, fmt.Errorf("%s: %s", d.key, ruleMessage(err))
		}
	}
	return v, nil
}

// Encode formats v as URL tokens
func (d *Def[T]) Encode(v any) []string {
	tv, ok := v.(T)
	if !ok {
		return nil
	}
	return d.format(tv)
}

// Equal compares two values of this field, nil meaning unset
func (d *Def[T]) Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, ok1 := a.(T)
	tb, ok2 := b.(T)
	if !ok1 || !ok2 {
		return false
	}
	return d.equal(ta, tb)
}

// Variables maps v to the query layer shape
func (d *Def[T]) Variables(v any) map[string]any {
	tv, ok := v.(T)
	if d.vars == nil {
		if !ok {
			return map[string]any{d.name: nil}
		}
		return map[string]any{d.name: tv}
	}
	if !ok {
		out := make(map[string]any, len(d.varKeys))
		for _, k := range d.varKeys {
			out[k] = nil
		}
		return out
	}
	return d.vars(tv, d.name)
}

// VariableKeys lists the keys Variables may emit
func (d *Def[T]) VariableKeys() []string { return append([]string(nil), d.varKeys...) }

// Render formats v for a filter chip
func (d *Def[T]) Render(v any) string {
	tv, ok := v.(T)
	if !ok {
		return ""
	}
	if d.render != nil {
		return d.render(tv)
	}
	return strings.Join(d.format(tv), ", ")
}

// Choices returns the visible enum members in declaration order
func (d *Def[T]) Choices() []Choice { return slices.Clone(d.choices) }

func (d *Def[T]) configErr() error { return d.err }

// scalar fields

// Int declares an integer field
func Int(name string, opts ...FieldOption) *Def[int] {
	d, _ := newDef[int](name, opts)
	d.parse = func(raw []string) (int, error) {
		n, err := strconv.Atoi(strings.TrimSpace(raw[0]))
		if err != nil {
			return 0, fmt.Errorf("not an integer")
		}
		return n, nil
	}
	d.format = func(v int) []string { return []string{strconv.Itoa(v)} }
	d.equal = func(a, b int) bool { return a == b }
	return d
}

// Bool declares a boolean field, optional unless a default is given
func Bool(name string, opts ...FieldOption) *Def[bool] {
	d, _ := newDef[bool](name, opts)
	d.parse = func(raw []string) (bool, error) {
		b, err := strconv.ParseBool(strings.TrimSpace(raw[0]))
		if err != nil {
			return false, fmt.Errorf("not a boolean")
		}
		return b, nil
	}
	d.format = func(v bool) []string { return []string{strconv.FormatBool(v)} }
	d.equal = func(a, b bool) bool { return a == b }
	d.render = func(v bool) string {
		if v {
			return "Yes"
		}
		return "No"
	}
	return d
}

// String declares a free text field; blank input is unset
func String(name string, opts ...FieldOption) *Def[string] {
	d, _ := newDef[string](name, opts)
	d.parse = func(raw []string) (string, error) { return raw[0], nil }
	d.format = func(v string) []string {
		if v == "" {
			return nil
		}
		return []string{v}
	}
	d.equal = func(a, b string) bool { return a == b }
	d.empty = func(v string) bool { return strings.TrimSpace(v) == "" }
	return d
}

// Enum declares a single valued field over a closed set of members
func Enum[T ~string](name string, options []Option[T], opts ...FieldOption) *Def[T] {
	d, _ := newDef[T](name, opts)
	idx, labels, err := indexOptions(options)
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("queryfilter: field %q: %w", name, err)
	}
	d.parse = func(raw []string) (T, error) {
		tok := strings.TrimSpace(raw[0])
		if _, ok := idx[T(tok)]; !ok {
			return "", fmt.Errorf("%q is not a member", tok)
		}
		return T(tok), nil
	}
	d.format = func(v T) []string { return []string{string(v)} }
	d.equal = func(a, b T) bool { return a == b }
	d.render = func(v T) string { return labels[v] }
	d.choices = Choices(options)
	return d
}

// MultiEnum declares a set valued field over a closed set of members
// values are kept in declaration order without duplicates
func MultiEnum[T ~string](name string, options []Option[T], opts ...FieldOption) *Def[[]T] {
	d, _ := newDef[[]T](name, opts)
	d.multi = true
	idx, labels, err := indexOptions(options)
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("queryfilter: field %q: %w", name, err)
	}
	members := func(raw []string, strict bool) ([]T, error) {
		seen := make(map[T]bool, len(options))
		for _, r := range raw {
			for _, tok := range strings.Split(r, ",") {
				tok = strings.TrimSpace(tok)
				if tok == "" {
					continue
				}
				if _, ok := idx[T(tok)]; ok {
					seen[T(tok)] = true
				} else if strict {
					return nil, fmt.Errorf("%q is not a member", tok)
				}
			}
		}
		if len(seen) == 0 {
			return nil, fmt.Errorf("no known members")
		}
		out := make([]T, 0, len(seen))
		for _, o := range options {
			if seen[o.Value] {
				out = append(out, o.Value)
			}
		}
		return out, nil
	}
	d.parse = func(raw []string) ([]T, error) { return members(raw, false) }
	d.strict = func(raw []string) ([]T, error) { return members(raw, true) }
	d.format = func(v []T) []string {
		if len(v) == 0 {
			return nil
		}
		out := make([]string, len(v))
		for i, m := range v {
			out[i] = string(m)
		}
		if d.encoding == Comma {
			return []string{strings.Join(out, ",")}
		}
		return out
	}
	d.equal = func(a, b []T) bool { return slices.Equal(a, b) }
	d.empty = func(v []T) bool { return len(v) == 0 }
	d.render = func(v []T) string {
		parts := make([]string, len(v))
		for i, m := range v {
			parts[i] = labels[m]
		}
		return strings.Join(parts, ", ")
	}
	d.choices = Choices(options)
	return d
}

// Choices returns the visible members of an options table for a select widget
func Choices[T ~string](options []Option[T]) []Choice {
	out := make([]Choice, 0, len(options))
	for _, o := range options {
		if o.Hidden {
			continue
		}
		out = append(out, Choice{Value: string(o.Value), Label: o.Label})
	}
	return out
}

func indexOptions[T ~string](options []Option[T]) (map[T]int, map[T]string, error) {
	idx := make(map[T]int, len(options))
	labels := make(map[T]string, len(options))
	if len(options) == 0 {
		return idx, labels, fmt.Errorf("at least one option is required")
	}
	var err error
	for i, o := range options {
		if _, dup := idx[o.Value]; dup && err == nil {
			err = fmt.Errorf("duplicate option %q", o.Value)
		}
		if strings.TrimSpace(o.Label) == "" && err == nil {
			err = fmt.Errorf("option %q has no label", o.Value)
		}
		if strings.ContainsRune(string(o.Value), ',') && err == nil {
			err = fmt.Errorf("option %q contains a comma", o.Value)
		}
		idx[o.Value] = i
		labels[o.Value] = o.Label
	}
	return idx, labels, err
}
