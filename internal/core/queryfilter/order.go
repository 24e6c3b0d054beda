package queryfilter

import (
	"fmt"
	"strings"
)

// Direction is a sort direction
type Direction string

const (
	// Asc sorts ascending
	Asc Direction = "ASC"
	// Desc sorts descending
	Desc Direction = "DESC"
)

// Order is the decomposed form of an order token, only ever seen by the query layer
type Order struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Token joins the order back into its "FIELD,DIRECTION" form
func (o Order) Token() string { return o.Field + "," + string(o.Direction) }

// ParseOrder splits an order token on its first comma
func ParseOrder(tok string) (Order, error) {
	field, dir, ok := strings.Cut(tok, ",")
	if !ok {
		return Order{}, fmt.Errorf("order %q has no direction", tok)
	}
	if strings.TrimSpace(field) == "" || field != strings.TrimSpace(field) {
		return Order{}, fmt.Errorf("order %q has an invalid field", tok)
	}
	switch Direction(dir) {
	case Asc, Desc:
	default:
		return Order{}, fmt.Errorf("order %q direction must be ASC or DESC", tok)
	}
	return Order{Field: field, Direction: Direction(dir)}, nil
}

// OrderOption is one orderable token with its label
type OrderOption struct {
	Token string
	Label string
}

// Sort icons reported by the display model
const (
	IconDesc = "sort-desc"
	IconAsc  = "sort-asc"
)

// OrderChoice is one entry of the order select
type OrderChoice struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// OrderDisplay is what an order select renders
type OrderDisplay struct {
	Options  []OrderChoice `json:"options"`
	Selected Choice        `json:"selected"`
	Icon     string        `json:"icon"`
}

// OrderField is a static single valued field over "FIELD,DIRECTION" tokens
type OrderField struct {
	*Def[string]
	options []OrderOption
	labels  map[string]string
}

// OrderBy declares an ordering field; the default is the first option unless WithDefault says otherwise
func OrderBy(name string, options []OrderOption, opts ...FieldOption) *OrderField {
	base := []FieldOption{Static()}
	if len(options) > 0 {
		base = append(base, WithDefault(options[0].Token))
	}
	d, _ := newDef[string](name, append(base, opts...))

	f := &OrderField{Def: d, options: options, labels: make(map[string]string, len(options))}
	pairs := make(map[Order]string, len(options))
	var err error
	if len(options) == 0 {
		err = fmt.Errorf("at least one order option is required")
	}
	for _, o := range options {
		ord, pe := ParseOrder(o.Token)
		switch {
		case err != nil:
		case pe != nil:
			err = pe
		case strings.TrimSpace(o.Label) == "":
			err = fmt.Errorf("order %q has no label", o.Token)
		case pairs[ord] != "":
			err = fmt.Errorf("orders %q and %q decode to the same pair", pairs[ord], o.Token)
		}
		pairs[ord] = o.Token
		f.labels[o.Token] = o.Label
	}
	if err == nil && !d.optional {
		if _, ok := f.labels[d.def]; !ok {
			err = fmt.Errorf("default order %q is not an option", d.def)
		}
	}
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("queryfilter: field %q: %w", name, err)
	}

	d.parse = func(raw []string) (string, error) {
		tok := strings.TrimSpace(raw[0])
		if _, ok := f.labels[tok]; !ok {
			return "", fmt.Errorf("%q is not an order option", tok)
		}
		return tok, nil
	}
	d.format = func(v string) []string { return []string{v} }
	d.equal = func(a, b string) bool { return a == b }
	d.render = func(v string) string { return f.labels[v] }
	if d.vars == nil {
		d.vars = func(v string, key string) map[string]any {
			ord, err := ParseOrder(v)
			if err != nil {
				return map[string]any{key: nil}
			}
			return map[string]any{key: ord}
		}
	}
	return f
}

// Options returns the declared order options
func (f *OrderField) Options() []OrderOption { return append([]OrderOption(nil), f.options...) }

// Display builds the select model for the current raw value
// a value outside the options shows the first option without touching state
func (f *OrderField) Display(current any) OrderDisplay {
	raw, _ := current.(string)
	out := OrderDisplay{Options: make([]OrderChoice, 0, len(f.options))}
	selected := -1
	for i, o := range f.options {
		if o.Token == raw && selected < 0 {
			selected = i
		}
	}
	if selected < 0 && len(f.options) > 0 {
		selected = 0
	}
	for i, o := range f.options {
		out.Options = append(out.Options, OrderChoice{Value: o.Token, Label: o.Label, Selected: i == selected})
	}
	if selected >= 0 {
		out.Selected = Choice{Value: f.options[selected].Token, Label: f.options[selected].Label}
	}
	// the icon follows the raw value, not the display fallback
	out.Icon = IconAsc
	if strings.HasSuffix(raw, ","+string(Desc)) {
		out.Icon = IconDesc
	}
	return out
}
