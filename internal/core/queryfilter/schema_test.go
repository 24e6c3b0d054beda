package queryfilter

import (
	"net/url"
	"reflect"
	"slices"
	"strings"
	"testing"

	perr "hostdesk/internal/platform/errors"
	"hostdesk/internal/platform/testkit"
)

func TestParse_EmptyQueryIsDefaults(t *testing.T) {
	s := testSchema(t)
	got, issues := s.Parse(url.Values{})
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %+v", issues)
	}
	if !reflect.DeepEqual(got, s.Defaults()) {
		t.Fatalf("got %#v want %#v", got, s.Defaults())
	}
	if got["orderBy"] != "CREATED_AT,DESC" {
		t.Fatalf("orderBy default: %v", got["orderBy"])
	}
	for _, name := range []string{"searchTerm", "hostFeesStructure", "type", "isApproved", "isFrozen", "isUnhosted"} {
		if got[name] != nil {
			t.Fatalf("%s should be unset, got %#v", name, got[name])
		}
	}
	limit, offset, issues := s.ParsePage(url.Values{})
	if limit != 20 || offset != 0 || len(issues) != 0 {
		t.Fatalf("page: %d %d %+v", limit, offset, issues)
	}
}

func TestRoundTrip_PerField(t *testing.T) {
	s := testSchema(t)
	cases := map[string]any{
		"searchTerm":        "open source",
		"orderBy":           "CREATED_AT,ASC",
		"hostFeesStructure": feeRetainer,
		"type":              []kind{kindFund},
		"isApproved":        true,
		"isFrozen":          false,
		"isUnhosted":        true,
	}
	for name, v := range cases {
		f, _ := s.Field(name)
		got, err := f.Decode(f.Encode(v))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !f.Equal(got, v) {
			t.Fatalf("%s: got %#v want %#v", name, got, v)
		}

		vals := s.Defaults().Merge(Values{name: v})
		back, issues := s.Parse(s.Encode(vals, 20, 0))
		if len(issues) != 0 || !f.Equal(back[name], v) {
			t.Fatalf("%s through url: %#v %+v", name, back[name], issues)
		}
	}
}

func TestParse_MalformedOrderFallsBack(t *testing.T) {
	s := testSchema(t)
	for _, raw := range []string{"orderBy=NAME", "orderBy=CREATED_AT,SIDEWAYS", "orderBy=BALANCE,DESC", "orderBy="} {
		got, _ := s.Parse(query(raw))
		if got["orderBy"] != "CREATED_AT,DESC" {
			t.Fatalf("%s: got %v", raw, got["orderBy"])
		}
	}
	_, issues := s.Parse(query("orderBy=NAME"))
	if len(issues) != 1 || issues[0].Key != "orderBy" {
		t.Fatalf("issues: %+v", issues)
	}
}

func TestParse_MultiAcceptsBothEncodings(t *testing.T) {
	s := testSchema(t)
	want := []kind{kindCollective, kindFund}
	for _, raw := range []string{
		"type=COLLECTIVE&type=FUND",
		"type=FUND,COLLECTIVE",
		"type=FUND&type=COLLECTIVE,FUND",
		"type=FUND&type=NOPE&type=COLLECTIVE",
	} {
		got, _ := s.Parse(query(raw))
		if !reflect.DeepEqual(got["type"], want) {
			t.Fatalf("%s: got %#v", raw, got["type"])
		}
	}
	got, issues := s.Parse(query("type=NOPE"))
	if got["type"] != nil || len(issues) != 1 {
		t.Fatalf("all unknown should fall back: %#v %+v", got["type"], issues)
	}
}

func TestParse_SingleTakesFirst(t *testing.T) {
	s := testSchema(t)
	got, _ := s.Parse(query("isFrozen=true&isFrozen=false&searchTerm=a&searchTerm=b"))
	if got["isFrozen"] != true || got["searchTerm"] != "a" {
		t.Fatalf("got %#v", got)
	}
}

func TestParse_BadValuesDropped(t *testing.T) {
	s := testSchema(t)
	got, issues := s.Parse(query("isFrozen=maybe&hostFeesStructure=FREE&searchTerm=%20%20&unknown=1"))
	if got["isFrozen"] != nil || got["hostFeesStructure"] != nil || got["searchTerm"] != nil {
		t.Fatalf("got %#v", got)
	}
	if len(issues) != 2 {
		t.Fatalf("issues: %+v", issues)
	}
}

func TestParsePage_Bounds(t *testing.T) {
	s := testSchema(t)
	cases := []struct {
		raw           string
		limit, offset int
		issues        int
	}{
		{"limit=50&offset=40", 50, 40, 0},
		{"limit=0", 20, 0, 1},
		{"limit=101", 20, 0, 1},
		{"limit=x&offset=-3", 20, 0, 2},
	}
	for _, c := range cases {
		l, o, is := s.ParsePage(query(c.raw))
		if l != c.limit || o != c.offset || len(is) != c.issues {
			t.Fatalf("%s: %d %d %+v", c.raw, l, o, is)
		}
	}
}

func TestEncode_OmitsDefaultsAndOrdersMulti(t *testing.T) {
	s := testSchema(t)
	q := s.Encode(s.Defaults(), 20, 0)
	if len(q) != 0 {
		t.Fatalf("defaults should encode empty, got %v", q)
	}
	vals := s.Defaults().Merge(Values{"type": []kind{kindFund, kindCollective, kindFund}})
	checked, err := s.Check(Values{"type": vals["type"]})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	q = s.Encode(s.Defaults().Merge(checked), 50, 40)
	if !slices.Equal(q["type"], []string{"COLLECTIVE", "FUND"}) {
		t.Fatalf("type: %v", q["type"])
	}
	if q.Get("limit") != "50" || q.Get("offset") != "40" {
		t.Fatalf("paging: %v", q)
	}
}

func TestEncode_CommaEncoding(t *testing.T) {
	s := MustSchema([]Field{MultiEnum("type", kindOptions, WithEncoding(Comma))})
	q := s.Encode(Values{"type": []kind{kindCollective, kindFund}}, 20, 0)
	if q.Get("type") != "COLLECTIVE,FUND" || len(q["type"]) != 1 {
		t.Fatalf("got %v", q)
	}
}

func TestVariables_Complete(t *testing.T) {
	s := testSchema(t)
	v := s.Variables(s.Defaults(), 20, 0)
	for _, f := range s.Fields() {
		for _, k := range f.VariableKeys() {
			if _, ok := v[k]; !ok {
				t.Fatalf("missing variable %q", k)
			}
		}
	}
	if v.Int("limit") != 20 || v.Int("offset") != 0 {
		t.Fatalf("paging: %v", v)
	}
	if v["isFrozen"] != nil {
		t.Fatalf("unset bool should be nil, got %#v", v["isFrozen"])
	}
	if o, ok := v["orderBy"].(Order); !ok || o != (Order{Field: "CREATED_AT", Direction: Desc}) {
		t.Fatalf("orderBy: %#v", v["orderBy"])
	}
}

func TestVariables_KeyIsCanonical(t *testing.T) {
	a := Variables{"b": 1, "a": []string{"x"}}
	b := Variables{"a": []string{"x"}, "b": 1}
	if a.Key() != b.Key() || a.Key() == "" {
		t.Fatalf("keys differ: %s %s", a.Key(), b.Key())
	}
}

func TestWithVariables_Expands(t *testing.T) {
	s, err := NewSchema([]Field{
		Int("balance", WithRule("min=0"), WithDefault(0), WithVariables(func(v int, _ string) map[string]any {
			return map[string]any{"minBalance": v, "currency": "USD"}
		}, "minBalance", "currency")),
	})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	v := s.Variables(Values{"balance": 5}, 20, 0)
	if v["minBalance"] != 5 || v["currency"] != "USD" {
		t.Fatalf("got %v", v)
	}
	if _, ok := v["balance"]; ok {
		t.Fatalf("mapper output replaces the field key")
	}
	_, issues := s.Parse(query("balance=-1"))
	// messages come from the shared validator translations
	if len(issues) != 1 || !strings.Contains(issues[0].Reason, "balance: must be at least 0") {
		t.Fatalf("rule issue: %+v", issues)
	}
}

func TestNewSchema_Errors(t *testing.T) {
	cases := map[string][]Field{
		"duplicate name":  {Bool("a"), Bool("a", WithKey("b"))},
		"duplicate key":   {Bool("a"), Bool("b", WithKey("a"))},
		"reserved key":    {Int("page", WithKey("offset"), WithDefault(0))},
		"reserved view":   {String("view")},
		"var collision":   {Bool("a"), Bool("b", WithVariables(func(v bool, _ string) map[string]any { return map[string]any{"a": v} }, "a"))},
		"limit collision": {Bool("x", WithVariables(func(v bool, _ string) map[string]any { return map[string]any{"limit": v} }, "limit"))},
		"bad default":     {Int("n", WithDefault("ten"))},
		"rule vs default": {Int("n", WithDefault(-1), WithRule("min=0"))},
		"empty options":   {Enum[fee]("fee", nil)},
		"unlabeled":       {Enum("fee", []Option[fee]{{Value: feeDefault}})},
		"order no dir":    {OrderBy("o", []OrderOption{{Token: "NAME", Label: "Name"}})},
		"order dup pair":  {OrderBy("o", []OrderOption{{Token: "A,ASC", Label: "A"}, {Token: "A,ASC", Label: "Again"}})},
		"order default":   {OrderBy("o", orderOptions, WithDefault("NAME,ASC"))},
		"order label":     {OrderBy("o", []OrderOption{{Token: "A,ASC"}})},
	}
	for name, fields := range cases {
		if _, err := NewSchema(fields); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := NewSchema(nil, WithPageSize(200)); err == nil {
		t.Fatalf("page size above max should fail")
	}
	testkit.MustPanic(t, func() { MustSchema([]Field{Bool("a"), Bool("a")}) })
}

func TestCheck_ValidationErrors(t *testing.T) {
	s := testSchema(t)
	_, err := s.Check(Values{"nope": true})
	if perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("unknown field: %v", err)
	}
	_, err = s.Check(Values{"isFrozen": "yes"})
	e, ok := perr.As(err)
	if !ok || e.Code() != perr.ErrorCodeValidation || e.Field() != "isFrozen" {
		t.Fatalf("bad type: %v", err)
	}
	_, err = s.Check(Values{"hostFeesStructure": fee("FREE")})
	if perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("non member: %v", err)
	}
	got, err := s.Check(Values{"isFrozen": nil, "searchTerm": ""})
	if err != nil || got["isFrozen"] != nil || got["searchTerm"] != nil {
		t.Fatalf("unset: %#v %v", got, err)
	}
}

func TestParseStrict(t *testing.T) {
	s := testSchema(t)
	got, err := s.ParseStrict(query("isFrozen=true&type=FUND"))
	if err != nil || got["isFrozen"] != true || !reflect.DeepEqual(got["type"], []kind{kindFund}) {
		t.Fatalf("got %#v %v", got, err)
	}
	if _, err := s.ParseStrict(query("isFrozen=maybe")); perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("bad bool: %v", err)
	}
	if _, err := s.ParseStrict(query("who=me")); perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("unknown key: %v", err)
	}
	got, err = s.ParseStrict(query("searchTerm=&orderBy="))
	if err != nil || got["searchTerm"] != nil || got["orderBy"] != "CREATED_AT,DESC" {
		t.Fatalf("blank tokens clear: %#v %v", got, err)
	}
}

func TestChips(t *testing.T) {
	s := testSchema(t)
	vals := s.Defaults().Merge(Values{
		"orderBy":           "CREATED_AT,ASC",
		"hostFeesStructure": feeCustom,
		"type":              []kind{kindCollective, kindFund},
		"isFrozen":          true,
	})
	chips := s.Chips(vals)
	want := []Chip{
		{Key: "hostFeesStructure", Label: "Fee structure", Value: "Custom fees"},
		{Key: "type", Label: "Type", Value: "Collective, Fund"},
		{Key: "isFrozen", Label: "Frozen", Value: "Yes"},
	}
	if !reflect.DeepEqual(chips, want) {
		t.Fatalf("got %+v", chips)
	}
}

func TestChoices_SkipHidden(t *testing.T) {
	got := Choices(feeOptions)
	if len(got) != 2 || got[1].Value != "CUSTOM_FEE" {
		t.Fatalf("got %+v", got)
	}
}

func TestDescribe_OffersVisibleChoicesOnly(t *testing.T) {
	info := testSchema(t).Describe()
	keys := make([]string, len(info))
	for i, f := range info {
		keys[i] = f.Key
	}
	want := []string{"searchTerm", "hostFeesStructure", "type", "isApproved", "isFrozen", "isUnhosted"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %v", keys)
	}

	fee, kinds := info[1], info[2]
	if fee.Label != "Fee structure" || fee.Multi {
		t.Fatalf("fee = %+v", fee)
	}
	if !reflect.DeepEqual(fee.Choices, []Choice{{"DEFAULT", "Default fees"}, {"CUSTOM_FEE", "Custom fees"}}) {
		t.Fatalf("fee choices = %+v", fee.Choices)
	}
	if !kinds.Multi || len(kinds.Choices) != 2 {
		t.Fatalf("type = %+v", kinds)
	}
	if info[0].Choices != nil || info[3].Choices != nil {
		t.Fatalf("non enum fields carry no choices: %+v", info)
	}

	// the hidden member still round trips from a URL
	got, issues := testSchema(t).Parse(url.Values{"hostFeesStructure": {"MONTHLY_RETAINER"}})
	if len(issues) != 0 || got["hostFeesStructure"] != feeRetainer {
		t.Fatalf("parse = %v issues = %v", got, issues)
	}
}
