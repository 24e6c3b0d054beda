package queryfilter

import (
	"net/url"
	"testing"
)

type kind string

const (
	kindCollective kind = "COLLECTIVE"
	kindFund       kind = "FUND"
)

type fee string

const (
	feeDefault  fee = "DEFAULT"
	feeCustom   fee = "CUSTOM_FEE"
	feeRetainer fee = "MONTHLY_RETAINER"
)

var (
	kindOptions = []Option[kind]{
		{Value: kindCollective, Label: "Collective"},
		{Value: kindFund, Label: "Fund"},
	}
	feeOptions = []Option[fee]{
		{Value: feeDefault, Label: "Default fees"},
		{Value: feeCustom, Label: "Custom fees"},
		{Value: feeRetainer, Label: "Monthly retainer", Hidden: true},
	}
	orderOptions = []OrderOption{
		{Token: "CREATED_AT,DESC", Label: "Newest First"},
		{Token: "CREATED_AT,ASC", Label: "Oldest First"},
	}
)

const base = "/dashboard/acme/hosted-collectives"

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema([]Field{
		String("searchTerm", WithLabel("Search")),
		OrderBy("orderBy", orderOptions, WithLabel("Order")),
		Enum("hostFeesStructure", feeOptions, WithLabel("Fee structure")),
		MultiEnum("type", kindOptions, WithLabel("Type")),
		Bool("isApproved", WithLabel("Approved")),
		Bool("isFrozen", WithLabel("Frozen")),
		Bool("isUnhosted", WithLabel("Unhosted")),
	})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return s
}

func testViews(t *testing.T, s *Schema) Views {
	t.Helper()
	both := []kind{kindCollective, kindFund}
	vs, err := NewViews(s,
		View{ID: "all", Label: "All", Filter: Values{"type": both}},
		View{ID: "active", Label: "Active", Filter: Values{"isFrozen": false, "type": both}},
		View{ID: "frozen", Label: "Frozen", Filter: Values{"isFrozen": true, "type": both}},
		View{ID: "unhosted", Label: "Unhosted", Filter: Values{"isUnhosted": true, "type": both}},
	)
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	return vs
}

func loc(t *testing.T, raw string) Location {
	t.Helper()
	l, err := ParseLocation(raw)
	if err != nil {
		t.Fatalf("location %q: %v", raw, err)
	}
	return l
}

func newTestController(t *testing.T, raw string) (*Controller, *History) {
	t.Helper()
	s := testSchema(t)
	h := NewHistory(loc(t, raw))
	return NewController(s, testViews(t, s), h), h
}

func query(raw string) url.Values {
	q, _ := url.ParseQuery(raw)
	return q
}
