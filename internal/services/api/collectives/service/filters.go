package service

import (
	"strings"

	"hostdesk/internal/core/normalize"
	qf "hostdesk/internal/core/queryfilter"
	"hostdesk/internal/services/api/collectives/domain"
)

// Field names, also the url keys
const (
	FieldSearch   = "searchTerm"
	FieldOrder    = "orderBy"
	FieldFees     = "hostFeesStructure"
	FieldType     = "type"
	FieldApproved = "isApproved"
	FieldFrozen   = "isFrozen"
	FieldUnhosted = "isUnhosted"
)

var (
	typeOptions = []qf.Option[domain.CollectiveType]{
		{Value: domain.TypeCollective, Label: "Collective"},
		{Value: domain.TypeFund, Label: "Fund"},
	}
	feeOptions = []qf.Option[domain.FeeStructure]{
		{Value: domain.FeeDefault, Label: "Default fees"},
		{Value: domain.FeeCustom, Label: "Custom fees"},
		// parses from old links but is not offered
		{Value: domain.FeeMonthlyRetainer, Label: "Monthly retainer", Hidden: true},
	}
	orderOptions = []qf.OrderOption{
		{Token: "CREATED_AT,DESC", Label: "Newest First"},
		{Token: "CREATED_AT,ASC", Label: "Oldest First"},
		{Token: "NAME,ASC", Label: "Name A-Z"},
		{Token: "BALANCE,DESC", Label: "Highest Balance"},
	}
)

// newSchema declares the hosted collectives filters
// the search term is folded only on its way to the query layer
func newSchema(nz *normalize.Normalizer, pageSize, maxPageSize int) *qf.Schema {
	search := func(v string, key string) map[string]any {
		terms := nz.Terms(v)
		if len(terms) == 0 {
			return map[string]any{key: nil}
		}
		return map[string]any{key: strings.Join(terms, " ")}
	}
	return qf.MustSchema([]qf.Field{
		qf.String(FieldSearch,
			qf.WithLabel("Search"),
			qf.WithCoerce(strings.TrimSpace),
			qf.WithRule("max=200"),
			qf.WithVariables(search, FieldSearch),
		),
		qf.OrderBy(FieldOrder, orderOptions, qf.WithLabel("Order")),
		qf.Enum(FieldFees, feeOptions, qf.WithLabel("Fee structure")),
		qf.MultiEnum(FieldType, typeOptions, qf.WithLabel("Type")),
		qf.Bool(FieldApproved, qf.WithLabel("Approved")),
		qf.Bool(FieldFrozen, qf.WithLabel("Frozen")),
		qf.Bool(FieldUnhosted, qf.WithLabel("Unhosted")),
	}, qf.WithPageSize(pageSize), qf.WithMaxPageSize(maxPageSize))
}

func newViews(s *qf.Schema) qf.Views {
	hosted := []domain.CollectiveType{domain.TypeCollective, domain.TypeFund}
	return qf.MustViews(s,
		qf.View{ID: "all", Label: "All", Filter: qf.Values{FieldType: hosted}},
		qf.View{ID: "active", Label: "Active", Filter: qf.Values{FieldFrozen: false, FieldType: hosted}},
		qf.View{ID: "frozen", Label: "Frozen", Filter: qf.Values{FieldFrozen: true, FieldType: hosted}},
		qf.View{ID: "unhosted", Label: "Unhosted", Filter: qf.Values{FieldUnhosted: true, FieldType: hosted}},
	)
}

// listQuery reads the repo query back out of the flat variables
func listQuery(host string, vars qf.Variables) domain.ListQuery {
	lq := domain.ListQuery{
		Host:   host,
		Limit:  vars.Int(qf.KeyLimit),
		Offset: vars.Int(qf.KeyOffset),
	}
	if s, ok := vars[FieldSearch].(string); ok {
		lq.Terms = strings.Fields(s)
	}
	if ord, ok := vars[FieldOrder].(qf.Order); ok {
		lq.OrderField = ord.Field
		lq.OrderDesc = ord.Direction == qf.Desc
	}
	if fee, ok := vars[FieldFees].(domain.FeeStructure); ok {
		lq.FeeStructure = &fee
	}
	if types, ok := vars[FieldType].([]domain.CollectiveType); ok {
		lq.Types = types
	}
	lq.IsApproved = boolVar(vars, FieldApproved)
	lq.IsFrozen = boolVar(vars, FieldFrozen)
	lq.IsUnhosted = boolVar(vars, FieldUnhosted)
	return lq
}

func boolVar(vars qf.Variables, key string) *bool {
	b, ok := vars[key].(bool)
	if !ok {
		return nil
	}
	return &b
}
