package domain

import (
	qf "hostdesk/internal/core/queryfilter"
	perr "hostdesk/internal/platform/errors"
)

// Navigate ops
const (
	OpSet    = "set"
	OpReset  = "reset"
	OpView   = "view"
	OpPage   = "page"
	OpSelect = "select"
	OpClose  = "close"
)

// UpdateInput is the drawer edit payload
type UpdateInput struct {
	IsFrozen         *bool         `json:"is_frozen,omitempty"          example:"true"`
	HostFeeStructure *FeeStructure `json:"host_fee_structure,omitempty" validate:"omitempty,oneof=DEFAULT CUSTOM_FEE MONTHLY_RETAINER" example:"CUSTOM_FEE"`
}

// Update converts the payload to a repo update
func (in UpdateInput) Update() Update {
	return Update{IsFrozen: in.IsFrozen, HostFeeStructure: in.HostFeeStructure}
}

// NavigateInput is one widget command against the current location
type NavigateInput struct {
	Location string              `json:"location" validate:"required,max=2048" example:"/dashboard/opensource/hosted-collectives?isFrozen=true"`
	Op       string              `json:"op"       validate:"required,oneof=set reset view page select close" example:"set"`
	Values   map[string][]string `json:"values,omitempty"`
	View     string              `json:"view,omitempty"   validate:"required_if=Op view,max=64" example:"frozen"`
	Limit    *int                `json:"limit,omitempty"  validate:"omitempty,min=1" example:"20"`
	Offset   *int                `json:"offset,omitempty" validate:"omitempty,min=0" example:"40"`
	ID       string              `json:"id,omitempty"     validate:"required_if=Op select,max=64" example:"7b1e4c52-6a43-4a8e-9a59-0c2c3a7a01f5"`
}

// NavigateOutput carries the navigation a command produced and the page it lands on
type NavigateOutput struct {
	Navigations []qf.Navigation `json:"navigations"`
	Page        Page            `json:"page"`
}

// Empty states of the list
const (
	EmptyNone     = ""
	EmptyFiltered = "filtered"
	EmptyNeutral  = "neutral"
)

// Selection states of the drawer
const (
	SelectionNone     = "none"
	SelectionLoading  = "loading"
	SelectionNotFound = "not_found"
	SelectionLoaded   = "loaded"
)

// Page is the render ready dashboard section
type Page struct {
	Location   qf.Location     `json:"location"   swaggertype:"string" example:"/dashboard/opensource/hosted-collectives?isFrozen=true"`
	Filters    Filters         `json:"filters"`
	Variables  qf.Variables    `json:"variables"`
	Views      []ViewTab       `json:"views"`
	Order      qf.OrderDisplay `json:"order"`
	Chips      []qf.Chip       `json:"chips"`
	Items      []Collective    `json:"items"`
	TotalCount int             `json:"total_count"`
	Pagination Pagination      `json:"pagination"`
	Empty      string          `json:"empty"      example:"filtered"`
	ListError  *perr.Wire      `json:"list_error"`
	Selection  SelectionView   `json:"selection"`
}

// Filters is the filter bar state
type Filters struct {
	Values     qf.Values      `json:"values"`
	Query      string         `json:"query"       example:"isFrozen=true"`
	HasFilters bool           `json:"has_filters"`
	ActiveView string         `json:"active_view" example:"frozen"`
	Fields     []qf.FieldInfo `json:"fields"`
	Limit      int            `json:"limit"       example:"20"`
	Offset     int            `json:"offset"      example:"0"`
}

// ViewTab is one preset tab with its count
type ViewTab struct {
	ID     string `json:"id"     example:"frozen"`
	Label  string `json:"label"  example:"Frozen"`
	Count  *int   `json:"count"  example:"3"`
	Active bool   `json:"active"`
}

// Pagination is the pager model; prev and next are locations, empty at the edges
type Pagination struct {
	Limit      int    `json:"limit"       example:"20"`
	Offset     int    `json:"offset"      example:"20"`
	Page       int    `json:"page"        example:"2"`
	TotalPages int    `json:"total_pages" example:"5"`
	Prev       string `json:"prev,omitempty"`
	Next       string `json:"next,omitempty"`
}

// SelectionView is the drawer state
type SelectionView struct {
	State  string      `json:"state"            example:"loaded"`
	ID     *string     `json:"id,omitempty"`
	Record *Collective `json:"record,omitempty"`
}
