// Package domain holds the hosted collectives types and service contracts
package domain

import "time"

// CollectiveType is the kind of account a host can hold
type CollectiveType string

const (
	TypeCollective CollectiveType = "COLLECTIVE"
	TypeFund       CollectiveType = "FUND"
)

// FeeStructure is how a host charges a hosted account
type FeeStructure string

const (
	FeeDefault         FeeStructure = "DEFAULT"
	FeeCustom          FeeStructure = "CUSTOM_FEE"
	FeeMonthlyRetainer FeeStructure = "MONTHLY_RETAINER"
)

// Collective is one hosted account as the dashboard shows it
type Collective struct {
	ID               string         `json:"id"                 example:"7b1e4c52-6a43-4a8e-9a59-0c2c3a7a01f5"`
	HostSlug         string         `json:"host_slug"          example:"opensource"`
	Slug             string         `json:"slug"               example:"babel"`
	Name             string         `json:"name"               example:"Babel"`
	Type             CollectiveType `json:"type"               example:"COLLECTIVE"`
	HostFeeStructure FeeStructure   `json:"host_fee_structure" example:"DEFAULT"`
	HostFeePercent   *float64       `json:"host_fee_percent"   example:"10"`
	IsFrozen         bool           `json:"is_frozen"`
	IsApproved       bool           `json:"is_approved"`
	IsUnhosted       bool           `json:"is_unhosted"`
	BalanceCents     int64          `json:"balance_cents"      example:"125000"`
	Currency         string         `json:"currency"           example:"USD"`
	CreatedAt        time.Time      `json:"created_at"`
}

// RecordID identifies the collective in the drawer sub-path
func (c Collective) RecordID() string { return c.ID }

// ListQuery is the repo side of the list variables
type ListQuery struct {
	Host         string
	Terms        []string
	FeeStructure *FeeStructure
	Types        []CollectiveType
	IsApproved   *bool
	IsFrozen     *bool
	IsUnhosted   *bool
	OrderField   string
	OrderDesc    bool
	Limit        int
	Offset       int
}

// ListResult is one page of collectives plus the total across pages
type ListResult struct {
	Items []Collective
	Total int
}

// ViewCounts holds one total per view preset
type ViewCounts struct {
	All      int
	Active   int
	Frozen   int
	Unhosted int
}

// ByView keys the counts by view id
func (c ViewCounts) ByView() map[string]int {
	return map[string]int{
		"all":      c.All,
		"active":   c.Active,
		"frozen":   c.Frozen,
		"unhosted": c.Unhosted,
	}
}

// Update is a partial change to a collective; nil fields stay as they are
type Update struct {
	IsFrozen         *bool
	HostFeeStructure *FeeStructure
}
