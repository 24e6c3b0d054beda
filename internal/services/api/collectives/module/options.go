package module

import (
	"time"

	"hostdesk/internal/platform/config"
)

// Options controls the hosted collectives section
type Options struct {
	PageSize       int
	MaxPageSize    int
	DashboardBase  string
	SearchMaxRunes int
	FetchTimeout   time.Duration
}

// FromConfig reads CORE_COLLECTIVES_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	cc := cfg.Prefix("CORE_COLLECTIVES_")
	return Options{
		PageSize:       cc.MayInt("PAGE_SIZE", 20),
		MaxPageSize:    cc.MayInt("MAX_PAGE_SIZE", 100),
		DashboardBase:  cc.MayString("DASHBOARD_BASE", "/dashboard"),
		SearchMaxRunes: cc.MayInt("SEARCH_MAX_RUNES", 100),
		FetchTimeout:   cc.MayDuration("FETCH_TIMEOUT", 5*time.Second),
	}
}
