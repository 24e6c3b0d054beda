// Package api assembles the HTTP API from its modules
package api

import (
	"hostdesk/internal/platform/config"
	"hostdesk/internal/platform/logger"
	phttp "hostdesk/internal/platform/net/http"
	"hostdesk/internal/platform/net/middleware"
	"hostdesk/internal/platform/store"

	"hostdesk/internal/modkit"
	"hostdesk/internal/modkit/httpkit"
	"hostdesk/internal/modkit/swaggerkit"

	collectivesmod "hostdesk/internal/services/api/collectives/module"
	metamod "hostdesk/internal/services/api/meta/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	Stack          httpkit.StackOptions
	EnableSwagger  bool
	EnableProfiler bool
}

// Modules builds the api modules from shared deps
func Modules(opt Options) []modkit.Module {
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	return []modkit.Module{
		metamod.New(deps),
		collectivesmod.New(deps, collectivesmod.FromConfig(deps.Cfg)),
	}
}

// Mount puts the root heartbeat, the docs, the profiler and /api/v1 onto r
func Mount(r phttp.Router, opt Options) {
	log := logger.Named("api")
	if opt.Logger != nil {
		l := opt.Logger.With().Str("component", "api").Logger()
		log = &l
	}

	r.Use(middleware.Heartbeat("/healthz"))
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	mods := Modules(opt)
	httpkit.MountAPIV1(r, httpkit.CommonStack(opt.Stack), func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
			log.Debug().Str("module", m.Name()).Str("prefix", "/api/v1"+m.Prefix()).Bool("ports", m.Ports() != nil).Msg("module mounted")
		}
	})
}
