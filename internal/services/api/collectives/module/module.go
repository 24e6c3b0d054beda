// Package module wires hosted collectives into the api
package module

import (
	modkit "hostdesk/internal/modkit"
	chttp "hostdesk/internal/services/api/collectives/http"
	crepo "hostdesk/internal/services/api/collectives/repo"
	csvc "hostdesk/internal/services/api/collectives/service"
)

// Module serves the hosted collectives section, its Ports is the domain ServicePort
type Module struct {
	modkit.Base
}

// New builds the module, routes mount under the dashboard base so api paths mirror dashboard paths
func New(deps modkit.Deps, opt Options, opts ...modkit.Option) modkit.Module {
	if opt.DashboardBase == "" {
		opt.DashboardBase = "/dashboard"
	}
	svc := csvc.New(deps.PG, crepo.NewPG(), csvc.Options{
		PageSize:       opt.PageSize,
		MaxPageSize:    opt.MaxPageSize,
		DashboardBase:  opt.DashboardBase,
		SearchMaxRunes: opt.SearchMaxRunes,
		FetchTimeout:   opt.FetchTimeout,
	})

	base := []modkit.Option{
		modkit.WithName("collectives"),
		modkit.WithPrefix(opt.DashboardBase),
		modkit.WithPorts(csvc.Service(svc)),
		modkit.WithRoutes(func(r modkit.Router) { chttp.Register(r, svc) }),
	}
	return &Module{Base: modkit.Build(append(base, opts...)...)}
}
