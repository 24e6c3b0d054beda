// Package module wires the meta endpoints into the api
package module

import (
	"time"

	"hostdesk/internal/core/version"
	modkit "hostdesk/internal/modkit"

	metahttp "hostdesk/internal/services/api/meta/http"
)

// New builds the meta module under /meta, it has no ports
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	started := time.Now()
	base := []modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
		modkit.WithRoutes(func(r modkit.Router) {
			metahttp.Register(r, metahttp.Deps{
				ServiceName: version.Service,
				StartedAt:   started,
				PG:          deps.PG,
			})
		}),
	}
	b := modkit.Build(append(base, opts...)...)
	return &b
}
