// Package modkit wires api modules: shared deps, the Module contract and a Base to embed
package modkit

import (
	"hostdesk/internal/modkit/httpkit"
	"hostdesk/internal/modkit/repokit"
	"hostdesk/internal/platform/config"
	"hostdesk/internal/platform/logger"
)

// Deps are what every module constructor receives
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
}

// Module is one mountable slice of the api
type Module interface {
	Name() string
	Prefix() string
	MountRoutes(r httpkit.Router)
	// Ports is the module's service surface for other modules, nil when it has none
	Ports() any
}
