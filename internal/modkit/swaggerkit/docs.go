package swaggerkit

import (
	_ "embed"

	"hostdesk/internal/core/version"

	"github.com/swaggo/swag"
)

// instance is the swag registry name the UI reads
const instance = "api"

//go:embed openapi.json
var openapi string

// Info is the registered doc, main may set Version before Mount
var Info = &swag.Spec{
	Title:            "Hostdesk API",
	Description:      "Admin endpoints for the collectives a host fiscally sponsors",
	Version:          version.Info().Version,
	InfoInstanceName: instance,
	SwaggerTemplate:  openapi,
}

func init() { swag.Register(Info.InstanceName(), Info) }

// docReader is a seam so tests can feed broken JSON
var docReader = func() string { return Info.ReadDoc() }
