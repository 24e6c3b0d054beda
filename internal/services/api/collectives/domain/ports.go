package domain

import (
	"context"

	qf "hostdesk/internal/core/queryfilter"
)

// ServicePort defines the service contract for hosted collectives
type ServicePort interface {
	// Base is the dashboard path of the host's section
	Base(host string) string
	Page(ctx context.Context, host string, loc qf.Location) (Page, error)
	Navigate(ctx context.Context, host string, in NavigateInput) (NavigateOutput, error)
	Edit(ctx context.Context, host, id string, loc qf.Location, in UpdateInput) (Page, error)
}
