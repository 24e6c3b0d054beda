// Package http provides http transport for hosted collectives
package http

import (
	stdhttp "net/http"

	qf "hostdesk/internal/core/queryfilter"
	"hostdesk/internal/modkit/httpkit"
	"hostdesk/internal/services/api/collectives/domain"
	svc "hostdesk/internal/services/api/collectives/service"
)

// Register mounts hosted collectives endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/{slug}/"+svc.Section, h.page)
	httpkit.PostValid[domain.NavigateInput](r, "/{slug}/"+svc.Section+"/navigate", h.navigate)
	httpkit.Get(r, "/{slug}/"+svc.Section+"/{id}", h.page)
	httpkit.PatchJSON[domain.UpdateInput](r, "/{slug}/"+svc.Section+"/{id}", h.edit)
}

type handlers struct{ svc svc.Service }

// location maps the request onto the dashboard location it stands for
func (h *handlers) location(r *stdhttp.Request) qf.Location {
	loc := qf.Location{Path: h.svc.Base(httpkit.Param(r, "slug")), Query: r.URL.Query()}
	if id := httpkit.Param(r, "id"); id != "" {
		loc.Path += "/" + id
	}
	return loc
}

// @Summary Hosted collectives section
// @Description Filters, views, list and drawer state for the query string; a failed list fetch is reported in list_error
// @Tags Collectives
// @Produce json
// @Param slug path string true "Host slug"
// @Param searchTerm query string false "Search"
// @Param orderBy query string false "Order token" Enums(CREATED_AT,DESC, CREATED_AT,ASC, NAME,ASC, BALANCE,DESC)
// @Param hostFeesStructure query string false "Fee structure" Enums(DEFAULT, CUSTOM_FEE, MONTHLY_RETAINER)
// @Param type query []string false "Types" collectionFormat(multi)
// @Param isApproved query bool false "Approved"
// @Param isFrozen query bool false "Frozen"
// @Param isUnhosted query bool false "Unhosted"
// @Param view query string false "View preset applied on load"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} domain.Page
// @Router /dashboard/{slug}/hosted-collectives [get]
func (h *handlers) page(r *stdhttp.Request) (any, error) {
	return h.svc.Page(r.Context(), httpkit.Param(r, "slug"), h.location(r))
}

// @Summary Run a filter bar or drawer command
// @Description Returns the single navigation the command produced and the page it lands on
// @Tags Collectives
// @Accept json
// @Produce json
// @Param slug path string true "Host slug"
// @Param payload body domain.NavigateInput true "Command"
// @Success 200 {object} domain.NavigateOutput
// @Router /dashboard/{slug}/hosted-collectives/navigate [post]
func (h *handlers) navigate(r *stdhttp.Request, in domain.NavigateInput) (any, error) {
	return h.svc.Navigate(r.Context(), httpkit.Param(r, "slug"), in)
}

// @Summary Edit a hosted collective from the drawer
// @Tags Collectives
// @Accept json
// @Produce json
// @Param slug path string true "Host slug"
// @Param id path string true "Collective id"
// @Param payload body domain.UpdateInput true "Changes"
// @Success 200 {object} domain.Page
// @Router /dashboard/{slug}/hosted-collectives/{id} [patch]
func (h *handlers) edit(r *stdhttp.Request, in domain.UpdateInput) (any, error) {
	return h.svc.Edit(r.Context(), httpkit.Param(r, "slug"), httpkit.Param(r, "id"), h.location(r), in)
}
