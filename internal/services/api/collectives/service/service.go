// Package service contains hosted collectives workflows
package service

import (
	"context"
	"maps"
	"net/url"
	"path"
	"strings"
	"time"

	"hostdesk/internal/core/normalize"
	qf "hostdesk/internal/core/queryfilter"
	"hostdesk/internal/modkit/repokit"
	perr "hostdesk/internal/platform/errors"
	"hostdesk/internal/platform/logger"
	"hostdesk/internal/services/api/collectives/domain"
	"hostdesk/internal/services/api/collectives/repo"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Section is the dashboard section name under a host
const Section = "hosted-collectives"

// Service defines the service contract for hosted collectives
type Service interface{ domain.ServicePort }

// Options control service behavior
type Options struct {
	PageSize       int
	MaxPageSize    int
	DashboardBase  string
	SearchMaxRunes int

	// FetchTimeout bounds the list, metadata and detail fetches, 0 means none
	FetchTimeout time.Duration
}

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner

	schema    *qf.Schema
	views     qf.Views
	dashboard string
	timeout   time.Duration
}

// New creates a new hosted collectives service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], opt Options) *Svc {
	if db == nil {
		panic("collectives.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("collectives.Service requires a non nil Repo binder")
	}
	if opt.PageSize <= 0 {
		opt.PageSize = 20
	}
	if opt.MaxPageSize < opt.PageSize {
		opt.MaxPageSize = max(100, opt.PageSize)
	}
	if opt.SearchMaxRunes <= 0 {
		opt.SearchMaxRunes = 100
	}
	if opt.DashboardBase == "" {
		opt.DashboardBase = "/dashboard"
	}

	schema := newSchema(normalize.New(normalize.WithMaxRunes(opt.SearchMaxRunes)), opt.PageSize, opt.MaxPageSize)
	return &Svc{
		Repo:      binder.Bind(db),
		binder:    binder,
		db:        db,
		schema:    schema,
		views:     newViews(schema),
		dashboard: "/" + strings.Trim(opt.DashboardBase, "/"),
		timeout:   opt.FetchTimeout,
	}
}

// Base returns the dashboard path of the host's section
func (s *Svc) Base(host string) string { return path.Join(s.dashboard, host, Section) }

// Page renders the section for loc
func (s *Svc) Page(ctx context.Context, host string, loc qf.Location) (domain.Page, error) {
	if err := s.checkLocation(host, loc); err != nil {
		return domain.Page{}, err
	}
	l := s.begin(ctx, host, loc)
	l.fetch(ctx)
	return l.render(), nil
}

// Navigate runs one widget command and renders where it lands
// a failed command produces no navigation
func (s *Svc) Navigate(ctx context.Context, host string, in domain.NavigateInput) (domain.NavigateOutput, error) {
	loc, err := qf.ParseLocation(in.Location)
	if err != nil {
		return domain.NavigateOutput{}, perr.WithField(perr.InvalidArgf("invalid location: %v", err), "location")
	}
	if err := s.checkLocation(host, loc); err != nil {
		return domain.NavigateOutput{}, err
	}

	nav := qf.NewHistory(loc)
	ctl := qf.NewController(s.schema, s.views, nav)
	router := qf.NewSelectionRouter(nav, s.Base(host))

	switch in.Op {
	case domain.OpSet:
		err = ctl.SetRaw(url.Values(in.Values))
	case domain.OpReset:
		var overrides qf.Values
		if overrides, err = s.schema.ParseStrict(url.Values(in.Values)); err == nil {
			err = ctl.Reset(overrides)
		}
	case domain.OpView:
		err = ctl.ApplyView(in.View)
	case domain.OpPage:
		st := ctl.State()
		limit, offset := st.Limit, 0
		if in.Limit != nil {
			limit = *in.Limit
		}
		if in.Offset != nil {
			offset = *in.Offset
		}
		ctl.Paginate(limit, offset)
	case domain.OpSelect:
		// an empty id would route to base/, which reads back as closed
		if strings.TrimSpace(in.ID) == "" {
			err = perr.WithField(perr.Newf(perr.ErrorCodeValidation, "id is required to select"), "id")
			break
		}
		router.HandleDrawer(qf.SelectID(in.ID))
	case domain.OpClose:
		router.HandleDrawer(qf.None())
	default:
		err = perr.WithField(perr.Newf(perr.ErrorCodeValidation, "unknown op %q", in.Op), "op")
	}
	if err != nil {
		return domain.NavigateOutput{}, err
	}

	page, err := s.Page(ctx, host, nav.Location())
	if err != nil {
		return domain.NavigateOutput{}, err
	}
	return domain.NavigateOutput{Navigations: nav.Navigations(), Page: page}, nil
}

// Edit updates the selected collective then refetches metadata and the list
// the drawer and the filters stay where they are
func (s *Svc) Edit(ctx context.Context, host, id string, loc qf.Location, in domain.UpdateInput) (domain.Page, error) {
	if uuid.Validate(id) != nil {
		return domain.Page{}, perr.NotFoundf("hosted collective %s not found", id)
	}
	loc.Path = s.Base(host) + "/" + id
	if err := s.checkLocation(host, loc); err != nil {
		return domain.Page{}, err
	}

	c, err := s.Repo.Update(ctx, host, id, in.Update())
	if err != nil {
		return domain.Page{}, err
	}

	l := s.begin(ctx, host, loc)
	l.router.Resolve(c)
	l.router.OnEdit(l.fetchCounts, l.fetchList)

	fctx, cancel := s.bound(ctx)
	defer cancel()
	if err := l.router.Edited(fctx); err != nil {
		logger.C(ctx).Warn().Err(err).Str("host", host).Str("id", id).Msg("collectives: refetch after edit failed")
	}
	return l.render(), nil
}

// checkLocation rejects locations outside the host's section
func (s *Svc) checkLocation(host string, loc qf.Location) error {
	base := s.Base(host)
	p := strings.TrimRight(loc.Path, "/")
	if p == base || strings.HasPrefix(loc.Path, base+"/") {
		return nil
	}
	return perr.WithField(perr.InvalidArgf("location %q is outside %s", loc.Path, base), "location")
}

func (s *Svc) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

// pageLoad is the per request state of one rendered page
type pageLoad struct {
	svc    *Svc
	host   string
	ctl    *qf.Controller
	router *qf.SelectionRouter

	list      domain.ListResult
	listErr   error
	counts    *domain.ViewCounts
	missing   bool
	detailErr error
}

func (s *Svc) begin(ctx context.Context, host string, loc qf.Location) *pageLoad {
	nav := qf.NewHistory(loc)
	l := &pageLoad{
		svc:    s,
		host:   host,
		ctl:    qf.NewController(s.schema, s.views, nav),
		router: qf.NewSelectionRouter(nav, s.Base(host)),
	}
	if issues := l.ctl.Issues(); len(issues) > 0 {
		log := logger.C(ctx)
		for _, is := range issues {
			log.Debug().Str("key", is.Key).Strs("raw", is.Raw).Str("reason", is.Reason).Msg("collectives: dropped url value")
		}
	}
	return l
}

// fetch runs the list, metadata and detail fetches side by side
// each branch keeps its own error so one failure does not hide the others
func (l *pageLoad) fetch(ctx context.Context) {
	ctx, cancel := l.svc.bound(ctx)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error { return l.fetchList(ctx) })
	g.Go(func() error { return l.fetchCounts(ctx) })
	g.Go(func() error { return l.fetchDetail(ctx) })
	if err := g.Wait(); err != nil {
		logger.C(ctx).Debug().Err(err).Str("host", l.host).Msg("collectives: page fetch degraded")
	}
}

func (l *pageLoad) fetchList(ctx context.Context) error {
	res, err := l.svc.Repo.List(ctx, listQuery(l.host, l.ctl.Variables()))
	l.list, l.listErr = res, err
	return err
}

func (l *pageLoad) fetchCounts(ctx context.Context) error {
	c, err := l.svc.Repo.Counts(ctx, l.host)
	if err != nil {
		// stale counts stay on screen
		return err
	}
	l.counts = &c
	return nil
}

func (l *pageLoad) fetchDetail(ctx context.Context) error {
	sel := l.router.Selection()
	id, ok := sel.ID()
	if !ok || sel.Kind() == qf.SelLoaded {
		return nil
	}
	if uuid.Validate(id) != nil {
		l.missing = true
		return nil
	}
	c, err := l.svc.Repo.Get(ctx, l.host, id)
	switch {
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		l.missing = true
		return nil
	case err != nil:
		l.detailErr = err
		return err
	}
	l.router.Resolve(c)
	return nil
}

func (l *pageLoad) render() domain.Page {
	s := l.svc.schema
	st := l.ctl.State()
	loc := l.ctl.Location()

	page := domain.Page{
		Location: loc,
		Filters: domain.Filters{
			Values:     st.Values,
			Query:      s.Encode(st.Values, st.Limit, st.Offset).Encode(),
			HasFilters: l.ctl.HasCustomFilters(),
			Fields:     s.Describe(),
			Limit:      st.Limit,
			Offset:     st.Offset,
		},
		Variables:  l.ctl.Variables(),
		Chips:      s.Chips(st.Values),
		Items:      l.list.Items,
		TotalCount: l.list.Total,
		Selection:  l.selection(),
	}
	if st.View != nil {
		page.Filters.ActiveView = st.View.ID
	}
	if page.Chips == nil {
		page.Chips = []qf.Chip{}
	}
	if page.Items == nil {
		page.Items = []domain.Collective{}
	}

	views := l.ctl.Views()
	if l.counts != nil {
		views = views.WithCounts(l.counts.ByView())
	}
	page.Views = make([]domain.ViewTab, 0, len(views))
	for _, v := range views {
		page.Views = append(page.Views, domain.ViewTab{
			ID:     v.ID,
			Label:  v.Label,
			Count:  v.Count,
			Active: v.ID == page.Filters.ActiveView,
		})
	}

	if ord, ok := s.Order(); ok {
		page.Order = ord.Display(st.Values[ord.Name()])
	}

	if l.listErr != nil {
		w := perr.WireFrom(l.listErr)
		page.ListError = &w
	} else if len(page.Items) == 0 {
		page.Empty = domain.EmptyNeutral
		if page.Filters.HasFilters {
			page.Empty = domain.EmptyFiltered
		}
	}

	page.Pagination = l.pagination(loc, st)
	return page
}

func (l *pageLoad) pagination(loc qf.Location, st qf.State) domain.Pagination {
	p := domain.Pagination{
		Limit:  st.Limit,
		Offset: st.Offset,
		Page:   st.Offset/st.Limit + 1,
	}
	total := l.list.Total
	if total > 0 {
		p.TotalPages = (total + st.Limit - 1) / st.Limit
	}
	if st.Offset > 0 {
		p.Prev = l.pageLocation(loc, st, max(st.Offset-st.Limit, 0))
	}
	if st.Offset+st.Limit < total {
		p.Next = l.pageLocation(loc, st, st.Offset+st.Limit)
	}
	return p
}

// pageLocation is loc moved to offset, unknown keys kept
func (l *pageLoad) pageLocation(loc qf.Location, st qf.State, offset int) string {
	s := l.svc.schema
	q := url.Values{}
	for k, vs := range loc.Query {
		if k == qf.KeyView || s.Owns(k) {
			continue
		}
		q[k] = vs
	}
	maps.Copy(q, s.Encode(st.Values, st.Limit, offset))
	return qf.Location{Path: loc.Path, Query: q}.String()
}

func (l *pageLoad) selection() domain.SelectionView {
	sel := l.router.Selection()
	id, ok := sel.ID()
	if !ok {
		return domain.SelectionView{State: domain.SelectionNone}
	}
	out := domain.SelectionView{ID: &id}
	switch {
	case sel.Kind() == qf.SelLoaded:
		rec, _ := sel.Record()
		if c, ok := rec.(domain.Collective); ok {
			out.Record = &c
		}
		out.State = domain.SelectionLoaded
	case l.missing:
		out.State = domain.SelectionNotFound
	default:
		out.State = domain.SelectionLoading
	}
	return out
}
