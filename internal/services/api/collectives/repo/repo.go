// Package repo provides postgres access for hosted collectives
package repo

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"hostdesk/internal/core/normalize"
	"hostdesk/internal/modkit/repokit"
	perr "hostdesk/internal/platform/errors"
	"hostdesk/internal/services/api/collectives/domain"

	"github.com/jackc/pgx/v5"
)

// Repo defines the repository contract for hosted collectives
type Repo interface {
	List(ctx context.Context, q domain.ListQuery) (domain.ListResult, error)
	Counts(ctx context.Context, host string) (domain.ViewCounts, error)
	Get(ctx context.Context, host, id string) (domain.Collective, error)
	Update(ctx context.Context, host, id string, u domain.Update) (domain.Collective, error)
	Insert(ctx context.Context, c domain.Collective) error
	EnsureSchema(ctx context.Context) error
}

type (
	// PG implements the Repo interface using Postgres
	PG struct{}

	// queries holds the database query methods
	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres repository binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Postgres queryer to the Repo implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const columns = `id::text, host_slug, slug, name, type, host_fee_structure, host_fee_percent,
is_frozen, is_approved, is_unhosted, balance_cents, currency, created_at`

// orderColumns whitelists the sortable columns by order field
var orderColumns = map[string]string{
	"CREATED_AT": "created_at",
	"NAME":       "name",
	"BALANCE":    "balance_cents",
}

// hostedTypes is the type set every view preset filters on
var hostedTypes = []string{string(domain.TypeCollective), string(domain.TypeFund)}

func (r *queries) List(ctx context.Context, lq domain.ListQuery) (domain.ListResult, error) {
	w := filterWhere(lq)

	col, ok := orderColumns[lq.OrderField]
	if !ok {
		col = "created_at"
	}
	dir := "asc"
	if lq.OrderDesc {
		dir = "desc"
	}

	limit := lq.Limit
	if limit <= 0 {
		limit = 20
	}
	args := append(w.args, limit, max(lq.Offset, 0))
	sql := `select ` + columns + `, count(*) over() as total
from hosted_collectives
where ` + w.sql() + `
order by ` + col + ` ` + dir + `, id ` + dir + `
limit $` + strconv.Itoa(len(args)-1) + ` offset $` + strconv.Itoa(len(args))

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return domain.ListResult{}, perr.FromPostgres(err, "list hosted collectives")
	}
	defer rows.Close()

	out := domain.ListResult{Items: []domain.Collective{}}
	for rows.Next() {
		var total int
		c, err := scanCollective(rows, &total)
		if err != nil {
			return domain.ListResult{}, perr.FromPostgres(err, "scan hosted collective")
		}
		out.Items = append(out.Items, c)
		out.Total = total
	}
	if err := rows.Err(); err != nil {
		return domain.ListResult{}, perr.FromPostgres(err, "list hosted collectives")
	}

	// past the last page the window count is gone
	if len(out.Items) == 0 && lq.Offset > 0 {
		if err := r.q.QueryRow(ctx, `select count(*) from hosted_collectives where `+w.sql(), w.args...).Scan(&out.Total); err != nil {
			return domain.ListResult{}, perr.FromPostgres(err, "count hosted collectives")
		}
	}
	return out, nil
}

func (r *queries) Counts(ctx context.Context, host string) (domain.ViewCounts, error) {
	const sql = `
select
count(*) filter (where type = any($2)),
count(*) filter (where type = any($2) and not is_frozen),
count(*) filter (where type = any($2) and is_frozen),
count(*) filter (where type = any($2) and is_unhosted)
from hosted_collectives
where host_slug = $1
`
	var c domain.ViewCounts
	if err := r.q.QueryRow(ctx, sql, host, hostedTypes).Scan(&c.All, &c.Active, &c.Frozen, &c.Unhosted); err != nil {
		return domain.ViewCounts{}, perr.FromPostgres(err, "count hosted collective views")
	}
	return c, nil
}

func (r *queries) Get(ctx context.Context, host, id string) (domain.Collective, error) {
	sql := `select ` + columns + ` from hosted_collectives where host_slug = $1 and id = $2::uuid`
	c, err := scanCollective(r.q.QueryRow(ctx, sql, host, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Collective{}, perr.NotFoundf("hosted collective %s not found", id)
	}
	if err != nil {
		return domain.Collective{}, perr.FromPostgres(err, "get hosted collective")
	}
	return c, nil
}

func (r *queries) Update(ctx context.Context, host, id string, u domain.Update) (domain.Collective, error) {
	var fee *string
	if u.HostFeeStructure != nil {
		s := string(*u.HostFeeStructure)
		fee = &s
	}
	sql := `
update hosted_collectives
set is_frozen = coalesce($3, is_frozen),
host_fee_structure = coalesce($4, host_fee_structure)
where host_slug = $1 and id = $2::uuid
returning ` + columns
	c, err := scanCollective(r.q.QueryRow(ctx, sql, host, id, u.IsFrozen, fee))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Collective{}, perr.NotFoundf("hosted collective %s not found", id)
	}
	if err != nil {
		return domain.Collective{}, perr.FromPostgresWithField(err, "update hosted collective")
	}
	return c, nil
}

func (r *queries) Insert(ctx context.Context, c domain.Collective) error {
	const sql = `
insert into hosted_collectives
(id, host_slug, slug, name, type, host_fee_structure, host_fee_percent,
is_frozen, is_approved, is_unhosted, balance_cents, currency, created_at, search_key)
values ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
on conflict (id) do nothing
`
	_, err := r.q.Exec(ctx, sql,
		c.ID, c.HostSlug, c.Slug, c.Name, string(c.Type), string(c.HostFeeStructure), c.HostFeePercent,
		c.IsFrozen, c.IsApproved, c.IsUnhosted, c.BalanceCents, c.Currency, c.CreatedAt, SearchKey(c),
	)
	return perr.FromPostgresWithField(err, "insert hosted collective")
}

var ddl = []string{
	`create table if not exists hosted_collectives (
id uuid primary key,
host_slug text not null,
slug text not null,
name text not null,
type text not null check (type in ('COLLECTIVE', 'FUND')),
host_fee_structure text not null default 'DEFAULT'
  check (host_fee_structure in ('DEFAULT', 'CUSTOM_FEE', 'MONTHLY_RETAINER')),
host_fee_percent double precision,
is_frozen boolean not null default false,
is_approved boolean not null default false,
is_unhosted boolean not null default false,
balance_cents bigint not null default 0,
currency text not null default 'USD',
created_at timestamptz not null default now(),
search_key text not null default '',
unique (host_slug, slug)
)`,
	`alter table hosted_collectives add column if not exists search_key text not null default ''`,
	// rows written before search_key existed get the lower() form until they are rewritten
	`update hosted_collectives set search_key = lower(name || ' ' || slug) where search_key = ''`,
	`create index if not exists hosted_collectives_host_created_idx on hosted_collectives (host_slug, created_at desc, id desc)`,
}

func (r *queries) EnsureSchema(ctx context.Context) error {
	for _, stmt := range ddl {
		if _, err := r.q.Exec(ctx, stmt); err != nil {
			return perr.FromPostgres(err, "ensure hosted collectives schema")
		}
	}
	return nil
}

// scanCollective reads the columns list, then any extra destinations
func scanCollective(row repokit.Row, extra ...any) (domain.Collective, error) {
	var (
		c        domain.Collective
		typ, fee string
	)
	dest := append([]any{
		&c.ID, &c.HostSlug, &c.Slug, &c.Name, &typ, &fee, &c.HostFeePercent,
		&c.IsFrozen, &c.IsApproved, &c.IsUnhosted, &c.BalanceCents, &c.Currency, &c.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Collective{}, err
	}
	c.Type = domain.CollectiveType(typ)
	c.HostFeeStructure = domain.FeeStructure(fee)
	return c, nil
}

// where accumulates conditions with positional args
// each ? in a condition is bound to the arg passed with it
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(w.args))))
}

func (w *where) sql() string { return strings.Join(w.conds, "\nand ") }

func filterWhere(lq domain.ListQuery) *where {
	w := &where{}
	w.add("host_slug = ?", lq.Host)
	for _, t := range lq.Terms {
		w.add(`search_key like ? escape '\'`, "%"+likeEscaper.Replace(t)+"%")
	}
	if lq.FeeStructure != nil {
		w.add("host_fee_structure = ?", string(*lq.FeeStructure))
	}
	if len(lq.Types) > 0 {
		types := make([]string, len(lq.Types))
		for i, t := range lq.Types {
			types[i] = string(t)
		}
		w.add("type = any(?)", types)
	}
	if lq.IsApproved != nil {
		w.add("is_approved = ?", *lq.IsApproved)
	}
	if lq.IsFrozen != nil {
		w.add("is_frozen = ?", *lq.IsFrozen)
	}
	if lq.IsUnhosted != nil {
		w.add("is_unhosted = ?", *lq.IsUnhosted)
	}
	return w
}

var searchFold = normalize.New()

// SearchKey is the folded name and slug that search terms match against
// terms go through the same normalizer, so "Café" is found by "cafe" and "CAFÉ"
func SearchKey(c domain.Collective) string {
	return searchFold.Normalize(c.Name + " " + c.Slug)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
