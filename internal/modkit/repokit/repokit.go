// Package repokit is the seam between services and sql repos
// services bind a repo to whatever querier they hold, pool or transaction
package repokit

import (
	"context"
	"fmt"

	"hostdesk/internal/platform/store"
)

type (
	// Queryer runs sql, either on the pool or inside a transaction
	Queryer = store.RowQuerier
	// TxRunner is a pool that can also open transactions
	TxRunner = store.TxRunner
	// Row is a single result row
	Row = store.Row
	// Rows is a result set
	Rows = store.Rows
	// CommandTag is a statement result
	CommandTag = store.CommandTag
)

// Binder builds a repo over a Queryer
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a constructor to Binder
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind binds b to q and panics when q is nil
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return b.Bind(q)
}

// MustGuard panics when the store guard fails, for use during boot
func MustGuard(ctx context.Context, st interface{ Guard(context.Context) error }) {
	if err := st.Guard(ctx); err != nil {
		panic(fmt.Errorf("dependency guard failed: %w", err))
	}
}
