package strata

import (
	"context"

	"github.com/syssam/strata/query"
)

// Update overwrites the row holding the primary key of e with its
// values, and returns the number of rows affected.
func Update(ctx context.Context, ex Executor, e Entity) (int64, error) {
	return write(ctx, ex, generator(ex).Update(e.Schema()), e)
}

// Upsert inserts e, or overwrites the row with the same primary key.
func Upsert(ctx context.Context, ex Executor, e Entity) (int64, error) {
	return write(ctx, ex, generator(ex).Upsert(e.Schema()), e)
}

// Delete deletes the row holding the primary key of e.
func Delete(ctx context.Context, ex Executor, e Entity) (int64, error) {
	return write(ctx, ex, generator(ex).Delete(e.Schema()), e)
}

// DeleteByKey deletes the entity of type T with the given primary key.
func DeleteByKey[T any, PT EntityPtr[T]](ctx context.Context, ex Executor, key ...any) (int64, error) {
	sample := newEntity[T, PT]()
	q := generator(ex).Delete(sample.Schema())
	return run(ctx, newOp(ex, q, sample, HookInput{Key: key}))
}

func write(ctx context.Context, ex Executor, q *query.Query, e Entity) (int64, error) {
	return run(ctx, newOp(ex, q, e, HookInput{Entity: e}))
}

// run binds and executes a write statement.
func run(ctx context.Context, o *op) (int64, error) {
	if err := o.bind(ctx); err != nil {
		return 0, err
	}
	_, n, err := o.exec(ctx)
	return o.done(ctx, n, err)
}
