package strata

import (
	"context"
)

// Find returns the entity with the given primary key, or nil if there
// is none. Key values are given in primary key column order.
func Find[T any, PT EntityPtr[T]](ctx context.Context, ex Executor, key ...any) (PT, error) {
	sample := newEntity[T, PT]()
	q := generator(ex).Select(sample.Schema())
	return fetchOne[T, PT](ctx, newOp(ex, q, sample, HookInput{Key: key}))
}

// Read is like Find but returns a *NotFoundError if there is no entity
// with the given key.
func Read[T any, PT EntityPtr[T]](ctx context.Context, ex Executor, key ...any) (PT, error) {
	e, err := Find[T, PT](ctx, ex, key...)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, NewNotFoundError(entityName(e), key...)
	}
	return e, nil
}

// ReadAll returns all entities of the table. An empty table yields an
// empty result, not an error.
func ReadAll[T any, PT EntityPtr[T]](ctx context.Context, ex Executor) ([]PT, error) {
	sample := newEntity[T, PT]()
	q := generator(ex).SelectAll(sample.Schema())
	return fetch[T, PT](ctx, newOp(ex, q, sample, HookInput{}))
}

// Reload overwrites e with the row holding its primary key.
func Reload(ctx context.Context, ex Executor, e Entity) error {
	q := generator(ex).Select(e.Schema())
	o := newOp(ex, q, e, HookInput{Entity: e})
	if err := o.bind(ctx); err != nil {
		return err
	}
	n, err := o.scan(ctx, q.Columns(), func() (Entity, error) { return e, nil })
	if _, err := o.done(ctx, n, err); err != nil {
		return err
	}
	if n == 0 {
		return NewNotFoundError(o.entity, o.in.Args...)
	}
	return nil
}
