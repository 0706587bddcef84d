package strata

import (
	"context"
	"fmt"

	"github.com/syssam/strata/schema"
)

// FindBy returns the entity whose unique column u holds v, or nil if
// there is none. Handles are only obtainable for unique columns, see
// schema.Table.Unique.
func FindBy[T any, PT EntityPtr[T]](ctx context.Context, ex Executor, u schema.Unique, v any) (PT, error) {
	sample := newEntity[T, PT]()
	if err := owns(sample, u); err != nil {
		return nil, err
	}
	q := generator(ex).SelectUnique(u)
	return fetchOne[T, PT](ctx, newOp(ex, q, sample, HookInput{Key: []any{v}}))
}

// ReadBy is like FindBy but returns a *NotFoundError if there is no
// matching entity.
func ReadBy[T any, PT EntityPtr[T]](ctx context.Context, ex Executor, u schema.Unique, v any) (PT, error) {
	e, err := FindBy[T, PT](ctx, ex, u, v)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, NewNotFoundError(entityName(e), v)
	}
	return e, nil
}

// DeleteBy deletes the entity whose unique column u holds v.
func DeleteBy[T any, PT EntityPtr[T]](ctx context.Context, ex Executor, u schema.Unique, v any) (int64, error) {
	sample := newEntity[T, PT]()
	if err := owns(sample, u); err != nil {
		return 0, err
	}
	q := generator(ex).DeleteUnique(u)
	return run(ctx, newOp(ex, q, sample, HookInput{Key: []any{v}}))
}

func owns(e Entity, u schema.Unique) error {
	switch {
	case !u.Valid():
		return fmt.Errorf("strata: invalid unique column handle for %s", entityName(e))
	case u.Column().Table() != e.Schema():
		return fmt.Errorf("strata: column %s does not belong to %s", u.Column(), entityName(e))
	}
	return nil
}
