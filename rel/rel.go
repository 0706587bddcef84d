// Package rel navigates foreign keys between entity types.
//
// A Relation ties a foreign key of the child type C to the parent type
// P. It can only be made from a *schema.ForeignKey, which exists only
// for tables declaring one, and is checked against both entity types
// when it is created:
//
//	var PostAuthor = rel.MustRelation[Post, User](
//		PostTable.ForeignKeysTo(UserTable)[0],
//	)
//
//	author, err := rel.Parent(ctx, drv, PostAuthor, post)
//	posts, err := rel.Children(ctx, drv, PostAuthor, author)
package rel

import (
	"context"
	"database/sql/driver"
	"fmt"
	"reflect"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/strata"
	"github.com/syssam/strata/query"
	"github.com/syssam/strata/schema"
)

// Relation is a foreign key from entity type C to entity type P.
type Relation[C, P any] struct {
	fk *schema.ForeignKey
}

// NewRelation returns the relation carried by fk, which must be a
// foreign key of the table of C referencing the table of P.
func NewRelation[C any, P any, CP strata.EntityPtr[C], PP strata.EntityPtr[P]](fk *schema.ForeignKey) (Relation[C, P], error) {
	if fk == nil {
		return Relation[C, P]{}, fmt.Errorf("rel: nil foreign key")
	}
	child, parent := CP(new(C)).Schema(), PP(new(P)).Schema()
	switch {
	case fk.Table() != child:
		return Relation[C, P]{}, fmt.Errorf("rel: foreign key %s is not declared on %s", fk, child)
	case fk.Target() != parent:
		return Relation[C, P]{}, fmt.Errorf("rel: foreign key %s does not reference %s", fk, parent)
	}
	return Relation[C, P]{fk: fk}, nil
}

// MustRelation is like NewRelation but panics on error. Use it for
// relations declared at package initialization.
func MustRelation[C any, P any, CP strata.EntityPtr[C], PP strata.EntityPtr[P]](fk *schema.ForeignKey) Relation[C, P] {
	r, err := NewRelation[C, P, CP, PP](fk)
	if err != nil {
		panic(err)
	}
	return r
}

// ForeignKey returns the foreign key of the relation.
func (r Relation[C, P]) ForeignKey() *schema.ForeignKey { return r.fk }

// String implements fmt.Stringer.
func (r Relation[C, P]) String() string {
	if r.fk == nil {
		return "<invalid relation>"
	}
	return r.fk.String()
}

func (r Relation[C, P]) check() error {
	if r.fk == nil {
		return fmt.Errorf("rel: zero Relation used")
	}
	return nil
}

// Parent returns the entity referenced by child, or nil if the foreign
// key references no row.
func Parent[C, P any, CP strata.EntityPtr[C], PP strata.EntityPtr[P]](ctx context.Context, ex strata.Executor, r Relation[C, P], child CP) (PP, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	q := query.Dialect(ex.Dialect()).SelectParent(r.fk)
	key, err := q.Args(child)
	if err != nil {
		return nil, err
	}
	if nullKey(key) {
		return nil, nil
	}
	return strata.FetchOne[P, PP](ctx, ex, q, strata.HookInput{Key: key})
}

// Children returns the entities referencing parent.
func Children[C, P any, CP strata.EntityPtr[C], PP strata.EntityPtr[P]](ctx context.Context, ex strata.Executor, r Relation[C, P], parent PP) ([]CP, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	q := query.Dialect(ex.Dialect()).SelectChildren(r.fk)
	key, err := q.Args(parent)
	if err != nil {
		return nil, err
	}
	return strata.Fetch[C, CP](ctx, ex, q, strata.HookInput{Key: key})
}

// ChildrenByKey returns the entities referencing the parent with the
// given primary key.
func ChildrenByKey[C, P any, CP strata.EntityPtr[C]](ctx context.Context, ex strata.Executor, r Relation[C, P], key ...any) ([]CP, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	q := query.Dialect(ex.Dialect()).SelectChildren(r.fk)
	return strata.Fetch[C, CP](ctx, ex, q, strata.HookInput{Key: key})
}

// DeleteChildren deletes the entities referencing parent and returns
// the number of rows deleted.
func DeleteChildren[C, P any, CP strata.EntityPtr[C], PP strata.EntityPtr[P]](ctx context.Context, ex strata.Executor, r Relation[C, P], parent PP) (int64, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	q := query.Dialect(ex.Dialect()).DeleteByForeignKey(r.fk)
	key, err := q.Args(parent)
	if err != nil {
		return 0, err
	}
	return strata.Exec(ctx, ex, q, CP(new(C)), strata.HookInput{Key: key})
}

// DeleteByForeignKey deletes the entities whose foreign key holds the
// given parent key.
func DeleteByForeignKey[C, P any, CP strata.EntityPtr[C]](ctx context.Context, ex strata.Executor, r Relation[C, P], key ...any) (int64, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	q := query.Dialect(ex.Dialect()).DeleteByForeignKey(r.fk)
	return strata.Exec(ctx, ex, q, CP(new(C)), strata.HookInput{Key: key})
}

// ChildrenOf returns the children of each parent, aligned with parents.
// Up to limit queries run concurrently, limit <= 0 means no limit. The
// executor must allow concurrent use, as a dialect.Driver does.
func ChildrenOf[C, P any, CP strata.EntityPtr[C], PP strata.EntityPtr[P]](ctx context.Context, ex strata.Executor, r Relation[C, P], parents []PP, limit int) ([][]CP, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	out := make([][]CP, len(parents))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, p := range parents {
		g.Go(func() error {
			cs, err := Children[C, P, CP, PP](ctx, ex, r, p)
			if err != nil {
				return err
			}
			out[i] = cs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// nullKey reports if an optional foreign key is unset.
func nullKey(key []any) bool {
	for _, v := range key {
		if v == nil {
			return true
		}
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return true
		}
		if v, ok := v.(driver.Valuer); ok {
			if dv, err := v.Value(); err == nil && dv == nil {
				return true
			}
		}
	}
	return false
}
