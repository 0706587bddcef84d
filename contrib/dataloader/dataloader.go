// Package dataloader provides batch loading utilities over strata relations.
//
// Parents resolves the parent of many children while fetching every
// distinct parent only once, and Group joins an already fetched child set
// to its parents in memory:
//
//	posts, _ := strata.ReadAll[Post](ctx, drv)
//	authors, _ := dataloader.Parents(ctx, drv, PostAuthor, posts, 4)
//	// authors[i] is the author of posts[i], nil for a null foreign key.
//
//	users, _ := strata.ReadAll[User](ctx, drv)
//	byUser, _ := dataloader.Group(PostAuthor, users, posts)
//	// byUser[i] holds the posts of users[i].
//
// The generic helpers OrderByKeys and GroupByKey work with any
// DataLoader implementation such as github.com/graph-gophers/dataloader/v7.
package dataloader

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/strata"
	"github.com/syssam/strata/rel"
	"github.com/syssam/strata/schema"
)

// ErrNotFound is returned when an entity is not found in a batch result.
var ErrNotFound = errors.New("dataloader: entity not found")

// KeyFunc extracts a key from an entity.
type KeyFunc[K comparable, V any] func(V) K

// BatchFunc is a function that loads a batch of entities by their keys.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) ([]V, []error)

// OrderByKeys reorders entities to match the order of requested keys.
// Missing entities are represented as zero values with corresponding errors.
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// GroupByKey groups entities by a key function.
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// OrderGroupsByKeys reorders grouped entities to match the order of requested keys.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		result[i] = groups[key]
	}
	return result
}

// Parents returns the parent of each child along r, aligned with
// children. Children sharing a foreign key value trigger a single lookup.
// Entries are nil for null foreign keys and for dangling references.
// At most limit lookups run at once when limit > 0.
func Parents[C, P any, CP strata.EntityPtr[C], PP strata.EntityPtr[P]](ctx context.Context, ex strata.Executor, r rel.Relation[C, P], children []CP, limit int) ([]PP, error) {
	fk := r.ForeignKey()
	if fk == nil {
		return nil, errors.New("dataloader: zero relation")
	}
	var (
		keys     = make([]string, len(children))
		distinct = make(map[string][]any)
		order    []string
	)
	for i, c := range children {
		vs, err := values(c, fk.Columns())
		if err != nil {
			return nil, err
		}
		if vs == nil {
			continue
		}
		k := Key(vs...)
		keys[i] = k
		if _, ok := distinct[k]; !ok {
			distinct[k] = vs
			order = append(order, k)
		}
	}
	found := make([]PP, len(order))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, k := range order {
		g.Go(func() error {
			p, err := strata.Find[P, PP](ctx, ex, distinct[k]...)
			found[i] = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var loaded []PP
	for _, p := range found {
		if p != nil {
			loaded = append(loaded, p)
		}
	}
	var keyErr error
	byKey, _ := OrderByKeys(keys, loaded, func(p PP) string {
		vs, err := values(p, fk.References())
		if err != nil {
			keyErr = err
		}
		return Key(vs...)
	})
	if keyErr != nil {
		return nil, keyErr
	}
	return byKey, nil
}

// Group joins children to parents along r in memory and returns the
// children of each parent, aligned with parents. Children with a null
// foreign key or an unknown parent are left out.
func Group[C, P any, CP strata.EntityPtr[C], PP strata.EntityPtr[P]](r rel.Relation[C, P], parents []PP, children []CP) ([][]CP, error) {
	fk := r.ForeignKey()
	if fk == nil {
		return nil, errors.New("dataloader: zero relation")
	}
	keys := make([]string, len(parents))
	for i, p := range parents {
		vs, err := values(p, fk.References())
		if err != nil {
			return nil, err
		}
		keys[i] = Key(vs...)
	}
	var err error
	groups := GroupByKey(children, func(c CP) string {
		vs, verr := values(c, fk.Columns())
		if verr != nil {
			err = verr
		}
		if vs == nil {
			return ""
		}
		return Key(vs...)
	})
	if err != nil {
		return nil, err
	}
	return OrderGroupsByKeys(keys, groups), nil
}

// Key returns a comparable form of a (possibly composite) key. Pointers
// and driver.Valuer values are resolved first, so *int64(7) and int64(7)
// share a key.
func Key(vs ...any) string {
	var b strings.Builder
	for i, v := range vs {
		if i > 0 {
			b.WriteByte(0)
		}
		fmt.Fprintf(&b, "%v", v)
	}
	return b.String()
}

// values reads the given columns of e. It returns nil if any is null.
func values(e strata.Entity, cols []*schema.Column) ([]any, error) {
	vs := make([]any, len(cols))
	for i, c := range cols {
		v, err := e.Value(c.Name())
		if err != nil {
			return nil, fmt.Errorf("dataloader: %w", err)
		}
		if v = deref(v); v == nil {
			return nil, nil
		}
		vs[i] = v
	}
	return vs, nil
}

func deref(v any) any {
	if dv, ok := v.(driver.Valuer); ok {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil
		}
		x, err := dv.Value()
		if err != nil {
			return v
		}
		return x
	}
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
