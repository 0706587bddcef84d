package strata

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/syssam/strata/query"
	"github.com/syssam/strata/schema"
)

// Affected returns the stored rows that q applies to when run with args,
// decoded into new entities of the type of sample. An insert applies to
// no stored row and an upsert to the row holding its key. Hooks are not
// run. Run it in the transaction of q to read a consistent state.
func Affected(ctx context.Context, ex Executor, q *query.Query, args []any, sample Entity) ([]Entity, error) {
	typ := reflect.TypeOf(sample)
	if typ == nil || typ.Kind() != reflect.Pointer {
		return nil, fmt.Errorf("strata: affected rows of %s: entity must be a pointer", entityName(sample))
	}
	if q.Table() != sample.Schema() {
		return nil, fmt.Errorf("strata: %s statement on %s cannot serve %s", q.Op(), q.Table(), entityName(sample))
	}
	s := q.Statement()
	if len(args) != len(s.Bindings) {
		return nil, &query.BindError{Op: s.Op, Table: s.Table.Name(), Want: len(s.Bindings), Got: len(args)}
	}
	var (
		cols []*schema.Column
		vals []any
	)
	switch s.Op {
	case query.OpInsert:
		return nil, nil
	case query.OpUpsert:
		cols = s.Conflict
		for _, c := range cols {
			vals = append(vals, args[slices.Index(s.Bindings, c)])
		}
	default:
		// WHERE placeholders come last.
		cols = s.Where
		vals = args[len(args)-len(cols):]
	}
	sel := generator(ex).SelectBy(s.Table, cols...)
	o := &op{ex: ex, q: sel, entity: entityName(sample), in: HookInput{Args: vals}}
	var out []Entity
	_, err := o.scan(ctx, sel.Columns(), func() (Entity, error) {
		e := reflect.New(typ.Elem()).Interface().(Entity)
		out = append(out, e)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
