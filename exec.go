package strata

import (
	"context"
	"fmt"

	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/query"
	"github.com/syssam/strata/schema"
)

// op is a single statement execution with its hooks.
type op struct {
	ex     Executor
	q      *query.Query
	hooks  []Hook
	entity string
	in     HookInput
}

func newOp(ex Executor, q *query.Query, sample any, in HookInput) *op {
	in.Executor = ex
	if e, ok := sample.(Entity); ok {
		in.Sample = e
	}
	return &op{ex: ex, q: q, hooks: hooksOf(sample), entity: entityName(sample), in: in}
}

func (o *op) queryError(err error) error {
	return NewQueryError(o.entity, o.q.Table().QualifiedName(), o.q.Op().String(), err)
}

// bind runs the PreBind hooks, then reads the bind values from the
// entity of the input, or from its key when there is no entity.
func (o *op) bind(ctx context.Context) error {
	if err := runHooks(ctx, o.hooks, PreBind, o.q, &o.in); err != nil {
		return err
	}
	var err error
	if o.in.Entity != nil && o.in.Key == nil {
		o.in.Args, err = o.q.Args(o.in.Entity)
	} else {
		o.in.Args, err = o.q.Bind(o.in.Key...)
	}
	if err != nil {
		return err
	}
	return runHooks(ctx, o.hooks, PreExec, o.q, &o.in)
}

// done runs the PostExec hooks with the outcome of the execution.
func (o *op) done(ctx context.Context, rows int64, err error) (int64, error) {
	o.in.Rows, o.in.Err = rows, err
	if herr := runHooks(ctx, o.hooks, PostExec, o.q, &o.in); herr != nil && err == nil {
		return rows, herr
	}
	return rows, err
}

// exec runs a write statement and returns the number of affected rows.
func (o *op) exec(ctx context.Context) (sql.Result, int64, error) {
	var res sql.Result
	if err := o.ex.Exec(ctx, o.q.SQL(), o.in.Args, &res); err != nil {
		return nil, 0, o.queryError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, 0, o.queryError(err)
	}
	return res, n, nil
}

// scan runs a select and calls next for each row; next returns the
// scan destinations of the row.
func (o *op) scan(ctx context.Context, cols []*schema.Column, next func() (Entity, error)) (int64, error) {
	rows := &sql.Rows{}
	if err := o.ex.Query(ctx, o.q.SQL(), o.in.Args, rows); err != nil {
		return 0, o.queryError(err)
	}
	defer rows.Close()
	var n int64
	for rows.Next() {
		e, err := next()
		if err != nil {
			return n, err
		}
		dest, err := pointers(o.entity, e, cols)
		if err != nil {
			return n, err
		}
		if err := rows.Scan(dest...); err != nil {
			return n, &DecodeError{Entity: o.entity, Err: err}
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, o.queryError(err)
	}
	return n, nil
}

func pointers(name string, e Entity, cols []*schema.Column) ([]any, error) {
	dest := make([]any, len(cols))
	for i, c := range cols {
		p, err := e.Pointer(c.Name())
		if err != nil {
			return nil, &DecodeError{Entity: name, Column: c.Name(), Err: err}
		}
		dest[i] = p
	}
	return dest, nil
}

// fetch runs a select into newly allocated entities.
func fetch[T any, PT EntityPtr[T]](ctx context.Context, o *op) ([]PT, error) {
	if err := o.bind(ctx); err != nil {
		return nil, err
	}
	var out []PT
	n, err := o.scan(ctx, o.q.Columns(), func() (Entity, error) {
		e := newEntity[T, PT]()
		out = append(out, e)
		return e, nil
	})
	if _, err := o.done(ctx, n, err); err != nil {
		return nil, err
	}
	return out, nil
}

// fetchOne is like fetch but expects at most one row. An absent row is
// reported as nil.
func fetchOne[T any, PT EntityPtr[T]](ctx context.Context, o *op) (PT, error) {
	es, err := fetch[T, PT](ctx, o)
	switch {
	case err != nil:
		return nil, err
	case len(es) == 0:
		return nil, nil
	case len(es) > 1:
		return nil, NewNotSingularError(o.entity, len(es))
	}
	return es[0], nil
}

// Fetch runs q, a select over the table of T, and decodes every row.
// The bind values are taken from in.Key. It serves callers that build
// their own statements, such as relation navigation.
func Fetch[T any, PT EntityPtr[T]](ctx context.Context, ex Executor, q *query.Query, in HookInput) ([]PT, error) {
	sample := newEntity[T, PT]()
	if err := checkQuery(sample, q, query.OpSelect); err != nil {
		return nil, err
	}
	return fetch[T, PT](ctx, newOp(ex, q, sample, in))
}

// FetchOne is like Fetch but expects at most one row, and returns nil
// when there is none.
func FetchOne[T any, PT EntityPtr[T]](ctx context.Context, ex Executor, q *query.Query, in HookInput) (PT, error) {
	sample := newEntity[T, PT]()
	if err := checkQuery(sample, q, query.OpSelect); err != nil {
		return nil, err
	}
	return fetchOne[T, PT](ctx, newOp(ex, q, sample, in))
}

// Exec runs q, a write statement over the table of sample, and returns
// the number of affected rows.
func Exec(ctx context.Context, ex Executor, q *query.Query, sample Entity, in HookInput) (int64, error) {
	if err := checkQuery(sample, q, 0); err != nil {
		return 0, err
	}
	return run(ctx, newOp(ex, q, sample, in))
}

func checkQuery(e Entity, q *query.Query, op query.Op) error {
	switch {
	case q.Table() != e.Schema():
		return fmt.Errorf("strata: %s statement on %s cannot serve %s", q.Op(), q.Table(), entityName(e))
	case op != 0 && q.Op() != op:
		return fmt.Errorf("strata: expect a %s statement, got %s", op, q.Op())
	case op == 0 && q.Op() == query.OpSelect:
		return fmt.Errorf("strata: expect a write statement, got %s", q.Op())
	}
	return nil
}
