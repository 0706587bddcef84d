package strata

import (
	"context"
	"fmt"

	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/schema"
)

// Create inserts e and returns the number of rows inserted. Values
// generated by the database for auto-increment keys are written back
// into e.
func Create(ctx context.Context, ex Executor, e Entity) (int64, error) {
	q := generator(ex).Insert(e.Schema())
	o := newOp(ex, q, e, HookInput{Entity: e})
	if err := o.bind(ctx); err != nil {
		return 0, err
	}
	if ret := q.Returning(); len(ret) > 0 {
		n, err := o.scan(ctx, ret, func() (Entity, error) { return e, nil })
		if err == nil && n != 1 {
			err = NewNotSingularError(o.entity, int(n))
		}
		return o.done(ctx, n, err)
	}
	res, n, err := o.exec(ctx)
	if err == nil {
		err = lastInsertID(o.entity, e, res)
	}
	return o.done(ctx, n, err)
}

// lastInsertID stores the id reported by the driver into the
// auto-increment key of e, if it has one.
func lastInsertID(name string, e Entity, res sql.Result) error {
	var key *schema.Column
	for _, c := range e.Schema().PrimaryKey() {
		if c.AutoIncrement() {
			key = c
		}
	}
	if key == nil {
		return nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return &DecodeError{Entity: name, Column: key.Name(), Err: err}
	}
	p, err := e.Pointer(key.Name())
	if err != nil {
		return &DecodeError{Entity: name, Column: key.Name(), Err: err}
	}
	if err := setInt(p, id); err != nil {
		return &DecodeError{Entity: name, Column: key.Name(), Err: err}
	}
	return nil
}

func setInt(p any, id int64) error {
	switch p := p.(type) {
	case *int64:
		*p = id
	case *int:
		*p = int(id)
	case *int32:
		*p = int32(id)
	case *int16:
		*p = int16(id)
	case *uint64:
		*p = uint64(id)
	case *uint:
		*p = uint(id)
	case *uint32:
		*p = uint32(id)
	default:
		return fmt.Errorf("unexpected id destination %T", p)
	}
	return nil
}
