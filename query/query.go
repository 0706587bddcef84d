package query

import (
	"fmt"
	"slices"

	"github.com/syssam/strata/schema"
)

// Op is the kind of statement a query performs.
type Op uint8

// Operations.
const (
	OpSelect Op = iota + 1
	OpInsert
	OpUpdate
	OpUpsert
	OpDelete
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpSelect:
		return "select"
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpUpsert:
		return "upsert"
	case OpDelete:
		return "delete"
	}
	return fmt.Sprintf("Op(%d)", o)
}

// Cardinality is the number of rows a query is expected to return.
type Cardinality uint8

// Cardinalities.
const (
	None Cardinality = iota
	One
	Many
)

// String returns the cardinality name.
func (c Cardinality) String() string {
	switch c {
	case One:
		return "one"
	case Many:
		return "many"
	}
	return "none"
}

// ValueSource supplies the value of a column, typically an entity.
type ValueSource interface {
	Value(column string) (any, error)
}

// Query is a rendered statement together with the ordered list of
// columns whose values must be bound to its placeholders.
type Query struct {
	stmt    *Statement
	dialect string
	sql     string
}

// Op returns the statement kind.
func (q *Query) Op() Op { return q.stmt.Op }

// Cardinality returns the number of rows the query yields.
func (q *Query) Cardinality() Cardinality { return q.stmt.Cardinality }

// Table returns the table the statement operates on.
func (q *Query) Table() *schema.Table { return q.stmt.Table }

// Dialect returns the dialect the query was rendered for.
func (q *Query) Dialect() string { return q.dialect }

// SQL returns the statement text.
func (q *Query) SQL() string { return q.sql }

// String implements fmt.Stringer.
func (q *Query) String() string { return q.sql }

// Statement returns the abstract shape the query was rendered from.
func (q *Query) Statement() Statement { return q.stmt.clone() }

// Bindings returns the columns to bind, one per placeholder in order.
// Relation queries bind columns of the related table: the child's
// foreign key for a parent fetch, the parent's key for a children fetch.
func (q *Query) Bindings() []*schema.Column { return slices.Clone(q.stmt.Bindings) }

// Returning returns the columns read back by the statement, if any.
func (q *Query) Returning() []*schema.Column { return slices.Clone(q.stmt.Returning) }

// Columns returns the columns of each row a select yields.
func (q *Query) Columns() []*schema.Column {
	if q.stmt.Op != OpSelect {
		return nil
	}
	return slices.Clone(q.stmt.Columns)
}

// Bind returns the driver arguments for the given values, supplied in
// the order of Bindings.
func (q *Query) Bind(values ...any) ([]any, error) {
	if len(values) != len(q.stmt.Bindings) {
		return nil, &BindError{
			Op:    q.stmt.Op,
			Table: q.stmt.Table.Name(),
			Want:  len(q.stmt.Bindings),
			Got:   len(values),
		}
	}
	return slices.Clone(values), nil
}

// Args returns the driver arguments read from src, one per binding.
func (q *Query) Args(src ValueSource) ([]any, error) {
	args := make([]any, len(q.stmt.Bindings))
	for i, c := range q.stmt.Bindings {
		v, err := src.Value(c.Name())
		if err != nil {
			return nil, &BindError{
				Op:     q.stmt.Op,
				Table:  q.stmt.Table.Name(),
				Column: c.Name(),
				Want:   len(q.stmt.Bindings),
				Got:    i,
				Err:    err,
			}
		}
		args[i] = v
	}
	return args, nil
}

// BindError is returned when the values supplied for a query do not
// match its bindings.
type BindError struct {
	Op     Op
	Table  string
	Column string // set when reading the column value failed
	Want   int
	Got    int
	Err    error
}

// Error implements the error interface.
func (e *BindError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("query: %s %s: bind %s: %v", e.Op, e.Table, e.Column, e.Err)
	}
	return fmt.Sprintf("query: %s %s: expected %d bind values, got %d", e.Op, e.Table, e.Want, e.Got)
}

// Unwrap returns the underlying error.
func (e *BindError) Unwrap() error { return e.Err }
