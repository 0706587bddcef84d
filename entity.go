package strata

import (
	"fmt"
	"reflect"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/query"
	"github.com/syssam/strata/schema"
)

// Entity is a value persisted in a table described by Schema. Value
// returns the value bound for a column; Pointer returns the address a
// row value of the column is scanned into.
type Entity interface {
	Schema() *schema.Table
	Value(column string) (any, error)
	Pointer(column string) (any, error)
}

// EntityPtr constrains a pointer to T that implements Entity. Generic
// operations allocate new entities through it.
type EntityPtr[T any] interface {
	*T
	Entity
}

// Executor runs statements. Both dialect.Driver and dialect.Tx satisfy it.
type Executor interface {
	dialect.ExecQuerier
	Dialect() string
}

var (
	_ Executor = (dialect.Driver)(nil)
	_ Executor = (dialect.Tx)(nil)
)

// generator returns the query generator matching the executor dialect.
func generator(ex Executor) query.Generator {
	return query.Dialect(ex.Dialect())
}

// entityName returns the Go type name of e, without pointer indirection.
func entityName(e any) string {
	t := reflect.TypeOf(e)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}

func newEntity[T any, PT EntityPtr[T]]() PT { return PT(new(T)) }

// Key returns the primary key values of e in key column order.
func Key(e Entity) ([]any, error) {
	pk := e.Schema().PrimaryKey()
	key := make([]any, len(pk))
	for i, c := range pk {
		v, err := e.Value(c.Name())
		if err != nil {
			return nil, fmt.Errorf("strata: key of %s: %w", entityName(e), err)
		}
		key[i] = v
	}
	return key, nil
}
