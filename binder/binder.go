// Package binder maps table columns onto struct fields by reflection,
// for entity types written by hand:
//
//	type User struct {
//		ID    int    `db:"id"`
//		Name  string
//		Email string `db:"email"`
//	}
//
//	func (u *User) Schema() *schema.Table                    { return UserTable }
//	func (u *User) Value(column string) (any, error)         { return binder.Value(u, UserTable, column) }
//	func (u *User) Pointer(column string) (any, error)       { return binder.Pointer(u, UserTable, column) }
//
// A field maps to a column through its db tag, or else by name: the
// column's Go field name, or the snake case form of the field name.
// Fields tagged `db:"-"` are ignored. Embedded structs are searched.
package binder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-openapi/inflect"

	"github.com/syssam/strata/schema"
)

type planKey struct {
	typ   reflect.Type
	table *schema.Table
}

// plan maps column names to field index paths.
type plan map[string][]int

var plans sync.Map // planKey -> plan

// Value returns the value of the field mapped to column in the struct
// ptr points to.
func Value(ptr any, t *schema.Table, column string) (any, error) {
	f, err := field(ptr, t, column)
	if err != nil {
		return nil, err
	}
	return f.Interface(), nil
}

// Pointer returns the address of the field mapped to column in the
// struct ptr points to.
func Pointer(ptr any, t *schema.Table, column string) (any, error) {
	f, err := field(ptr, t, column)
	if err != nil {
		return nil, err
	}
	return f.Addr().Interface(), nil
}

// Check verifies that every column of t maps to a field of the struct
// type of ptr.
func Check(ptr any, t *schema.Table) error {
	_, p, err := planOf(ptr, t)
	if err != nil {
		return err
	}
	var missing []string
	for _, name := range t.ColumnNames() {
		if _, ok := p[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("binder: %T has no field for columns %s of %s", ptr, strings.Join(missing, ", "), t)
	}
	return nil
}

func field(ptr any, t *schema.Table, column string) (reflect.Value, error) {
	v, p, err := planOf(ptr, t)
	if err != nil {
		return reflect.Value{}, err
	}
	idx, ok := p[column]
	if !ok {
		return reflect.Value{}, fmt.Errorf("binder: %T has no field for column %q", ptr, column)
	}
	f, err := v.FieldByIndexErr(idx)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("binder: column %q: %w", column, err)
	}
	return f, nil
}

func planOf(ptr any, t *schema.Table) (reflect.Value, plan, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("binder: expect a non-nil struct pointer, got %T", ptr)
	}
	v = v.Elem()
	key := planKey{typ: v.Type(), table: t}
	if p, ok := plans.Load(key); ok {
		return v, p.(plan), nil
	}
	p := build(v.Type(), t)
	actual, _ := plans.LoadOrStore(key, p)
	return v, actual.(plan), nil
}

func build(typ reflect.Type, t *schema.Table) plan {
	p := make(plan)
	fields := reflect.VisibleFields(typ)
	// Tags take precedence over names.
	for _, f := range fields {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		if tag, ok := f.Tag.Lookup("db"); ok {
			name, _, _ := strings.Cut(tag, ",")
			if _, ok := t.Column(name); ok {
				p[name] = f.Index
			}
		}
	}
	for _, c := range t.Columns() {
		if _, ok := p[c.Name()]; ok {
			continue
		}
		for _, f := range fields {
			if !f.IsExported() || f.Anonymous || f.Tag.Get("db") != "" {
				continue
			}
			if matches(f.Name, c) {
				p[c.Name()] = f.Index
				break
			}
		}
	}
	return p
}

func matches(name string, c *schema.Column) bool {
	return name == c.Field() ||
		inflect.Underscore(name) == c.Name() ||
		strings.EqualFold(name, strings.ReplaceAll(c.Name(), "_", ""))
}
