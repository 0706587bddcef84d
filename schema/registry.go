package schema

import (
	"errors"
	"slices"
)

// Registry is an immutable set of tables, built once at startup.
type Registry struct {
	tables []*Table
	byName map[string]*Table
	bare   map[string][]*Table
}

// NewRegistry returns a registry holding the given tables. It fails if
// two tables share a qualified name, or a foreign key targets a table
// that is not part of the registry.
func NewRegistry(tables ...*Table) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*Table, len(tables)),
		bare:   make(map[string][]*Table, len(tables)),
	}
	var errs []error
	for _, t := range tables {
		if t == nil {
			errs = append(errs, &SchemaError{Msg: "nil table in registry"})
			continue
		}
		qn := t.QualifiedName()
		if _, ok := r.byName[qn]; ok {
			errs = append(errs, errorf(t.name, "", "table %s registered twice", qn))
			continue
		}
		r.byName[qn] = t
		r.bare[t.name] = append(r.bare[t.name], t)
		r.tables = append(r.tables, t)
	}
	for _, t := range r.tables {
		for _, fk := range t.foreignKeys {
			if r.byName[fk.target.QualifiedName()] != fk.target {
				errs = append(errs, errorf(t.name, "", "foreign key %s targets unregistered table", fk))
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(tables ...*Table) *Registry {
	r, err := NewRegistry(tables...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns a table by qualified name, or by bare name when it is
// not ambiguous.
func (r *Registry) Lookup(name string) (*Table, bool) {
	if t, ok := r.byName[name]; ok {
		return t, true
	}
	if ts := r.bare[name]; len(ts) == 1 {
		return ts[0], true
	}
	return nil, false
}

// MustLookup is like Lookup but panics if the table is not found.
func (r *Registry) MustLookup(name string) *Table {
	t, ok := r.Lookup(name)
	if !ok {
		panic("schema: table " + name + " not found in registry")
	}
	return t
}

// Tables returns the registered tables in registration order.
func (r *Registry) Tables() []*Table { return slices.Clone(r.tables) }

// Len returns the number of tables.
func (r *Registry) Len() int { return len(r.tables) }
