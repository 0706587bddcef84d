package schema

import (
	"slices"
	"strings"
)

// Table is the structural description of a database table. It is
// produced by a TableBuilder and never changes afterwards, so it can
// be shared freely between goroutines.
type Table struct {
	schema      string
	name        string
	columns     []*Column // canonical order
	pk          []*Column
	fkColumns   []*Column
	data        []*Column
	timestamps  []*Column
	foreignKeys []*ForeignKey
	byName      map[string]*Column
}

// Schema returns the schema name, or "" when the table is unqualified.
func (t *Table) Schema() string { return t.schema }

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// QualifiedName returns "schema.name", or the bare name when no schema is set.
func (t *Table) QualifiedName() string {
	if t.schema == "" {
		return t.name
	}
	return t.schema + "." + t.name
}

// String implements fmt.Stringer.
func (t *Table) String() string { return t.QualifiedName() }

// Columns returns all columns in canonical order: primary key, foreign
// key, data and timestamp columns, each group in declaration order.
func (t *Table) Columns() []*Column { return slices.Clone(t.columns) }

// ColumnNames returns the names of Columns.
func (t *Table) ColumnNames() []string { return names(t.columns) }

// PrimaryKey returns the primary key columns in declaration order.
func (t *Table) PrimaryKey() []*Column { return slices.Clone(t.pk) }

// ForeignKeyColumns returns the columns that are part of a foreign key.
func (t *Table) ForeignKeyColumns() []*Column { return slices.Clone(t.fkColumns) }

// Data returns the plain data columns.
func (t *Table) Data() []*Column { return slices.Clone(t.data) }

// Timestamps returns the timestamp columns.
func (t *Table) Timestamps() []*Column { return slices.Clone(t.timestamps) }

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// ForeignKeys returns the foreign keys of the table.
func (t *Table) ForeignKeys() []*ForeignKey { return slices.Clone(t.foreignKeys) }

// ForeignKey returns the foreign key made of exactly the given columns.
func (t *Table) ForeignKey(columns ...string) (*ForeignKey, bool) {
	for _, fk := range t.foreignKeys {
		if slices.Equal(names(fk.columns), columns) {
			return fk, true
		}
	}
	return nil, false
}

// ForeignKeysTo returns the foreign keys that reference target.
func (t *Table) ForeignKeysTo(target *Table) []*ForeignKey {
	var fks []*ForeignKey
	for _, fk := range t.foreignKeys {
		if fk.target == target {
			fks = append(fks, fk)
		}
	}
	return fks
}

// Unique returns the lookup handle of a unique column.
func (t *Table) Unique(name string) (Unique, bool) {
	c, ok := t.byName[name]
	if !ok || !c.unique {
		return Unique{}, false
	}
	return Unique{column: c}, true
}

// MustUnique is like Unique but panics if the column is missing or
// not unique.
func (t *Table) MustUnique(name string) Unique {
	u, ok := t.Unique(name)
	if !ok {
		panic("schema: " + t.name + "." + name + " is not a unique column")
	}
	return u
}

// Uniques returns the handles of all unique columns.
func (t *Table) Uniques() []Unique {
	var us []Unique
	for _, c := range t.columns {
		if c.unique {
			us = append(us, Unique{column: c})
		}
	}
	return us
}

// ForeignKey is a reference from an ordered set of columns of one table
// to the primary key of another (or the same) table.
type ForeignKey struct {
	table      *Table
	columns    []*Column
	target     *Table
	references []*Column
}

// Table returns the referencing table.
func (fk *ForeignKey) Table() *Table { return fk.table }

// Columns returns the referencing columns.
func (fk *ForeignKey) Columns() []*Column { return slices.Clone(fk.columns) }

// Target returns the referenced table.
func (fk *ForeignKey) Target() *Table { return fk.target }

// References returns the referenced primary key columns, aligned with Columns.
func (fk *ForeignKey) References() []*Column { return slices.Clone(fk.references) }

// SelfReference reports if the key references its own table.
func (fk *ForeignKey) SelfReference() bool { return fk.table == fk.target }

// String returns a readable form, e.g. "post(author_id) -> user(id)".
func (fk *ForeignKey) String() string {
	var b strings.Builder
	b.WriteString(fk.table.name)
	b.WriteByte('(')
	b.WriteString(strings.Join(names(fk.columns), ", "))
	b.WriteString(") -> ")
	b.WriteString(fk.target.name)
	b.WriteByte('(')
	b.WriteString(strings.Join(names(fk.references), ", "))
	b.WriteByte(')')
	return b.String()
}

// Unique is a lookup handle for a unique column. The zero value is not
// usable; handles come from Table.Unique.
type Unique struct {
	column *Column
}

// Column returns the unique column.
func (u Unique) Column() *Column { return u.column }

// Valid reports if the handle refers to a column.
func (u Unique) Valid() bool { return u.column != nil }

func names(cols []*Column) []string {
	ns := make([]string, len(cols))
	for i, c := range cols {
		ns[i] = c.name
	}
	return ns
}
