package query

import (
	"fmt"
	"slices"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/schema"
)

// Generator generates queries for one dialect. The zero value renders
// with "?" placeholders.
type Generator struct {
	dialect string
}

// Dialect returns a generator for the named dialect.
func Dialect(name string) Generator { return Generator{dialect: name} }

// Dialect returns the generator dialect.
func (g Generator) Dialect() string { return g.dialect }

func (g Generator) render(s *Statement) *Query {
	return &Query{stmt: s, dialect: g.dialect, sql: s.Render(g.dialect)}
}

// Insert returns the statement inserting one row. Auto-increment keys
// are left to the database and read back with RETURNING, except on
// MySQL where the driver reports the last insert id.
func (g Generator) Insert(t *schema.Table) *Query {
	s := &Statement{Op: OpInsert, Cardinality: None, Table: t}
	for _, c := range t.Columns() {
		if c.AutoIncrement() {
			if g.dialect != dialect.MySQL {
				s.Returning = append(s.Returning, c)
			}
			continue
		}
		s.Columns = append(s.Columns, c)
	}
	if len(s.Returning) > 0 {
		s.Cardinality = One
	}
	s.Bindings = slices.Clone(s.Columns)
	return g.render(s)
}

// Upsert returns the statement inserting a row, or overwriting the non
// key columns of the row with the same primary key. The key is always
// part of the insert list.
func (g Generator) Upsert(t *schema.Table) *Query {
	s := &Statement{
		Op:       OpUpsert,
		Table:    t,
		Columns:  t.Columns(),
		Conflict: t.PrimaryKey(),
		Update:   nonKey(t),
	}
	s.Bindings = slices.Clone(s.Columns)
	return g.render(s)
}

// Select returns the statement fetching a row by primary key.
func (g Generator) Select(t *schema.Table) *Query {
	return g.selectWhere(t, One, t.PrimaryKey(), t.PrimaryKey())
}

// SelectAll returns the statement fetching every row of t.
func (g Generator) SelectAll(t *schema.Table) *Query {
	return g.selectWhere(t, Many, nil, nil)
}

// SelectBy returns the statement fetching the rows matching the given
// columns of t.
func (g Generator) SelectBy(t *schema.Table, cols ...*schema.Column) *Query {
	mustOwn(t, cols)
	return g.selectWhere(t, Many, cols, cols)
}

// SelectUnique returns the statement fetching the row holding a value
// of a unique column.
func (g Generator) SelectUnique(u schema.Unique) *Query {
	c := mustUnique(u)
	return g.selectWhere(c.Table(), One, []*schema.Column{c}, []*schema.Column{c})
}

// SelectParent returns the statement fetching the row referenced by fk.
// It is bound to the foreign key columns of the child.
func (g Generator) SelectParent(fk *schema.ForeignKey) *Query {
	return g.selectWhere(fk.Target(), One, fk.References(), fk.Columns())
}

// SelectChildren returns the statement fetching the rows referencing a
// parent through fk. It is bound to the primary key of the parent.
func (g Generator) SelectChildren(fk *schema.ForeignKey) *Query {
	return g.selectWhere(fk.Table(), Many, fk.Columns(), fk.References())
}

func (g Generator) selectWhere(t *schema.Table, card Cardinality, where, bind []*schema.Column) *Query {
	return g.render(&Statement{
		Op:          OpSelect,
		Cardinality: card,
		Table:       t,
		Columns:     t.Columns(),
		Where:       where,
		Bindings:    slices.Clone(bind),
	})
}

// Update returns the statement overwriting the non key columns of a
// row, identified by its primary key.
func (g Generator) Update(t *schema.Table) *Query {
	s := &Statement{
		Op:    OpUpdate,
		Table: t,
		Set:   nonKey(t),
		Where: t.PrimaryKey(),
	}
	s.Bindings = slices.Concat(s.Set, s.Where)
	return g.render(s)
}

// Delete returns the statement deleting a row by primary key.
func (g Generator) Delete(t *schema.Table) *Query {
	return g.deleteWhere(t, t.PrimaryKey(), t.PrimaryKey())
}

// DeleteBy returns the statement deleting the rows matching the given
// columns of t.
func (g Generator) DeleteBy(t *schema.Table, cols ...*schema.Column) *Query {
	if len(cols) == 0 {
		panic("query: delete by no columns of table " + t.String())
	}
	mustOwn(t, cols)
	return g.deleteWhere(t, cols, cols)
}

// DeleteUnique returns the statement deleting the row holding a value
// of a unique column.
func (g Generator) DeleteUnique(u schema.Unique) *Query {
	c := mustUnique(u)
	return g.deleteWhere(c.Table(), []*schema.Column{c}, []*schema.Column{c})
}

// DeleteByForeignKey returns the statement deleting the rows
// referencing a parent through fk. It is bound to the primary key of
// the parent, which is the value the foreign key holds.
func (g Generator) DeleteByForeignKey(fk *schema.ForeignKey) *Query {
	return g.deleteWhere(fk.Table(), fk.Columns(), fk.References())
}

func (g Generator) deleteWhere(t *schema.Table, where, bind []*schema.Column) *Query {
	return g.render(&Statement{
		Op:       OpDelete,
		Table:    t,
		Where:    where,
		Bindings: slices.Clone(bind),
	})
}

func nonKey(t *schema.Table) []*schema.Column {
	return slices.Concat(t.ForeignKeyColumns(), t.Data(), t.Timestamps())
}

// mustOwn panics if a column does not belong to t. Passing columns of
// another table is a programming error.
func mustOwn(t *schema.Table, cols []*schema.Column) {
	for _, c := range cols {
		if c == nil || c.Table() != t {
			panic(fmt.Sprintf("query: column %v does not belong to table %s", c, t))
		}
	}
}

func mustUnique(u schema.Unique) *schema.Column {
	if !u.Valid() {
		panic("query: invalid unique column handle")
	}
	return u.Column()
}

var pg = Dialect(dialect.Postgres)

// Insert returns the PostgreSQL insert statement of t.
func Insert(t *schema.Table) *Query { return pg.Insert(t) }

// Upsert returns the PostgreSQL upsert statement of t.
func Upsert(t *schema.Table) *Query { return pg.Upsert(t) }

// Select returns the PostgreSQL find-by-key statement of t.
func Select(t *schema.Table) *Query { return pg.Select(t) }

// SelectAll returns the PostgreSQL statement fetching every row of t.
func SelectAll(t *schema.Table) *Query { return pg.SelectAll(t) }

// SelectBy returns the PostgreSQL statement fetching rows by the given columns.
func SelectBy(t *schema.Table, cols ...*schema.Column) *Query { return pg.SelectBy(t, cols...) }

// SelectUnique returns the PostgreSQL find-by-unique statement.
func SelectUnique(u schema.Unique) *Query { return pg.SelectUnique(u) }

// SelectParent returns the PostgreSQL child to parent statement.
func SelectParent(fk *schema.ForeignKey) *Query { return pg.SelectParent(fk) }

// SelectChildren returns the PostgreSQL parent to children statement.
func SelectChildren(fk *schema.ForeignKey) *Query { return pg.SelectChildren(fk) }

// Update returns the PostgreSQL update statement of t.
func Update(t *schema.Table) *Query { return pg.Update(t) }

// Delete returns the PostgreSQL delete-by-key statement of t.
func Delete(t *schema.Table) *Query { return pg.Delete(t) }

// DeleteBy returns the PostgreSQL statement deleting rows by the given columns.
func DeleteBy(t *schema.Table, cols ...*schema.Column) *Query { return pg.DeleteBy(t, cols...) }

// DeleteUnique returns the PostgreSQL delete-by-unique statement.
func DeleteUnique(u schema.Unique) *Query { return pg.DeleteUnique(u) }

// DeleteByForeignKey returns the PostgreSQL delete-by-foreign-key statement.
func DeleteByForeignKey(fk *schema.ForeignKey) *Query { return pg.DeleteByForeignKey(fk) }
