package query

import (
	"slices"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/schema"
)

// Statement is the abstract shape of a generated statement. It holds
// only column descriptors; it has no field able to carry a value.
type Statement struct {
	Op          Op
	Cardinality Cardinality
	Table       *schema.Table
	// Columns is the select list, or the insert column list.
	Columns []*schema.Column
	// Set is the update SET list, each column bound to a placeholder.
	Set []*schema.Column
	// Where is a conjunction of equality predicates, one placeholder each.
	Where []*schema.Column
	// Conflict is the upsert conflict target, Update the columns
	// overwritten from the proposed row on conflict.
	Conflict []*schema.Column
	Update   []*schema.Column
	// Returning lists the columns read back after an insert.
	Returning []*schema.Column
	// Bindings are the columns supplying a value for each placeholder,
	// in placeholder order.
	Bindings []*schema.Column
}

func (s *Statement) clone() Statement {
	c := *s
	c.Columns = slices.Clone(s.Columns)
	c.Set = slices.Clone(s.Set)
	c.Where = slices.Clone(s.Where)
	c.Conflict = slices.Clone(s.Conflict)
	c.Update = slices.Clone(s.Update)
	c.Returning = slices.Clone(s.Returning)
	c.Bindings = slices.Clone(s.Bindings)
	return c
}

// Render returns the statement text for the given dialect.
func (s *Statement) Render(d string) string {
	b := sql.Dialect(d)
	switch s.Op {
	case OpSelect:
		b.WriteString("SELECT ").IdentComma(names(s.Columns)...).WriteString(" FROM ")
		table(b, s.Table)
		where(b, s.Where)
	case OpInsert, OpUpsert:
		b.WriteString("INSERT INTO ")
		table(b, s.Table)
		switch {
		case len(s.Columns) > 0:
			b.WriteString(" (").IdentComma(names(s.Columns)...).WriteString(") VALUES (")
			for i := range s.Columns {
				if i > 0 {
					b.WriteString(", ")
				}
				b.Arg()
			}
			b.Char(')')
		case d == dialect.MySQL:
			b.WriteString(" () VALUES ()")
		default:
			b.WriteString(" DEFAULT VALUES")
		}
		if s.Op == OpUpsert {
			conflict(b, s.Conflict, s.Update)
		}
		if len(s.Returning) > 0 {
			b.WriteString(" RETURNING ").IdentComma(names(s.Returning)...)
		}
	case OpUpdate:
		b.WriteString("UPDATE ")
		table(b, s.Table).WriteString(" SET ")
		if len(s.Set) == 0 {
			// Key-only table: a no-op assignment keeps the statement valid.
			k := s.Where[0].Name()
			b.Ident(k).WriteString(" = ").Ident(k)
		}
		for i, c := range s.Set {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(c.Name()).WriteString(" = ").Arg()
		}
		where(b, s.Where)
	case OpDelete:
		b.WriteString("DELETE FROM ")
		table(b, s.Table)
		where(b, s.Where)
	}
	return b.String()
}

// table writes the name of t. A MySQL schema is a database, so the
// default schema is left to the connection.
func table(b *sql.Builder, t *schema.Table) *sql.Builder {
	name := t.Schema()
	if name == schema.DefaultSchema && b.Dialect() == dialect.MySQL {
		name = ""
	}
	return b.Table(name, t.Name())
}

func where(b *sql.Builder, cols []*schema.Column) {
	for i, c := range cols {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.Ident(c.Name()).WriteString(" = ").Arg()
	}
}

func conflict(b *sql.Builder, target, update []*schema.Column) {
	if b.Dialect() == dialect.MySQL {
		b.WriteString(" ON DUPLICATE KEY UPDATE ")
		if len(update) == 0 {
			k := target[0].Name()
			b.Ident(k).WriteString(" = ").Ident(k)
			return
		}
		for i, c := range update {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(c.Name()).WriteString(" = VALUES(").Ident(c.Name()).Char(')')
		}
		return
	}
	b.WriteString(" ON CONFLICT (").IdentComma(names(target)...).WriteString(") ")
	if len(update) == 0 {
		b.WriteString("DO NOTHING")
		return
	}
	b.WriteString("DO UPDATE SET ")
	for i, c := range update {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(c.Name()).WriteString(" = EXCLUDED.").Ident(c.Name())
	}
}

func names(cols []*schema.Column) []string {
	ns := make([]string, len(cols))
	for i, c := range cols {
		ns[i] = c.Name()
	}
	return ns
}
