package schema

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
)

// DefaultSchema is the schema assigned by New.
const DefaultSchema = "public"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// TableBuilder declares a table. Build validates the declaration and
// returns the immutable Table.
type TableBuilder struct {
	schema  string
	name    string
	columns []*ColumnBuilder
	fks     []fkDesc
}

type fkDesc struct {
	target  *Table
	self    bool
	columns []string
}

// New starts the declaration of a table in DefaultSchema.
func New(name string) *TableBuilder {
	return &TableBuilder{schema: DefaultSchema, name: name}
}

// Schema sets the schema name. An empty name leaves the table unqualified.
func (b *TableBuilder) Schema(name string) *TableBuilder {
	b.schema = name
	return b
}

// Columns appends column declarations.
func (b *TableBuilder) Columns(cols ...*ColumnBuilder) *TableBuilder {
	b.columns = append(b.columns, cols...)
	return b
}

// Mixin is a reusable group of column declarations.
type Mixin interface {
	Columns() []*ColumnBuilder
}

// Mixin appends the columns of the given mixins.
func (b *TableBuilder) Mixin(ms ...Mixin) *TableBuilder {
	for _, m := range ms {
		b.columns = append(b.columns, m.Columns()...)
	}
	return b
}

// ForeignKey declares a (possibly composite) foreign key made of the
// named columns, referencing the primary key of target in order.
func (b *TableBuilder) ForeignKey(target *Table, columns ...string) *TableBuilder {
	b.fks = append(b.fks, fkDesc{target: target, columns: columns})
	return b
}

// SelfReference declares a (possibly composite) foreign key referencing
// the primary key of the table being built.
func (b *TableBuilder) SelfReference(columns ...string) *TableBuilder {
	b.fks = append(b.fks, fkDesc{self: true, columns: columns})
	return b
}

// MustBuild is like Build but panics on error. Use it for tables
// declared at package initialization.
func (b *TableBuilder) MustBuild() *Table {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

// Build validates the declaration and returns the table. All problems
// found are reported together, each as a *SchemaError.
func (b *TableBuilder) Build() (*Table, error) {
	var errs []error
	fail := func(column, format string, args ...any) {
		errs = append(errs, errorf(b.name, column, format, args...))
	}
	switch {
	case b.name == "":
		fail("", "table name is empty")
	case !identRe.MatchString(b.name):
		fail("", "invalid table name %q", b.name)
	}
	if b.schema != "" && !identRe.MatchString(b.schema) {
		fail("", "invalid schema name %q", b.schema)
	}
	t := &Table{
		schema: b.schema,
		name:   b.name,
		byName: make(map[string]*Column, len(b.columns)),
	}
	// Columns listed in composite foreign keys.
	inFK := make(map[string]bool)
	for _, fk := range b.fks {
		for _, c := range fk.columns {
			inFK[c] = true
		}
	}
	var (
		decl  []*Column
		autos int
	)
	for _, cb := range b.columns {
		d := cb.desc
		if !identRe.MatchString(d.name) {
			fail(d.name, "invalid column name %q", d.name)
			continue
		}
		if _, ok := t.byName[d.name]; ok {
			fail(d.name, "duplicate column")
			continue
		}
		fk := d.references() || inFK[d.name]
		switch {
		case d.typ == TypeInvalid:
			fail(d.name, "missing column type")
		case d.pk && fk:
			fail(d.name, "column cannot be both primary key and foreign key")
		case d.pk && d.nullable:
			fail(d.name, "primary key column cannot be nullable")
		case d.pk && d.unique:
			fail(d.name, "primary key column is already unique")
		case d.timestamp != NoTimestamp && (d.pk || fk):
			fail(d.name, "timestamp column cannot be a key")
		case d.autoIncr && !d.pk:
			fail(d.name, "auto increment requires a primary key column")
		case d.autoIncr && !d.typ.Integer():
			fail(d.name, "auto increment requires an integer column, got %s", d.typ)
		}
		c := &Column{
			name:      d.name,
			field:     d.field,
			typ:       d.typ,
			unique:    d.unique,
			nullable:  d.nullable,
			autoIncr:  d.autoIncr,
			timestamp: d.timestamp,
			table:     t,
		}
		if c.field == "" {
			c.field = GoName(c.name)
		}
		switch {
		case d.pk:
			c.role = RolePrimaryKey
			if d.autoIncr {
				autos++
			}
		case fk:
			c.role = RoleForeignKey
		case d.timestamp != NoTimestamp:
			c.role = RoleTimestamp
		default:
			c.role = RoleData
		}
		t.byName[c.name] = c
		decl = append(decl, c)
	}
	for _, c := range decl {
		switch c.role {
		case RolePrimaryKey:
			t.pk = append(t.pk, c)
		case RoleForeignKey:
			t.fkColumns = append(t.fkColumns, c)
		case RoleData:
			t.data = append(t.data, c)
		case RoleTimestamp:
			t.timestamps = append(t.timestamps, c)
		}
	}
	t.columns = slices.Concat(t.pk, t.fkColumns, t.data, t.timestamps)
	if len(t.pk) == 0 {
		fail("", "primary key is empty")
	}
	if autos > 0 && len(t.pk) > 1 {
		fail("", "auto increment is not supported on a composite primary key")
	}
	errs = append(errs, b.foreignKeys(t, decl)...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return t, nil
}

// foreignKeys resolves column references and composite declarations
// into t.foreignKeys, ordered by the position of their first column.
func (b *TableBuilder) foreignKeys(t *Table, decl []*Column) []error {
	var errs []error
	owner := make(map[string]bool)
	add := func(target *Table, columns []string) {
		label := fmt.Sprint(columns)
		if target == nil {
			errs = append(errs, errorf(t.name, "", "foreign key %s has no target table", label))
			return
		}
		if len(columns) == 0 {
			errs = append(errs, errorf(t.name, "", "foreign key has no columns"))
			return
		}
		fk := &ForeignKey{table: t, target: target}
		for _, name := range columns {
			c, ok := t.byName[name]
			if !ok {
				errs = append(errs, errorf(t.name, name, "unknown foreign key column"))
				return
			}
			if owner[name] {
				errs = append(errs, errorf(t.name, name, "column belongs to more than one foreign key"))
				return
			}
			fk.columns = append(fk.columns, c)
		}
		if len(target.pk) != len(fk.columns) {
			errs = append(errs, errorf(t.name, "", "foreign key %s has %d columns, %s primary key has %d",
				label, len(fk.columns), target.name, len(target.pk)))
			return
		}
		for i, c := range fk.columns {
			ref := target.pk[i]
			if c.typ != ref.typ {
				errs = append(errs, errorf(t.name, c.name, "type %s does not match %s.%s of type %s",
					c.typ, target.name, ref.name, ref.typ))
				return
			}
		}
		fk.references = slices.Clone(target.pk)
		for _, c := range fk.columns {
			owner[c.name] = true
			c.fk = fk
		}
		t.foreignKeys = append(t.foreignKeys, fk)
	}
	for _, cb := range b.columns {
		d := cb.desc
		if !d.references() {
			continue
		}
		if c, ok := t.byName[d.name]; !ok || c.role != RoleForeignKey {
			continue
		}
		target := d.ref
		if d.refSelf {
			target = t
		}
		add(target, []string{d.name})
	}
	for _, fk := range b.fks {
		target := fk.target
		if fk.self {
			target = t
		}
		add(target, fk.columns)
	}
	pos := make(map[*Column]int, len(decl))
	for i, c := range decl {
		pos[c] = i
	}
	slices.SortStableFunc(t.foreignKeys, func(a, b *ForeignKey) int {
		return pos[a.columns[0]] - pos[b.columns[0]]
	})
	return errs
}
