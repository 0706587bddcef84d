package schema

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// Column describes a single column of a table. Columns are created by
// a TableBuilder and are immutable once the table is built.
type Column struct {
	name      string
	field     string
	typ       Type
	role      Role
	unique    bool
	nullable  bool
	autoIncr  bool
	timestamp TimestampKind
	table     *Table
	fk        *ForeignKey
}

// Name returns the SQL identifier of the column.
func (c *Column) Name() string { return c.name }

// Field returns the Go struct field name the column maps to.
func (c *Column) Field() string { return c.field }

// Type returns the column value type.
func (c *Column) Type() Type { return c.typ }

// Role returns the part the column plays in its table.
func (c *Column) Role() Role { return c.role }

// Unique reports if the column holds unique values.
func (c *Column) Unique() bool { return c.unique }

// Nullable reports if the column accepts NULL.
func (c *Column) Nullable() bool { return c.nullable }

// AutoIncrement reports if the value is generated by the database on insert.
func (c *Column) AutoIncrement() bool { return c.autoIncr }

// Timestamp returns the kind of a timestamp column, or NoTimestamp.
func (c *Column) Timestamp() TimestampKind { return c.timestamp }

// Table returns the table owning the column.
func (c *Column) Table() *Table { return c.table }

// ForeignKey returns the foreign key the column belongs to, or nil.
func (c *Column) ForeignKey() *ForeignKey { return c.fk }

// String returns the table qualified column name.
func (c *Column) String() string {
	if c.table == nil {
		return c.name
	}
	return c.table.name + "." + c.name
}

// ColumnBuilder declares a column for a TableBuilder.
type ColumnBuilder struct {
	desc *columnDesc
}

type columnDesc struct {
	name      string
	field     string
	typ       Type
	pk        bool
	unique    bool
	nullable  bool
	autoIncr  bool
	timestamp TimestampKind
	ref       *Table
	hasRef    bool
	refSelf   bool
}

func newColumn(name string, t Type) *ColumnBuilder {
	return &ColumnBuilder{desc: &columnDesc{name: name, typ: t}}
}

// Bool returns a new boolean column.
func Bool(name string) *ColumnBuilder { return newColumn(name, TypeBool) }

// Int returns a new integer column.
func Int(name string) *ColumnBuilder { return newColumn(name, TypeInt) }

// Int64 returns a new 64-bit integer column.
func Int64(name string) *ColumnBuilder { return newColumn(name, TypeInt64) }

// Float returns a new floating point column.
func Float(name string) *ColumnBuilder { return newColumn(name, TypeFloat) }

// String returns a new string column.
func String(name string) *ColumnBuilder { return newColumn(name, TypeString) }

// Bytes returns a new binary column.
func Bytes(name string) *ColumnBuilder { return newColumn(name, TypeBytes) }

// Time returns a new time column.
func Time(name string) *ColumnBuilder { return newColumn(name, TypeTime) }

// UUID returns a new UUID column.
func UUID(name string) *ColumnBuilder { return newColumn(name, TypeUUID) }

// JSON returns a new JSON column.
func JSON(name string) *ColumnBuilder { return newColumn(name, TypeJSON) }

// Typed returns a new column of the given type.
func Typed(name string, t Type) *ColumnBuilder { return newColumn(name, t) }

// CreatedAt returns a timestamp column recording creation time.
func CreatedAt(name string) *ColumnBuilder { return timestamp(name, Created) }

// UpdatedAt returns a timestamp column recording the last update time.
func UpdatedAt(name string) *ColumnBuilder { return timestamp(name, Updated) }

// DeletedAt returns a nullable timestamp column recording soft deletion.
func DeletedAt(name string) *ColumnBuilder { return timestamp(name, Deleted).Nullable() }

func timestamp(name string, k TimestampKind) *ColumnBuilder {
	b := newColumn(name, TypeTime)
	b.desc.timestamp = k
	return b
}

// PrimaryKey marks the column as part of the primary key.
func (b *ColumnBuilder) PrimaryKey() *ColumnBuilder {
	b.desc.pk = true
	return b
}

// AutoIncrement marks the key as generated by the database.
func (b *ColumnBuilder) AutoIncrement() *ColumnBuilder {
	b.desc.autoIncr = true
	return b
}

// Unique marks the column as unique.
func (b *ColumnBuilder) Unique() *ColumnBuilder {
	b.desc.unique = true
	return b
}

// Nullable marks the column as accepting NULL.
func (b *ColumnBuilder) Nullable() *ColumnBuilder {
	b.desc.nullable = true
	return b
}

// Field overrides the Go field name of the column.
func (b *ColumnBuilder) Field(name string) *ColumnBuilder {
	b.desc.field = name
	return b
}

// References makes the column a single-column foreign key to the
// primary key of t.
func (b *ColumnBuilder) References(t *Table) *ColumnBuilder {
	b.desc.ref = t
	b.desc.hasRef = true
	b.desc.refSelf = false
	return b
}

// ReferencesSelf makes the column a foreign key to the primary key of
// the table being built.
func (b *ColumnBuilder) ReferencesSelf() *ColumnBuilder {
	b.desc.ref = nil
	b.desc.hasRef = false
	b.desc.refSelf = true
	return b
}

func (d *columnDesc) references() bool { return d.hasRef || d.refSelf }

var initialisms = map[string]string{
	"Id":   "ID",
	"Ids":  "IDs",
	"Url":  "URL",
	"Uri":  "URI",
	"Uuid": "UUID",
	"Json": "JSON",
	"Sql":  "SQL",
	"Api":  "API",
	"Http": "HTTP",
	"Ip":   "IP",
}

// GoName returns the Go identifier for a snake case SQL name,
// e.g. "author_id" becomes "AuthorID".
func GoName(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		p = inflect.Camelize(strings.ToLower(p))
		if v, ok := initialisms[p]; ok {
			p = v
		}
		parts[i] = p
	}
	return strings.Join(parts, "")
}
