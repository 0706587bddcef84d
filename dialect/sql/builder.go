package sql

import (
	"strconv"
	"strings"

	"github.com/syssam/strata/dialect"
)

// Builder renders SQL statements for one dialect. It writes keywords,
// identifiers and placeholders; values never pass through it and travel
// as bind arguments instead.
type Builder struct {
	sb      strings.Builder
	dialect string
	total   int // placeholders written so far
}

// Dialect creates a new Builder for the given dialect.
func Dialect(name string) *Builder {
	return &Builder{dialect: name}
}

// Dialect returns the dialect of the builder.
func (b *Builder) Dialect() string { return b.dialect }

// WriteString writes a SQL keyword or punctuation.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// Char writes a single byte.
func (b *Builder) Char(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Pad writes a single space.
func (b *Builder) Pad() *Builder {
	return b.Char(' ')
}

// Ident writes the given identifier, quoting it if needed.
func (b *Builder) Ident(name string) *Builder {
	b.sb.WriteString(Quote(b.dialect, name))
	return b
}

// IdentComma writes the identifiers separated by ", ".
func (b *Builder) IdentComma(names ...string) *Builder {
	for i, name := range names {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.Ident(name)
	}
	return b
}

// Table writes a table name, qualified by its schema when one is set.
// SQLite does not support schema qualification of main database tables.
// A word following the qualifier is always read as an identifier, so a
// qualified name is quoted only when it is case-sensitive.
func (b *Builder) Table(schema, name string) *Builder {
	if schema == "" || b.dialect == dialect.SQLite {
		return b.Ident(name)
	}
	b.Ident(schema).Char('.')
	if plain(name) {
		return b.WriteString(name)
	}
	return b.Ident(name)
}

// Arg writes the next positional placeholder.
func (b *Builder) Arg() *Builder {
	b.total++
	if b.dialect == dialect.Postgres {
		b.sb.WriteByte('$')
		b.sb.WriteString(strconv.Itoa(b.total))
	} else {
		b.sb.WriteByte('?')
	}
	return b
}

// Total returns the number of placeholders written.
func (b *Builder) Total() int { return b.total }

// String returns the rendered statement.
func (b *Builder) String() string { return b.sb.String() }

// Quote quotes the identifier if it is a reserved word of the dialect
// or would be case-folded by the database.
func Quote(dialectName, ident string) string {
	if !NeedsQuote(dialectName, ident) {
		return ident
	}
	if dialectName == dialect.MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// NeedsQuote reports if the identifier must be quoted to be used verbatim.
func NeedsQuote(dialectName, ident string) bool {
	return IsReserved(dialectName, ident) || !plain(ident)
}

// plain reports if the identifier is lower case and made of letters,
// digits and underscores only.
func plain(ident string) bool {
	for i := 0; i < len(ident); i++ {
		c := ident[i]
		switch {
		case c >= 'a' && c <= 'z', c == '_':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return ident != ""
}
