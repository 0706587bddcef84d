package schema_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/schema"
)

func userTable(t *testing.T) *schema.Table {
	t.Helper()
	tbl, err := schema.New("user").
		Columns(
			schema.Int("id").PrimaryKey().AutoIncrement(),
			schema.String("name"),
			schema.String("email").Unique(),
		).
		Build()
	require.NoError(t, err)
	return tbl
}

func TestBuild(t *testing.T) {
	user := userTable(t)
	post, err := schema.New("post").
		Columns(
			schema.CreatedAt("created_at"),
			schema.String("title"),
			schema.Int("author_id").References(user),
			schema.Int("id").PrimaryKey(),
		).
		Build()
	require.NoError(t, err)

	t.Run("CanonicalOrder", func(t *testing.T) {
		assert.Equal(t, []string{"id", "author_id", "title", "created_at"}, post.ColumnNames())
		assert.Equal(t, "public", post.Schema())
		assert.Equal(t, "public.post", post.QualifiedName())
	})

	t.Run("Roles", func(t *testing.T) {
		for name, role := range map[string]schema.Role{
			"id":         schema.RolePrimaryKey,
			"author_id":  schema.RoleForeignKey,
			"title":      schema.RoleData,
			"created_at": schema.RoleTimestamp,
		} {
			c, ok := post.Column(name)
			require.True(t, ok, name)
			assert.Equal(t, role, c.Role(), name)
			assert.Same(t, post, c.Table())
		}
		c, _ := post.Column("created_at")
		assert.Equal(t, schema.Created, c.Timestamp())
	})

	t.Run("ForeignKey", func(t *testing.T) {
		fks := post.ForeignKeysTo(user)
		require.Len(t, fks, 1)
		fk := fks[0]
		assert.Same(t, user, fk.Target())
		assert.Same(t, post, fk.Table())
		assert.False(t, fk.SelfReference())
		assert.Equal(t, "post(author_id) -> user(id)", fk.String())
		byCols, ok := post.ForeignKey("author_id")
		require.True(t, ok)
		assert.Same(t, fk, byCols)
		c, _ := post.Column("author_id")
		assert.Same(t, fk, c.ForeignKey())
		assert.Empty(t, user.ForeignKeys())
	})

	t.Run("Fields", func(t *testing.T) {
		c, _ := post.Column("author_id")
		assert.Equal(t, "AuthorID", c.Field())
		c, _ = post.Column("created_at")
		assert.Equal(t, "CreatedAt", c.Field())
	})

	t.Run("Unique", func(t *testing.T) {
		u, ok := user.Unique("email")
		require.True(t, ok)
		assert.True(t, u.Valid())
		assert.Equal(t, "email", u.Column().Name())
		_, ok = user.Unique("name")
		assert.False(t, ok)
		_, ok = user.Unique("missing")
		assert.False(t, ok)
		assert.Len(t, user.Uniques(), 1)
		assert.Panics(t, func() { user.MustUnique("name") })
		assert.False(t, schema.Unique{}.Valid())
	})

	t.Run("Immutable", func(t *testing.T) {
		cols := post.Columns()
		cols[0] = nil
		assert.NotNil(t, post.Columns()[0])
	})
}

func TestCompositeForeignKey(t *testing.T) {
	order, err := schema.New("order_line").
		Columns(
			schema.Int("order_id").PrimaryKey(),
			schema.Int("line").PrimaryKey(),
			schema.Float("amount"),
		).
		Build()
	require.NoError(t, err)
	assert.Len(t, order.PrimaryKey(), 2)

	note, err := schema.New("note").
		Columns(
			schema.Int64("id").PrimaryKey(),
			schema.Int("order_id"),
			schema.Int("line"),
			schema.String("body"),
		).
		ForeignKey(order, "order_id", "line").
		Build()
	require.NoError(t, err)
	fk, ok := note.ForeignKey("order_id", "line")
	require.True(t, ok)
	assert.Equal(t, "note(order_id, line) -> order_line(order_id, line)", fk.String())
	assert.Len(t, note.ForeignKeyColumns(), 2)
}

func TestSelfReference(t *testing.T) {
	cat, err := schema.New("category").
		Columns(
			schema.UUID("id").PrimaryKey(),
			schema.UUID("parent_id").Nullable().ReferencesSelf(),
			schema.String("label"),
		).
		Build()
	require.NoError(t, err)
	fks := cat.ForeignKeysTo(cat)
	require.Len(t, fks, 1)
	assert.True(t, fks[0].SelfReference())
}

func TestBuildErrors(t *testing.T) {
	user := schema.New("user").
		Columns(schema.Int("id").PrimaryKey()).
		MustBuild()
	pair := schema.New("pair").
		Columns(schema.Int("a").PrimaryKey(), schema.Int("b").PrimaryKey()).
		MustBuild()

	tests := []struct {
		name string
		b    *schema.TableBuilder
		msg  string
	}{
		{"EmptyName", schema.New("").Columns(schema.Int("id").PrimaryKey()), "table name is empty"},
		{"BadName", schema.New("a-b").Columns(schema.Int("id").PrimaryKey()), `invalid table name "a-b"`},
		{"BadColumn", schema.New("t").Columns(schema.Int("id").PrimaryKey(), schema.String("x y")), `invalid column name "x y"`},
		{"NoPrimaryKey", schema.New("t").Columns(schema.String("name")), "primary key is empty"},
		{"Duplicate", schema.New("t").Columns(schema.Int("id").PrimaryKey(), schema.String("id")), "duplicate column"},
		{"PrimaryAndForeign", schema.New("t").Columns(schema.Int("id").PrimaryKey().References(user)), "both primary key and foreign key"},
		{"NullableKey", schema.New("t").Columns(schema.Int("id").PrimaryKey().Nullable()), "cannot be nullable"},
		{"UniqueKey", schema.New("t").Columns(schema.Int("id").PrimaryKey().Unique()), "already unique"},
		{"TimestampKey", schema.New("t").Columns(schema.CreatedAt("id").PrimaryKey()), "timestamp column cannot be a key"},
		{"AutoIncrementString", schema.New("t").Columns(schema.String("id").PrimaryKey().AutoIncrement()), "requires an integer column"},
		{"AutoIncrementData", schema.New("t").Columns(schema.Int("id").PrimaryKey(), schema.Int("n").AutoIncrement()), "requires a primary key column"},
		{"AutoIncrementComposite", schema.New("t").Columns(schema.Int("a").PrimaryKey().AutoIncrement(), schema.Int("b").PrimaryKey()), "composite primary key"},
		{"NilTarget", schema.New("t").Columns(schema.Int("id").PrimaryKey(), schema.Int("u").References(nil)), "has no target table"},
		{"Arity", schema.New("t").Columns(schema.Int("id").PrimaryKey(), schema.Int("p").References(pair)), "has 1 columns, pair primary key has 2"},
		{"TypeMismatch", schema.New("t").Columns(schema.Int("id").PrimaryKey(), schema.String("u").References(user)), "does not match user.id"},
		{"UnknownColumn", schema.New("t").Columns(schema.Int("id").PrimaryKey()).ForeignKey(user, "nope"), "unknown foreign key column"},
		{"TwoForeignKeys", schema.New("t").Columns(schema.Int("id").PrimaryKey(), schema.Int("u").References(user)).ForeignKey(user, "u"), "more than one foreign key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := tt.b.Build()
			require.Error(t, err)
			assert.Nil(t, tbl)
			assert.True(t, schema.IsSchemaError(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	t.Run("Joined", func(t *testing.T) {
		_, err := schema.New("t").Columns(schema.String("a b"), schema.String("c d")).Build()
		require.Error(t, err)
		var se *schema.SchemaError
		require.True(t, errors.As(err, &se))
		assert.Contains(t, err.Error(), `"a b"`)
		assert.Contains(t, err.Error(), `"c d"`)
		assert.Contains(t, err.Error(), "primary key is empty")
	})

	t.Run("MustBuild", func(t *testing.T) {
		assert.Panics(t, func() { schema.New("").MustBuild() })
	})

	t.Run("ReservedWordAllowed", func(t *testing.T) {
		_, err := schema.New("order").Columns(schema.Int("key").PrimaryKey(), schema.String("group")).Build()
		assert.NoError(t, err)
	})
}

func TestSchemaError(t *testing.T) {
	assert.Equal(t, "schema: user.id: bad", (&schema.SchemaError{Table: "user", Column: "id", Msg: "bad"}).Error())
	assert.Equal(t, "schema: user: bad", (&schema.SchemaError{Table: "user", Msg: "bad"}).Error())
	assert.Equal(t, "schema: bad", (&schema.SchemaError{Msg: "bad"}).Error())
	assert.False(t, schema.IsSchemaError(nil))
	assert.False(t, schema.IsSchemaError(errors.New("bad")))
}

func TestGoName(t *testing.T) {
	for in, want := range map[string]string{
		"id":         "ID",
		"author_id":  "AuthorID",
		"name":       "Name",
		"avatar_url": "AvatarURL",
		"created_at": "CreatedAt",
		"user_uuid":  "UserUUID",
	} {
		assert.Equal(t, want, schema.GoName(in), in)
	}
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]schema.Type{
		"int":       schema.TypeInt,
		"BIGINT":    schema.TypeInt64,
		"text":      schema.TypeString,
		"boolean":   schema.TypeBool,
		"timestamp": schema.TypeTime,
		"jsonb":     schema.TypeJSON,
		"uuid":      schema.TypeUUID,
		"bytea":     schema.TypeBytes,
		"double":    schema.TypeFloat,
	} {
		got, err := schema.ParseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := schema.ParseType("money")
	assert.Error(t, err)
	assert.Equal(t, "int64", schema.TypeInt64.String())
	assert.True(t, schema.TypeInt.Integer())
	assert.False(t, schema.TypeFloat.Integer())
}
