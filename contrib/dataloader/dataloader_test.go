package dataloader_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/binder"
	"github.com/syssam/strata/contrib/dataloader"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/rel"
	"github.com/syssam/strata/schema"
)

var (
	userTable = schema.New("user").
			Columns(
			schema.Int("id").PrimaryKey().AutoIncrement(),
			schema.String("name"),
		).
		MustBuild()
	postTable = schema.New("post").
			Columns(
			schema.Int("id").PrimaryKey().AutoIncrement(),
			schema.Int("author_id").References(userTable).Nullable(),
			schema.String("title"),
		).
		MustBuild()
)

type User struct {
	ID   int
	Name string
}

func (*User) Schema() *schema.Table                { return userTable }
func (u *User) Value(column string) (any, error)   { return binder.Value(u, userTable, column) }
func (u *User) Pointer(column string) (any, error) { return binder.Pointer(u, userTable, column) }

type Post struct {
	ID       int
	AuthorID *int
	Title    string
}

func (*Post) Schema() *schema.Table                { return postTable }
func (p *Post) Value(column string) (any, error)   { return binder.Value(p, postTable, column) }
func (p *Post) Pointer(column string) (any, error) { return binder.Pointer(p, postTable, column) }

var postAuthor = rel.MustRelation[Post, User](postTable.ForeignKeys()[0])

func ref(i int) *int { return &i }

type entity struct {
	ID   int
	Name string
}

func TestOrderByKeys(t *testing.T) {
	values := []*entity{{3, "c"}, {1, "a"}}
	got, errs := dataloader.OrderByKeys([]int{1, 2, 3}, values, func(e *entity) int { return e.ID })
	assert.Equal(t, []*entity{{1, "a"}, nil, {3, "c"}}, got)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], dataloader.ErrNotFound)
	assert.NoError(t, errs[2])
}

func TestGroupByKey(t *testing.T) {
	values := []*entity{{1, "a"}, {2, "b"}, {3, "a"}}
	groups := dataloader.GroupByKey(values, func(e *entity) string { return e.Name })
	assert.Len(t, groups["a"], 2)
	assert.Equal(t, [][]*entity{{{2, "b"}}, nil}, dataloader.OrderGroupsByKeys([]string{"b", "z"}, groups))
}

func TestKey(t *testing.T) {
	assert.Equal(t, dataloader.Key(7), dataloader.Key(int64(7)))
	assert.NotEqual(t, dataloader.Key(1, 23), dataloader.Key(12, 3))
}

func TestParents(t *testing.T) {
	db, m, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	drv := sql.OpenDB(dialect.Postgres, db)

	const q = "SELECT id, name FROM public.user WHERE id = $1"
	m.ExpectQuery(q).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "a8m"))
	m.ExpectQuery(q).WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	posts := []*Post{
		{ID: 1, AuthorID: ref(1)},
		{ID: 2},
		{ID: 3, AuthorID: ref(2)},
		{ID: 4, AuthorID: ref(1)},
	}
	authors, err := dataloader.Parents(context.Background(), drv, postAuthor, posts, 1)
	require.NoError(t, err)
	require.Len(t, authors, 4)
	assert.Equal(t, &User{ID: 1, Name: "a8m"}, authors[0])
	assert.Nil(t, authors[1])
	assert.Nil(t, authors[2])
	assert.Same(t, authors[0], authors[3])
	require.NoError(t, m.ExpectationsWereMet())

	m.ExpectQuery(q).WithArgs(1).WillReturnError(errors.New("connection reset"))
	_, err = dataloader.Parents(context.Background(), drv, postAuthor, posts[:1], 0)
	assert.Error(t, err)

	var zero rel.Relation[Post, User]
	_, err = dataloader.Parents(context.Background(), drv, zero, posts, 0)
	assert.ErrorContains(t, err, "zero relation")
}

func TestGroup(t *testing.T) {
	users := []*User{{ID: 1}, {ID: 2}, {ID: 3}}
	posts := []*Post{
		{ID: 1, AuthorID: ref(2)},
		{ID: 2, AuthorID: ref(1)},
		{ID: 3},
		{ID: 4, AuthorID: ref(2)},
		{ID: 5, AuthorID: ref(9)},
	}
	groups, err := dataloader.Group(postAuthor, users, posts)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, []*Post{posts[1]}, groups[0])
	assert.Equal(t, []*Post{posts[0], posts[3]}, groups[1])
	assert.Empty(t, groups[2])
}
