package strata_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/query"
)

func mock(t *testing.T, name string) (*sql.Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, m, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, m.ExpectationsWereMet())
		db.Close()
	})
	return sql.OpenDB(name, db), m
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Returning", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectQuery("INSERT INTO public.user (name, email) VALUES ($1, $2) RETURNING id").
			WithArgs("a8m", "a8m@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		u := &User{Name: "a8m", Email: "a8m@example.com"}
		n, err := strata.Create(ctx, drv, u)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
		assert.Equal(t, 1, u.ID)
	})

	t.Run("LastInsertID", func(t *testing.T) {
		drv, m := mock(t, dialect.MySQL)
		m.ExpectExec("INSERT INTO `user` (name, email) VALUES (?, ?)").
			WithArgs("a8m", "a8m@example.com").
			WillReturnResult(sqlmock.NewResult(7, 1))
		u := &User{Name: "a8m", Email: "a8m@example.com"}
		n, err := strata.Create(ctx, drv, u)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
		assert.Equal(t, 7, u.ID)
	})

	t.Run("CompositeKey", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectExec("INSERT INTO public.pair (a, b, val) VALUES ($1, $2, $3)").
			WithArgs("x", 1, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		n, err := strata.Create(ctx, drv, &Pair{A: "x", B: 1})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("Timestamps", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectQuery("INSERT INTO public.post (author_id, title, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id").
			WithArgs(1, "hello", clock, clock).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
		p := &Post{AuthorID: 1, Title: "hello"}
		_, err := strata.Create(ctx, drv, p)
		require.NoError(t, err)
		assert.Equal(t, 10, p.ID)
		assert.Equal(t, clock, p.CreatedAt)
	})

	t.Run("UniqueViolation", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectQuery("INSERT INTO public.user (name, email) VALUES ($1, $2) RETURNING id").
			WithArgs("a8m", "taken@example.com").
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
		_, err := strata.Create(ctx, drv, &User{Name: "a8m", Email: "taken@example.com"})
		require.Error(t, err)
		assert.True(t, strata.IsQueryError(err))
		assert.True(t, strata.IsConstraintError(err))
		assert.True(t, strata.IsUniqueConstraintError(err))
		var qe *strata.QueryError
		require.True(t, errors.As(err, &qe))
		assert.Equal(t, "User", qe.Entity)
		assert.Equal(t, "public.user", qe.Table)
		assert.Equal(t, "insert", qe.Op)
		assert.Equal(t, strata.KindUnique, qe.Kind)
		var pqErr *pq.Error
		assert.True(t, errors.As(err, &pqErr), "driver error is preserved")
	})
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	const stmt = "SELECT id, name, email FROM public.user WHERE id = $1"

	t.Run("Found", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectQuery(stmt).WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(1, "a8m", "a8m@example.com"))
		u, err := strata.Find[User](ctx, drv, 1)
		require.NoError(t, err)
		assert.Equal(t, &User{ID: 1, Name: "a8m", Email: "a8m@example.com"}, u)
	})

	t.Run("Absent", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectQuery(stmt).WithArgs(2).WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))
		u, err := strata.Find[User](ctx, drv, 2)
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("ReadAbsent", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectQuery(stmt).WithArgs(2).WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))
		u, err := strata.Read[User](ctx, drv, 2)
		assert.Nil(t, u)
		require.Error(t, err)
		assert.True(t, strata.IsNotFound(err))
		assert.ErrorIs(t, err, strata.ErrNotFound)
		assert.Equal(t, "strata: User not found (key=[2])", err.Error())
	})

	t.Run("Composite", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectQuery("SELECT a, b, val FROM public.pair WHERE a = $1 AND b = $2").WithArgs("x", 1).
			WillReturnRows(sqlmock.NewRows([]string{"a", "b", "val"}).AddRow("x", 1, "v"))
		p, err := strata.Read[Pair](ctx, drv, "x", 1)
		require.NoError(t, err)
		require.NotNil(t, p.Val)
		assert.Equal(t, "v", *p.Val)
	})

	t.Run("Arity", func(t *testing.T) {
		drv, _ := mock(t, dialect.Postgres)
		_, err := strata.Find[Pair](ctx, drv, "x")
		assert.True(t, strata.IsBindError(err))
	})

	t.Run("NotSingular", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectQuery(stmt).WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(1, "a", "a").AddRow(1, "b", "b"))
		_, err := strata.Find[User](ctx, drv, 1)
		assert.True(t, strata.IsNotSingular(err))
	})

	t.Run("Decode", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectQuery(stmt).WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow("one", "a", "a"))
		_, err := strata.Find[User](ctx, drv, 1)
		require.Error(t, err)
		assert.True(t, strata.IsDecodeError(err))
	})

	t.Run("Connection", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectQuery(stmt).WithArgs(1).WillReturnError(context.DeadlineExceeded)
		_, err := strata.Find[User](ctx, drv, 1)
		assert.True(t, strata.IsConnectionError(err))
	})
}

func TestReadAll(t *testing.T) {
	ctx := context.Background()
	drv, m := mock(t, dialect.SQLite)
	m.ExpectQuery(`SELECT id, name, email FROM "user"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(1, "a", "a@x").AddRow(2, "b", "b@x"))
	us, err := strata.ReadAll[User](ctx, drv)
	require.NoError(t, err)
	require.Len(t, us, 2)
	assert.Equal(t, "b", us[1].Name)

	m.ExpectQuery(`SELECT id, name, email FROM "user"`).WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))
	us, err = strata.ReadAll[User](ctx, drv)
	require.NoError(t, err)
	assert.Empty(t, us)
}

func TestReload(t *testing.T) {
	ctx := context.Background()
	drv, m := mock(t, dialect.Postgres)
	const stmt = "SELECT id, name, email FROM public.user WHERE id = $1"
	m.ExpectQuery(stmt).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(3, "fresh", "f@x"))
	u := &User{ID: 3, Name: "stale"}
	require.NoError(t, strata.Reload(ctx, drv, u))
	assert.Equal(t, "fresh", u.Name)

	m.ExpectQuery(stmt).WithArgs(3).WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))
	assert.True(t, strata.IsNotFound(strata.Reload(ctx, drv, u)))
}

func TestUnique(t *testing.T) {
	ctx := context.Background()
	const stmt = "SELECT id, name, email FROM public.user WHERE email = $1"
	email := userTable.MustUnique("email")

	t.Run("Found", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectQuery(stmt).WithArgs("a@b.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(1, "a", "a@b.com"))
		u, err := strata.FindBy[User](ctx, drv, email, "a@b.com")
		require.NoError(t, err)
		assert.Equal(t, 1, u.ID)
	})

	t.Run("Absent", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectQuery(stmt).WithArgs("a@b.com").WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))
		u, err := strata.FindBy[User](ctx, drv, email, "a@b.com")
		require.NoError(t, err)
		assert.Nil(t, u)

		m.ExpectQuery(stmt).WithArgs("a@b.com").WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))
		_, err = strata.ReadBy[User](ctx, drv, email, "a@b.com")
		assert.True(t, strata.IsNotFound(err))
	})

	t.Run("Delete", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectExec("DELETE FROM public.user WHERE email = $1").WithArgs("a@b.com").
			WillReturnResult(sqlmock.NewResult(0, 1))
		n, err := strata.DeleteBy[User](ctx, drv, email, "a@b.com")
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("OtherTable", func(t *testing.T) {
		drv, _ := mock(t, dialect.Postgres)
		_, err := strata.FindBy[Post](ctx, drv, email, "a@b.com")
		assert.ErrorContains(t, err, "does not belong to Post")
	})
}

func TestWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("Update", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectExec("UPDATE public.user SET name = $1, email = $2 WHERE id = $3").
			WithArgs("a8m", "new@example.com", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		n, err := strata.Update(ctx, drv, &User{ID: 1, Name: "a8m", Email: "new@example.com"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("UpdateTimestamps", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		created := clock.AddDate(-1, 0, 0)
		m.ExpectExec("UPDATE public.post SET author_id = $1, title = $2, created_at = $3, updated_at = $4 WHERE id = $5").
			WithArgs(1, "t", created, clock, 9).
			WillReturnResult(sqlmock.NewResult(0, 1))
		p := &Post{ID: 9, AuthorID: 1, Title: "t", CreatedAt: created, UpdatedAt: created}
		_, err := strata.Update(ctx, drv, p)
		require.NoError(t, err)
		assert.Equal(t, created, p.CreatedAt)
		assert.Equal(t, clock, p.UpdatedAt)
	})

	t.Run("Upsert", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectExec("INSERT INTO public.user (id, name, email) VALUES ($1, $2, $3) ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email").
			WithArgs(1, "a8m", "a@b.com").
			WillReturnResult(sqlmock.NewResult(0, 1))
		n, err := strata.Upsert(ctx, drv, &User{ID: 1, Name: "a8m", Email: "a@b.com"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("Delete", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectExec("DELETE FROM public.pair WHERE a = $1 AND b = $2").
			WithArgs("x", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		n, err := strata.Delete(ctx, drv, &Pair{A: "x", B: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		m.ExpectExec("DELETE FROM public.pair WHERE a = $1 AND b = $2").
			WithArgs("y", 3).
			WillReturnResult(sqlmock.NewResult(0, 0))
		n, err = strata.DeleteByKey[Pair](ctx, drv, "y", 3)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("ForeignKeyViolation", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectExec("DELETE FROM public.user WHERE id = $1").
			WithArgs(1).
			WillReturnError(&pq.Error{Code: "23503"})
		_, err := strata.Delete(ctx, drv, &User{ID: 1})
		assert.True(t, strata.IsForeignKeyConstraintError(err))
		assert.Contains(t, err.Error(), "strata: delete User (public.user): foreign key constraint")
	})
}

func TestHooks(t *testing.T) {
	ctx := context.Background()
	drv, m := mock(t, dialect.Postgres)

	var stages []string
	record := func(s strata.Stage) strata.Hook {
		return strata.On(s, func(_ context.Context, q *query.Query, in *strata.HookInput) error {
			stages = append(stages, s.String()+" "+q.Op().String())
			if s == strata.PostExec {
				assert.EqualValues(t, 1, in.Rows)
				assert.NoError(t, in.Err)
			}
			if s == strata.PreExec {
				assert.Equal(t, []any{1}, in.Args)
			}
			return nil
		})
	}
	hooked := &hookedUser{User: User{ID: 1}, hooks: []strata.Hook{
		record(strata.PostExec), record(strata.PreBind), record(strata.PreExec),
	}}
	m.ExpectExec("DELETE FROM public.user WHERE id = $1").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	_, err := strata.Delete(ctx, drv, hooked)
	require.NoError(t, err)
	assert.Equal(t, []string{"pre-bind delete", "pre-exec delete", "post-exec delete"}, stages)

	t.Run("Abort", func(t *testing.T) {
		denied := errors.New("denied")
		h := &hookedUser{User: User{ID: 1}, hooks: []strata.Hook{
			strata.On(strata.PreExec, func(context.Context, *query.Query, *strata.HookInput) error { return denied }),
		}}
		_, err := strata.Delete(ctx, drv, h)
		assert.ErrorIs(t, err, denied)
		var he *strata.HookError
		require.True(t, errors.As(err, &he))
		assert.Equal(t, strata.PreExec, he.Stage)
	})
}

type hookedUser struct {
	User
	hooks []strata.Hook
}

func (h *hookedUser) Hooks() []strata.Hook { return h.hooks }

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectBegin()
		m.ExpectExec("DELETE FROM public.user WHERE id = $1").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
		m.ExpectCommit()
		err := strata.WithTx(ctx, drv, func(tx dialect.Tx) error {
			_, err := strata.Delete(ctx, tx, &User{ID: 1})
			return err
		})
		require.NoError(t, err)
	})

	t.Run("Rollback", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectBegin()
		m.ExpectRollback()
		boom := errors.New("boom")
		err := strata.WithTx(ctx, drv, func(dialect.Tx) error { return boom })
		assert.Equal(t, boom, err)
	})

	t.Run("RollbackFailed", func(t *testing.T) {
		drv, m := mock(t, dialect.Postgres)
		m.ExpectBegin()
		m.ExpectRollback().WillReturnError(errors.New("conn lost"))
		boom := errors.New("boom")
		err := strata.WithTx(ctx, drv, func(dialect.Tx) error { return boom })
		var re *strata.RollbackError
		require.True(t, errors.As(err, &re))
		assert.ErrorIs(t, err, boom)
	})
}
