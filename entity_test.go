package strata_test

import (
	"fmt"
	"time"

	"github.com/syssam/strata"
	"github.com/syssam/strata/binder"
	"github.com/syssam/strata/schema"
)

var userTable = schema.New("user").
	Columns(
		schema.Int("id").PrimaryKey().AutoIncrement(),
		schema.String("name"),
		schema.String("email").Unique(),
	).
	MustBuild()

var postTable = schema.New("post").
	Columns(
		schema.Int("id").PrimaryKey().AutoIncrement(),
		schema.Int("author_id").References(userTable),
		schema.String("title").Unique(),
		schema.CreatedAt("created_at"),
		schema.UpdatedAt("updated_at"),
	).
	MustBuild()

var pairTable = schema.New("pair").
	Columns(
		schema.String("a").PrimaryKey(),
		schema.Int("b").PrimaryKey(),
		schema.String("val").Nullable(),
	).
	MustBuild()

// User implements strata.Entity by hand.
type User struct {
	ID    int
	Name  string
	Email string
}

func (*User) Schema() *schema.Table { return userTable }

func (u *User) Value(column string) (any, error) {
	switch column {
	case "id":
		return u.ID, nil
	case "name":
		return u.Name, nil
	case "email":
		return u.Email, nil
	}
	return nil, fmt.Errorf("user: unknown column %q", column)
}

func (u *User) Pointer(column string) (any, error) {
	switch column {
	case "id":
		return &u.ID, nil
	case "name":
		return &u.Name, nil
	case "email":
		return &u.Email, nil
	}
	return nil, fmt.Errorf("user: unknown column %q", column)
}

// clock is the time used by the Post timestamps hook.
var clock = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// Post implements strata.Entity with package binder and maintains its
// timestamps with a hook.
type Post struct {
	ID        int       `db:"id"`
	AuthorID  int       `db:"author_id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (*Post) Schema() *schema.Table { return postTable }

func (p *Post) Value(column string) (any, error) { return binder.Value(p, postTable, column) }

func (p *Post) Pointer(column string) (any, error) { return binder.Pointer(p, postTable, column) }

func (*Post) Hooks() []strata.Hook {
	return []strata.Hook{strata.Timestamps(func() time.Time { return clock })}
}

// Pair has a composite primary key.
type Pair struct {
	A   string
	B   int
	Val *string
}

func (*Pair) Schema() *schema.Table { return pairTable }

func (p *Pair) Value(column string) (any, error) { return binder.Value(p, pairTable, column) }

func (p *Pair) Pointer(column string) (any, error) { return binder.Pointer(p, pairTable, column) }
