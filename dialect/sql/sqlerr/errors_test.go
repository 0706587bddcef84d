package sqlerr_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/syssam/strata/dialect/sql/sqlerr"
)

func TestSQLState(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		state string
		class string
	}{
		{"pq", &pq.Error{Code: "23505"}, "23505", "23"},
		{"pgx", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "42P01"}), "42P01", "42"},
		{"mysql", &mysql.MySQLError{Number: 1406, SQLState: [5]byte{'2', '2', '0', '0', '1'}}, "22001", "22"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, ok := sqlerr.SQLState(tt.err)
			assert.True(t, ok)
			assert.Equal(t, tt.state, state)
			class, ok := sqlerr.Class(tt.err)
			assert.True(t, ok)
			assert.Equal(t, tt.class, class)
		})
	}

	_, ok := sqlerr.SQLState(errors.New("plain"))
	assert.False(t, ok)
	_, ok = sqlerr.SQLState(nil)
	assert.False(t, ok)
	_, ok = sqlerr.SQLState(&mysql.MySQLError{Number: 1062})
	assert.False(t, ok, "mysql error without state")
}

func TestConstraintErrors(t *testing.T) {
	tests := []struct {
		name                     string
		err                      error
		unique, foreignKey, chck bool
	}{
		{name: "pq/unique", err: &pq.Error{Code: "23505"}, unique: true},
		{name: "pq/fk", err: &pq.Error{Code: "23503"}, foreignKey: true},
		{name: "pgx/check", err: &pgconn.PgError{Code: "23514"}, chck: true},
		{name: "mysql/duplicate", err: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, unique: true},
		{name: "mysql/parent", err: &mysql.MySQLError{Number: 1451}, foreignKey: true},
		{name: "mysql/child", err: &mysql.MySQLError{Number: 1452}, foreignKey: true},
		{name: "mysql/check", err: &mysql.MySQLError{Number: 3819}, chck: true},
		{name: "sqlite/unique", err: errors.New("constraint failed: UNIQUE constraint failed: user.email (2067)"), unique: true},
		{name: "sqlite/fk", err: errors.New("constraint failed: FOREIGN KEY constraint failed (787)"), foreignKey: true},
		{name: "text/check", err: errors.New(`new row violates check constraint "positive"`), chck: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.unique, sqlerr.IsUniqueConstraintError(tt.err))
			assert.Equal(t, tt.foreignKey, sqlerr.IsForeignKeyConstraintError(tt.err))
			assert.Equal(t, tt.chck, sqlerr.IsCheckConstraintError(tt.err))
			assert.True(t, sqlerr.IsConstraintError(tt.err))
			assert.True(t, sqlerr.IsConstraintError(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}

	t.Run("NotNull", func(t *testing.T) {
		err := &pq.Error{Code: "23502"}
		assert.True(t, sqlerr.IsConstraintError(err))
		assert.False(t, sqlerr.IsUniqueConstraintError(err))
	})

	t.Run("Nil", func(t *testing.T) {
		assert.False(t, sqlerr.IsConstraintError(nil))
		assert.False(t, sqlerr.IsUniqueConstraintError(nil))
		assert.False(t, sqlerr.IsForeignKeyConstraintError(nil))
		assert.False(t, sqlerr.IsCheckConstraintError(nil))
	})

	t.Run("Other", func(t *testing.T) {
		assert.False(t, sqlerr.IsConstraintError(&pq.Error{Code: "42601"}))
		assert.False(t, sqlerr.IsConstraintError(errors.New("syntax error")))
	})
}

func TestIsConnectionError(t *testing.T) {
	for _, err := range []error{
		driver.ErrBadConn,
		sql.ErrConnDone,
		mysql.ErrInvalidConn,
		context.DeadlineExceeded,
		fmt.Errorf("query: %w", context.Canceled),
		&pq.Error{Code: "08006"},
		&pgconn.PgError{Code: "57P01"},
		errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
		errors.New("sql: database is closed"),
	} {
		assert.True(t, sqlerr.IsConnectionError(err), err.Error())
	}
	assert.False(t, sqlerr.IsConnectionError(nil))
	assert.False(t, sqlerr.IsConnectionError(&pq.Error{Code: "23505"}))
}
