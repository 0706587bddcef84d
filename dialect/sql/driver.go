package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/syssam/strata/dialect"
)

// Driver runs statements on a *sql.DB and starts transactions on it.
type Driver struct {
	Conn
}

// NewDriver returns a Driver speaking the given dialect over c.
func NewDriver(dialect string, c Conn) *Driver {
	c.dialect = dialect
	return &Driver{Conn: c}
}

// Open opens a database with the database/sql driver registered under
// the dialect name. Use OpenDB when the two differ, as for the "pgx"
// driver speaking postgres.
func Open(dialect, source string) (*Driver, error) {
	db, err := sql.Open(dialect, source)
	if err != nil {
		return nil, err
	}
	return OpenDB(dialect, db), nil
}

// OpenDB returns a Driver on an already opened database.
func OpenDB(dialect string, db *sql.DB) *Driver {
	return NewDriver(dialect, Conn{ExecQuerier: db})
}

// DB returns the database the driver was opened on.
func (d Driver) DB() *sql.DB {
	return d.ExecQuerier.(*sql.DB)
}

// Dialect returns one of the known dialects. A driver name with a suffix,
// such as "postgres-otel" for a wrapped driver, reports the dialect it
// starts with.
func (d Driver) Dialect() string {
	return baseDialect(d.dialect)
}

func baseDialect(name string) string {
	for _, known := range []string{dialect.MySQL, dialect.SQLite, dialect.Postgres} {
		if strings.HasPrefix(name, known) {
			return known
		}
	}
	return name
}

// Tx begins a transaction with the default options.
func (d *Driver) Tx(ctx context.Context) (dialect.Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx begins a transaction. Statements run on it use the dialect of
// the driver.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (dialect.Tx, error) {
	tx, err := d.DB().BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{Conn: Conn{ExecQuerier: tx, dialect: d.Dialect()}, Tx: tx}, nil
}

// Close closes the database.
func (d *Driver) Close() error { return d.DB().Close() }

// Tx is a transaction started by a Driver.
type Tx struct {
	Conn
	driver.Tx
}

// ExecQuerier is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn adapts an ExecQuerier to dialect.ExecQuerier. Arguments are passed
// as []any, results are read into a *Result and rows into a *Rows.
type Conn struct {
	ExecQuerier
	dialect string
}

// Dialect returns the dialect the connection was opened with.
func (c Conn) Dialect() string { return c.dialect }

// Exec runs a statement. v is nil or a *Result receiving its result.
func (c Conn) Exec(ctx context.Context, query string, args, v any) error {
	argv, err := argList(args)
	if err != nil {
		return err
	}
	var res sql.Result
	switch v.(type) {
	case nil, *sql.Result:
	default:
		return fmt.Errorf("dialect/sql: invalid type %T for exec result: expect *sql.Result", v)
	}
	if res, err = c.ExecContext(ctx, query, argv...); err != nil {
		return fmt.Errorf("dialect/sql: exec: %w", err)
	}
	if p, ok := v.(*sql.Result); ok {
		*p = res
	}
	return nil
}

// Query runs a statement and points v, which must be a *Rows, at its rows.
func (c Conn) Query(ctx context.Context, query string, args, v any) error {
	rows, ok := v.(*Rows)
	if !ok {
		return fmt.Errorf("dialect/sql: invalid type %T for query rows: expect *sql.Rows", v)
	}
	argv, err := argList(args)
	if err != nil {
		return err
	}
	r, err := c.QueryContext(ctx, query, argv...)
	if err != nil {
		return fmt.Errorf("dialect/sql: query: %w", err)
	}
	rows.ColumnScanner = r
	return nil
}

func argList(args any) ([]any, error) {
	argv, ok := args.([]any)
	if !ok {
		return nil, fmt.Errorf("dialect/sql: invalid type %T: expect []any for args", args)
	}
	return argv, nil
}

var (
	_ dialect.Driver = (*Driver)(nil)
	_ dialect.Tx     = (*Tx)(nil)
)

type (
	// Rows holds the rows of a query. It is passed by pointer so the
	// scanner behind it is never copied.
	Rows struct{ ColumnScanner }
	// Result is the result of an exec.
	Result = sql.Result
	// TxOptions configures BeginTx.
	TxOptions = sql.TxOptions
)

// ColumnScanner is the part of *sql.Rows that rows are decoded through.
type ColumnScanner interface {
	Close() error
	ColumnTypes() ([]*sql.ColumnType, error)
	Columns() ([]string, error)
	Err() error
	Next() bool
	NextResultSet() bool
	Scan(dest ...any) error
}
