// Package dialect defines the contracts between strata and the database driver
// that executes the statements it generates.
//
// # Supported Dialects
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// The dialect decides placeholder style, identifier quoting, schema
// qualification and the conflict clause used by upserts.
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// Both Driver and Tx satisfy strata.Executor, so every operation can run
// inside or outside a transaction.
//
// # Sub-packages
//
//   - dialect/sql: database/sql backed driver, statement builder and decorators
//   - dialect/sql/sqlerr: classification of driver errors
package dialect
