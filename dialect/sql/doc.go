// Package sql provides the database/sql backed driver used to execute
// statements generated by strata, and the Builder that renders them.
//
// # Builder
//
// Builder writes keywords, identifiers and placeholders for one dialect:
//
//	b := sql.Dialect(dialect.Postgres)
//	b.WriteString("SELECT ").IdentComma("id", "name").
//	    WriteString(" FROM ").Table("public", "user").
//	    WriteString(" WHERE ").Ident("id").WriteString(" = ").Arg()
//	// SELECT id, name FROM public.user WHERE id = $1
//
// Identifiers are quoted only when they collide with a reserved word or
// contain characters the database would fold. Values are never written
// into the statement text; the builder only emits placeholders ($n for
// PostgreSQL, ? for MySQL and SQLite).
//
// # Driver
//
//	drv, err := sql.Open(dialect.Postgres, dsn)
//	db, _ := stdsql.Open("pgx", dsn) // database/sql
//	drv := sql.OpenDB(dialect.Postgres, db)
//
// # Decorators
//
//	sql.NewStatsDriver(drv, sql.WithSlowThreshold(200*time.Millisecond), sql.WithSlowQueryLog(log))
//	sql.NewDebugDriver(drv, log)
package sql
