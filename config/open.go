package config

import (
	stdsql "database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open opens the configured database. The returned driver logs every
// statement when log.debug is set, and collects statistics when
// stats.enabled is set. Slow statements are logged as warnings.
func Open(cfg *Config, log logrus.FieldLogger) (dialect.Driver, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	db := cfg.Database
	if db.DSN == "" {
		return nil, fmt.Errorf("no database dsn configured")
	}
	sdb, err := stdsql.Open(db.Driver, db.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", db.Dialect, err)
	}
	drv := sql.OpenDB(db.Dialect, sdb)
	if db.MaxOpenConns > 0 {
		drv.DB().SetMaxOpenConns(db.MaxOpenConns)
	}
	log.WithFields(logrus.Fields{
		"dialect": db.Dialect,
		"driver":  db.Driver,
	}).Debug("database opened")

	var out dialect.Driver = drv
	if cfg.Stats.Enabled {
		out = sql.NewStatsDriver(out,
			sql.WithSlowThreshold(cfg.Stats.SlowThreshold),
			sql.WithSlowQueryLog(log),
		)
	}
	if cfg.Log.Debug {
		out = sql.NewDebugDriver(out, log)
	}
	return out, nil
}
