package sql

import (
	"strings"

	"github.com/syssam/strata/dialect"
)

// IsReserved reports if the word is a keyword of the dialect that cannot
// be used as a bare column or table name. Words reserved by the SQL
// standard count for every dialect. An unknown dialect checks them all.
func IsReserved(dialectName, word string) bool {
	word = strings.ToUpper(word)
	if _, ok := keywords.standard[word]; ok {
		return true
	}
	if words, ok := keywords.dialects[dialectName]; ok {
		_, ok = words[word]
		return ok
	}
	for _, words := range keywords.dialects {
		if _, ok := words[word]; ok {
			return true
		}
	}
	return false
}

var keywords = struct {
	standard map[string]struct{}
	dialects map[string]map[string]struct{}
}{
	standard: set(
		"ADD", "ALL", "ALTER", "ANALYZE", "AND", "ANY", "ARRAY", "AS", "ASC",
		"ASYMMETRIC", "AUTHORIZATION", "BETWEEN", "BINARY", "BOTH", "BY", "CASE",
		"CAST", "CHECK", "COLLATE", "COLUMN", "CONSTRAINT", "CREATE", "CROSS",
		"CURRENT_DATE", "CURRENT_ROLE", "CURRENT_TIME", "CURRENT_TIMESTAMP",
		"CURRENT_USER", "DATABASE", "DEFAULT", "DEFERRABLE", "DELETE", "DESC",
		"DISTINCT", "DO", "DROP", "ELSE", "END", "EXCEPT", "EXISTS", "FALSE",
		"FETCH", "FOR", "FOREIGN", "FROM", "FULL", "GRANT", "GROUP", "HAVING",
		"ILIKE", "IN", "INDEX", "INITIALLY", "INNER", "INSERT", "INTERSECT",
		"INTO", "IS", "ISNULL", "JOIN", "KEY", "KEYS", "LATERAL", "LEADING",
		"LEFT", "LIKE", "LIMIT", "LOCALTIME", "LOCALTIMESTAMP", "MATCH", "NATURAL",
		"NOT", "NOTNULL", "NULL", "OFFSET", "ON", "ONLY", "OR", "ORDER", "OUTER",
		"OVERLAPS", "PLACING", "PRIMARY", "RANGE", "REFERENCES", "REPLACE",
		"RETURNING", "RIGHT", "ROW", "ROWS", "SCHEMA", "SELECT", "SESSION_USER",
		"SET", "SIMILAR", "SOME", "SYMMETRIC", "TABLE", "THEN", "TO", "TRAILING",
		"TRUE", "UNION", "UNIQUE", "UPDATE", "USER", "USING", "VALUES",
		"VARIADIC", "VERBOSE", "WHEN", "WHERE", "WINDOW", "WITH",
	),
	dialects: map[string]map[string]struct{}{
		// Reserved and type or function name keywords.
		dialect.Postgres: set(
			"ALL", "ANALYSE", "ANALYZE", "AND", "ANY", "ARRAY", "AS", "ASC",
			"ASYMMETRIC", "AUTHORIZATION", "BINARY", "BOTH", "CASE", "CAST",
			"CHECK", "COLLATE", "COLLATION", "COLUMN", "CONCURRENTLY",
			"CONSTRAINT", "CREATE", "CROSS", "CURRENT_CATALOG", "CURRENT_DATE",
			"CURRENT_ROLE", "CURRENT_SCHEMA", "CURRENT_TIME", "CURRENT_TIMESTAMP",
			"CURRENT_USER", "DEFAULT", "DEFERRABLE", "DESC", "DISTINCT", "DO",
			"ELSE", "END", "EXCEPT", "FALSE", "FETCH", "FOR", "FOREIGN", "FREEZE",
			"FROM", "FULL", "GRANT", "GROUP", "HAVING", "ILIKE", "IN", "INITIALLY",
			"INNER", "INTERSECT", "INTO", "IS", "ISNULL", "JOIN", "LATERAL",
			"LEADING", "LEFT", "LIKE", "LIMIT", "LOCALTIME", "LOCALTIMESTAMP",
			"NATURAL", "NOT", "NOTNULL", "NULL", "OFFSET", "ON", "ONLY", "OR",
			"ORDER", "OUTER", "OVERLAPS", "PLACING", "PRIMARY", "REFERENCES",
			"RETURNING", "RIGHT", "SELECT", "SESSION_USER", "SIMILAR", "SOME",
			"SYMMETRIC", "SYSTEM_USER", "TABLE", "TABLESAMPLE", "THEN", "TO",
			"TRAILING", "TRUE", "UNION", "UNIQUE", "USER", "USING", "VARIADIC",
			"VERBOSE", "WHEN", "WHERE", "WINDOW", "WITH",
		),
		dialect.MySQL: set(
			"ACCESSIBLE", "ADD", "ALL", "ALTER", "ANALYZE", "AND", "AS", "ASC",
			"ASENSITIVE", "BEFORE", "BETWEEN", "BIGINT", "BINARY", "BLOB", "BOTH",
			"BY", "CALL", "CASCADE", "CASE", "CHANGE", "CHAR", "CHARACTER",
			"CHECK", "COLLATE", "COLUMN", "CONDITION", "CONSTRAINT", "CONTINUE",
			"CONVERT", "CREATE", "CROSS", "CUBE", "CUME_DIST", "CURRENT_DATE",
			"CURRENT_TIME", "CURRENT_TIMESTAMP", "CURRENT_USER", "CURSOR",
			"DATABASE", "DATABASES", "DAY_HOUR", "DAY_MICROSECOND", "DAY_MINUTE",
			"DAY_SECOND", "DEC", "DECIMAL", "DECLARE", "DEFAULT", "DELAYED",
			"DELETE", "DENSE_RANK", "DESC", "DESCRIBE", "DETERMINISTIC",
			"DISTINCT", "DISTINCTROW", "DIV", "DOUBLE", "DROP", "DUAL", "EACH",
			"ELSE", "ELSEIF", "EMPTY", "ENCLOSED", "ESCAPED", "EXCEPT", "EXISTS",
			"EXIT", "EXPLAIN", "FALSE", "FETCH", "FIRST_VALUE", "FLOAT", "FLOAT4",
			"FLOAT8", "FOR", "FORCE", "FOREIGN", "FROM", "FULLTEXT", "FUNCTION",
			"GENERATED", "GET", "GRANT", "GROUP", "GROUPING", "GROUPS", "HAVING",
			"HIGH_PRIORITY", "HOUR_MICROSECOND", "HOUR_MINUTE", "HOUR_SECOND",
			"IF", "IGNORE", "IN", "INDEX", "INFILE", "INNER", "INOUT",
			"INSENSITIVE", "INSERT", "INT", "INT1", "INT2", "INT3", "INT4", "INT8",
			"INTEGER", "INTERSECT", "INTERVAL", "INTO", "IO_AFTER_GTIDS",
			"IO_BEFORE_GTIDS", "IS", "ITERATE", "JOIN", "JSON_TABLE", "KEY",
			"KEYS", "KILL", "LAG", "LAST_VALUE", "LATERAL", "LEAD", "LEADING",
			"LEAVE", "LEFT", "LIKE", "LIMIT", "LINEAR", "LINES", "LOAD",
			"LOCALTIME", "LOCALTIMESTAMP", "LOCK", "LONG", "LONGBLOB", "LONGTEXT",
			"LOOP", "LOW_PRIORITY", "MASTER_BIND", "MASTER_SSL_VERIFY_SERVER_CERT",
			"MATCH", "MAXVALUE", "MEDIUMBLOB", "MEDIUMINT", "MEDIUMTEXT",
			"MIDDLEINT", "MINUTE_MICROSECOND", "MINUTE_SECOND", "MOD", "MODIFIES",
			"NATURAL", "NOT", "NO_WRITE_TO_BINLOG", "NTH_VALUE", "NTILE", "NULL",
			"NUMERIC", "OF", "ON", "OPTIMIZE", "OPTIMIZER_COSTS", "OPTION",
			"OPTIONALLY", "OR", "ORDER", "OUT", "OUTER", "OUTFILE", "OVER",
			"PARTITION", "PERCENT_RANK", "PRECISION", "PRIMARY", "PROCEDURE",
			"PURGE", "RANGE", "RANK", "READ", "READS", "READ_WRITE", "REAL",
			"RECURSIVE", "REFERENCES", "REGEXP", "RELEASE", "RENAME", "REPEAT",
			"REPLACE", "REQUIRE", "RESIGNAL", "RESTRICT", "RETURN", "REVOKE",
			"RIGHT", "RLIKE", "ROW", "ROWS", "ROW_NUMBER", "SCHEMA", "SCHEMAS",
			"SECOND_MICROSECOND", "SELECT", "SENSITIVE", "SEPARATOR", "SET",
			"SHOW", "SIGNAL", "SMALLINT", "SPATIAL", "SPECIFIC", "SQL",
			"SQLEXCEPTION", "SQLSTATE", "SQLWARNING", "SQL_BIG_RESULT",
			"SQL_CALC_FOUND_ROWS", "SQL_SMALL_RESULT", "SSL", "STARTING",
			"STORED", "STRAIGHT_JOIN", "SYSTEM", "TABLE", "TERMINATED", "THEN",
			"TINYBLOB", "TINYINT", "TINYTEXT", "TO", "TRAILING", "TRIGGER",
			"TRUE", "UNDO", "UNION", "UNIQUE", "UNLOCK", "UNSIGNED", "UPDATE",
			"USAGE", "USE", "USING", "UTC_DATE", "UTC_TIME", "UTC_TIMESTAMP",
			"VALUES", "VARBINARY", "VARCHAR", "VARCHARACTER", "VARYING",
			"VIRTUAL", "WHEN", "WHERE", "WHILE", "WINDOW", "WITH", "WRITE", "XOR",
			"YEAR_MONTH", "ZEROFILL",
		),
		// SQLite accepts many keywords as names, but not in every position.
		dialect.SQLite: set(
			"ABORT", "ACTION", "ADD", "AFTER", "ALL", "ALTER", "ALWAYS", "ANALYZE",
			"AND", "AS", "ASC", "ATTACH", "AUTOINCREMENT", "BEFORE", "BEGIN",
			"BETWEEN", "BY", "CASCADE", "CASE", "CAST", "CHECK", "COLLATE",
			"COLUMN", "COMMIT", "CONFLICT", "CONSTRAINT", "CREATE", "CROSS",
			"CURRENT", "CURRENT_DATE", "CURRENT_TIME", "CURRENT_TIMESTAMP",
			"DATABASE", "DEFAULT", "DEFERRABLE", "DEFERRED", "DELETE", "DESC",
			"DETACH", "DISTINCT", "DO", "DROP", "EACH", "ELSE", "END", "ESCAPE",
			"EXCEPT", "EXCLUDE", "EXCLUSIVE", "EXISTS", "EXPLAIN", "FAIL",
			"FILTER", "FIRST", "FOLLOWING", "FOR", "FOREIGN", "FROM", "FULL",
			"GENERATED", "GLOB", "GROUP", "GROUPS", "HAVING", "IF", "IGNORE",
			"IMMEDIATE", "IN", "INDEX", "INDEXED", "INITIALLY", "INNER", "INSERT",
			"INSTEAD", "INTERSECT", "INTO", "IS", "ISNULL", "JOIN", "KEY", "LAST",
			"LEFT", "LIKE", "LIMIT", "MATCH", "MATERIALIZED", "NATURAL", "NO",
			"NOT", "NOTHING", "NOTNULL", "NULL", "NULLS", "OF", "OFFSET", "ON",
			"OR", "ORDER", "OTHERS", "OUTER", "OVER", "PARTITION", "PLAN",
			"PRAGMA", "PRECEDING", "PRIMARY", "QUERY", "RAISE", "RANGE",
			"RECURSIVE", "REFERENCES", "REGEXP", "REINDEX", "RELEASE", "RENAME",
			"REPLACE", "RESTRICT", "RETURNING", "RIGHT", "ROLLBACK", "ROW", "ROWS",
			"SAVEPOINT", "SELECT", "SET", "TABLE", "TEMP", "TEMPORARY", "THEN",
			"TIES", "TO", "TRANSACTION", "TRIGGER", "UNBOUNDED", "UNION", "UNIQUE",
			"UPDATE", "USING", "VACUUM", "VALUES", "VIEW", "VIRTUAL", "WHEN",
			"WHERE", "WINDOW", "WITH", "WITHOUT",
		),
	},
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
