package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dtroode/townforge-client/internal/config"
	"github.com/dtroode/townforge-client/internal/logger"
	"github.com/dtroode/townforge-client/internal/repository/sqlstore/migrations"
)

// Dialect names the SQL flavour; values match goose dialect names.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// placeholder returns the bind parameter for the n-th (1-based) argument.
func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

type Connection struct {
	*sql.DB
	dialect Dialect
}

// NewConnection opens the marker database for driver and applies migrations.
func NewConnection(ctx context.Context, driver, dsn string, log *logger.Logger) (*Connection, error) {
	var (
		sqlDriver string
		dialect   Dialect
	)
	switch driver {
	case config.DriverSQLite:
		sqlDriver, dialect = "sqlite", DialectSQLite
		dsn = sqliteDSN(dsn)
	case config.DriverPostgres:
		sqlDriver, dialect = "pgx", DialectPostgres
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if dialect == DialectSQLite {
		// one writer keeps marker writes serialized on a single file
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	if err := Migrate(db, dialect, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Connection{DB: db, dialect: dialect}, nil
}

// Migrate applies the embedded goose migrations.
func Migrate(db *sql.DB, dialect Dialect, log *logger.Logger) error {
	goose.SetBaseFS(migrations.FS)
	if log != nil {
		goose.SetLogger(log)
	}
	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (c *Connection) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

func (c *Connection) Dialect() Dialect {
	return c.dialect
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}
