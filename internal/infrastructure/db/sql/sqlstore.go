// Package sqlstore holds the SQL-backed (SQLite or Postgres) account and
// destination directories, built on bun.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects the SQL driver and its DSN.
type Config struct {
	Driver string
	DSN    string
}

// Open connects to the configured database and verifies it with a ping.
func Open(ctx context.Context, cfg Config) (*bun.DB, error) {
	var (
		sqlDB *sql.DB
		db    *bun.DB
		err   error
	)

	switch cfg.Driver {
	case DriverSQLite:
		sqlDB, err = sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		db = bun.NewDB(sqlDB, sqlitedialect.New())
	case DriverPostgres:
		sqlDB, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", cfg.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sql ping: %w", err)
	}
	return db, nil
}

// CreateSchema creates the tables and indexes when they do not exist yet.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*accountRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create accounts table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*destinationRecord)(nil)).
		IfNotExists().
		ForeignKey(`("account_id") REFERENCES "accounts" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("create destinations table: %w", err)
	}

	if _, err := db.NewCreateIndex().
		Model((*destinationRecord)(nil)).
		Index("destinations_account_id_idx").
		Column("account_id").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create destinations index: %w", err)
	}
	return nil
}

// Pinger reports database reachability to the readiness probe.
type Pinger struct {
	db *bun.DB
}

func NewPinger(db *bun.DB) *Pinger {
	return &Pinger{db: db}
}

func (p *Pinger) Name() string { return "sql" }

func (p *Pinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}
