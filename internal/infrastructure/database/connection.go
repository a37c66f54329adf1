// Package database opens the order store. MySQL is the production driver;
// SQLite serves local development and tests. Both get the same schema from
// embedded migrations.
package database

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"haulage/internal/config"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name,
		)
		db, err = sql.Open(DriverMySQL, dsn)
	case DriverSQLite, "":
		db, err = openSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	if err := Migrate(db, driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return db, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if path == "" {
		path = "haulage.db"
	}
	db, err := sql.Open(DriverSQLite, path)
	if err != nil {
		return nil, err
	}

	// journal_mode is not supported for in-memory databases.
	_, _ = db.Exec(`PRAGMA journal_mode=WAL`)
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
