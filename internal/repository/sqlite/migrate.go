package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "modernc.org/sqlite"

	"github.com/RMahshie/lightcurve/internal/repository"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Open opens the database file at path. ":memory:" opens a private
// in-memory database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// modernc gives every connection its own in-memory database
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate brings the SQLite schema up to date.
func Migrate(db *sql.DB) error {
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite migration driver: %w", err)
	}
	migrations, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		return err
	}
	return repository.RunMigrations(migrations, "sqlite", driver)
}
