package postgres

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/RMahshie/lightcurve/internal/repository"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate brings the PostgreSQL schema up to date.
func Migrate(db *sql.DB) error {
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres migration driver: %w", err)
	}
	migrations, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		return err
	}
	return repository.RunMigrations(migrations, "postgres", driver)
}
