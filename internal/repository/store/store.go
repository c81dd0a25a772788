// Package store opens the analysis repository named by a database URL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/lightcurve/internal/repository"
	"github.com/RMahshie/lightcurve/internal/repository/postgres"
	"github.com/RMahshie/lightcurve/internal/repository/sqlite"
)

// ErrUnsupportedScheme is returned for database URLs without a known scheme.
var ErrUnsupportedScheme = errors.New("unsupported database URL scheme")

// Dialects understood by Open.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Store bundles an open database with its repository.
type Store struct {
	DB       *sql.DB
	Dialect  string
	Analyses repository.AnalysisRepository
}

// Open connects to the database at url and verifies the connection.
// postgres:// and postgresql:// URLs use lib/pq; sqlite://path opens a
// local file, sqlite://:memory: a private in-memory database.
func Open(ctx context.Context, url string) (*Store, error) {
	var s Store
	var err error

	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		s.Dialect = DialectPostgres
		s.DB, err = sql.Open("postgres", url)
		if err == nil {
			s.Analyses = postgres.NewPostgresAnalysisRepository(s.DB)
		}
	case strings.HasPrefix(url, "sqlite://"):
		s.Dialect = DialectSQLite
		s.DB, err = sqlite.Open(strings.TrimPrefix(url, "sqlite://"))
		if err == nil {
			s.Analyses = sqlite.NewAnalysisRepository(s.DB)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, redact(url))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", s.Dialect, err)
	}

	if err := s.DB.PingContext(ctx); err != nil {
		s.DB.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", s.Dialect, err)
	}

	log.Info().Str("dialect", s.Dialect).Msg("Connected to database")
	return &s, nil
}

// Migrate applies the schema for the store's dialect.
func (s *Store) Migrate() error {
	if s.Dialect == DialectPostgres {
		return postgres.Migrate(s.DB)
	}
	return sqlite.Migrate(s.DB)
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.DB.Close()
}

// redact drops credentials from a URL before it is logged or returned.
func redact(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return "<invalid>"
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = rest[at+1:]
	}
	return scheme + "://" + rest
}
