// Package sqlite stores analyses in a local SQLite database through the
// pure Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RMahshie/lightcurve/internal/repository"
	"github.com/RMahshie/lightcurve/pkg/models"
)

// AnalysisRepository implements repository.AnalysisRepository for SQLite.
type AnalysisRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewAnalysisRepository wraps an open SQLite handle.
func NewAnalysisRepository(db *sql.DB) repository.AnalysisRepository {
	return &AnalysisRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *AnalysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	query := `
		INSERT INTO analyses (id, target, status, progress, dataset_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.Target,
		analysis.Status,
		analysis.Progress,
		analysis.DatasetKey,
		analysis.CreatedAt.UTC(),
		analysis.UpdatedAt.UTC())

	return err
}

func (r *AnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	query := `SELECT ` + repository.AnalysisColumns + ` FROM analyses WHERE id = ?`

	return repository.ScanAnalysis(r.db.QueryRowContext(ctx, query, id.String()))
}

func (r *AnalysisRepository) GetByTarget(ctx context.Context, target string) ([]*models.Analysis, error) {
	query := `SELECT ` + repository.AnalysisColumns + `
		FROM analyses
		WHERE target = ?
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, target)
	if err != nil {
		return nil, err
	}
	return repository.ScanAnalyses(rows)
}

func (r *AnalysisRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	now := r.now()
	var completedAt any
	if status == models.StatusCompleted {
		completedAt = now
	}

	query := `
		UPDATE analyses
		SET status = ?, progress = ?, updated_at = ?, completed_at = COALESCE(?, completed_at)
		WHERE id = ?`

	return r.exec(ctx, id, query, status, progress, now, completedAt, id.String())
}

func (r *AnalysisRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE analyses
		SET status = 'failed', error_message = ?, updated_at = ?
		WHERE id = ?`

	return r.exec(ctx, id, query, errorMsg, r.now(), id.String())
}

func (r *AnalysisRepository) StoreResults(ctx context.Context, results *models.AnalysisResults) error {
	enc, err := repository.EncodeResults(results)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO analysis_results (` + repository.ResultsColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		results.ID,
		results.AnalysisID,
		enc.Candidates,
		enc.Counts,
		results.FluxMax,
		enc.Artifacts,
		results.CreatedAt.UTC())

	return err
}

func (r *AnalysisRepository) GetResults(ctx context.Context, analysisID uuid.UUID) (*models.AnalysisResults, error) {
	query := `SELECT ` + repository.ResultsColumns + ` FROM analysis_results WHERE analysis_id = ?`

	return repository.ScanResults(r.db.QueryRowContext(ctx, query, analysisID.String()))
}

func (r *AnalysisRepository) exec(ctx context.Context, id uuid.UUID, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("analysis %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
