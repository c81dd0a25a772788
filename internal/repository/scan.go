package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RMahshie/lightcurve/pkg/models"
)

// Column lists shared by every SQL implementation. Scan order follows them.
const (
	AnalysisColumns = "id, target, status, progress, dataset_key, error_message, created_at, updated_at, completed_at"
	ResultsColumns  = "id, analysis_id, candidates, counts, flux_max, artifacts, created_at"
)

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanAnalysis reads one row selected with AnalysisColumns.
func ScanAnalysis(row RowScanner) (*models.Analysis, error) {
	var analysis models.Analysis
	var datasetKey, errorMsg sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&analysis.ID,
		&analysis.Target,
		&analysis.Status,
		&analysis.Progress,
		&datasetKey,
		&errorMsg,
		&analysis.CreatedAt,
		&analysis.UpdatedAt,
		&completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if datasetKey.Valid {
		analysis.DatasetKey = &datasetKey.String
	}
	if errorMsg.Valid {
		analysis.ErrorMsg = &errorMsg.String
	}
	if completedAt.Valid {
		analysis.CompletedAt = &completedAt.Time
	}

	return &analysis, nil
}

// ScanAnalyses drains rows selected with AnalysisColumns.
func ScanAnalyses(rows *sql.Rows) ([]*models.Analysis, error) {
	defer rows.Close()

	var analyses []*models.Analysis
	for rows.Next() {
		analysis, err := ScanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}
	return analyses, rows.Err()
}

// EncodedResults holds the JSON columns of a results row.
type EncodedResults struct {
	Candidates string
	Counts     string
	Artifacts  string
}

// EncodeResults marshals the JSON columns of results.
func EncodeResults(results *models.AnalysisResults) (EncodedResults, error) {
	candidates, err := json.Marshal(results.Candidates)
	if err != nil {
		return EncodedResults{}, fmt.Errorf("failed to marshal candidates: %w", err)
	}
	counts, err := json.Marshal(results.Counts)
	if err != nil {
		return EncodedResults{}, fmt.Errorf("failed to marshal stage counts: %w", err)
	}
	artifacts, err := json.Marshal(results.Artifacts)
	if err != nil {
		return EncodedResults{}, fmt.Errorf("failed to marshal artifacts: %w", err)
	}
	return EncodedResults{
		Candidates: string(candidates),
		Counts:     string(counts),
		Artifacts:  string(artifacts),
	}, nil
}

// ScanResults reads one row selected with ResultsColumns.
func ScanResults(row RowScanner) (*models.AnalysisResults, error) {
	var results models.AnalysisResults
	var candidates, counts []byte
	var artifacts sql.NullString

	err := row.Scan(
		&results.ID,
		&results.AnalysisID,
		&candidates,
		&counts,
		&results.FluxMax,
		&artifacts,
		&results.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(candidates, &results.Candidates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal candidates: %w", err)
	}
	if err := json.Unmarshal(counts, &results.Counts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stage counts: %w", err)
	}
	if artifacts.Valid && artifacts.String != "" {
		if err := json.Unmarshal([]byte(artifacts.String), &results.Artifacts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal artifacts: %w", err)
		}
	}

	return &results, nil
}
