package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cash-ai/internal/models"

	"github.com/jmoiron/sqlx"
)

// ErrRunNotFound is returned when no mapping run matches the lookup.
var ErrRunNotFound = errors.New("mapping run not found")

type RunRepository struct {
	db *sqlx.DB
}

func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = `id, run_code, case_id, status, input_json, result_json,
	diagnostics_json, error_message, created_at, updated_at`

func (r *RunRepository) Create(ctx context.Context, run *models.MappingRun) error {
	query := `INSERT INTO mapping_runs (run_code, case_id, status, input_json)
	          VALUES (:run_code, :case_id, :status, :input_json)`
	result, err := r.db.NamedExecContext(ctx, query, run)
	if err != nil {
		return fmt.Errorf("failed to insert mapping run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read mapping run id: %w", err)
	}
	run.ID = id
	return nil
}

func (r *RunRepository) GetByID(ctx context.Context, id int64) (*models.MappingRun, error) {
	var run models.MappingRun
	query := "SELECT " + runColumns + " FROM mapping_runs WHERE id = ? LIMIT 1"
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, notFound(err)
	}
	return &run, nil
}

func (r *RunRepository) GetByCode(ctx context.Context, code string) (*models.MappingRun, error) {
	var run models.MappingRun
	query := "SELECT " + runColumns + " FROM mapping_runs WHERE run_code = ? LIMIT 1"
	if err := r.db.GetContext(ctx, &run, query, code); err != nil {
		return nil, notFound(err)
	}
	return &run, nil
}

// List returns one page of runs, newest first, and the total count.
func (r *RunRepository) List(ctx context.Context, limit, offset int) ([]models.MappingRun, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM mapping_runs"); err != nil {
		return nil, 0, err
	}

	runs := []models.MappingRun{}
	query := `SELECT id, run_code, case_id, status, error_message, created_at, updated_at
	          FROM mapping_runs ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	if err := r.db.SelectContext(ctx, &runs, query, limit, offset); err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

func (r *RunRepository) UpdateStatus(ctx context.Context, id int64, status, message string) error {
	errMsg := sql.NullString{String: message, Valid: message != ""}
	query := "UPDATE mapping_runs SET status = ?, error_message = ?, updated_at = NOW() WHERE id = ?"
	return r.exec(ctx, query, status, errMsg, id)
}

// SaveResult stores the finished report and marks the run completed.
func (r *RunRepository) SaveResult(ctx context.Context, id int64, resultJSON, diagnosticsJSON string) error {
	query := `UPDATE mapping_runs SET status = ?, result_json = ?, diagnostics_json = ?,
	          error_message = NULL, updated_at = NOW() WHERE id = ?`
	return r.exec(ctx, query, models.RunStatusCompleted, resultJSON, diagnosticsJSON, id)
}

func (r *RunRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRunNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRunNotFound
	}
	return err
}
