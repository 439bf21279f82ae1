package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Cierres-api/internal/domain/entity"
	"github.com/jhoicas/Cierres-api/internal/domain/repository"
)

var _ repository.BatchRunRepository = (*BatchRunRepo)(nil)

// BatchRunRepo persistencia de resúmenes de corridas batch.
type BatchRunRepo struct {
	q Querier
}

func NewBatchRunRepository(q Querier) *BatchRunRepo {
	return &BatchRunRepo{q: q}
}

const batchRunColumns = `
	id, closing_date, strategy, total_units, processed_units,
	failed_units, incomplete_units, started_at, finished_at, triggered_by`

func (r *BatchRunRepo) Create(ctx context.Context, run *entity.ClosingBatchRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	query := `
		INSERT INTO closing_batch_runs (` + batchRunColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		run.ID, run.ClosingDate, run.Strategy, run.TotalUnits, run.ProcessedUnits,
		run.FailedUnits, run.IncompleteUnits, run.StartedAt, run.FinishedAt, run.TriggeredBy,
	)
	if err != nil {
		return fmt.Errorf("create batch run: %w", err)
	}
	return nil
}

func (r *BatchRunRepo) GetByID(ctx context.Context, id string) (*entity.ClosingBatchRun, error) {
	query := `SELECT ` + batchRunColumns + ` FROM closing_batch_runs WHERE id = $1`
	run, err := scanBatchRun(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch run: %w", err)
	}
	return run, nil
}

func (r *BatchRunRepo) ListByDate(ctx context.Context, date time.Time) ([]*entity.ClosingBatchRun, error) {
	query := `
		SELECT ` + batchRunColumns + `
		FROM closing_batch_runs
		WHERE closing_date = $1
		ORDER BY started_at DESC`
	rows, err := r.q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list batch runs: %w", err)
	}
	defer rows.Close()

	var list []*entity.ClosingBatchRun
	for rows.Next() {
		run, err := scanBatchRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch run: %w", err)
		}
		list = append(list, run)
	}
	return list, rows.Err()
}

func scanBatchRun(row pgx.Row) (*entity.ClosingBatchRun, error) {
	var run entity.ClosingBatchRun
	err := row.Scan(
		&run.ID, &run.ClosingDate, &run.Strategy, &run.TotalUnits, &run.ProcessedUnits,
		&run.FailedUnits, &run.IncompleteUnits, &run.StartedAt, &run.FinishedAt, &run.TriggeredBy,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
