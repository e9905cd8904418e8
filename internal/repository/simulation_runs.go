package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/domain"
)

const simulationRunColumns = `
	id,
	cost_matrix_id,
	generations,
	pool_size,
	threads,
	patience,
	seeds,
	status,
	best_score,
	makespan,
	assignments,
	duration_ms,
	error_message,
	notify_email,
	cached,
	created_at,
	finished_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSimulationRun(row rowScanner) (*domain.SimulationRun, error) {
	var run domain.SimulationRun
	var seeds, assignments []byte
	var durationMs int64
	var finishedAt sql.NullTime

	dst := []any{
		&run.ID,
		&run.CostMatrixID,
		&run.Generations,
		&run.PoolSize,
		&run.Threads,
		&run.Patience,
		&seeds,
		&run.Status,
		&run.BestScore,
		&run.Makespan,
		&assignments,
		&durationMs,
		&run.ErrorMessage,
		&run.NotifyEmail,
		&run.Cached,
		&run.CreatedAt,
		&finishedAt,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(seeds, &run.Seeds); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(assignments, &run.Assignments); err != nil {
		return nil, err
	}
	run.Duration = time.Duration(durationMs) * time.Millisecond
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	return &run, nil
}

// insertSimulationRunArgs 的顺序与 INSERT 语句的列一致
func insertSimulationRunArgs(run *domain.SimulationRun) ([]any, error) {
	seeds, err := json.Marshal(run.Seeds)
	if err != nil {
		return nil, err
	}
	assignments, err := json.Marshal(run.Assignments)
	if err != nil {
		return nil, err
	}

	return []any{
		run.ID,
		run.CostMatrixID,
		run.Generations,
		run.PoolSize,
		run.Threads,
		run.Patience,
		seeds,
		string(run.Status),
		run.BestScore,
		run.Makespan,
		assignments,
		run.Duration.Milliseconds(),
		run.ErrorMessage,
		run.NotifyEmail,
		run.Cached,
		run.FinishedAt,
	}, nil
}

func (r *Repository) InsertSimulationRun(run *domain.SimulationRun) error {
	args, err := insertSimulationRunArgs(run)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO simulation_runs (
			id, cost_matrix_id, generations, pool_size, threads, patience, seeds,
			status, best_score, makespan, assignments, duration_ms, error_message, notify_email, cached, finished_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&run.CreatedAt)
}

// UpdateSimulationRunResult 更新模拟的状态和结果
func (r *Repository) UpdateSimulationRunResult(run *domain.SimulationRun) error {
	assignments, err := json.Marshal(run.Assignments)
	if err != nil {
		return err
	}

	query := `
		UPDATE simulation_runs
		SET status = $1, best_score = $2, makespan = $3, assignments = $4,
			duration_ms = $5, error_message = $6, finished_at = $7
		WHERE id = $8
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query,
		string(run.Status),
		run.BestScore,
		run.Makespan,
		assignments,
		run.Duration.Milliseconds(),
		run.ErrorMessage,
		run.FinishedAt,
		run.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *Repository) GetSimulationRunByID(id uuid.UUID) (*domain.SimulationRun, error) {
	query := `SELECT ` + simulationRunColumns + ` FROM simulation_runs WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return scanSimulationRun(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetSimulationRunsByCostMatrixID(costMatrixID int64) ([]*domain.SimulationRun, error) {
	query := `SELECT ` + simulationRunColumns + ` FROM simulation_runs WHERE cost_matrix_id = $1 ORDER BY created_at DESC`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, costMatrixID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []*domain.SimulationRun{}
	for rows.Next() {
		run, err := scanSimulationRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}
