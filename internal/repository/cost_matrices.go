package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/domain"
)

func (r *Repository) CreateCostMatrix(m *domain.CostMatrix) error {
	costs, err := json.Marshal(m.Costs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cost_matrices (name, description, tasks, machines, costs)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return r.dbpool.QueryRowContext(ctx, query, m.Name, m.Description, m.Tasks, m.Machines, costs).Scan(&m.ID, &m.CreatedAt, &m.Version)
}

func (r *Repository) GetCostMatrixByID(id int64) (*domain.CostMatrix, error) {
	query := `
		SELECT id, name, description, tasks, machines, costs, created_at, version
		FROM cost_matrices
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var m domain.CostMatrix
	var costs []byte
	dst := []any{
		&m.ID,
		&m.Name,
		&m.Description,
		&m.Tasks,
		&m.Machines,
		&costs,
		&m.CreatedAt,
		&m.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(costs, &m.Costs); err != nil {
		return nil, err
	}

	return &m, nil
}

// GetAllCostMatrices 返回所有执行时间表的元信息，不包含执行时间本身
func (r *Repository) GetAllCostMatrices() ([]*domain.CostMatrix, error) {
	query := `
		SELECT id, name, description, tasks, machines, created_at, version
		FROM cost_matrices
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matrices := []*domain.CostMatrix{}
	for rows.Next() {
		var m domain.CostMatrix
		dst := []any{
			&m.ID,
			&m.Name,
			&m.Description,
			&m.Tasks,
			&m.Machines,
			&m.CreatedAt,
			&m.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		matrices = append(matrices, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return matrices, nil
}

func (r *Repository) DeleteCostMatrix(id int64) error {
	query := `DELETE FROM cost_matrices WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, id)
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
