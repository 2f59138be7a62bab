package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"task-manager/internal/domain"
)

// TaskFilter acota el listado de tareas del dueño.
type TaskFilter struct {
	Completed *bool
	Limit     int
	Skip      int
	SortBy    string // columna permitida: created_at | completed
	SortDesc  bool
}

// TaskRepository define el contrato de persistencia para tareas.
type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) error
	GetByID(ctx context.Context, ownerID, id string) (domain.Task, error)
	ListByOwner(ctx context.Context, ownerID string, filter TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, task domain.Task) error
	Delete(ctx context.Context, ownerID, id string) (bool, error)
}

// PgTaskRepository implementa TaskRepository usando pgxpool.
type PgTaskRepository struct {
	pool *pgxpool.Pool
}

func NewPgTaskRepository(pool *pgxpool.Pool) *PgTaskRepository {
	return &PgTaskRepository{pool: pool}
}

func (r *PgTaskRepository) Create(ctx context.Context, task domain.Task) error {
	const query = `
		INSERT INTO tasks (id, owner_id, description, completed, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.OwnerID,
		task.Description,
		task.Completed,
		task.CreatedAt,
	)
	return err
}

func (r *PgTaskRepository) GetByID(ctx context.Context, ownerID, id string) (domain.Task, error) {
	const query = `
		SELECT id, owner_id, description, completed, created_at
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`
	var t domain.Task
	err := r.pool.QueryRow(ctx, query, id, ownerID).Scan(
		&t.ID,
		&t.OwnerID,
		&t.Description,
		&t.Completed,
		&t.CreatedAt,
	)
	if err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (r *PgTaskRepository) ListByOwner(ctx context.Context, ownerID string, filter TaskFilter) ([]domain.Task, error) {
	query := `
		SELECT id, owner_id, description, completed, created_at
		FROM tasks
		WHERE owner_id = $1
	`
	args := []any{ownerID}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		query += fmt.Sprintf(" AND completed = $%d", len(args))
	}

	// Solo columnas conocidas; cualquier otra cae en el orden por defecto.
	sortColumn := "created_at"
	if filter.SortBy == "completed" {
		sortColumn = "completed"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortColumn, direction)

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Skip > 0 {
		args = append(args, filter.Skip)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		err = rows.Scan(
			&t.ID,
			&t.OwnerID,
			&t.Description,
			&t.Completed,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *PgTaskRepository) Update(ctx context.Context, task domain.Task) error {
	const query = `
		UPDATE tasks
		SET description = $3, completed = $4
		WHERE id = $1 AND owner_id = $2
	`
	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.OwnerID,
		task.Description,
		task.Completed,
	)
	return err
}

func (r *PgTaskRepository) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	const query = `
		DELETE FROM tasks
		WHERE id = $1 AND owner_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
