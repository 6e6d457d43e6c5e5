package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taskdeck/apiserver/types"
)

// TaskRepository handles persistence for tasks. Owner-scoped queries always
// filter on user_id so one user can never reach another user's rows.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task types.Task) (types.Task, error) {
	task.CreatedAt = time.Now()

	const query = `
		INSERT INTO tasks (title, description, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.UserID,
		task.CreatedAt,
	).Scan(&task.ID); err != nil {
		return types.Task{}, err
	}
	return task, nil
}

// ListByOwner returns the owner's tasks, most recent first.
func (r *TaskRepository) ListByOwner(ctx context.Context, userID int) ([]types.Task, error) {
	const query = `
		SELECT id, title, description, user_id, created_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanTasks(rows)
}

// ListAll returns every task regardless of owner, most recent first.
func (r *TaskRepository) ListAll(ctx context.Context) ([]types.Task, error) {
	const query = `
		SELECT id, title, description, user_id, created_at
		FROM tasks
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanTasks(rows)
}

// GetOwned returns the task only if it belongs to userID. A row owned by
// someone else is reported as ErrNotFound.
func (r *TaskRepository) GetOwned(ctx context.Context, id, userID int) (types.Task, error) {
	const query = `
		SELECT id, title, description, user_id, created_at
		FROM tasks
		WHERE id = $1 AND user_id = $2`
	var task types.Task
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.UserID,
		&task.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Task{}, ErrNotFound
		}
		return types.Task{}, err
	}
	return task, nil
}

// UpdateOwned applies the provided fields to the owner's task and returns the
// updated row. Fields left unset in the patch keep their current value.
func (r *TaskRepository) UpdateOwned(ctx context.Context, id, userID int, patch types.TaskPatch) (types.Task, error) {
	assignments := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if patch.Title.Set {
		args = append(args, patch.Title.Value)
		assignments = append(assignments, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Description.Set {
		args = append(args, patch.Description.Value)
		assignments = append(assignments, fmt.Sprintf("description = $%d", len(args)))
	}
	if len(assignments) == 0 {
		return r.GetOwned(ctx, id, userID)
	}

	query := "UPDATE tasks SET " + assignments[0]
	for _, assignment := range assignments[1:] {
		query += ", " + assignment
	}
	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d", len(args))
	args = append(args, userID)
	query += fmt.Sprintf(" AND user_id = $%d", len(args))
	query += " RETURNING id, title, description, user_id, created_at"

	var task types.Task
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.UserID,
		&task.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Task{}, ErrNotFound
		}
		return types.Task{}, err
	}
	return task, nil
}

// DeleteOwned removes the owner's task.
func (r *TaskRepository) DeleteOwned(ctx context.Context, id, userID int) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCreatedSince returns tasks created at or after the cutoff, joined to
// their owner's email, most recent first. Unowned tasks appear with a nil
// owner email.
func (r *TaskRepository) ListCreatedSince(ctx context.Context, cutoff time.Time) ([]types.TaskWithOwner, error) {
	const query = `
		SELECT t.id, t.title, t.description, t.user_id, t.created_at, u.email
		FROM tasks t
		LEFT JOIN users u ON u.id = t.user_id
		WHERE t.created_at >= $1
		ORDER BY t.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []types.TaskWithOwner
	for rows.Next() {
		var task types.TaskWithOwner
		if err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.UserID,
			&task.CreatedAt,
			&task.OwnerEmail,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func scanTasks(rows *sql.Rows) ([]types.Task, error) {
	defer rows.Close()

	tasks := make([]types.Task, 0)
	for rows.Next() {
		var task types.Task
		if err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.UserID,
			&task.CreatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}
