package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/taskdeck/apiserver/internal/store"
	"github.com/taskdeck/apiserver/types"
)

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task types.Task) (types.Task, error)
	ListByOwner(ctx context.Context, userID int) ([]types.Task, error)
	ListAll(ctx context.Context) ([]types.Task, error)
	GetOwned(ctx context.Context, id, userID int) (types.Task, error)
	UpdateOwned(ctx context.Context, id, userID int, patch types.TaskPatch) (types.Task, error)
	DeleteOwned(ctx context.Context, id, userID int) error
	ListCreatedSince(ctx context.Context, cutoff time.Time) ([]types.TaskWithOwner, error)
}

// TaskService encapsulates task use-cases, scoped to the caller's identity.
type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// Create stores a new task. An authenticated caller becomes the owner;
// anonymous tasks are stored unowned.
func (s *TaskService) Create(ctx context.Context, title string, description *string, caller *types.Identity) (types.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return types.Task{}, &ValidationError{Message: "Title is required"}
	}

	task := types.Task{
		Title:       title,
		Description: description,
	}
	if caller != nil {
		userID := caller.UserID
		task.UserID = &userID
	}

	return s.repo.Create(ctx, task)
}

// ListOwned returns the caller's tasks, most recent first.
func (s *TaskService) ListOwned(ctx context.Context, caller *types.Identity) ([]types.Task, error) {
	if caller == nil {
		return nil, &AuthError{Message: "Unauthorized"}
	}
	return s.repo.ListByOwner(ctx, caller.UserID)
}

// ListAll returns every task regardless of owner. This backs the public
// demo endpoint and deliberately skips ownership checks.
func (s *TaskService) ListAll(ctx context.Context) ([]types.Task, error) {
	return s.repo.ListAll(ctx)
}

// GetOwned returns a single task belonging to the caller.
func (s *TaskService) GetOwned(ctx context.Context, id int, caller *types.Identity) (types.Task, error) {
	if caller == nil {
		return types.Task{}, &AuthError{Message: "Unauthorized"}
	}
	task, err := s.repo.GetOwned(ctx, id, caller.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Task{}, &NotFoundError{Message: "Task not found"}
		}
		return types.Task{}, err
	}
	return task, nil
}

// Update applies a partial update to the caller's task. At least one field
// must be present; an explicit null description clears it, while a provided
// title must be non-empty.
func (s *TaskService) Update(ctx context.Context, id int, patch types.TaskPatch, caller *types.Identity) (types.Task, error) {
	if !patch.Title.Set && !patch.Description.Set {
		return types.Task{}, &ValidationError{Message: "At least one of title or description must be provided"}
	}
	if patch.Title.Set {
		if patch.Title.Value == nil {
			return types.Task{}, &ValidationError{Message: "Title cannot be empty"}
		}
		trimmed := strings.TrimSpace(*patch.Title.Value)
		if trimmed == "" {
			return types.Task{}, &ValidationError{Message: "Title cannot be empty"}
		}
		patch.Title.Value = &trimmed
	}
	if caller == nil {
		return types.Task{}, &AuthError{Message: "Unauthorized"}
	}

	task, err := s.repo.UpdateOwned(ctx, id, caller.UserID, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Task{}, &NotFoundError{Message: "Task not found"}
		}
		return types.Task{}, err
	}
	return task, nil
}

// Delete removes the caller's task.
func (s *TaskService) Delete(ctx context.Context, id int, caller *types.Identity) error {
	if caller == nil {
		return &AuthError{Message: "Unauthorized"}
	}
	if err := s.repo.DeleteOwned(ctx, id, caller.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Message: "Task not found"}
		}
		return err
	}
	return nil
}
