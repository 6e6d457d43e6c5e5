package types

import "time"

// Task represents a single to-do item.
type Task struct {
	// ID is the unique identifier of the task.
	ID int `json:"id" db:"id"`

	// Title is the short name of the task. Always non-empty after trimming.
	Title string `json:"title" db:"title"`

	// Description is an optional longer text. Nil maps to SQL NULL.
	Description *string `json:"description" db:"description"`

	// UserID is the owning user, or nil for tasks created anonymously.
	UserID *int `json:"user_id" db:"user_id"`

	// CreatedAt is the timestamp at which the task was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TaskPatch is a partial update to a task. Each field tracks whether it was
// present in the request, so "absent" and "explicit null" stay distinct.
type TaskPatch struct {
	Title       Field[*string] `json:"title"`
	Description Field[*string] `json:"description"`
}

// TaskWithOwner is a task joined to its owner's email, as produced by the
// digest scan. OwnerEmail is nil for unowned tasks.
type TaskWithOwner struct {
	Task
	OwnerEmail *string `json:"owner_email" db:"owner_email"`
}
