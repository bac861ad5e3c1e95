// Package storage provides the task persistence contract and its three
// interchangeable backends: in-memory, local JSON file and remote
// JSON-document bin.
package storage

import (
	"context"
	"fmt"

	"tracker-api/domain"
)

// Store is the contract shared by every backend.
//
// Ordering of GetAll is backend-specific and deliberately left that way:
// insertion order in memory, ascending id from the file store, document order
// from the remote store.
type Store interface {
	GetAll(ctx context.Context) ([]domain.Task, error)
	// Create assigns a fresh id per the backend's id policy and persists the
	// new task.
	Create(ctx context.Context, title string, status domain.Status) (domain.Task, error)
	// Update applies the non-nil patch fields to an existing task and
	// persists the result.
	Update(ctx context.Context, id int, patch TaskPatch) (domain.Task, error)
	// Delete removes a task. The file backend treats a missing id as a
	// no-op; the other backends return NotFoundError.
	Delete(ctx context.Context, id int) error
}

// TaskPatch carries a partial update. Nil fields are left unchanged. Title
// and Status go through the task's validated setters; Notes is assigned
// as-is.
type TaskPatch struct {
	Title  *string
	Status *domain.Status
	Notes  *string
}

func (p TaskPatch) apply(t *domain.Task) error {
	if p.Title != nil {
		if err := t.Rename(*p.Title); err != nil {
			return err
		}
	}
	if p.Status != nil {
		if err := t.ChangeStatus(*p.Status); err != nil {
			return err
		}
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	return nil
}

// NotFoundError reports an operation against an id the backend does not hold.
type NotFoundError struct {
	ID int
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("task %d not found", e.ID)
}
