package api

import (
	"context"

	"tracker-api/domain"
	"tracker-api/storage"
)

// Store abstracts task persistence for handlers.
type Store interface {
	GetAll(ctx context.Context) ([]domain.Task, error)
	Update(ctx context.Context, id int, patch storage.TaskPatch) (domain.Task, error)
	Delete(ctx context.Context, id int) error
}

// Creator produces new tasks, possibly enriched with generated notes.
type Creator interface {
	CreateAndEnrich(ctx context.Context, title string, status domain.Status) (domain.Task, error)
}

// Deduper prevents reprocessing of duplicate create requests.
type Deduper interface {
	// Add records the idempotency key and returns true if it was newly added.
	Add(ctx context.Context, key string) (bool, error)
	// Remove deletes a previously added key, used when downstream processing fails.
	Remove(ctx context.Context, key string) error
}

const taskBodyMaxSize = 64 * 1024 // 64 KiB

// idempotencyKeyHeader carries the client-chosen key for POST /tasks. The
// effective key (client-provided or generated) is echoed back on the response.
const idempotencyKeyHeader = "Idempotency-Key"

// createTaskRequest is the POST /tasks body.
type createTaskRequest struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

// updateTaskRequest is the PUT /tasks/:id body. Nil fields are left unchanged.
type updateTaskRequest struct {
	Title  *string `json:"title"`
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

type errorResponse struct {
	Error string `json:"error"`
}
