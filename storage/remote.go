package storage

import (
	"context"

	"tracker-api/domain"
)

// binClient is the slice of the JSON-bin client the remote store depends on.
type binClient interface {
	Fetch(ctx context.Context) (domain.Document, error)
	Push(ctx context.Context, doc domain.Document) error
}

// RemoteStore persists tasks in a remote JSON-document bin. Every operation
// fetches the latest full document, mutates it and pushes a complete
// replacement. No concurrency token is used: two callers racing through this
// cycle can both base their push on the same document and the second push
// silently clobbers the first. That is a known, accepted limitation.
type RemoteStore struct {
	bin binClient
}

// NewRemoteStore creates a store backed by the given bin client.
func NewRemoteStore(bin binClient) *RemoteStore {
	return &RemoteStore{bin: bin}
}

// GetAll returns the tasks in document order.
func (s *RemoteStore) GetAll(ctx context.Context) ([]domain.Task, error) {
	doc, err := s.bin.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Tasks, nil
}

func (s *RemoteStore) Create(ctx context.Context, title string, status domain.Status) (domain.Task, error) {
	doc, err := s.bin.Fetch(ctx)
	if err != nil {
		return domain.Task{}, err
	}
	task, err := domain.NewTask(doc.NextID(), title, status)
	if err != nil {
		return domain.Task{}, err
	}
	doc.Tasks = append(doc.Tasks, task)
	if err := s.bin.Push(ctx, doc); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *RemoteStore) Update(ctx context.Context, id int, patch TaskPatch) (domain.Task, error) {
	doc, err := s.bin.Fetch(ctx)
	if err != nil {
		return domain.Task{}, err
	}
	i, ok := doc.FindTask(id)
	if !ok {
		return domain.Task{}, NotFoundError{ID: id}
	}
	if err := patch.apply(&doc.Tasks[i]); err != nil {
		return domain.Task{}, err
	}
	if err := s.bin.Push(ctx, doc); err != nil {
		return domain.Task{}, err
	}
	return doc.Tasks[i], nil
}

func (s *RemoteStore) Delete(ctx context.Context, id int) error {
	doc, err := s.bin.Fetch(ctx)
	if err != nil {
		return err
	}
	if !doc.RemoveTask(id) {
		return NotFoundError{ID: id}
	}
	return s.bin.Push(ctx, doc)
}
