package storage

import (
	"context"
	"sync"

	"tracker-api/domain"
)

// MemoryStore keeps tasks in a map guarded by a mutex. Its id counter is
// monotonic: unlike the file and remote backends, a deleted id is never
// handed out again. Listing follows insertion order.
type MemoryStore struct {
	mu     sync.Mutex
	tasks  map[int]domain.Task
	order  []int
	nextID int
}

// NewMemoryStore creates an empty volatile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:  make(map[int]domain.Task),
		nextID: 1,
	}
}

func (s *MemoryStore) GetAll(_ context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id])
	}
	return out, nil
}

func (s *MemoryStore) Create(_ context.Context, title string, status domain.Status) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := domain.NewTask(s.nextID, title, status)
	if err != nil {
		return domain.Task{}, err
	}
	s.nextID++
	s.tasks[task.ID] = task
	s.order = append(s.order, task.ID)
	return task, nil
}

func (s *MemoryStore) Update(_ context.Context, id int, patch TaskPatch) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return domain.Task{}, NotFoundError{ID: id}
	}
	if err := patch.apply(&task); err != nil {
		return domain.Task{}, err
	}
	s.tasks[id] = task
	return task, nil
}

func (s *MemoryStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return NotFoundError{ID: id}
	}
	delete(s.tasks, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
