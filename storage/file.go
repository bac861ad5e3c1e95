package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/bytedance/sonic"

	"tracker-api/domain"
)

// FileStore persists the document in a local JSON file. Every operation
// reads the whole document, mutates it in memory and rewrites the file via
// an atomic replace (temp file + rename), so a reader never observes a
// half-written document after a crash. Concurrent writers are not isolated:
// last write wins.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given path. A missing file
// reads as an empty version-1 document.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (domain.Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.NewDocument(), nil
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	if err := domain.ValidateDocument(data); err != nil {
		return domain.Document{}, fmt.Errorf("%s: %w", s.path, err)
	}
	var doc domain.Document
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if doc.Tasks == nil {
		doc.Tasks = []domain.Task{}
	}
	sort.Slice(doc.Tasks, func(i, j int) bool { return doc.Tasks[i].ID < doc.Tasks[j].ID })
	return doc, nil
}

func (s *FileStore) save(doc domain.Document) error {
	data, err := sonic.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// GetAll returns the document's tasks in ascending id order.
func (s *FileStore) GetAll(_ context.Context) ([]domain.Task, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Tasks, nil
}

func (s *FileStore) Create(_ context.Context, title string, status domain.Status) (domain.Task, error) {
	doc, err := s.load()
	if err != nil {
		return domain.Task{}, err
	}
	task, err := domain.NewTask(doc.NextID(), title, status)
	if err != nil {
		return domain.Task{}, err
	}
	doc.Tasks = append(doc.Tasks, task)
	if err := s.save(doc); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *FileStore) Update(_ context.Context, id int, patch TaskPatch) (domain.Task, error) {
	doc, err := s.load()
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
	if err := s.save(doc); err != nil {
		return domain.Task{}, err
	}
	return doc.Tasks[i], nil
}

// Delete removes the task with the given id. A missing id is deliberately a
// silent no-op here, unlike the other backends; the document is rewritten
// either way.
func (s *FileStore) Delete(_ context.Context, id int) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.RemoveTask(id)
	return s.save(doc)
}
