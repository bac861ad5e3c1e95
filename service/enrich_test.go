package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"tracker-api/client"
	"tracker-api/domain"
	"tracker-api/storage"
)

type stubPlanner struct {
	plan       string
	err        error
	lastPrompt string
}

func (s *stubPlanner) GeneratePlan(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	return s.plan, s.err
}

func quietLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestCreateAndEnrichAttachesPlan(t *testing.T) {
	store := storage.NewMemoryStore()
	planner := &stubPlanner{plan: "Step 1..."}
	e := NewEnricher(store, planner, quietLogger())
	ctx := context.Background()

	task, err := e.CreateAndEnrich(ctx, "Learn Go", domain.StatusTodo)
	if err != nil {
		t.Fatalf("create and enrich: %v", err)
	}
	if task.Notes != "Step 1..." {
		t.Fatalf("expected notes on returned task, got %q", task.Notes)
	}
	if !strings.Contains(planner.lastPrompt, "Learn Go") {
		t.Fatalf("expected prompt to embed title, got %q", planner.lastPrompt)
	}

	tasks, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if tasks[0].Notes != "Step 1..." {
		t.Fatalf("expected notes persisted, got %#v", tasks[0])
	}
}

func TestCreateAndEnrichSwallowsPlannerFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	planner := &stubPlanner{err: &client.TransportError{Status: 500, Body: "boom"}}
	e := NewEnricher(store, planner, quietLogger())

	task, err := e.CreateAndEnrich(context.Background(), "Learn Go", domain.StatusTodo)
	if err != nil {
		t.Fatalf("expected creation to succeed, got %v", err)
	}
	if task.Notes != "" {
		t.Fatalf("expected no notes, got %q", task.Notes)
	}

	tasks, _ := store.GetAll(context.Background())
	if len(tasks) != 1 || tasks[0].Notes != "" {
		t.Fatalf("unexpected store state: %#v", tasks)
	}
}

func TestCreateAndEnrichSkipsEmptyPlan(t *testing.T) {
	store := storage.NewMemoryStore()
	e := NewEnricher(store, &stubPlanner{plan: ""}, quietLogger())

	task, err := e.CreateAndEnrich(context.Background(), "Learn Go", domain.StatusTodo)
	if err != nil {
		t.Fatalf("create and enrich: %v", err)
	}
	if task.Notes != "" {
		t.Fatalf("expected no notes, got %q", task.Notes)
	}
}

type failingUpdateStore struct {
	*storage.MemoryStore
}

func (f *failingUpdateStore) Update(context.Context, int, storage.TaskPatch) (domain.Task, error) {
	return domain.Task{}, errors.New("update blew up")
}

func TestCreateAndEnrichSwallowsUpdateFailure(t *testing.T) {
	store := &failingUpdateStore{storage.NewMemoryStore()}
	e := NewEnricher(store, &stubPlanner{plan: "plan"}, quietLogger())

	task, err := e.CreateAndEnrich(context.Background(), "Learn Go", domain.StatusTodo)
	if err != nil {
		t.Fatalf("expected creation to succeed, got %v", err)
	}
	if task.Notes != "" {
		t.Fatalf("expected no notes after failed update, got %q", task.Notes)
	}
}

func TestCreateAndEnrichPropagatesCreateFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	planner := &stubPlanner{plan: "plan"}
	e := NewEnricher(store, planner, quietLogger())

	if _, err := e.CreateAndEnrich(context.Background(), "   ", domain.StatusTodo); err == nil {
		t.Fatal("expected validation error to propagate")
	}
	if planner.lastPrompt != "" {
		t.Fatal("planner must not be called when creation fails")
	}
}

func TestCreateAndEnrichNilPlanner(t *testing.T) {
	store := storage.NewMemoryStore()
	e := NewEnricher(store, nil, quietLogger())

	task, err := e.CreateAndEnrich(context.Background(), "Learn Go", domain.StatusTodo)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Notes != "" {
		t.Fatalf("expected no notes, got %q", task.Notes)
	}
}
