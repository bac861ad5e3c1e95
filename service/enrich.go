// Package service orchestrates task creation with best-effort AI enrichment.
package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"tracker-api/domain"
	"tracker-api/storage"
)

// Planner generates an action plan for a prompt.
type Planner interface {
	GeneratePlan(ctx context.Context, prompt string) (string, error)
}

// Enricher creates tasks and attaches a generated plan to their notes.
// Creation must succeed; the enrichment step is strictly best-effort and its
// failures never reach the caller.
type Enricher struct {
	store   storage.Store
	planner Planner
	log     *log.Logger
}

// NewEnricher wires the enrichment service. A nil planner disables
// enrichment entirely; tasks are then created without notes.
func NewEnricher(store storage.Store, planner Planner, logger *log.Logger) *Enricher {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Enricher{store: store, planner: planner, log: logger}
}

func buildPrompt(title string) string {
	return fmt.Sprintf("You are a senior productivity mentor. Draft a short numbered action plan for the task: %q.", title)
}

// CreateAndEnrich creates the task, then tries to attach a generated plan as
// its notes. A failed or empty plan, or a failed notes update, leaves the
// task as created.
func (e *Enricher) CreateAndEnrich(ctx context.Context, title string, status domain.Status) (domain.Task, error) {
	task, err := e.store.Create(ctx, title, status)
	if err != nil {
		return domain.Task{}, err
	}
	if e.planner == nil {
		return task, nil
	}

	plan, err := e.planner.GeneratePlan(ctx, buildPrompt(task.Title))
	if err != nil {
		e.log.WithError(err).WithField("task_id", task.ID).Warn("plan generation failed; task created without notes")
		return task, nil
	}
	if plan == "" {
		e.log.WithField("task_id", task.ID).Debug("empty plan; skipping notes update")
		return task, nil
	}

	if _, err := e.store.Update(ctx, task.ID, storage.TaskPatch{Notes: &plan}); err != nil {
		e.log.WithError(err).WithField("task_id", task.ID).Warn("attaching plan failed; task created without notes")
		return task, nil
	}
	task.Notes = plan
	return task, nil
}
