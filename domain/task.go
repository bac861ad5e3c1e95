package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

const maxTitleLen = 50

// ValidationError reports a rejected mutation of a task field. The task is
// left unchanged when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ParseStatus converts a raw string into a Status. Anything outside the three
// defined values is rejected so arbitrary strings never enter the domain layer.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusTodo, StatusInProgress, StatusDone:
		return s, nil
	default:
		return "", ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", raw)}
	}
}

// Task represents a single tracked item.
type Task struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Status Status `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// NewTask builds a task through the validated setters so the title and status
// invariants hold from the moment of creation. The ID is assigned by whichever
// store persists the task and is immutable afterwards.
func NewTask(id int, title string, status Status) (Task, error) {
	t := Task{ID: id}
	if err := t.Rename(title); err != nil {
		return Task{}, err
	}
	if err := t.ChangeStatus(status); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Rename replaces the title with the trimmed value. An empty or over-long
// result leaves the task untouched.
func (t *Task) Rename(newTitle string) error {
	trimmed := strings.TrimSpace(newTitle)
	if trimmed == "" {
		return ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(trimmed) > maxTitleLen {
		return ValidationError{Field: "title", Reason: fmt.Sprintf("must not exceed %d characters", maxTitleLen)}
	}
	t.Title = trimmed
	return nil
}

// ChangeStatus replaces the status after checking it is a defined value.
func (t *Task) ChangeStatus(newStatus Status) error {
	parsed, err := ParseStatus(string(newStatus))
	if err != nil {
		return err
	}
	t.Status = parsed
	return nil
}
