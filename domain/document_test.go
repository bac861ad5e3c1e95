package domain

import "testing"

func mustTask(t *testing.T, id int, title string, status Status) Task {
	t.Helper()
	task, err := NewTask(id, title, status)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	return task
}

func TestNextIDEmptyDocument(t *testing.T) {
	doc := NewDocument()
	if got := doc.NextID(); got != 1 {
		t.Fatalf("expected 1 for empty document, got %d", got)
	}
}

func TestNextIDReusesFreedMax(t *testing.T) {
	doc := NewDocument()
	doc.Tasks = []Task{
		mustTask(t, 1, "a", StatusTodo),
		mustTask(t, 5, "b", StatusDone),
	}
	if got := doc.NextID(); got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}
	if !doc.RemoveTask(5) {
		t.Fatal("expected task 5 to be removed")
	}
	if got := doc.NextID(); got != 2 {
		t.Fatalf("expected freed id 2 after removing max, got %d", got)
	}
}

func TestRemoveTaskMissing(t *testing.T) {
	doc := NewDocument()
	doc.Tasks = []Task{mustTask(t, 1, "a", StatusTodo)}
	if doc.RemoveTask(9) {
		t.Fatal("expected false for missing id")
	}
	if len(doc.Tasks) != 1 {
		t.Fatalf("document mutated: %#v", doc.Tasks)
	}
}

func TestValidateDocument(t *testing.T) {
	valid := []byte(`{"schema_version": 1, "tasks": [{"id": 1, "title": "a", "status": "todo"}]}`)
	if err := ValidateDocument(valid); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}

	cases := map[string]string{
		"tasks_not_array": `{"schema_version": 1, "tasks": {"id": 1}}`,
		"missing_tasks":   `{"schema_version": 1}`,
		"bad_status":      `{"tasks": [{"id": 1, "title": "a", "status": "later"}]}`,
		"missing_title":   `{"tasks": [{"id": 1, "status": "todo"}]}`,
		"not_json":        `{"tasks": [`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if err := ValidateDocument([]byte(raw)); err == nil {
				t.Fatal("expected validation failure")
			}
		})
	}
}
