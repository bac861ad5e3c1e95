package domain

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaVersion identifies the persisted document layout. It is a
// forward-compatibility placeholder; nothing keys off it yet.
const SchemaVersion = 1

// Document is the full serialized task collection as persisted by the file
// and remote backends. Writers always replace the whole document; there are
// no partial updates.
type Document struct {
	SchemaVersion int    `json:"schema_version"`
	Tasks         []Task `json:"tasks"`
}

// NewDocument returns an empty version-1 document.
func NewDocument() Document {
	return Document{SchemaVersion: SchemaVersion, Tasks: []Task{}}
}

// NextID computes the id for the next created task: 1 when the document is
// empty, max(id)+1 otherwise. It is recomputed from the current document on
// every create rather than persisted, so deleting the highest-numbered task
// frees its id for reuse.
func (d Document) NextID() int {
	next := 1
	for _, t := range d.Tasks {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	return next
}

// FindTask returns the index of the task with the given id.
func (d Document) FindTask(id int) (int, bool) {
	for i, t := range d.Tasks {
		if t.ID == id {
			return i, true
		}
	}
	return 0, false
}

// RemoveTask deletes the task with the given id, reporting whether it was
// present.
func (d *Document) RemoveTask(id int) bool {
	i, ok := d.FindTask(id)
	if !ok {
		return false
	}
	d.Tasks = append(d.Tasks[:i], d.Tasks[i+1:]...)
	return true
}

const documentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["tasks"],
  "properties": {
    "schema_version": {"type": "integer"},
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title", "status"],
        "properties": {
          "id": {"type": "integer"},
          "title": {"type": "string"},
          "status": {"enum": ["todo", "in_progress", "done"]},
          "notes": {"type": "string"}
        }
      }
    }
  }
}`

var documentSchema = jsonschema.MustCompileString("document.json", documentSchemaJSON)

// ValidateDocument checks a raw persisted payload against the document schema
// before it is decoded into domain types, so malformed statuses or a
// non-array tasks field are rejected at the boundary.
func ValidateDocument(raw []byte) error {
	var payload any
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	if err := documentSchema.Validate(payload); err != nil {
		return fmt.Errorf("document schema: %w", err)
	}
	return nil
}
