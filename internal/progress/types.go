// Package progress tracks per-task progress for versioned events in a local
// key/value store. Progress for one version of an event never carries over
// to another version.
package progress

import (
	"github.com/abhisek/a2companion/internal/catalog"
)

const (
	// StorageKey is the fixed key the whole progress document lives under.
	StorageKey = "archero2_event_companion_user_state_v1"

	// SchemaVersion is the only document version this package accepts.
	SchemaVersion = 1
)

// TaskFlags are the user-set markers on a task.
type TaskFlags struct {
	IsCompleted bool `json:"isCompleted"`
	IsClaimed   bool `json:"isClaimed"`
}

// TaskState is the tracked state of one task.
type TaskState struct {
	ProgressValue int       `json:"progressValue"`
	Flags         TaskFlags `json:"flags"`
}

// EventProgress holds the task states of one event version.
type EventProgress struct {
	EventID      string               `json:"eventId"`
	EventVersion catalog.Num          `json:"eventVersion"`
	Tasks        map[string]TaskState `json:"tasks"`
}

// Task returns the state of taskID, or the zero state if it was never touched.
func (e *EventProgress) Task(taskID string) TaskState {
	return e.Tasks[taskID]
}

func (e *EventProgress) clone() *EventProgress {
	out := &EventProgress{
		EventID:      e.EventID,
		EventVersion: e.EventVersion,
		Tasks:        make(map[string]TaskState, len(e.Tasks)),
	}
	for id, st := range e.Tasks {
		out.Tasks[id] = st
	}
	return out
}

// document is the persisted root.
type document struct {
	SchemaVersion int                       `json:"schemaVersion"`
	Events        map[string]*EventProgress `json:"events"`
}

func newDocument() *document {
	return &document{SchemaVersion: SchemaVersion, Events: make(map[string]*EventProgress)}
}

// EventKey returns the storage key of one event version, "<id>::v<version>".
func EventKey(eventID string, version catalog.Num) string {
	return eventID + "::v" + version.String()
}
