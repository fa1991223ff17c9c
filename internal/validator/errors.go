package validator

import "fmt"

// ErrInvalidID indicates an identifier does not match its grammar.
type ErrInvalidID struct {
	Path  string
	Kind  string // event_id, task_id, tool_id
	Value string
}

func (e *ErrInvalidID) Error() string {
	return fmt.Sprintf("invalid %s %q in %s", e.Kind, e.Value, e.Path)
}

// ErrDuplicateID indicates an identifier that must be unique across the
// catalog appears twice.
type ErrDuplicateID struct {
	Kind      string
	ID        string
	FirstPath string
	Path      string
}

func (e *ErrDuplicateID) Error() string {
	return fmt.Sprintf("duplicate %s %q in %s (first declared in %s)", e.Kind, e.ID, e.Path, e.FirstPath)
}
