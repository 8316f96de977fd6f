package domain

import "errors"

// Priority represents the urgency level of a task.
// It is a closed set: only the three declared values are representable
// through ParsePriority, and Validate rejects anything else.
type Priority string

// Possible task priority values.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ErrInvalidPriority is returned when a priority literal is not one of
// the declared values.
var ErrInvalidPriority = errors.New("invalid task priority")

// ParsePriority converts a raw string into a Priority.
// Unknown literals are rejected rather than coerced.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.IsValid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// IsValid reports whether the priority is one of the declared values.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// String returns the scalar value of the priority.
func (p Priority) String() string {
	return string(p)
}
