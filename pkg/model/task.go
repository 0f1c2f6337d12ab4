package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harrisonrobin/todosync/pkg/colors"
)

// ErrNotFound is returned by stores when no task exists for a given id.
var ErrNotFound = errors.New("task not found")

type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	default:
		return "normal"
	}
}

// ParsePriority parses a priority name as accepted on the command line.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "low":
		return PriorityLow, nil
	case "normal", "":
		return PriorityNormal, nil
	case "high":
		return PriorityHigh, nil
	}
	return PriorityNormal, fmt.Errorf("unknown priority %q (want low, normal or high)", s)
}

// Task is the local canonical task record.
//
// Synced is true iff the last known local state has been confirmed persisted
// remotely. A task with Synced=false carries a pending local mutation and must
// not be overwritten by a pull until that mutation is confirmed pushed.
type Task struct {
	ID        string
	Text      string
	Priority  Priority
	Done      bool
	Color     int64 // ARGB, display only
	Deadline  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	Synced    bool
}

// New builds a fresh task with a generated id and creation stamps.
func New(text string, priority Priority, deadline *time.Time) Task {
	now := time.Now()
	return Task{
		ID:        uuid.NewString(),
		Text:      text,
		Priority:  priority,
		Color:     colors.Default,
		Deadline:  deadline,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
