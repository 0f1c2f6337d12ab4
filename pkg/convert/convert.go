package convert

import (
	"fmt"
	"time"

	"github.com/harrisonrobin/todosync/pkg/colors"
	"github.com/harrisonrobin/todosync/pkg/model"
	"github.com/harrisonrobin/todosync/pkg/remote"
)

const (
	importanceLow       = "low"
	importanceBasic     = "basic"
	importanceImportant = "important"
)

// Converter maps tasks between the local record shape and the remote wire
// shape. Local time is millisecond resolution, the wire is seconds.
type Converter struct {
	deviceTag string
}

// New creates a converter stamping outbound records with the given client
// instance tag.
func New(deviceTag string) *Converter {
	return &Converter{deviceTag: deviceTag}
}

// ToRemote builds the wire record for a local task. created_at always comes
// from the record itself so the remote creation time never drifts forward on
// edits; only a record that was never stamped gets "now". changed_at is set to
// now at conversion time — callers must hand in non-decreasing times for
// successive conversions of the same id.
func (c *Converter) ToRemote(t model.Task, now time.Time) remote.Record {
	created := t.CreatedAt
	if created.IsZero() {
		created = now
	}

	rec := remote.Record{
		ID:            t.ID,
		Text:          t.Text,
		Importance:    importanceFor(t.Priority),
		Done:          t.Done,
		Color:         colors.FormatHex(t.Color),
		CreatedAt:     created.Unix(),
		ChangedAt:     now.Unix(),
		LastUpdatedBy: c.deviceTag,
	}
	if t.Deadline != nil {
		d := t.Deadline.Unix()
		rec.Deadline = &d
	}
	return rec
}

// FromRemote converts a pulled wire record into a local task. A malformed
// record yields an error for that item only; callers skip it and continue the
// batch. An unrecognized importance maps to normal, a missing or unparseable
// color takes the default.
func (c *Converter) FromRemote(rec remote.Record) (model.Task, error) {
	if rec.ID == "" {
		return model.Task{}, fmt.Errorf("remote record has no id")
	}
	if rec.Text == "" {
		return model.Task{}, fmt.Errorf("remote record %s has empty text", rec.ID)
	}

	color := colors.Default
	if rec.Color != "" {
		if v, err := colors.ParseHex(rec.Color); err == nil {
			color = v
		}
	}

	t := model.Task{
		ID:        rec.ID,
		Text:      rec.Text,
		Priority:  priorityFor(rec.Importance),
		Done:      rec.Done,
		Color:     color,
		CreatedAt: time.Unix(rec.CreatedAt, 0),
		UpdatedAt: time.Unix(rec.ChangedAt, 0),
	}
	if rec.Deadline != nil {
		d := time.Unix(*rec.Deadline, 0)
		t.Deadline = &d
	}
	return t, nil
}

// ContentEquals reports whether two tasks agree on the fields the merge phase
// compares: text, done, priority and deadline. Color and bookkeeping fields do
// not count as content.
func ContentEquals(a, b model.Task) bool {
	if a.Text != b.Text || a.Done != b.Done || a.Priority != b.Priority {
		return false
	}
	if (a.Deadline == nil) != (b.Deadline == nil) {
		return false
	}
	if a.Deadline != nil && !a.Deadline.Equal(*b.Deadline) {
		return false
	}
	return true
}

func importanceFor(p model.Priority) string {
	switch p {
	case model.PriorityLow:
		return importanceLow
	case model.PriorityHigh:
		return importanceImportant
	default:
		return importanceBasic
	}
}

func priorityFor(importance string) model.Priority {
	switch importance {
	case importanceLow:
		return model.PriorityLow
	case importanceImportant:
		return model.PriorityHigh
	default:
		return model.PriorityNormal
	}
}
