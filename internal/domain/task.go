package domain

import (
	"fmt"
	"strings"
	"time"
)

type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	ParentID  *string   `json:"parentId,omitempty"`
}

// IsSubTask reports whether the task hangs off a parent.
func (t Task) IsSubTask() bool {
	return t.ParentID != nil && *t.ParentID != ""
}

// NewTask is the caller-supplied part of a task at creation time.
// Everything else (id, timestamps, completion) is assigned by the store.
type NewTask struct {
	Text     string  `json:"text"`
	ParentID *string `json:"parentId,omitempty"`
}

// Validate trims the text in place and rejects empty descriptions.
func (n *NewTask) Validate() error {
	n.Text = strings.TrimSpace(n.Text)
	if n.Text == "" {
		return fmt.Errorf("%w: text is required", ErrValidation)
	}
	if n.ParentID != nil && strings.TrimSpace(*n.ParentID) == "" {
		n.ParentID = nil
	}
	return nil
}

// TaskPatch carries the mutable fields of an update. Nil means "leave as is".
type TaskPatch struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Empty reports whether the patch names no field at all.
func (p TaskPatch) Empty() bool {
	return p.Text == nil && p.Completed == nil
}

// Validate rejects empty patches and blank replacement text.
func (p *TaskPatch) Validate() error {
	if p.Empty() {
		return fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	if p.Text != nil {
		trimmed := strings.TrimSpace(*p.Text)
		if trimmed == "" {
			return fmt.Errorf("%w: text must not be empty", ErrValidation)
		}
		p.Text = &trimmed
	}
	return nil
}

// Apply copies the patched fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// ValidateID rejects blank identifiers before any store access.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: todo ID is required", ErrValidation)
	}
	return nil
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }
