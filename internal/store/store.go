// Package store defines the task store contract and its local and
// owner-scoped backends.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/todump/todump/internal/domain"
)

// Store persists the caller-visible task list.
type Store interface {
	// List returns all tasks, newest first.
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, in domain.NewTask) (domain.Task, error)
	// CreateMany creates every task or none, preserving input order.
	CreateMany(ctx context.Context, in []domain.NewTask) ([]domain.Task, error)
	Update(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error)
	// Delete removes the task and its sub-tasks.
	Delete(ctx context.Context, id string) error
}

// validateBatch validates every input up front so a bad member aborts the
// batch before anything is written.
func validateBatch(in []domain.NewTask) error {
	for i := range in {
		if err := in[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// buildBatch assigns ids and strictly increasing timestamps to a validated
// batch. Parents may refer to tasks earlier in the same batch.
func buildBatch(in []domain.NewTask, now func() time.Time) []domain.Task {
	stamps := domain.BatchTimestamps(now().UTC(), len(in))
	out := make([]domain.Task, len(in))
	for i, n := range in {
		out[i] = domain.Task{
			ID:        uuid.NewString(),
			Text:      n.Text,
			CreatedAt: stamps[i],
			ParentID:  n.ParentID,
		}
	}
	return out
}

// checkParents verifies each sub-task's parent against the existing tasks
// plus the batch members before it.
func checkParents(batch []domain.Task, lookup func(id string) (*domain.Task, error)) error {
	for i, t := range batch {
		if !t.IsSubTask() {
			continue
		}
		pid := *t.ParentID
		if p := domain.FindByID(batch[:i], pid); p != nil {
			if err := domain.CheckParent(pid, p); err != nil {
				return err
			}
			continue
		}
		parent, err := lookup(pid)
		if err != nil {
			return err
		}
		if err := domain.CheckParent(pid, parent); err != nil {
			return err
		}
	}
	return nil
}
