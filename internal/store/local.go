package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/todump/todump/internal/domain"
)

// Local is the single-owner backend. Every mutation loads the whole list,
// applies the change and saves the whole list before returning.
type Local struct {
	mu      sync.Mutex
	persist Persistor
	now     func() time.Time
}

// LocalOption configures a Local store.
type LocalOption func(*Local)

// WithClock overrides the time source used for createdAt.
func WithClock(now func() time.Time) LocalOption {
	return func(l *Local) { l.now = now }
}

// NewLocal creates a Local store over p.
func NewLocal(p Persistor, opts ...LocalOption) *Local {
	l := &Local{persist: p, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Local) List(ctx context.Context) ([]domain.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tasks, err := l.persist.Load(ctx)
	if err != nil {
		return nil, err
	}
	domain.SortNewestFirst(tasks)
	return tasks, nil
}

func (l *Local) Create(ctx context.Context, in domain.NewTask) (domain.Task, error) {
	created, err := l.CreateMany(ctx, []domain.NewTask{in})
	if err != nil {
		return domain.Task{}, err
	}
	return created[0], nil
}

func (l *Local) CreateMany(ctx context.Context, in []domain.NewTask) ([]domain.Task, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: at least one todo is required", domain.ErrValidation)
	}
	if err := validateBatch(in); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tasks, err := l.persist.Load(ctx)
	if err != nil {
		return nil, err
	}
	batch := buildBatch(in, l.now)
	err = checkParents(batch, func(id string) (*domain.Task, error) {
		return domain.FindByID(tasks, id), nil
	})
	if err != nil {
		return nil, err
	}

	if err := l.persist.Save(ctx, append(tasks, batch...)); err != nil {
		return nil, err
	}
	return batch, nil
}

func (l *Local) Update(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	if err := domain.ValidateID(id); err != nil {
		return domain.Task{}, err
	}
	if err := patch.Validate(); err != nil {
		return domain.Task{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tasks, err := l.persist.Load(ctx)
	if err != nil {
		return domain.Task{}, err
	}
	t := domain.FindByID(tasks, id)
	if t == nil {
		return domain.Task{}, fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	}
	patch.Apply(t)
	updated := *t

	if err := l.persist.Save(ctx, tasks); err != nil {
		return domain.Task{}, err
	}
	return updated, nil
}

func (l *Local) Delete(ctx context.Context, id string) error {
	if err := domain.ValidateID(id); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tasks, err := l.persist.Load(ctx)
	if err != nil {
		return err
	}
	kept, ok := domain.RemoveCascade(tasks, id)
	if !ok {
		return fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	}
	return l.persist.Save(ctx, kept)
}
