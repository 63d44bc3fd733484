package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/todump/todump/internal/domain"
)

var testEmailCounter atomic.Int64

// Task options
type TaskOption func(*domain.Task)

func WithParent(id string) TaskOption {
	return func(t *domain.Task) {
		t.ParentID = &id
	}
}

func WithCompleted() TaskOption {
	return func(t *domain.Task) {
		t.Completed = true
	}
}

func WithCreatedAt(ts time.Time) TaskOption {
	return func(t *domain.Task) {
		t.CreatedAt = ts
	}
}

func NewTestTask(text string, opts ...TaskOption) domain.Task {
	t := domain.Task{
		ID:        uuid.New().String(),
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func NewTestUser(name string) *domain.User {
	n := testEmailCounter.Add(1)
	return &domain.User{
		ID:        uuid.New().String(),
		Email:     fmt.Sprintf("%s-%d@example.com", name, n),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}
