package repository

import (
	"context"
	"time"

	"github.com/todump/todump/internal/domain"
)

// TaskRepo persists tasks on behalf of an owner. Every method is scoped by
// ownerID: rows belonging to other owners are invisible and reported as
// domain.ErrNotFound.
type TaskRepo interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error)
	GetByID(ctx context.Context, ownerID, id string) (*domain.Task, error)
	Insert(ctx context.Context, ownerID string, tasks []domain.Task) error
	SetFields(ctx context.Context, ownerID, id string, patch domain.TaskPatch, updatedAt time.Time) (*domain.Task, error)
	// Delete removes the task and every task below it.
	Delete(ctx context.Context, ownerID, id string) error
}

// TaskTx runs fn against a TaskRepo whose calls share one transaction where
// the backend supports it.
type TaskTx interface {
	WithinTaskTx(ctx context.Context, fn func(ctx context.Context, repo TaskRepo) error) error
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

type SessionRepo interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteByUser(ctx context.Context, userID string) error
}
