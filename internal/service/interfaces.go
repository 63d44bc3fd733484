package service

import (
	"context"

	"github.com/todump/todump/internal/domain"
)

// FallbackNotice is shown when AI breakdown fails and the task is added as
// a plain todo instead.
const FallbackNotice = "Failed to get AI breakdown. Adding as regular todo."

// AddResult describes the outcome of TaskService.Add.
type AddResult struct {
	// Created holds the new records: one plain task, or the parent
	// followed by its sub-tasks in step order.
	Created []domain.Task
	// Tasks is the full list after the write, newest first.
	Tasks []domain.Task
	// Notice is a user-facing message, set when Fallback is true.
	Notice string
	// Fallback reports that AI breakdown was requested but failed.
	Fallback bool
}

// Parent returns the top-level record created by Add.
func (r *AddResult) Parent() domain.Task {
	return r.Created[0]
}

// Steps returns the sub-tasks created by an AI add.
func (r *AddResult) Steps() []domain.Task {
	return r.Created[1:]
}

type TaskService interface {
	Add(ctx context.Context, text string, withAI bool) (*AddResult, error)
	Toggle(ctx context.Context, id string) (domain.Task, error)
	Edit(ctx context.Context, id, text string) (domain.Task, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Task, error)
	Summary(ctx context.Context) (domain.Progress, error)
}

// UserService manages accounts and their bearer tokens for the server.
type UserService interface {
	// Register creates a user and returns it with a fresh token.
	Register(ctx context.Context, email, name string) (*domain.User, string, error)
	IssueToken(ctx context.Context, email string) (string, error)
	// Revoke invalidates every token held by the user.
	Revoke(ctx context.Context, email string) error
	List(ctx context.Context) ([]*domain.User, error)
}
