package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/todump/todump/internal/domain"
	"github.com/todump/todump/internal/repository"
)

// TokenIssuer mints bearer tokens for a user.
type TokenIssuer interface {
	IssueToken(ctx context.Context, userID string, ttl time.Duration) (string, error)
}

type userService struct {
	users    repository.UserRepo
	sessions repository.SessionRepo
	issuer   TokenIssuer
	ttl      time.Duration
	observer UseCaseObserver
}

// NewUserService creates the account service. Tokens it issues expire after
// ttl; zero means they never expire.
func NewUserService(users repository.UserRepo, sessions repository.SessionRepo, issuer TokenIssuer, ttl time.Duration, observers ...UseCaseObserver) UserService {
	return &userService{
		users:    users,
		sessions: sessions,
		issuer:   issuer,
		ttl:      ttl,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *userService) observe(ctx context.Context, name string, startedAt time.Time, err error) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
	})
}

func (s *userService) Register(ctx context.Context, email, name string) (user *domain.User, token string, err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "user.register", startedAt, err) }()

	email = strings.TrimSpace(email)
	if _, perr := mail.ParseAddress(email); perr != nil {
		return nil, "", fmt.Errorf("%w: invalid email %q", domain.ErrValidation, email)
	}

	user = &domain.User{
		ID:        uuid.New().String(),
		Email:     strings.ToLower(email),
		Name:      strings.TrimSpace(name),
		CreatedAt: startedAt,
	}
	if err = s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err = s.issuer.IssueToken(ctx, user.ID, s.ttl)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *userService) IssueToken(ctx context.Context, email string) (token string, err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "user.token", startedAt, err) }()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("looking up %s: %w", email, err)
	}
	return s.issuer.IssueToken(ctx, user.ID, s.ttl)
}

func (s *userService) Revoke(ctx context.Context, email string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "user.revoke", startedAt, err) }()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("looking up %s: %w", email, err)
	}
	return s.sessions.DeleteByUser(ctx, user.ID)
}

func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}
