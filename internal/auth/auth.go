// Package auth resolves bearer tokens to user identities.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/todump/todump/internal/domain"
	"github.com/todump/todump/internal/repository"
)

type ctxKey struct{}

// WithUser returns a context carrying userID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the authenticated user in ctx, or "".
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Authenticator maps a bearer token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// TokenAuthenticator resolves tokens through stored sessions. Only the
// SHA-256 of a token is ever persisted.
type TokenAuthenticator struct {
	sessions repository.SessionRepo
	now      func() time.Time
}

func NewTokenAuthenticator(sessions repository.SessionRepo) *TokenAuthenticator {
	return &TokenAuthenticator{sessions: sessions, now: time.Now}
}

func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: missing token", domain.ErrUnauthorized)
	}
	s, err := a.sessions.GetByTokenHash(ctx, HashToken(token))
	if errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("%w: unknown token", domain.ErrUnauthorized)
	}
	if err != nil {
		return "", err
	}
	if s.Expired(a.now()) {
		return "", fmt.Errorf("%w: session expired", domain.ErrUnauthorized)
	}
	return s.UserID, nil
}

// IssueToken creates a session for userID and returns the plaintext token.
// A zero ttl never expires.
func (a *TokenAuthenticator) IssueToken(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	now := a.now().UTC()
	s := &domain.Session{TokenHash: HashToken(token), UserID: userID, CreatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		s.ExpiresAt = &exp
	}
	if err := a.sessions.Create(ctx, s); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

// HashToken returns the hex SHA-256 of token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
