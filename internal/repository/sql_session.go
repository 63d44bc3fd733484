package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/todump/todump/internal/db"
	"github.com/todump/todump/internal/domain"
)

// SQLSessionRepo implements SessionRepo.
type SQLSessionRepo struct {
	db db.DBTX
}

// NewSQLSessionRepo creates a new SQLSessionRepo.
func NewSQLSessionRepo(conn db.DBTX) *SQLSessionRepo {
	return &SQLSessionRepo{db: conn}
}

func (r *SQLSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	query := `INSERT INTO sessions (token_hash, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.TokenHash,
		s.UserID,
		formatTime(s.CreatedAt),
		nullableTimeToString(s.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (r *SQLSessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	query := `SELECT token_hash, user_id, created_at, expires_at FROM sessions WHERE token_hash = ?`
	var s domain.Session
	var createdAt string
	var expiresAt sql.NullString
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(&s.TokenHash, &s.UserID, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	s.CreatedAt = created
	s.ExpiresAt = parseNullableTime(expiresAt)
	return &s, nil
}

func (r *SQLSessionRepo) Delete(ctx context.Context, tokenHash string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (r *SQLSessionRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("deleting sessions for user: %w", err)
	}
	return nil
}
