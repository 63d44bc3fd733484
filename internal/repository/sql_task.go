package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/todump/todump/internal/db"
	"github.com/todump/todump/internal/domain"
)

const taskColumns = `id, text, completed, parent_id, created_at`

// SQLTaskRepo implements TaskRepo on the todos table. It works on any DBTX,
// so the same type serves both pooled and transactional access.
type SQLTaskRepo struct {
	db db.DBTX
}

// NewSQLTaskRepo creates a new SQLTaskRepo.
func NewSQLTaskRepo(conn db.DBTX) *SQLTaskRepo {
	return &SQLTaskRepo{db: conn}
}

func (r *SQLTaskRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM todos WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating todos: %w", err)
	}
	return tasks, nil
}

func (r *SQLTaskRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM todos WHERE user_id = ? AND id = ?`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, ownerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	}
	return t, err
}

func (r *SQLTaskRepo) Insert(ctx context.Context, ownerID string, tasks []domain.Task) error {
	query := `INSERT INTO todos (id, user_id, parent_id, text, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	for _, t := range tasks {
		created := formatTime(t.CreatedAt)
		_, err := r.db.ExecContext(ctx, query,
			t.ID,
			ownerID,
			nullableString(t.ParentID),
			t.Text,
			boolToInt(t.Completed),
			created,
			created,
		)
		if err != nil {
			return fmt.Errorf("inserting todo: %w", err)
		}
	}
	return nil
}

func (r *SQLTaskRepo) SetFields(ctx context.Context, ownerID, id string, patch domain.TaskPatch, updatedAt time.Time) (*domain.Task, error) {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(updatedAt)}
	if patch.Text != nil {
		sets = append(sets, "text = ?")
		args = append(args, *patch.Text)
	}
	if patch.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, boolToInt(*patch.Completed))
	}
	args = append(args, ownerID, id)

	query := `UPDATE todos SET ` + strings.Join(sets, ", ") + ` WHERE user_id = ? AND id = ?`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating todo: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	}
	return r.GetByID(ctx, ownerID, id)
}

func (r *SQLTaskRepo) Delete(ctx context.Context, ownerID, id string) error {
	// The foreign key cascades as well; deleting the subtree explicitly keeps
	// the result independent of connection pragmas.
	query := `DELETE FROM todos WHERE user_id = ? AND id IN (
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM todos WHERE user_id = ? AND id = ?
			UNION ALL
			SELECT t.id FROM todos t JOIN subtree s ON t.parent_id = s.id
		)
		SELECT id FROM subtree
	)`
	res, err := r.db.ExecContext(ctx, query, ownerID, ownerID, id)
	if err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var completed int
	var parentID sql.NullString
	var createdAt string

	if err := row.Scan(&t.ID, &t.Text, &completed, &parentID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning todo: %w", err)
	}

	t.Completed = intToBool(completed)
	if parentID.Valid && parentID.String != "" {
		p := parentID.String
		t.ParentID = &p
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	t.CreatedAt = created
	return &t, nil
}

// SQLTaskTx implements TaskTx with a UnitOfWork: the callback's repo is bound
// to a single database transaction.
type SQLTaskTx struct {
	uow db.UnitOfWork
}

// NewSQLTaskTx creates a TaskTx backed by uow.
func NewSQLTaskTx(uow db.UnitOfWork) *SQLTaskTx {
	return &SQLTaskTx{uow: uow}
}

func (x *SQLTaskTx) WithinTaskTx(ctx context.Context, fn func(ctx context.Context, repo TaskRepo) error) error {
	return x.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, NewSQLTaskRepo(tx))
	})
}
