package repository

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todump/todump/internal/domain"
	"github.com/todump/todump/internal/testutil"
)

// newNeo4jRepo connects to the graph named by TODUMP_TEST_NEO4J
// (bolt URI; credentials from TODUMP_TEST_NEO4J_USER/PASSWORD).
func newNeo4jRepo(t *testing.T) *Neo4jTaskRepo {
	t.Helper()
	uri := os.Getenv("TODUMP_TEST_NEO4J")
	if uri == "" {
		t.Skip("TODUMP_TEST_NEO4J not set")
	}
	ctx := context.Background()
	driver, err := OpenNeo4j(ctx, uri, os.Getenv("TODUMP_TEST_NEO4J_USER"), os.Getenv("TODUMP_TEST_NEO4J_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { driver.Close(ctx) })
	return NewNeo4jTaskRepo(driver, "")
}

func TestNeo4jTaskRepo_Lifecycle(t *testing.T) {
	repo := newNeo4jRepo(t)
	ctx := context.Background()
	owner := "owner-" + uuid.NewString()
	stranger := "stranger-" + uuid.NewString()

	parent := testutil.NewTestTask("parent")
	child := testutil.NewTestTask("child", testutil.WithParent(parent.ID))
	require.NoError(t, repo.Insert(ctx, owner, []domain.Task{parent}))
	require.NoError(t, repo.Insert(ctx, owner, []domain.Task{child}))

	tasks, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	got, err := repo.GetByID(ctx, owner, child.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, parent.ID, *got.ParentID)

	_, err = repo.GetByID(ctx, stranger, child.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	updated, err := repo.SetFields(ctx, owner, parent.ID, domain.TaskPatch{Completed: domain.BoolPtr(true)}, parent.CreatedAt)
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	require.NoError(t, repo.Delete(ctx, owner, parent.ID))
	tasks, err = repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	assert.ErrorIs(t, repo.Delete(ctx, owner, parent.ID), domain.ErrNotFound)
}

func TestNeo4jTaskRepo_InsertRejectsMissingParent(t *testing.T) {
	repo := newNeo4jRepo(t)
	ctx := context.Background()
	owner := "owner-" + uuid.NewString()

	sibling := testutil.NewTestTask("sibling")
	orphan := testutil.NewTestTask("orphan", testutil.WithParent(uuid.NewString()))

	err := repo.Insert(ctx, owner, []domain.Task{sibling, orphan})
	assert.ErrorIs(t, err, domain.ErrValidation)

	tasks, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, tasks, "failed batch must leave nothing behind")
}

func TestNeo4jTaskTx_ParentDeletedBeforeInsert(t *testing.T) {
	repo := newNeo4jRepo(t)
	ctx := context.Background()
	owner := "owner-" + uuid.NewString()

	parent := testutil.NewTestTask("parent")
	require.NoError(t, repo.Insert(ctx, owner, []domain.Task{parent}))

	child := testutil.NewTestTask("child", testutil.WithParent(parent.ID))
	err := NewNeo4jTaskTx(repo).WithinTaskTx(ctx, func(ctx context.Context, tx TaskRepo) error {
		_, err := tx.GetByID(ctx, owner, parent.ID)
		require.NoError(t, err)
		require.NoError(t, tx.Delete(ctx, owner, parent.ID))
		return tx.Insert(ctx, owner, []domain.Task{child})
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// The whole transaction rolled back, so the parent is still there.
	tasks, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, parent.ID, tasks[0].ID)
}

func TestNeo4jTaskTx_RollsBackOnError(t *testing.T) {
	repo := newNeo4jRepo(t)
	ctx := context.Background()
	owner := "owner-" + uuid.NewString()

	err := NewNeo4jTaskTx(repo).WithinTaskTx(ctx, func(ctx context.Context, tx TaskRepo) error {
		require.NoError(t, tx.Insert(ctx, owner, []domain.Task{testutil.NewTestTask("kept?")}))
		return testutil.ErrInjected
	})
	assert.ErrorIs(t, err, testutil.ErrInjected)

	tasks, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
