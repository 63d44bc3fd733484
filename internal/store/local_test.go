package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todump/todump/internal/domain"
)

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	t := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newLocal(t *testing.T) (*Local, *Memory) {
	t.Helper()
	mem := NewMemory()
	return NewLocal(mem, WithClock(tickingClock())), mem
}

func TestLocal_CreateDefaults(t *testing.T) {
	s, mem := newLocal(t)
	ctx := context.Background()

	task, err := s.Create(ctx, domain.NewTask{Text: "  Buy milk  "})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Buy milk", task.Text)
	assert.False(t, task.Completed)
	assert.Nil(t, task.ParentID)
	assert.Equal(t, 1, mem.Saves)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, task, list[0])
}

func TestLocal_CreateRejectsEmptyText(t *testing.T) {
	s, mem := newLocal(t)

	_, err := s.Create(context.Background(), domain.NewTask{Text: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, mem.Saves)
}

func TestLocal_ListNewestFirst(t *testing.T) {
	s, _ := newLocal(t)
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		_, err := s.Create(ctx, domain.NewTask{Text: text})
		require.NoError(t, err)
	}
	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Text)
	assert.Equal(t, "first", list[2].Text)
}

func TestLocal_CreateManyOrderAndParents(t *testing.T) {
	s, _ := newLocal(t)
	ctx := context.Background()

	parent, err := s.Create(ctx, domain.NewTask{Text: "Plan trip"})
	require.NoError(t, err)

	children, err := s.CreateMany(ctx, []domain.NewTask{
		{Text: "Book flight", ParentID: &parent.ID},
		{Text: "Book hotel", ParentID: &parent.ID},
		{Text: "Pack", ParentID: &parent.ID},
	})
	require.NoError(t, err)
	require.Len(t, children, 3)
	assert.Equal(t, "Book flight", children[0].Text)
	assert.Equal(t, "Pack", children[2].Text)
	for i, c := range children {
		require.NotNil(t, c.ParentID)
		assert.Equal(t, parent.ID, *c.ParentID)
		if i > 0 {
			assert.True(t, c.CreatedAt.After(children[i-1].CreatedAt))
		}
	}

	tree := domain.Tree(mustList(t, s))
	require.Len(t, tree, 1)
	assert.Equal(t, []string{"Book flight", "Book hotel", "Pack"}, texts(tree[0].Children))
}

func TestLocal_CreateManyAllOrNothing(t *testing.T) {
	s, mem := newLocal(t)
	ctx := context.Background()

	_, err := s.CreateMany(ctx, []domain.NewTask{{Text: "ok"}, {Text: ""}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	missing := "no-such-id"
	_, err = s.CreateMany(ctx, []domain.NewTask{{Text: "ok"}, {Text: "child", ParentID: &missing}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.CreateMany(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Empty(t, mustList(t, s))
	assert.Zero(t, mem.Saves)
}

func TestLocal_DepthLimitEnforced(t *testing.T) {
	s, _ := newLocal(t)
	ctx := context.Background()

	parent, err := s.Create(ctx, domain.NewTask{Text: "parent"})
	require.NoError(t, err)
	child, err := s.Create(ctx, domain.NewTask{Text: "child", ParentID: &parent.ID})
	require.NoError(t, err)

	_, err = s.Create(ctx, domain.NewTask{Text: "grandchild", ParentID: &child.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, mustList(t, s), 2)
}

func TestLocal_ToggleTwiceRestores(t *testing.T) {
	s, _ := newLocal(t)
	ctx := context.Background()

	task, err := s.Create(ctx, domain.NewTask{Text: "flip"})
	require.NoError(t, err)

	on, err := s.Update(ctx, task.ID, domain.TaskPatch{Completed: domain.BoolPtr(!task.Completed)})
	require.NoError(t, err)
	assert.True(t, on.Completed)

	off, err := s.Update(ctx, task.ID, domain.TaskPatch{Completed: domain.BoolPtr(!on.Completed)})
	require.NoError(t, err)
	assert.Equal(t, task.Completed, off.Completed)
	assert.Equal(t, task.CreatedAt, off.CreatedAt)
}

func TestLocal_UpdateErrors(t *testing.T) {
	s, mem := newLocal(t)
	ctx := context.Background()

	task, err := s.Create(ctx, domain.NewTask{Text: "keep"})
	require.NoError(t, err)
	saves := mem.Saves

	_, err = s.Update(ctx, task.ID, domain.TaskPatch{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Update(ctx, task.ID, domain.TaskPatch{Text: domain.StringPtr("  ")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Update(ctx, "", domain.TaskPatch{Text: domain.StringPtr("x")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Update(ctx, "missing", domain.TaskPatch{Text: domain.StringPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, saves, mem.Saves, "rejected updates never write")
	assert.Equal(t, "keep", mustList(t, s)[0].Text)
}

func TestLocal_DeleteCascades(t *testing.T) {
	s, _ := newLocal(t)
	ctx := context.Background()

	parent, err := s.Create(ctx, domain.NewTask{Text: "parent"})
	require.NoError(t, err)
	_, err = s.CreateMany(ctx, []domain.NewTask{
		{Text: "a", ParentID: &parent.ID},
		{Text: "b", ParentID: &parent.ID},
	})
	require.NoError(t, err)
	lone, err := s.Create(ctx, domain.NewTask{Text: "lone"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, parent.ID))
	list := mustList(t, s)
	require.Len(t, list, 1)
	assert.Equal(t, lone.ID, list[0].ID)

	assert.ErrorIs(t, s.Delete(ctx, parent.ID), domain.ErrNotFound)
}

func TestLocal_DeleteChildOnly(t *testing.T) {
	s, _ := newLocal(t)
	ctx := context.Background()

	parent, err := s.Create(ctx, domain.NewTask{Text: "parent"})
	require.NoError(t, err)
	child, err := s.Create(ctx, domain.NewTask{Text: "child", ParentID: &parent.ID})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, child.ID))
	list := mustList(t, s)
	require.Len(t, list, 1)
	assert.Equal(t, parent.ID, list[0].ID)
}

func TestLocal_JSONFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "todos.json")
	ctx := context.Background()

	s := NewLocal(NewJSONFile(path), WithClock(tickingClock()))
	assert.Empty(t, mustList(t, s), "missing file is an empty list")

	parent, err := s.Create(ctx, domain.NewTask{Text: "persisted"})
	require.NoError(t, err)
	_, err = s.Create(ctx, domain.NewTask{Text: "step", ParentID: &parent.ID})
	require.NoError(t, err)

	reopened := NewLocal(NewJSONFile(path))
	list := mustList(t, reopened)
	require.Len(t, list, 2)
	assert.Equal(t, "step", list[0].Text)
	require.NotNil(t, list[0].ParentID)
	assert.Equal(t, parent.ID, *list[0].ParentID)
	assert.True(t, list[1].CreatedAt.Equal(parent.CreatedAt))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"parentId"`)
	assert.Contains(t, string(raw), `"createdAt"`)
}

func TestJSONFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewJSONFile(path).Load(context.Background())
	assert.Error(t, err)
}

func mustList(t *testing.T, s Store) []domain.Task {
	t.Helper()
	list, err := s.List(context.Background())
	require.NoError(t, err)
	return list
}

func texts(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Text
	}
	return out
}
