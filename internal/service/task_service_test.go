package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todump/todump/internal/breakdown"
	"github.com/todump/todump/internal/domain"
	"github.com/todump/todump/internal/llm"
	"github.com/todump/todump/internal/logging"
	"github.com/todump/todump/internal/store"
	"github.com/todump/todump/internal/testutil"
)

func tickingClock() func() time.Time {
	t := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newLocalStore() *store.Local {
	return store.NewLocal(store.NewMemory(), store.WithClock(tickingClock()))
}

// serviceWithReply wires the real breakdown requester to a scripted model.
func serviceWithReply(s store.Store, reply testutil.ScriptedReply) (TaskService, *testutil.ScriptedLLM) {
	client := testutil.NewScriptedLLM(reply)
	return NewTaskService(s, breakdown.NewRequester(client, nil), logging.Discard()), client
}

type breakerFunc func(ctx context.Context, text string) ([]string, error)

func (f breakerFunc) Breakdown(ctx context.Context, text string) ([]string, error) {
	return f(ctx, text)
}

// failingBatchStore fails every CreateMany.
type failingBatchStore struct {
	store.Store
	err error
}

func (f *failingBatchStore) CreateMany(context.Context, []domain.NewTask) ([]domain.Task, error) {
	return nil, f.err
}

func TestAdd_PlainCreatesOneRecord(t *testing.T) {
	svc := NewTaskService(newLocalStore(), nil, nil)

	res, err := svc.Add(context.Background(), "  Water plants ", false)
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.False(t, res.Fallback)
	assert.Empty(t, res.Notice)

	task := res.Created[0]
	assert.Equal(t, "Water plants", task.Text)
	assert.False(t, task.Completed)
	assert.Nil(t, task.ParentID)
	assert.Equal(t, []domain.Task{task}, res.Tasks)
}

func TestAdd_EmptyTextNeverCallsModel(t *testing.T) {
	svc, client := serviceWithReply(newLocalStore(), testutil.ScriptedReply{Text: `["x","y"]`})

	_, err := svc.Add(context.Background(), "   ", true)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, client.CallCount())
}

func TestAdd_AICreatesParentAndSteps(t *testing.T) {
	for n := 2; n <= 5; n++ {
		t.Run(fmt.Sprintf("%d steps", n), func(t *testing.T) {
			steps := make([]string, n)
			for i := range steps {
				steps[i] = fmt.Sprintf("Step %d", i+1)
			}
			svc := NewTaskService(newLocalStore(), breakerFunc(func(context.Context, string) ([]string, error) {
				return steps, nil
			}), nil)

			res, err := svc.Add(context.Background(), "Launch website", true)
			require.NoError(t, err)
			require.Len(t, res.Created, n+1)
			require.Len(t, res.Tasks, n+1)

			parent := res.Parent()
			assert.Equal(t, "Launch website", parent.Text)
			assert.Nil(t, parent.ParentID)
			for i, child := range res.Steps() {
				require.NotNil(t, child.ParentID)
				assert.Equal(t, parent.ID, *child.ParentID)
				assert.Equal(t, steps[i], child.Text)
			}

			tree := domain.Tree(res.Tasks)
			require.Len(t, tree, 1)
			assert.Len(t, tree[0].Children, n)
		})
	}
}

func TestAdd_AIRepairsFencedAndProseReplies(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{"strict", `["Step A", "Step B"]`, []string{"Step A", "Step B"}},
		{"fenced", "```json\n[\"Step A\"]\n```", []string{"Step A"}},
		{"prose", `Sure! Here's your list: ["Step A"] enjoy!`, []string{"Step A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := serviceWithReply(newLocalStore(), testutil.ScriptedReply{Text: tt.reply})

			res, err := svc.Add(context.Background(), "Do the thing", true)
			require.NoError(t, err)
			assert.False(t, res.Fallback)
			var got []string
			for _, c := range res.Steps() {
				got = append(got, c.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdd_FallbackOnBreakdownFailure(t *testing.T) {
	tests := []struct {
		name  string
		reply testutil.ScriptedReply
	}{
		{"unparseable", testutil.ScriptedReply{Text: "I cannot help with that"}},
		{"not configured", testutil.ScriptedReply{Err: llm.ErrNotConfigured}},
		{"upstream", testutil.ScriptedReply{Err: fmt.Errorf("%w: 503", llm.ErrUpstream)}},
		{"timeout", testutil.ScriptedReply{Err: llm.ErrTimeout}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel, Formatter: log.LogfmtFormatter})
			client := testutil.NewScriptedLLM(tt.reply)
			svc := NewTaskService(newLocalStore(), breakdown.NewRequester(client, nil), logger)

			res, err := svc.Add(context.Background(), "Plan a wedding", true)
			require.NoError(t, err)
			assert.True(t, res.Fallback)
			assert.Equal(t, FallbackNotice, res.Notice)
			require.Len(t, res.Created, 1)
			assert.Equal(t, "Plan a wedding", res.Created[0].Text)
			assert.Nil(t, res.Created[0].ParentID)
			assert.Len(t, res.Tasks, 1)
			assert.Contains(t, buf.String(), "level=warn")
		})
	}
}

func TestAdd_NilBreakerFallsBack(t *testing.T) {
	svc := NewTaskService(newLocalStore(), nil, nil)

	res, err := svc.Add(context.Background(), "anything", true)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Len(t, res.Tasks, 1)
}

func TestAdd_UnauthorizedBreakdownIsNotMasked(t *testing.T) {
	local := newLocalStore()
	svc := NewTaskService(local, breakerFunc(func(context.Context, string) ([]string, error) {
		return nil, domain.ErrUnauthorized
	}), nil)

	_, err := svc.Add(context.Background(), "x", true)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	list, err := local.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAdd_ChildWriteFailureRemovesParent(t *testing.T) {
	local := newLocalStore()
	injected := errors.New("disk full")
	svc := NewTaskService(&failingBatchStore{Store: local, err: injected},
		breakerFunc(func(context.Context, string) ([]string, error) { return []string{"a", "b"}, nil }),
		logging.Discard())

	_, err := svc.Add(context.Background(), "Parent", true)
	require.ErrorIs(t, err, injected)

	list, err := local.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list, "no childless AI parent may remain")
}

func TestToggle_TwiceRestores(t *testing.T) {
	svc := NewTaskService(newLocalStore(), nil, nil)
	ctx := context.Background()
	res, err := svc.Add(ctx, "flip me", false)
	require.NoError(t, err)
	id := res.Created[0].ID

	first, err := svc.Toggle(ctx, id)
	require.NoError(t, err)
	assert.True(t, first.Completed)

	second, err := svc.Toggle(ctx, id)
	require.NoError(t, err)
	assert.False(t, second.Completed)

	_, err = svc.Toggle(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEdit(t *testing.T) {
	svc := NewTaskService(newLocalStore(), nil, nil)
	ctx := context.Background()
	res, err := svc.Add(ctx, "old", false)
	require.NoError(t, err)
	id := res.Created[0].ID

	edited, err := svc.Edit(ctx, id, " new ")
	require.NoError(t, err)
	assert.Equal(t, "new", edited.Text)

	_, err = svc.Edit(ctx, id, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Edit(ctx, "missing", "text")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Edit(ctx, "", "text")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDelete_CascadesAndSummary(t *testing.T) {
	svc := NewTaskService(newLocalStore(),
		breakerFunc(func(context.Context, string) ([]string, error) { return []string{"a", "b", "c"}, nil }), nil)
	ctx := context.Background()

	ai, err := svc.Add(ctx, "Big goal", true)
	require.NoError(t, err)
	plain, err := svc.Add(ctx, "Small chore", false)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, plain.Created[0].ID)
	require.NoError(t, err)

	progress, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Progress{Completed: 1, Total: 2}, progress)

	require.NoError(t, svc.Delete(ctx, ai.Parent().ID))
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Small chore", list[0].Text)

	assert.ErrorIs(t, svc.Delete(ctx, ai.Parent().ID), domain.ErrNotFound)
}

type recordingObserver struct {
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.events = append(r.events, e)
}

func TestTaskService_ObservesUseCases(t *testing.T) {
	obs := &recordingObserver{}
	svc := NewTaskService(newLocalStore(), nil, nil, obs)
	ctx := context.Background()

	_, err := svc.Add(ctx, "x", false)
	require.NoError(t, err)
	_ = svc.Delete(ctx, "missing")

	require.Len(t, obs.events, 2)
	assert.Equal(t, "add", obs.events[0].Name)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, "delete", obs.events[1].Name)
	assert.ErrorIs(t, obs.events[1].Err, domain.ErrNotFound)
}
