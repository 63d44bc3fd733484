package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todump/todump/internal/breakdown"
	"github.com/todump/todump/internal/domain"
	"github.com/todump/todump/internal/service"
	"github.com/todump/todump/internal/teatest"
)

func newUIDriver(t *testing.T, app *App) (*teatest.Driver, *uiModel) {
	t.Helper()
	m := newUIModel(context.Background(), app.Tasks)
	d := teatest.New(t, m)
	return d, d.Model.(*uiModel)
}

func seed(t *testing.T, app *App, texts ...string) {
	t.Helper()
	for _, text := range texts {
		_, err := app.Tasks.Add(context.Background(), text, false)
		require.NoError(t, err)
	}
}

func TestUI_LoadsListOnStart(t *testing.T) {
	app, _ := testApp(t, nil)
	seed(t, app, "first", "second")

	d, m := newUIDriver(t, app)

	require.Len(t, m.rows, 2)
	assert.Equal(t, "second", m.rows[0].Text)
	view := d.View()
	assert.Contains(t, view, "0 of 2 completed")
	assert.Contains(t, view, "›")
}

func TestUI_EmptyList(t *testing.T) {
	app, _ := testApp(t, nil)
	d, _ := newUIDriver(t, app)
	assert.Contains(t, d.View(), "Nothing here yet")
}

func TestUI_AddPlain(t *testing.T) {
	app, _ := testApp(t, nil)
	d, m := newUIDriver(t, app)

	d.PressKey('a')
	assert.Equal(t, modeAdd, m.mode)
	d.Type("buy milk")
	d.PressEnter()

	assert.Equal(t, modeBrowse, m.mode)
	require.Len(t, m.rows, 1)
	assert.Equal(t, "buy milk", m.rows[0].Text)
}

func TestUI_AddWithAI(t *testing.T) {
	app, _ := testApp(t, fixedSteps("Book flights", "Reserve hotel"))
	d, m := newUIDriver(t, app)

	d.PressKey('A')
	assert.True(t, m.withAI)
	d.Type("Plan trip")
	d.PressEnter()

	assert.False(t, m.loading)
	require.Len(t, m.rows, 3)
	assert.Equal(t, "Plan trip", m.rows[0].Text)
	assert.Equal(t, "Book flights", m.rows[1].Text)
	assert.Equal(t, "Reserve hotel", m.rows[2].Text)
	assert.Contains(t, d.View(), "0/2 steps")
}

func TestUI_TabTogglesAIAndFallbackShowsNotice(t *testing.T) {
	app, _ := testApp(t, breakerFunc(func(context.Context, string) ([]string, error) {
		return nil, breakdown.ErrParse
	}))
	d, m := newUIDriver(t, app)

	d.PressKey('a')
	d.PressTab()
	assert.True(t, m.withAI)
	d.Type("Plan trip")
	d.PressEnter()

	require.Len(t, m.rows, 1)
	assert.Contains(t, d.View(), service.FallbackNotice)
}

func TestUI_BlankInputIsIgnored(t *testing.T) {
	app, mem := testApp(t, nil)
	d, m := newUIDriver(t, app)

	d.PressKey('a')
	d.Type("   ")
	d.PressEnter()

	assert.Equal(t, modeAdd, m.mode)
	assert.Zero(t, mem.Saves)

	d.PressEsc()
	assert.Equal(t, modeBrowse, m.mode)
}

func TestUI_ToggleAndNavigate(t *testing.T) {
	app, _ := testApp(t, nil)
	seed(t, app, "older", "newer")
	d, m := newUIDriver(t, app)

	d.PressDown()
	assert.Equal(t, 1, m.cursor)
	d.PressSpace()

	all := listTasks(t, app)
	byText := map[string]domain.Task{}
	for _, task := range all {
		byText[task.Text] = task
	}
	assert.True(t, byText["older"].Completed)
	assert.False(t, byText["newer"].Completed)
	assert.Contains(t, d.View(), "1 of 2 completed")

	d.PressUp()
	d.PressKey('x')
	assert.Contains(t, d.View(), "2 of 2 completed")
}

func TestUI_Edit(t *testing.T) {
	app, _ := testApp(t, nil)
	seed(t, app, "old")
	d, m := newUIDriver(t, app)

	d.PressKey('e')
	assert.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "old", m.input.Value())
	d.Type(" and new")
	d.PressEnter()

	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, "old and new", listTasks(t, app)[0].Text)
}

func TestUI_DeleteParentCascades(t *testing.T) {
	app, _ := testApp(t, fixedSteps("a", "b"))
	_, err := app.Tasks.Add(context.Background(), "job", true)
	require.NoError(t, err)
	d, m := newUIDriver(t, app)
	require.Len(t, m.rows, 3)

	d.PressKey('d')

	assert.Empty(t, m.rows)
	assert.Empty(t, listTasks(t, app))
}

func TestUI_StoreErrorIsShown(t *testing.T) {
	app, _ := testApp(t, nil)
	seed(t, app, "x")
	d, m := newUIDriver(t, app)

	m.tasks = failingTasks{TaskService: app.Tasks}
	d.PressSpace()

	assert.Contains(t, d.View(), "disk full")
}

func TestUI_Quit(t *testing.T) {
	app, _ := testApp(t, nil)
	d, _ := newUIDriver(t, app)
	d.PressKey('q')
	assert.True(t, d.Quitting)

	d2, _ := newUIDriver(t, app)
	d2.PressCtrlC()
	assert.True(t, d2.Quitting)
}

func TestUI_KeysTypedIntoInputDoNotTriggerActions(t *testing.T) {
	app, _ := testApp(t, nil)
	seed(t, app, "keep me")
	d, m := newUIDriver(t, app)

	d.PressKey('a')
	d.Type("dq")
	assert.False(t, d.Quitting)
	assert.Len(t, m.rows, 1)
	assert.Equal(t, "dq", m.input.Value())
}

type failingTasks struct {
	service.TaskService
}

func (failingTasks) Toggle(context.Context, string) (domain.Task, error) {
	return domain.Task{}, errors.New("disk full")
}
