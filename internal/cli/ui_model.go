package cli

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/todump/todump/internal/cli/formatter"
	"github.com/todump/todump/internal/domain"
	"github.com/todump/todump/internal/service"
)

type uiMode int

const (
	modeBrowse uiMode = iota
	modeAdd
	modeEdit
)

type (
	tasksLoadedMsg struct {
		tasks []domain.Task
		err   error
	}
	taskAddedMsg struct {
		result *service.AddResult
		err    error
	}
	taskChangedMsg struct{ err error }
)

// uiModel is the interactive todo list.
type uiModel struct {
	ctx   context.Context
	tasks service.TaskService
	now   func() time.Time

	all    []domain.Task
	rows   []domain.Task // all in display order
	cursor int

	mode      uiMode
	withAI    bool
	editingID string
	input     textinput.Model

	loading bool
	spinner spinner.Model

	notice   string
	err      error
	quitting bool
}

func newUIModel(ctx context.Context, tasks service.TaskService) *uiModel {
	ti := textinput.New()
	ti.Placeholder = "What needs doing?"
	ti.CharLimit = 500
	ti.Prompt = "› "

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(formatter.StylePurple),
	)

	return &uiModel{
		ctx:     ctx,
		tasks:   tasks,
		now:     time.Now,
		input:   ti,
		spinner: sp,
	}
}

func (m *uiModel) Init() tea.Cmd {
	return m.load()
}

func (m *uiModel) load() tea.Cmd {
	return func() tea.Msg {
		all, err := m.tasks.List(m.ctx)
		return tasksLoadedMsg{tasks: all, err: err}
	}
}

func (m *uiModel) setTasks(all []domain.Task) {
	m.all = all
	m.rows = m.rows[:0]
	for _, n := range domain.Tree(all) {
		m.rows = append(m.rows, n.Task)
		m.rows = append(m.rows, n.Children...)
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *uiModel) selected() (domain.Task, bool) {
	if len(m.rows) == 0 {
		return domain.Task{}, false
	}
	return m.rows[m.cursor], true
}

func (m *uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.setTasks(msg.tasks)
		return m, nil

	case taskAddedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.notice = msg.result.Notice
		m.cursor = 0
		m.setTasks(msg.result.Tasks)
		m.closeInput()
		return m, nil

	case taskChangedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if m.mode == modeEdit {
			m.closeInput()
		}
		return m, m.load()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.loading {
			return m, nil
		}
		if m.mode == modeBrowse {
			return m.updateBrowse(msg)
		}
		return m.updateInput(msg)
	}

	return m, nil
}

func (m *uiModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "a", "A":
		m.withAI = msg.String() == "A"
		return m, m.openInput(modeAdd, "")
	case "e":
		if t, ok := m.selected(); ok {
			m.editingID = t.ID
			return m, m.openInput(modeEdit, t.Text)
		}
	case " ", "x":
		if t, ok := m.selected(); ok {
			return m, m.change(func() error {
				_, err := m.tasks.Toggle(m.ctx, t.ID)
				return err
			})
		}
	case "d":
		if t, ok := m.selected(); ok {
			return m, m.change(func() error {
				return m.tasks.Delete(m.ctx, t.ID)
			})
		}
	}
	return m, nil
}

func (m *uiModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return m, nil
	case "tab":
		if m.mode == modeAdd {
			m.withAI = !m.withAI
		}
		return m, nil
	case "enter":
		text := m.input.Value()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		m.err = nil
		m.notice = ""
		if m.mode == modeEdit {
			id := m.editingID
			return m, m.change(func() error {
				_, err := m.tasks.Edit(m.ctx, id, text)
				return err
			})
		}
		return m, m.add(text, m.withAI)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *uiModel) openInput(mode uiMode, value string) tea.Cmd {
	m.mode = mode
	m.err = nil
	m.notice = ""
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *uiModel) closeInput() {
	m.mode = modeBrowse
	m.editingID = ""
	m.input.Reset()
	m.input.Blur()
}

func (m *uiModel) add(text string, withAI bool) tea.Cmd {
	run := func() tea.Msg {
		res, err := m.tasks.Add(m.ctx, text, withAI)
		return taskAddedMsg{result: res, err: err}
	}
	if !withAI {
		return run
	}
	m.loading = true
	return tea.Batch(m.spinner.Tick, run)
}

func (m *uiModel) change(fn func() error) tea.Cmd {
	return func() tea.Msg {
		return taskChangedMsg{err: fn()}
	}
}

func (m *uiModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	p := domain.Summarize(m.all)
	b.WriteString(formatter.Header("Todos") + "\n")
	b.WriteString(formatter.RenderProgress(p.Completed, p.Total, 20) + "\n\n")

	if len(m.rows) == 0 {
		b.WriteString(formatter.Dim("Nothing here yet. Press a to add a todo.") + "\n")
	} else {
		items := formatter.TodoTreeItems(domain.Tree(m.all), m.now())
		if m.cursor < len(items) {
			items[m.cursor].Selected = true
		}
		b.WriteString(formatter.RenderTree(items))
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " " + formatter.Dim("Breaking it down...") + "\n")
	case m.mode == modeAdd:
		label := "Add"
		if m.withAI {
			label = "Add with AI breakdown"
		}
		b.WriteString(formatter.Bold(label) + "\n" + m.input.View() + "\n")
	case m.mode == modeEdit:
		b.WriteString(formatter.Bold("Edit") + "\n" + m.input.View() + "\n")
	}

	if m.notice != "" {
		b.WriteString(formatter.Warn(m.notice) + "\n")
	}
	if m.err != nil {
		b.WriteString(formatter.StyleRed.Render("✖ "+m.err.Error()) + "\n")
	}

	b.WriteString(formatter.Dim(m.help()) + "\n")
	return b.String()
}

func (m *uiModel) help() string {
	if m.mode != modeBrowse {
		if m.mode == modeAdd {
			return "enter save · tab toggle AI · esc cancel"
		}
		return "enter save · esc cancel"
	}
	return "a add · A add with AI · space toggle · e edit · d delete · q quit"
}
