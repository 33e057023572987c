// Package agenda is a terminal view of one user's todos.
package agenda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todocal/internal/keys"
	"github.com/nhle/todocal/internal/model"
	"github.com/nhle/todocal/internal/reminder"
	"github.com/nhle/todocal/internal/service"
	"github.com/nhle/todocal/internal/theme"
	"github.com/nhle/todocal/internal/ui/todoform"
)

// View selects which todos the agenda lists.
type View int

const (
	ViewAll View = iota
	ViewToday
	ViewWeek
	ViewOverdue
	ViewNoDate
)

var viewNames = []string{"All", "Today", "Week", "Overdue", "No date"}

func (v View) String() string { return viewNames[v] }

// Queries is the read side the agenda needs.
type Queries interface {
	Now() time.Time
	Roots(ctx context.Context, userID string) ([]model.Todo, error)
	ByDate(ctx context.Context, userID string, date model.Date) ([]model.Todo, error)
	Week(ctx context.Context, userID string, start model.Date) ([]model.Todo, error)
	Overdue(ctx context.Context, userID string) ([]model.Todo, error)
	WithoutDueDate(ctx context.Context, userID string) ([]model.Todo, error)
}

// Mutations is the write side the agenda needs.
type Mutations interface {
	Create(ctx context.Context, userID string, in service.TodoInput) (*model.Todo, error)
	Update(ctx context.Context, userID, id string, in service.TodoInput) (*model.Todo, error)
	ToggleComplete(ctx context.Context, userID, id string) (*model.Todo, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

// Tags lists the user's tags for the todo form.
type Tags interface {
	List(ctx context.Context, userID string) ([]model.Tag, error)
}

// Reminders lets the agenda refresh when the poller records reminders.
type Reminders interface {
	Trigger()
	WaitForResult() tea.Cmd
}

type todosLoadedMsg struct {
	view  View
	todos []model.Todo
	err   error
}

type todoChangedMsg struct {
	status string
	err    error
}

// formReadyMsg opens the form once the tag options are loaded. edit is
// set when editing, parent when adding a subtask.
type formReadyMsg struct {
	edit   *model.Todo
	parent *model.Todo
	tags   []model.Tag
	err    error
}

// Model is the agenda view.
type Model struct {
	list      list.Model
	form      todoform.Model
	help      help.Model
	keys      *keys.KeyMap
	queries   Queries
	mutations Mutations
	reminders Reminders
	tags      Tags
	userID    string
	username  string

	view   View
	status string
	err    error
	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithReminders makes the agenda reload whenever the poller finishes a run.
func WithReminders(r Reminders) Option {
	return func(m *Model) { m.reminders = r }
}

// WithTags offers the user's tags in the todo form.
func WithTags(t Tags) Option {
	return func(m *Model) { m.tags = t }
}

// New creates an agenda for the given user.
func New(q Queries, mut Mutations, userID, username string, opts ...Option) Model {
	l := list.New([]list.Item{}, delegate{now: q.Now}, 80, 20)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	m := Model{
		list:      l,
		form:      todoform.New(80, 24),
		help:      help.New(),
		keys:      keys.DefaultKeyMap(),
		queries:   q,
		mutations: mut,
		userID:    userID,
		username:  username,
		width:     80,
		height:    24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForReminders())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case formReadyMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.edit != nil {
			return m, m.form.StartEdit(*msg.edit, msg.tags)
		}
		return m, m.form.StartCreate(msg.parent, msg.tags)

	case todoform.SubmittedMsg:
		return m, m.save(msg)

	case todoform.CancelledMsg:
		m.status = ""
		return m, nil

	case todosLoadedMsg:
		if msg.view != m.view {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		return m, m.list.SetItems(flatten(msg.todos, 0))

	case todoChangedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.status = msg.status
		return m, m.load()

	case reminder.ResultMsg:
		if msg.Err != nil {
			m.status = "reminder check failed"
		} else if msg.Created > 0 {
			m.status = fmt.Sprintf("%d new reminder(s)", msg.Created)
		}
		return m, tea.Batch(m.load(), m.waitForReminders())

	case tea.KeyMsg:
		if m.form.Active() {
			var cmd tea.Cmd
			m.form, cmd = m.form.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)
	}

	if m.form.Active() {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Add):
		return m, m.openForm(nil, nil)

	case key.Matches(msg, m.keys.AddSubtask):
		it, ok := m.list.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		return m, m.openForm(nil, &it.todo)

	case key.Matches(msg, m.keys.Edit):
		it, ok := m.list.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		return m, m.openForm(&it.todo, nil)

	case key.Matches(msg, m.keys.Toggle):
		it, ok := m.list.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		return m, m.toggle(it.todo)

	case key.Matches(msg, m.keys.Delete):
		it, ok := m.list.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		return m, m.remove(it.todo)

	case key.Matches(msg, m.keys.NextView):
		return m.switchView((m.view + 1) % View(len(viewNames)))

	case key.Matches(msg, m.keys.PrevView):
		return m.switchView((m.view + View(len(viewNames)) - 1) % View(len(viewNames)))

	case key.Matches(msg, m.keys.Refresh):
		if m.reminders != nil {
			m.reminders.Trigger()
		}
		return m, m.load()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.setSize(m.width, m.height)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.view = v
	m.status = ""
	m.list.Select(0)
	return m, m.load()
}

// load fetches the todos of the current view.
func (m Model) load() tea.Cmd {
	q, userID, view := m.queries, m.userID, m.view
	return func() tea.Msg {
		ctx := context.Background()
		today := model.DateOf(q.Now())

		var (
			todos []model.Todo
			err   error
		)
		switch view {
		case ViewToday:
			todos, err = q.ByDate(ctx, userID, today)
		case ViewWeek:
			todos, err = q.Week(ctx, userID, today)
		case ViewOverdue:
			todos, err = q.Overdue(ctx, userID)
		case ViewNoDate:
			todos, err = q.WithoutDueDate(ctx, userID)
		default:
			todos, err = q.Roots(ctx, userID)
		}
		return todosLoadedMsg{view: view, todos: todos, err: err}
	}
}

func (m Model) openForm(edit, parent *model.Todo) tea.Cmd {
	tags, userID := m.tags, m.userID
	return func() tea.Msg {
		msg := formReadyMsg{edit: edit, parent: parent}
		if tags != nil {
			msg.tags, msg.err = tags.List(context.Background(), userID)
		}
		return msg
	}
}

func (m Model) save(sub todoform.SubmittedMsg) tea.Cmd {
	mut, userID := m.mutations, m.userID
	return func() tea.Msg {
		ctx := context.Background()
		if sub.ID == "" {
			if _, err := mut.Create(ctx, userID, sub.Input); err != nil {
				return todoChangedMsg{err: fmt.Errorf("adding %q: %w", sub.Input.Title, err)}
			}
			return todoChangedMsg{status: fmt.Sprintf("added %q", sub.Input.Title)}
		}
		if _, err := mut.Update(ctx, userID, sub.ID, sub.Input); err != nil {
			return todoChangedMsg{err: fmt.Errorf("saving %q: %w", sub.Input.Title, err)}
		}
		return todoChangedMsg{status: fmt.Sprintf("saved %q", sub.Input.Title)}
	}
}

func (m Model) toggle(t model.Todo) tea.Cmd {
	mut, userID := m.mutations, m.userID
	return func() tea.Msg {
		updated, err := mut.ToggleComplete(context.Background(), userID, t.ID)
		if err != nil {
			return todoChangedMsg{err: fmt.Errorf("toggling %q: %w", t.Title, err)}
		}
		state := "reopened"
		if updated.Completed {
			state = "completed"
		}
		return todoChangedMsg{status: fmt.Sprintf("%s %q", state, t.Title)}
	}
}

func (m Model) remove(t model.Todo) tea.Cmd {
	mut, userID := m.mutations, m.userID
	return func() tea.Msg {
		deleted, err := mut.Delete(context.Background(), userID, t.ID)
		if err != nil {
			return todoChangedMsg{err: fmt.Errorf("deleting %q: %w", t.Title, err)}
		}
		if !deleted {
			return todoChangedMsg{status: fmt.Sprintf("%q was already gone", t.Title)}
		}
		return todoChangedMsg{status: fmt.Sprintf("deleted %q", t.Title)}
	}
}

func (m Model) waitForReminders() tea.Cmd {
	if m.reminders == nil {
		return nil
	}
	return m.reminders.WaitForResult()
}

func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.form.SetSize(width, height-2)
	helpHeight := lipgloss.Height(m.help.View(m.keys))
	m.list.SetSize(width, max(height-2-helpHeight, 1))
}

func (m Model) View() string {
	header := m.renderBar(theme.HeaderStyle, "todocal · "+m.username, m.renderTabs())

	var content string
	switch {
	case m.form.Active():
		content = lipgloss.NewStyle().Height(m.list.Height()).Render(m.form.View())
	case len(m.list.Items()) == 0:
		content = lipgloss.NewStyle().
			Width(m.width).
			Height(m.list.Height()).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Nothing here.")
	default:
		content = m.list.View()
	}

	status := m.status
	if m.err != nil {
		status = "error: " + m.err.Error()
	}
	statusBar := m.renderBar(theme.StatusBarStyle, status, fmt.Sprintf("%d items", len(m.list.Items())))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		content,
		statusBar,
		theme.HelpStyle.Render(m.help.View(m.keys)),
	)
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(viewNames))
	for i, name := range viewNames {
		if View(i) == m.view {
			name = "[" + name + "]"
		}
		tabs[i] = name
	}
	return strings.Join(tabs, " ")
}

// renderBar draws left and right text on one full-width line.
func (m Model) renderBar(style lipgloss.Style, left, right string) string {
	l := style.Render(left)
	r := style.Render(right)
	gap := max(m.width-lipgloss.Width(l)-lipgloss.Width(r), 0)
	filler := style.Render(strings.Repeat(" ", max(gap-style.GetHorizontalPadding(), 0)))
	return lipgloss.JoinHorizontal(lipgloss.Top, l, filler, r)
}
