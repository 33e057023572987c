package todoform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todocal/internal/model"
	"github.com/nhle/todocal/internal/service"
	"github.com/nhle/todocal/internal/theme"
)

// SubmittedMsg is dispatched when the form is completed. ID is empty for
// a new todo.
type SubmittedMsg struct {
	ID    string
	Input service.TodoInput
}

// CancelledMsg is dispatched when the user aborts the form.
type CancelledMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	priority    model.Priority
	dueDate     string
	dueTime     string
	tagIDs      []string
}

// Model is the create/edit form for a single todo.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	title  string
	editID string

	// base carries the fields the form does not show, such as the parent
	// on create and the completion flag on edit.
	base service.TodoInput

	tags   []model.Tag
	width  int
	height int
}

func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityMedium},
		width:  width,
		height: height,
	}
}

// Active reports whether a form is being filled in.
func (m Model) Active() bool {
	return m.form != nil
}

// StartCreate opens an empty form. A non-empty parent makes the new
// todo a subtask of it.
func (m *Model) StartCreate(parent *model.Todo, tags []model.Tag) tea.Cmd {
	*m.fb = formBindings{priority: model.PriorityMedium}
	m.editID = ""
	m.base = service.TodoInput{}
	m.title = "New todo"
	if parent != nil {
		m.base.ParentID = &parent.ID
		m.title = "New subtask of " + parent.Title
	}
	m.tags = tags
	m.form = m.build()
	return m.form.Init()
}

// StartEdit opens the form prefilled from todo.
func (m *Model) StartEdit(todo model.Todo, tags []model.Tag) tea.Cmd {
	*m.fb = formBindings{
		title:       todo.Title,
		description: todo.Description,
		priority:    todo.Priority,
		tagIDs:      todo.TagIDs(),
	}
	if todo.DueDate != nil {
		m.fb.dueDate = todo.DueDate.String()
	}
	if todo.DueTime != nil {
		m.fb.dueTime = fmt.Sprintf("%02d:%02d", todo.DueTime.Hour, todo.DueTime.Minute)
	}
	m.editID = todo.ID
	m.base = service.TodoInput{Completed: todo.Completed, DisplayOrder: todo.DisplayOrder}
	m.title = "Edit todo"
	m.tags = tags
	m.form = m.build()
	return m.form.Init()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		return m, m.submit()
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelledMsg{} }
	}
	return m, cmd
}

func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(titleStyle.Render(m.title) + "\n" + m.form.View())
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) build() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What needs to be done?").
			Value(&m.fb.title).
			Validate(validateTitle),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description).
			Validate(validateDescription),
		huh.NewSelect[model.Priority]().
			Title("Priority").
			Options(
				huh.NewOption("High", model.PriorityHigh),
				huh.NewOption("Medium", model.PriorityMedium),
				huh.NewOption("Low", model.PriorityLow),
			).
			Value(&m.fb.priority),
		huh.NewInput().
			Title("Due date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.dueDate).
			Validate(validateOptionalDate),
		huh.NewInput().
			Title("Due time").
			Placeholder("HH:MM (optional)").
			Value(&m.fb.dueTime).
			Validate(validateOptionalTime),
	}

	if len(m.tags) > 0 {
		opts := make([]huh.Option[string], len(m.tags))
		for i, t := range m.tags {
			opts[i] = huh.NewOption(t.Name, t.ID)
		}
		fields = append(fields, huh.NewMultiSelect[string]().
			Title("Tags").
			Options(opts...).
			Value(&m.fb.tagIDs))
	}

	return huh.NewForm(huh.NewGroup(fields...)).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

// submit turns the bound values into service input. Values were already
// validated by the fields.
func (m Model) submit() tea.Cmd {
	in := m.base
	in.Title = m.fb.title
	in.Description = m.fb.description
	in.Priority = m.fb.priority
	in.TagIDs = append([]string{}, m.fb.tagIDs...)

	if s := strings.TrimSpace(m.fb.dueDate); s != "" {
		if d, err := model.ParseDate(s); err == nil {
			in.DueDate = &d
		}
	}
	if s := strings.TrimSpace(m.fb.dueTime); s != "" {
		if t, err := model.ParseTimeOfDay(s); err == nil {
			in.DueTime = &t
		}
	}

	id := m.editID
	return func() tea.Msg { return SubmittedMsg{ID: id, Input: in} }
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateTitle(s string) error {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return fmt.Errorf("title is required")
	case len([]rune(s)) > model.MaxTitleLength:
		return fmt.Errorf("title must be at most %d characters", model.MaxTitleLength)
	}
	return nil
}

func validateDescription(s string) error {
	if len([]rune(s)) > model.MaxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", model.MaxDescriptionLength)
	}
	return nil
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	_, err := model.ParseDate(s)
	return err
}

func validateOptionalTime(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	_, err := model.ParseTimeOfDay(s)
	return err
}
