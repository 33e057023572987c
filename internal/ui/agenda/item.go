package agenda

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todocal/internal/model"
	"github.com/nhle/todocal/internal/theme"
)

// item is one row of the agenda. Subtasks are listed under their parent
// with a deeper indent.
type item struct {
	todo  model.Todo
	depth int
}

func (i item) FilterValue() string { return i.todo.Title }

// flatten lists each todo followed by its subtasks, depth first.
func flatten(todos []model.Todo, depth int) []list.Item {
	var items []list.Item
	for _, t := range todos {
		items = append(items, item{todo: t, depth: depth})
		items = append(items, flatten(t.Subtasks, depth+1)...)
	}
	return items
}

// delegate renders agenda rows. now decides the overdue badge.
type delegate struct {
	now func() time.Time
}

func (d delegate) Height() int                             { return 1 }
func (d delegate) Spacing() int                            { return 0 }
func (d delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d delegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	it, ok := li.(item)
	if !ok {
		return
	}
	fmt.Fprint(w, d.line(it, index == m.Index()))
}

func (d delegate) line(it item, selected bool) string {
	t := it.todo

	prefix := "○"
	if t.Completed {
		prefix = "✓"
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("  ", it.depth))
	b.WriteString(prefix)
	b.WriteString(" ")
	b.WriteString(theme.PriorityStyle(t.Priority).Render(theme.PriorityLabel(t.Priority)))
	b.WriteString(" ")
	b.WriteString(t.Title)

	if n := len(t.Subtasks); n > 0 {
		done := 0
		for _, s := range t.Subtasks {
			if s.Completed {
				done++
			}
		}
		fmt.Fprintf(&b, " [%d/%d]", done, n)
	}

	for _, tag := range t.Tags {
		b.WriteString(" ")
		b.WriteString(theme.TagStyle(tag).Render("#" + tag.Name))
	}

	if due := dueLabel(t); due != "" {
		b.WriteString(theme.DueDateStyle.Render(" " + due))
	}
	if t.IsOverdue(d.now()) {
		b.WriteString(theme.OverdueStyle.Render(" OVERDUE"))
	}

	line := b.String()
	if t.Completed {
		line = theme.DimmedStyle.Render(line)
	}
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func dueLabel(t model.Todo) string {
	if t.DueDate == nil {
		return ""
	}
	label := t.DueDate.In(time.UTC).Format("Jan 02")
	if t.DueTime != nil {
		label += fmt.Sprintf(" %02d:%02d", t.DueTime.Hour, t.DueTime.Minute)
	}
	return label
}
