package agenda

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todocal/internal/model"
	"github.com/nhle/todocal/internal/reminder"
	"github.com/nhle/todocal/internal/service"
	"github.com/nhle/todocal/internal/store"
	"github.com/nhle/todocal/internal/testutil"
	"github.com/nhle/todocal/internal/ui/todoform"
)

type fixture struct {
	todos  *service.TodoService
	userID string
	model  Model
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &testutil.Clock{T: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	s := testutil.NewTestStore(t, store.WithNow(clock.Now))
	u := testutil.CreateUser(t, s, "alice")

	todos := service.NewTodoService(s, s, nil, nil)
	queries := service.NewQueryService(s, nil, clock, nil)

	m := New(queries, todos, u.ID, u.Username)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return &fixture{todos: todos, userID: u.ID, model: updated.(Model)}
}

func (f *fixture) create(t *testing.T, in service.TodoInput) *model.Todo {
	t.Helper()
	todo, err := f.todos.Create(context.Background(), f.userID, in)
	if err != nil {
		t.Fatal(err)
	}
	return todo
}

// send delivers msg and then runs the returned command chain, feeding
// each resulting message back into the model.
func (f *fixture) send(t *testing.T, msg tea.Msg) {
	t.Helper()
	for msg != nil {
		updated, cmd := f.model.Update(msg)
		f.model = updated.(Model)
		if cmd == nil {
			return
		}
		msg = cmd()
		switch msg.(type) {
		case todosLoadedMsg, todoChangedMsg:
		default:
			return
		}
	}
}

func (f *fixture) reload(t *testing.T) {
	t.Helper()
	f.send(t, f.model.load()())
}

func (f *fixture) titles() []string {
	var out []string
	for _, li := range f.model.list.Items() {
		out = append(out, li.(item).todo.Title)
	}
	return out
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func datePtr(s string) *model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestAgenda_ListsRootsWithSubtasks(t *testing.T) {
	f := newFixture(t)
	parent := f.create(t, service.TodoInput{Title: "plan trip"})
	f.create(t, service.TodoInput{Title: "book hotel", ParentID: &parent.ID})
	f.create(t, service.TodoInput{Title: "water plants"})

	f.reload(t)

	got := f.titles()
	if len(got) != 3 {
		t.Fatalf("items = %v, want 3", got)
	}
	if got[0] != "plan trip" || got[1] != "book hotel" {
		t.Errorf("subtask not listed under its parent: %v", got)
	}
	if depth := f.model.list.Items()[1].(item).depth; depth != 1 {
		t.Errorf("subtask depth = %d, want 1", depth)
	}

	view := f.model.View()
	for _, want := range []string{"alice", "plan trip", "[0/1]", "[All]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAgenda_ToggleCompletesSelected(t *testing.T) {
	f := newFixture(t)
	f.create(t, service.TodoInput{Title: "write report"})
	f.reload(t)

	f.send(t, keyPress("x"))

	if !f.model.list.Items()[0].(item).todo.Completed {
		t.Fatal("todo not completed after toggle")
	}
	if f.model.status != `completed "write report"` {
		t.Errorf("status = %q", f.model.status)
	}

	f.send(t, keyPress("x"))
	if f.model.list.Items()[0].(item).todo.Completed {
		t.Error("second toggle did not reopen the todo")
	}
}

func TestAgenda_DeleteRemovesSelected(t *testing.T) {
	f := newFixture(t)
	f.create(t, service.TodoInput{Title: "old chore"})
	f.reload(t)

	f.send(t, keyPress("d"))

	if len(f.model.list.Items()) != 0 {
		t.Errorf("items after delete = %v", f.titles())
	}
	if !strings.Contains(f.model.View(), "Nothing here.") {
		t.Error("empty state not shown")
	}
}

func TestAgenda_SwitchViews(t *testing.T) {
	f := newFixture(t)
	f.create(t, service.TodoInput{Title: "today", DueDate: datePtr("2026-03-10")})
	f.create(t, service.TodoInput{Title: "friday", DueDate: datePtr("2026-03-13")})
	f.create(t, service.TodoInput{Title: "late", DueDate: datePtr("2026-03-01")})
	f.create(t, service.TodoInput{Title: "someday"})
	f.reload(t)

	tests := []struct {
		key  string
		view View
		want []string
	}{
		{"tab", ViewToday, []string{"today"}},
		{"tab", ViewWeek, []string{"today", "friday"}},
		{"tab", ViewOverdue, []string{"late"}},
		{"tab", ViewNoDate, []string{"someday"}},
		{"shift+tab", ViewOverdue, []string{"late"}},
	}
	for _, tt := range tests {
		f.send(t, keyPress(tt.key))
		if f.model.view != tt.view {
			t.Fatalf("after %s: view = %s, want %s", tt.key, f.model.view, tt.view)
		}
		got := f.titles()
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("%s view = %v, want %v", tt.view, got, tt.want)
		}
	}
}

func TestAgenda_IgnoresStaleLoads(t *testing.T) {
	f := newFixture(t)
	f.create(t, service.TodoInput{Title: "anything"})

	stale := todosLoadedMsg{view: ViewOverdue, todos: []model.Todo{{Title: "ghost"}}}
	f.send(t, stale)

	if len(f.model.list.Items()) != 0 {
		t.Errorf("stale load applied: %v", f.titles())
	}
}

type fakeReminders struct {
	triggered int
}

func (r *fakeReminders) Trigger() { r.triggered++ }

func (r *fakeReminders) WaitForResult() tea.Cmd {
	return func() tea.Msg { return reminder.ResultMsg{Created: 1} }
}

func TestAgenda_RemindersRefresh(t *testing.T) {
	f := newFixture(t)
	r := &fakeReminders{}
	f.model.reminders = r

	f.send(t, reminder.ResultMsg{Created: 2})
	if f.model.status != "2 new reminder(s)" {
		t.Errorf("status = %q", f.model.status)
	}

	f.send(t, keyPress("r"))
	if r.triggered != 1 {
		t.Errorf("refresh triggered poller %d times, want 1", r.triggered)
	}
}

func TestAgenda_AddThroughForm(t *testing.T) {
	f := newFixture(t)

	_, cmd := f.model.Update(keyPress("a"))
	ready, ok := cmd().(formReadyMsg)
	if !ok {
		t.Fatal("add key did not open the form")
	}
	updated, _ := f.model.Update(ready)
	f.model = updated.(Model)
	if !f.model.form.Active() {
		t.Fatal("form not active")
	}

	f.send(t, todoform.SubmittedMsg{Input: service.TodoInput{Title: "from form"}})

	if got := f.titles(); len(got) != 1 || got[0] != "from form" {
		t.Errorf("items = %v", got)
	}
	if f.model.status != `added "from form"` {
		t.Errorf("status = %q", f.model.status)
	}
}
