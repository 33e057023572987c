package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nhle/todocal/internal/model"
	"github.com/nhle/todocal/internal/store"
	"github.com/nhle/todocal/internal/testutil"
)

func datePtr(s string) *model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func timePtr(s string) *model.TimeOfDay {
	t, err := model.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return &t
}

func mustSave(t *testing.T, s store.Store, todo *model.Todo) *model.Todo {
	t.Helper()
	if err := s.SaveTodo(context.Background(), todo); err != nil {
		t.Fatalf("SaveTodo(%q): %v", todo.Title, err)
	}
	return todo
}

func titles(todos []model.Todo) []string {
	out := make([]string, len(todos))
	for i, td := range todos {
		out[i] = td.Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSaveTodo_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	u := testutil.CreateUser(t, s, "alice")

	todo := mustSave(t, s, &model.Todo{
		UserID:      u.ID,
		Title:       "Buy milk",
		Description: "2 liters",
		DueDate:     datePtr("2026-03-10"),
		DueTime:     timePtr("09:30"),
		Priority:    model.PriorityHigh,
	})
	if todo.ID == "" {
		t.Fatal("expected generated id")
	}
	if todo.CreatedAt.IsZero() || !todo.CreatedAt.Equal(todo.UpdatedAt) {
		t.Fatalf("expected matching timestamps, got %v / %v", todo.CreatedAt, todo.UpdatedAt)
	}

	got, err := s.GetTodo(ctx, u.ID, todo.ID)
	if err != nil {
		t.Fatalf("GetTodo: %v", err)
	}
	if got.Title != "Buy milk" || got.Description != "2 liters" || got.Priority != model.PriorityHigh {
		t.Errorf("unexpected todo: %+v", got)
	}
	if got.DueDate == nil || got.DueDate.String() != "2026-03-10" {
		t.Errorf("due date = %v", got.DueDate)
	}
	if got.DueTime == nil || got.DueTime.String() != "09:30:00" {
		t.Errorf("due time = %v", got.DueTime)
	}
	if got.ParentID != nil {
		t.Errorf("expected root todo")
	}
}

func TestGetTodo_ScopedToOwner(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	alice := testutil.CreateUser(t, s, "alice")
	bob := testutil.CreateUser(t, s, "bob")

	todo := mustSave(t, s, &model.Todo{UserID: alice.ID, Title: "secret"})

	if _, err := s.GetTodo(ctx, bob.ID, todo.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign todo, got %v", err)
	}
	if _, err := s.GetTodo(ctx, alice.ID, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing todo, got %v", err)
	}
	if err := s.DeleteTodo(ctx, bob.ID, todo.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting foreign todo, got %v", err)
	}

	// An update carrying the wrong owner must not touch the row.
	hijack := &model.Todo{ID: todo.ID, UserID: bob.ID, Title: "mine now"}
	if err := s.SaveTodo(ctx, hijack); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign update, got %v", err)
	}
	got, err := s.GetTodo(ctx, alice.ID, todo.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "secret" {
		t.Errorf("foreign update leaked: title = %q", got.Title)
	}
}

func TestSaveTodo_UpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	clock := &testutil.Clock{T: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)}
	s := testutil.NewTestStore(t, store.WithNow(clock.Now))
	u := testutil.CreateUser(t, s, "alice")

	todo := mustSave(t, s, &model.Todo{UserID: u.ID, Title: "draft"})
	created := todo.CreatedAt

	clock.Advance(time.Hour)
	todo.Title = "final"
	todo.Completed = true
	mustSave(t, s, todo)

	got, err := s.GetTodo(ctx, u.ID, todo.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at changed: %v -> %v", created, got.CreatedAt)
	}
	if !got.UpdatedAt.Equal(created.Add(time.Hour)) {
		t.Errorf("updated_at = %v, want %v", got.UpdatedAt, created.Add(time.Hour))
	}
	if got.Title != "final" || !got.Completed {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestDeleteTodo_CascadesToSubtasks(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	u := testutil.CreateUser(t, s, "alice")

	root := mustSave(t, s, &model.Todo{UserID: u.ID, Title: "root"})
	child := mustSave(t, s, &model.Todo{UserID: u.ID, Title: "child", ParentID: &root.ID})
	grandchild := mustSave(t, s, &model.Todo{UserID: u.ID, Title: "grandchild", ParentID: &child.ID})

	got, err := s.GetTodo(ctx, u.ID, root.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Subtasks) != 1 || len(got.Subtasks[0].Subtasks) != 1 {
		t.Fatalf("expected two-level tree, got %+v", got.Subtasks)
	}

	if err := s.DeleteTodo(ctx, u.ID, root.ID); err != nil {
		t.Fatalf("DeleteTodo: %v", err)
	}
	for _, id := range []string{root.ID, child.ID, grandchild.ID} {
		if _, err := s.GetTodo(ctx, u.ID, id); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("todo %s survived cascade: %v", id, err)
		}
	}
}

func TestSaveTodo_TagAssociations(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	alice := testutil.CreateUser(t, s, "alice")
	bob := testutil.CreateUser(t, s, "bob")

	work := &model.Tag{UserID: alice.ID, Name: "work"}
	home := &model.Tag{UserID: alice.ID, Name: "home"}
	foreign := &model.Tag{UserID: bob.ID, Name: "bob-only"}
	for _, tag := range []*model.Tag{work, home, foreign} {
		if err := s.SaveTag(ctx, tag); err != nil {
			t.Fatal(err)
		}
	}

	todo := mustSave(t, s, &model.Todo{
		UserID: alice.ID,
		Title:  "report",
		Tags:   []model.Tag{*work, *home, *foreign, *work},
	})

	got, err := s.GetTodo(ctx, alice.ID, todo.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Tags) != 2 || got.Tags[0].Name != "home" || got.Tags[1].Name != "work" {
		t.Fatalf("unexpected tags: %+v", got.Tags)
	}

	byTag, err := s.ListTodosByTag(ctx, alice.ID, work.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(byTag) != 1 || byTag[0].ID != todo.ID {
		t.Fatalf("ListTodosByTag = %v", titles(byTag))
	}

	// Deleting a tag removes the association but keeps the todo.
	if err := s.DeleteTag(ctx, alice.ID, work.ID); err != nil {
		t.Fatal(err)
	}
	got, err = s.GetTodo(ctx, alice.ID, todo.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != home.ID {
		t.Fatalf("expected only home tag after delete, got %+v", got.Tags)
	}

	// Saving with no tags clears them.
	got.Tags = nil
	mustSave(t, s, got)
	got, err = s.GetTodo(ctx, alice.ID, todo.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Tags) != 0 {
		t.Fatalf("expected tags cleared, got %+v", got.Tags)
	}
}

func TestListQueries_Ordering(t *testing.T) {
	ctx := context.Background()
	clock := &testutil.Clock{T: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	s := testutil.NewTestStore(t, store.WithNow(clock.Now))
	u := testutil.CreateUser(t, s, "alice")
	other := testutil.CreateUser(t, s, "bob")

	save := func(td *model.Todo) *model.Todo {
		td.UserID = u.ID
		clock.Advance(time.Minute)
		return mustSave(t, s, td)
	}

	save(&model.Todo{Title: "late", DueDate: datePtr("2026-03-10"), DueTime: timePtr("18:00"), DisplayOrder: 2})
	early := save(&model.Todo{Title: "early", DueDate: datePtr("2026-03-10"), DueTime: timePtr("07:00"), DisplayOrder: 1})
	save(&model.Todo{Title: "next-day", DueDate: datePtr("2026-03-11"), DisplayOrder: 0})
	save(&model.Todo{Title: "undated-old", DisplayOrder: 3})
	save(&model.Todo{Title: "undated-new", DisplayOrder: 3, Completed: true})
	save(&model.Todo{Title: "sub", ParentID: &early.ID, DueDate: datePtr("2026-03-10")})
	mustSave(t, s, &model.Todo{UserID: other.ID, Title: "bob", DueDate: datePtr("2026-03-10")})

	tests := []struct {
		name  string
		query func() ([]model.Todo, error)
		want  []string
	}{
		{
			name:  "roots",
			query: func() ([]model.Todo, error) { return s.ListRootTodos(ctx, u.ID) },
			want:  []string{"next-day", "early", "late", "undated-new", "undated-old"},
		},
		{
			name:  "by date",
			query: func() ([]model.Todo, error) { return s.ListTodosByDate(ctx, u.ID, *datePtr("2026-03-10")) },
			want:  []string{"early", "late"},
		},
		{
			name: "by range",
			query: func() ([]model.Todo, error) {
				return s.ListTodosByDateRange(ctx, u.ID, *datePtr("2026-03-10"), *datePtr("2026-03-11"))
			},
			want: []string{"early", "late", "next-day"},
		},
		{
			name:  "without due date",
			query: func() ([]model.Todo, error) { return s.ListTodosWithoutDueDate(ctx, u.ID) },
			want:  []string{"undated-new", "undated-old"},
		},
		{
			name:  "completed",
			query: func() ([]model.Todo, error) { return s.ListTodosByCompletion(ctx, u.ID, true) },
			want:  []string{"undated-new"},
		},
		{
			name:  "open",
			query: func() ([]model.Todo, error) { return s.ListTodosByCompletion(ctx, u.ID, false) },
			want:  []string{"next-day", "early", "late", "undated-old"},
		},
		{
			name:  "subtasks",
			query: func() ([]model.Todo, error) { return s.ListSubtasks(ctx, u.ID, early.ID) },
			want:  []string{"sub"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.query()
			if err != nil {
				t.Fatal(err)
			}
			if !equalStrings(titles(got), tt.want) {
				t.Errorf("got %v, want %v", titles(got), tt.want)
			}
		})
	}

}

func TestListOverdueTodos(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	u := testutil.CreateUser(t, s, "alice")

	mustSave(t, s, &model.Todo{UserID: u.ID, Title: "yesterday", DueDate: datePtr("2026-03-09")})
	mustSave(t, s, &model.Todo{UserID: u.ID, Title: "done-yesterday", DueDate: datePtr("2026-03-09"), Completed: true})
	mustSave(t, s, &model.Todo{UserID: u.ID, Title: "this-morning", DueDate: datePtr("2026-03-10"), DueTime: timePtr("08:00")})
	mustSave(t, s, &model.Todo{UserID: u.ID, Title: "tonight", DueDate: datePtr("2026-03-10"), DueTime: timePtr("20:00")})
	mustSave(t, s, &model.Todo{UserID: u.ID, Title: "today-untimed", DueDate: datePtr("2026-03-10")})
	mustSave(t, s, &model.Todo{UserID: u.ID, Title: "no-date"})

	got, err := s.ListOverdueTodos(ctx, u.ID, *datePtr("2026-03-10"), *timePtr("12:00"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"yesterday", "this-morning"}
	if !equalStrings(titles(got), want) {
		t.Errorf("got %v, want %v", titles(got), want)
	}
}

func TestCountTodosByDate(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	u := testutil.CreateUser(t, s, "alice")

	root := mustSave(t, s, &model.Todo{UserID: u.ID, Title: "a", DueDate: datePtr("2026-02-01")})
	mustSave(t, s, &model.Todo{UserID: u.ID, Title: "b", DueDate: datePtr("2026-02-01")})
	mustSave(t, s, &model.Todo{UserID: u.ID, Title: "c", DueDate: datePtr("2026-02-28")})
	mustSave(t, s, &model.Todo{UserID: u.ID, Title: "march", DueDate: datePtr("2026-03-01")})
	mustSave(t, s, &model.Todo{UserID: u.ID, Title: "sub", ParentID: &root.ID, DueDate: datePtr("2026-02-01")})

	start, end := model.MonthRange(2026, time.February)
	counts, err := s.CountTodosByDate(ctx, u.ID, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 dates, got %v", counts)
	}
	if counts[*datePtr("2026-02-01")] != 2 || counts[*datePtr("2026-02-28")] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestListCompletedSince(t *testing.T) {
	ctx := context.Background()
	clock := &testutil.Clock{T: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	s := testutil.NewTestStore(t, store.WithNow(clock.Now))
	u := testutil.CreateUser(t, s, "alice")

	root := mustSave(t, s, &model.Todo{UserID: u.ID, Title: "old", Completed: true})
	clock.Advance(48 * time.Hour)
	mustSave(t, s, &model.Todo{UserID: u.ID, Title: "recent-sub", ParentID: &root.ID, Completed: true})
	mustSave(t, s, &model.Todo{UserID: u.ID, Title: "open"})

	got, err := s.ListCompletedSince(ctx, u.ID, clock.T.Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if !equalStrings(titles(got), []string{"recent-sub"}) {
		t.Errorf("got %v", titles(got))
	}
}

func TestListDueBetween(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	alice := testutil.CreateUser(t, s, "alice")
	bob := testutil.CreateUser(t, s, "bob")

	day := datePtr("2026-03-10")
	mustSave(t, s, &model.Todo{UserID: alice.ID, Title: "at-start", DueDate: day, DueTime: timePtr("09:00")})
	mustSave(t, s, &model.Todo{UserID: alice.ID, Title: "inside", DueDate: day, DueTime: timePtr("09:10")})
	mustSave(t, s, &model.Todo{UserID: bob.ID, Title: "at-end", DueDate: day, DueTime: timePtr("09:15")})
	mustSave(t, s, &model.Todo{UserID: bob.ID, Title: "after", DueDate: day, DueTime: timePtr("09:16")})
	mustSave(t, s, &model.Todo{UserID: bob.ID, Title: "done", DueDate: day, DueTime: timePtr("09:12"), Completed: true})

	got, err := s.ListDueBetween(ctx, *day, *timePtr("09:00"), *timePtr("09:15"))
	if err != nil {
		t.Fatal(err)
	}
	if !equalStrings(titles(got), []string{"inside", "at-end"}) {
		t.Errorf("got %v", titles(got))
	}
}
