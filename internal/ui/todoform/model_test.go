package todoform

import (
	"testing"

	"github.com/nhle/todocal/internal/model"
)

func submitted(t *testing.T, m Model) SubmittedMsg {
	t.Helper()
	msg, ok := m.submit()().(SubmittedMsg)
	if !ok {
		t.Fatal("submit did not produce a SubmittedMsg")
	}
	return msg
}

func TestCreateSubtask(t *testing.T) {
	m := New(80, 24)
	parent := &model.Todo{ID: "p1", Title: "plan trip"}
	m.StartCreate(parent, nil)
	if !m.Active() {
		t.Fatal("form not active after StartCreate")
	}

	m.fb.title = "book hotel"
	m.fb.priority = model.PriorityHigh
	m.fb.dueDate = "2026-03-12"
	m.fb.dueTime = "09:30"

	msg := submitted(t, m)
	if msg.ID != "" {
		t.Errorf("create produced id %q", msg.ID)
	}
	in := msg.Input
	if in.ParentID == nil || *in.ParentID != "p1" {
		t.Errorf("parent = %v", in.ParentID)
	}
	if in.Title != "book hotel" || in.Priority != model.PriorityHigh {
		t.Errorf("input = %+v", in)
	}
	if in.DueDate == nil || in.DueDate.String() != "2026-03-12" {
		t.Errorf("due date = %v", in.DueDate)
	}
	if in.DueTime == nil || in.DueTime.Hour != 9 || in.DueTime.Minute != 30 {
		t.Errorf("due time = %v", in.DueTime)
	}
	if in.TagIDs == nil || len(in.TagIDs) != 0 {
		t.Errorf("tag ids = %#v, want empty non-nil", in.TagIDs)
	}
}

func TestEditKeepsHiddenFields(t *testing.T) {
	due := model.NewDate(2026, 3, 12)
	todo := model.Todo{
		ID:           "t1",
		Title:        "write report",
		Completed:    true,
		DisplayOrder: 4,
		DueDate:      &due,
		Priority:     model.PriorityLow,
		Tags:         []model.Tag{{ID: "work", Name: "work"}},
	}

	m := New(80, 24)
	m.StartEdit(todo, []model.Tag{{ID: "work", Name: "work"}})
	if m.fb.dueDate != "2026-03-12" || m.fb.priority != model.PriorityLow {
		t.Fatalf("bindings not prefilled: %+v", m.fb)
	}

	m.fb.dueDate = ""
	msg := submitted(t, m)
	if msg.ID != "t1" {
		t.Errorf("id = %q", msg.ID)
	}
	in := msg.Input
	if !in.Completed || in.DisplayOrder != 4 {
		t.Errorf("hidden fields lost: %+v", in)
	}
	if in.DueDate != nil {
		t.Errorf("cleared due date came back as %v", in.DueDate)
	}
	if len(in.TagIDs) != 1 || in.TagIDs[0] != "work" {
		t.Errorf("tag ids = %v", in.TagIDs)
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name    string
		check   func(string) error
		in      string
		wantErr bool
	}{
		{"title blank", validateTitle, "   ", true},
		{"title ok", validateTitle, "x", false},
		{"date empty", validateOptionalDate, "", false},
		{"date ok", validateOptionalDate, "2026-02-28", false},
		{"date bad", validateOptionalDate, "2026-02-30", true},
		{"time short", validateOptionalTime, "07:05", false},
		{"time long", validateOptionalTime, "07:05:09", false},
		{"time bad", validateOptionalTime, "25:00", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.check(tt.in); (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
