package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nhle/todocal/internal/model"
)

func timeOfDay(s string) *model.TimeOfDay {
	t, err := model.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return &t
}

func todoTitles(todos []model.Todo) []string {
	out := make([]string, len(todos))
	for i, td := range todos {
		out[i] = td.Title
	}
	return out
}

func TestCalendarCounts_Sparse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, f.alice.ID, TodoInput{Title: "a", DueDate: date("2026-03-05")})
	f.create(t, f.alice.ID, TodoInput{Title: "b", DueDate: date("2026-03-05")})
	f.create(t, f.alice.ID, TodoInput{Title: "c", DueDate: date("2026-03-12")})
	f.create(t, f.bob.ID, TodoInput{Title: "bob", DueDate: date("2026-03-07")})

	counts, err := f.queries.CalendarCounts(ctx, f.alice.ID, *date("2026-03-01"), *date("2026-03-31"))
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected exactly two dates, got %v", counts)
	}
	if counts[*date("2026-03-05")] != 2 || counts[*date("2026-03-12")] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
	if _, ok := counts[*date("2026-03-06")]; ok {
		t.Error("empty dates must be absent, not zero")
	}

	_, err = f.queries.CalendarCounts(ctx, f.alice.ID, *date("2026-03-31"), *date("2026-03-01"))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for reversed range, got %v", err)
	}
}

func TestOverdue_UsesClock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t) // 2026-03-10 12:00 UTC
	f.create(t, f.alice.ID, TodoInput{Title: "yesterday", DueDate: date("2026-03-09")})
	f.create(t, f.alice.ID, TodoInput{Title: "morning", DueDate: date("2026-03-10"), DueTime: timeOfDay("09:00")})
	f.create(t, f.alice.ID, TodoInput{Title: "evening", DueDate: date("2026-03-10"), DueTime: timeOfDay("18:00")})
	f.create(t, f.alice.ID, TodoInput{Title: "done", DueDate: date("2026-03-01"), Completed: true})

	got, err := f.queries.Overdue(ctx, f.alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if titles := todoTitles(got); len(titles) != 2 || titles[0] != "yesterday" || titles[1] != "morning" {
		t.Errorf("overdue at noon = %v", titles)
	}
	for _, td := range got {
		if !td.IsOverdue(f.queries.Now()) {
			t.Errorf("%s listed as overdue but IsOverdue is false", td.Title)
		}
	}

	f.clock.Advance(7 * time.Hour)
	got, err = f.queries.Overdue(ctx, f.alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("overdue at 19:00 = %v", todoTitles(got))
	}
}

func TestWeekAndMonth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, f.alice.ID, TodoInput{Title: "mon", DueDate: date("2026-03-09")})
	f.create(t, f.alice.ID, TodoInput{Title: "sun", DueDate: date("2026-03-15")})
	f.create(t, f.alice.ID, TodoInput{Title: "next-mon", DueDate: date("2026-03-16")})
	f.create(t, f.alice.ID, TodoInput{Title: "april", DueDate: date("2026-04-01")})

	week, err := f.queries.Week(ctx, f.alice.ID, *date("2026-03-09"))
	if err != nil {
		t.Fatal(err)
	}
	if titles := todoTitles(week); len(titles) != 2 || titles[0] != "mon" || titles[1] != "sun" {
		t.Errorf("week = %v", titles)
	}

	month, err := f.queries.Month(ctx, f.alice.ID, 2026, time.March)
	if err != nil {
		t.Fatal(err)
	}
	if len(month) != 3 {
		t.Errorf("march = %v", todoTitles(month))
	}

	if _, err := f.queries.Month(ctx, f.alice.ID, 2026, 13); err == nil {
		t.Error("expected error for month 13")
	}
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Completed long ago.
	f.clock.T = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	f.create(t, f.alice.ID, TodoInput{Title: "ancient", Completed: true})

	f.clock.T = time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)
	f.create(t, f.alice.ID, TodoInput{Title: "a", Completed: true})
	f.create(t, f.alice.ID, TodoInput{Title: "b", Completed: true})

	f.clock.T = time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)
	parent := f.create(t, f.alice.ID, TodoInput{Title: "parent"})
	f.create(t, f.alice.ID, TodoInput{Title: "sub", ParentID: &parent.ID, Completed: true})
	f.create(t, f.alice.ID, TodoInput{Title: "open"})

	f.clock.T = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	stats, err := f.queries.Statistics(ctx, f.alice.ID, DefaultStatisticsDays)
	if err != nil {
		t.Fatal(err)
	}
	if stats.CompletedCount != 3 {
		t.Errorf("completed count = %d, want 3", stats.CompletedCount)
	}
	if len(stats.DailyStats) != 2 ||
		stats.DailyStats[*date("2026-03-08")] != 2 ||
		stats.DailyStats[*date("2026-03-09")] != 1 {
		t.Errorf("daily stats = %v", stats.DailyStats)
	}

	if _, err := f.queries.Statistics(ctx, f.alice.ID, -1); err == nil {
		t.Error("expected error for negative days")
	}
}

func TestStatistics_GroupsInClockZone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tokyo := time.FixedZone("JST", 9*60*60)

	// 23:30 UTC on the 9th is the 10th in Tokyo.
	f.clock.T = time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)
	f.create(t, f.alice.ID, TodoInput{Title: "late", Completed: true})

	f.clock.T = time.Date(2026, 3, 10, 12, 0, 0, 0, tokyo)
	stats, err := f.queries.Statistics(ctx, f.alice.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	if stats.DailyStats[*date("2026-03-10")] != 1 {
		t.Errorf("expected completion on the 10th local, got %v", stats.DailyStats)
	}
}

func TestByStatusAndTag(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tag, err := f.tags.Create(ctx, f.alice.ID, TagInput{Name: "home"})
	if err != nil {
		t.Fatal(err)
	}
	f.create(t, f.alice.ID, TodoInput{Title: "tagged", TagIDs: []string{tag.ID}})
	f.create(t, f.alice.ID, TodoInput{Title: "done", Completed: true})

	done, err := f.queries.ByStatus(ctx, f.alice.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if titles := todoTitles(done); len(titles) != 1 || titles[0] != "done" {
		t.Errorf("completed = %v", titles)
	}

	tagged, err := f.queries.ByTag(ctx, f.alice.ID, tag.ID)
	if err != nil {
		t.Fatal(err)
	}
	if titles := todoTitles(tagged); len(titles) != 1 || titles[0] != "tagged" {
		t.Errorf("by tag = %v", titles)
	}

	undated, err := f.queries.WithoutDueDate(ctx, f.alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(undated) != 2 {
		t.Errorf("without due date = %v", todoTitles(undated))
	}
}
