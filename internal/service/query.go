package service

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/todocal/internal/cache"
	"github.com/nhle/todocal/internal/logging"
	"github.com/nhle/todocal/internal/model"
	"github.com/nhle/todocal/internal/store"
)

// DefaultStatisticsDays is the look-back window when none is given.
const DefaultStatisticsDays = 30

// Statistics summarizes recent completions.
type Statistics struct {
	CompletedCount int                `json:"completedCount"`
	DailyStats     map[model.Date]int `json:"dailyStats"`
}

// QueryService answers read-only questions about a user's todos.
type QueryService struct {
	todos  store.TodoStore
	cache  cache.Cache
	clock  Clock
	logger *log.Logger
}

// NewQueryService wires the query engine. A nil cache, clock or logger
// falls back to a no-op cache, the system clock and a discarding logger.
func NewQueryService(
	todos store.TodoStore,
	c cache.Cache,
	clock Clock,
	logger *log.Logger,
) *QueryService {
	if c == nil {
		c = cache.Nop{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &QueryService{todos: todos, cache: c, clock: clock, logger: logger}
}

// Now exposes the service clock so adapters can compute derived fields
// against the same instant.
func (s *QueryService) Now() time.Time {
	return s.clock.Now()
}

func (s *QueryService) Get(ctx context.Context, userID, id string) (*model.Todo, error) {
	return s.todos.GetTodo(ctx, userID, id)
}

func (s *QueryService) Roots(ctx context.Context, userID string) ([]model.Todo, error) {
	return s.todos.ListRootTodos(ctx, userID)
}

// Subtasks returns the direct children of a todo the user owns.
func (s *QueryService) Subtasks(ctx context.Context, userID, id string) ([]model.Todo, error) {
	parent, err := s.todos.GetTodo(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return parent.Subtasks, nil
}

func (s *QueryService) ByStatus(ctx context.Context, userID string, completed bool) ([]model.Todo, error) {
	return s.todos.ListTodosByCompletion(ctx, userID, completed)
}

func (s *QueryService) ByDate(ctx context.Context, userID string, date model.Date) ([]model.Todo, error) {
	return s.todos.ListTodosByDate(ctx, userID, date)
}

// ByDateRange returns root todos due in [start, end].
func (s *QueryService) ByDateRange(ctx context.Context, userID string, start, end model.Date) ([]model.Todo, error) {
	if end.Before(start) {
		return nil, invalid("end", "must not be before start")
	}
	return s.todos.ListTodosByDateRange(ctx, userID, start, end)
}

// Week returns the seven days starting at start.
func (s *QueryService) Week(ctx context.Context, userID string, start model.Date) ([]model.Todo, error) {
	return s.todos.ListTodosByDateRange(ctx, userID, start, start.AddDays(6))
}

func (s *QueryService) Month(ctx context.Context, userID string, year int, month time.Month) ([]model.Todo, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	start, end := model.MonthRange(year, month)
	return s.todos.ListTodosByDateRange(ctx, userID, start, end)
}

// Overdue returns open root todos past due at the current clock time.
func (s *QueryService) Overdue(ctx context.Context, userID string) ([]model.Todo, error) {
	now := s.clock.Now()
	return s.todos.ListOverdueTodos(ctx, userID, model.DateOf(now), model.TimeOf(now))
}

func (s *QueryService) WithoutDueDate(ctx context.Context, userID string) ([]model.Todo, error) {
	return s.todos.ListTodosWithoutDueDate(ctx, userID)
}

func (s *QueryService) ByTag(ctx context.Context, userID, tagID string) ([]model.Todo, error) {
	return s.todos.ListTodosByTag(ctx, userID, tagID)
}

// CalendarCounts maps each date in [start, end] that has root todos to
// their count. Empty dates are absent. Results are served from the cache
// when present.
func (s *QueryService) CalendarCounts(
	ctx context.Context,
	userID string,
	start, end model.Date,
) (map[model.Date]int, error) {
	if end.Before(start) {
		return nil, invalid("end", "must not be before start")
	}

	counts, ok, err := s.cache.GetCounts(ctx, userID, start, end)
	if err != nil {
		s.logger.Warn("cache read failed", "user", userID, "err", err)
	}
	if ok {
		return counts, nil
	}

	counts, err = s.todos.CountTodosByDate(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetCounts(ctx, userID, start, end, counts); err != nil {
		s.logger.Warn("cache write failed", "user", userID, "err", err)
	}
	return counts, nil
}

// MonthCounts is CalendarCounts over a whole month.
func (s *QueryService) MonthCounts(
	ctx context.Context,
	userID string,
	year int,
	month time.Month,
) (map[model.Date]int, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	start, end := model.MonthRange(year, month)
	return s.CalendarCounts(ctx, userID, start, end)
}

// Statistics counts todos completed in the last days days, in total and
// per calendar day of their last update.
func (s *QueryService) Statistics(ctx context.Context, userID string, days int) (*Statistics, error) {
	if days < 0 {
		return nil, invalid("days", "must not be negative")
	}

	now := s.clock.Now()
	since := now.AddDate(0, 0, -days)

	completed, err := s.todos.ListCompletedSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("computing statistics: %w", err)
	}

	stats := &Statistics{
		CompletedCount: len(completed),
		DailyStats:     make(map[model.Date]int),
	}
	for _, t := range completed {
		stats.DailyStats[model.DateOf(t.UpdatedAt.In(now.Location()))]++
	}
	return stats, nil
}

func validateMonth(month time.Month) error {
	if month < time.January || month > time.December {
		return invalid("month", "must be between 1 and 12")
	}
	return nil
}
