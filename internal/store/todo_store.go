package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/todocal/internal/model"
)

const todoColumns = `todos.id, todos.user_id, todos.parent_id, todos.title, todos.description,
	todos.completed, todos.due_date, todos.due_time, todos.priority, todos.display_order,
	todos.created_at, todos.updated_at`

// GetTodo retrieves a single todo owned by userID, with its tags and
// subtask tree.
func (s *SQLiteStore) GetTodo(ctx context.Context, userID, id string) (*model.Todo, error) {
	var todo model.Todo
	err := s.db.GetContext(ctx, &todo,
		"SELECT "+todoColumns+" FROM todos WHERE todos.id = ? AND todos.user_id = ?",
		id, userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}

	if err := s.hydrate(ctx, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// SaveTodo inserts or updates a todo and replaces its tag associations
// with todo.Tags. A new todo gets a UUID and created_at. updated_at is
// always refreshed. Owner and parent are never rewritten by an update.
func (s *SQLiteStore) SaveTodo(ctx context.Context, todo *model.Todo) error {
	if todo.UserID == "" {
		return fmt.Errorf("todo owner must not be empty")
	}
	if todo.ID == "" {
		todo.ID = uuid.New().String()
	}
	if todo.Priority == "" {
		todo.Priority = model.PriorityMedium
	}
	now := s.stamp()
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = now
	}
	todo.UpdatedAt = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO todos (
			id, user_id, parent_id, title, description,
			completed, due_date, due_time, priority, display_order,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			completed = excluded.completed,
			due_date = excluded.due_date,
			due_time = excluded.due_time,
			priority = excluded.priority,
			display_order = excluded.display_order,
			updated_at = excluded.updated_at
		WHERE todos.user_id = excluded.user_id`,
		todo.ID, todo.UserID, todo.ParentID, todo.Title, todo.Description,
		boolToInt(todo.Completed), todo.DueDate, todo.DueTime, string(todo.Priority), todo.DisplayOrder,
		todo.CreatedAt, todo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving todo %s: %w", todo.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("todo %s: %w", todo.ID, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM todo_tags WHERE todo_id = ?", todo.ID); err != nil {
		return fmt.Errorf("clearing todo tags: %w", err)
	}

	// The join through tags keeps foreign tags out even if a caller
	// skipped resolution.
	for _, tag := range todo.Tags {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO todo_tags (todo_id, tag_id)
			SELECT ?, id FROM tags WHERE id = ? AND user_id = ?
			ON CONFLICT DO NOTHING`,
			todo.ID, tag.ID, todo.UserID); err != nil {
			return fmt.Errorf("setting tag %s on todo %s: %w", tag.ID, todo.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteTodo removes a todo owned by userID. The parent_id foreign key
// cascades the delete through every descendant subtask.
func (s *SQLiteStore) DeleteTodo(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM todos WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("deleting todo %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListRootTodos returns the user's todos that have no parent.
func (s *SQLiteStore) ListRootTodos(ctx context.Context, userID string) ([]model.Todo, error) {
	return s.queryTodos(ctx, `
		WHERE todos.user_id = ? AND todos.parent_id IS NULL
		ORDER BY todos.display_order ASC, todos.created_at DESC`,
		userID)
}

// ListSubtasks returns the direct children of parentID.
func (s *SQLiteStore) ListSubtasks(ctx context.Context, userID, parentID string) ([]model.Todo, error) {
	return s.queryTodos(ctx, `
		WHERE todos.user_id = ? AND todos.parent_id = ?
		ORDER BY todos.display_order ASC, todos.created_at ASC`,
		userID, parentID)
}

// ListTodosByCompletion returns root todos with the given completion state.
func (s *SQLiteStore) ListTodosByCompletion(
	ctx context.Context,
	userID string,
	completed bool,
) ([]model.Todo, error) {
	return s.queryTodos(ctx, `
		WHERE todos.user_id = ? AND todos.parent_id IS NULL AND todos.completed = ?
		ORDER BY todos.display_order ASC, todos.created_at DESC`,
		userID, boolToInt(completed))
}

// ListTodosByDate returns root todos due on date.
func (s *SQLiteStore) ListTodosByDate(
	ctx context.Context,
	userID string,
	date model.Date,
) ([]model.Todo, error) {
	return s.queryTodos(ctx, `
		WHERE todos.user_id = ? AND todos.parent_id IS NULL AND todos.due_date = ?
		ORDER BY todos.due_time ASC, todos.created_at DESC`,
		userID, date)
}

// ListTodosByDateRange returns root todos due between start and end inclusive.
func (s *SQLiteStore) ListTodosByDateRange(
	ctx context.Context,
	userID string,
	start, end model.Date,
) ([]model.Todo, error) {
	return s.queryTodos(ctx, `
		WHERE todos.user_id = ? AND todos.parent_id IS NULL
			AND todos.due_date BETWEEN ? AND ?
		ORDER BY todos.due_date ASC, todos.due_time ASC`,
		userID, start, end)
}

// ListOverdueTodos returns open root todos due before today, or due today
// at a time earlier than now.
func (s *SQLiteStore) ListOverdueTodos(
	ctx context.Context,
	userID string,
	today model.Date,
	now model.TimeOfDay,
) ([]model.Todo, error) {
	return s.queryTodos(ctx, `
		WHERE todos.user_id = ? AND todos.parent_id IS NULL AND todos.completed = 0
			AND (todos.due_date < ?
				OR (todos.due_date = ? AND todos.due_time IS NOT NULL AND todos.due_time < ?))
		ORDER BY todos.due_date ASC, todos.due_time ASC`,
		userID, today, today, now)
}

// ListTodosWithoutDueDate returns root todos with no due date, newest first.
func (s *SQLiteStore) ListTodosWithoutDueDate(ctx context.Context, userID string) ([]model.Todo, error) {
	return s.queryTodos(ctx, `
		WHERE todos.user_id = ? AND todos.parent_id IS NULL AND todos.due_date IS NULL
		ORDER BY todos.created_at DESC`,
		userID)
}

// ListTodosByTag returns root todos carrying tagID.
func (s *SQLiteStore) ListTodosByTag(ctx context.Context, userID, tagID string) ([]model.Todo, error) {
	return s.queryTodos(ctx, `
		INNER JOIN todo_tags ON todos.id = todo_tags.todo_id
		WHERE todos.user_id = ? AND todos.parent_id IS NULL AND todo_tags.tag_id = ?
		ORDER BY todos.display_order ASC`,
		userID, tagID)
}

// CountTodosByDate groups root todos due in [start, end] by due date.
// Dates with no todos are absent from the result.
func (s *SQLiteStore) CountTodosByDate(
	ctx context.Context,
	userID string,
	start, end model.Date,
) (map[model.Date]int, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT due_date, COUNT(*) FROM todos
		WHERE user_id = ? AND parent_id IS NULL AND due_date BETWEEN ? AND ?
		GROUP BY due_date`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("counting todos by date: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Date]int)
	for rows.Next() {
		var (
			date  model.Date
			count int
		)
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("scanning date count: %w", err)
		}
		counts[date] = count
	}
	return counts, rows.Err()
}

// ListCompletedSince returns every completed todo of the user, root or
// subtask, last updated at or after since. Tags and subtasks are not loaded.
func (s *SQLiteStore) ListCompletedSince(
	ctx context.Context,
	userID string,
	since time.Time,
) ([]model.Todo, error) {
	var todos []model.Todo
	err := s.db.SelectContext(ctx, &todos,
		"SELECT "+todoColumns+" FROM todos WHERE todos.user_id = ? AND todos.completed = 1 ORDER BY todos.updated_at",
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying completed todos: %w", err)
	}

	// Timestamps are compared as instants here rather than as stored text.
	filtered := todos[:0]
	for _, t := range todos {
		if !t.UpdatedAt.Before(since) {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// ListDueBetween returns open todos of any user due on date with a due
// time in (from, to]. Tags and subtasks are not loaded.
func (s *SQLiteStore) ListDueBetween(
	ctx context.Context,
	date model.Date,
	from, to model.TimeOfDay,
) ([]model.Todo, error) {
	var todos []model.Todo
	err := s.db.SelectContext(ctx, &todos, "SELECT "+todoColumns+` FROM todos
		WHERE todos.completed = 0 AND todos.due_date = ?
			AND todos.due_time IS NOT NULL AND todos.due_time > ? AND todos.due_time <= ?
		ORDER BY todos.due_time ASC`,
		date, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying todos due on %s: %w", date, err)
	}
	return todos, nil
}

// queryTodos selects todos with the given WHERE/ORDER tail and hydrates them.
func (s *SQLiteStore) queryTodos(ctx context.Context, tail string, args ...any) ([]model.Todo, error) {
	todos := []model.Todo{}
	if err := s.db.SelectContext(ctx, &todos, "SELECT "+todoColumns+" FROM todos "+tail, args...); err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}

	for i := range todos {
		if err := s.hydrate(ctx, &todos[i]); err != nil {
			return nil, err
		}
	}
	return todos, nil
}

// hydrate loads the tags and the full subtask tree of todo. Parents are
// fixed at creation, so the tree cannot contain a cycle.
func (s *SQLiteStore) hydrate(ctx context.Context, todo *model.Todo) error {
	tags, err := s.tagsForTodo(ctx, todo.ID)
	if err != nil {
		return fmt.Errorf("loading tags for todo %s: %w", todo.ID, err)
	}
	todo.Tags = tags

	subtasks, err := s.ListSubtasks(ctx, todo.UserID, todo.ID)
	if err != nil {
		return fmt.Errorf("loading subtasks for todo %s: %w", todo.ID, err)
	}
	todo.Subtasks = subtasks
	return nil
}
