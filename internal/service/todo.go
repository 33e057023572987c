package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/nhle/todocal/internal/cache"
	"github.com/nhle/todocal/internal/logging"
	"github.com/nhle/todocal/internal/model"
	"github.com/nhle/todocal/internal/store"
)

// TodoInput carries the caller-editable fields of a todo.
// ParentID is only read on create. A nil TagIDs leaves tags untouched on
// update; an empty, non-nil slice clears them.
type TodoInput struct {
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Completed    bool             `json:"completed"`
	DueDate      *model.Date      `json:"dueDate"`
	DueTime      *model.TimeOfDay `json:"dueTime"`
	Priority     model.Priority   `json:"priority"`
	DisplayOrder int              `json:"displayOrder"`
	ParentID     *string          `json:"parentId"`
	TagIDs       []string         `json:"tagIds"`
}

// TodoService applies mutations to a user's todos.
type TodoService struct {
	todos  store.TodoStore
	tags   store.TagStore
	cache  cache.Cache
	logger *log.Logger
}

// NewTodoService wires the mutation engine. A nil cache or logger is
// replaced with a no-op.
func NewTodoService(
	todos store.TodoStore,
	tags store.TagStore,
	c cache.Cache,
	logger *log.Logger,
) *TodoService {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &TodoService{todos: todos, tags: tags, cache: c, logger: logger}
}

// Create builds a todo owned by userID. A parent or tag id the user does
// not own is dropped without error.
func (s *TodoService) Create(ctx context.Context, userID string, in TodoInput) (*model.Todo, error) {
	if err := validateTodo(&in); err != nil {
		return nil, err
	}

	todo := &model.Todo{
		UserID:       userID,
		Title:        in.Title,
		Description:  in.Description,
		Completed:    in.Completed,
		DueDate:      in.DueDate,
		DueTime:      in.DueTime,
		Priority:     in.Priority,
		DisplayOrder: in.DisplayOrder,
		Subtasks:     []model.Todo{},
	}

	if in.ParentID != nil && *in.ParentID != "" {
		parent, err := s.todos.GetTodo(ctx, userID, *in.ParentID)
		switch {
		case err == nil:
			todo.ParentID = &parent.ID
		case errors.Is(err, store.ErrNotFound):
			s.logger.Debug("dropping unknown parent", "user", userID, "parent", *in.ParentID)
		default:
			return nil, fmt.Errorf("resolving parent %s: %w", *in.ParentID, err)
		}
	}

	tags, err := s.tags.ResolveTags(ctx, userID, in.TagIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving tags: %w", err)
	}
	todo.Tags = tags

	if err := s.todos.SaveTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("creating todo: %w", err)
	}
	s.invalidate(ctx, userID)
	return todo, nil
}

// Update overwrites the editable fields of an existing todo. Completing a
// subtask may complete its parent.
func (s *TodoService) Update(ctx context.Context, userID, id string, in TodoInput) (*model.Todo, error) {
	if err := validateTodo(&in); err != nil {
		return nil, err
	}

	todo, err := s.todos.GetTodo(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	todo.Title = in.Title
	todo.Description = in.Description
	todo.Completed = in.Completed
	todo.DueDate = in.DueDate
	todo.DueTime = in.DueTime
	todo.Priority = in.Priority
	todo.DisplayOrder = in.DisplayOrder

	if in.TagIDs != nil {
		tags, err := s.tags.ResolveTags(ctx, userID, in.TagIDs)
		if err != nil {
			return nil, fmt.Errorf("resolving tags: %w", err)
		}
		todo.Tags = tags
	}

	if err := s.todos.SaveTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("updating todo %s: %w", id, err)
	}

	if todo.Completed && todo.ParentID != nil {
		if err := s.completeParentIfDone(ctx, userID, *todo.ParentID); err != nil {
			return nil, err
		}
	}

	s.invalidate(ctx, userID)
	return todo, nil
}

// ToggleComplete flips the completed flag. Reopening a subtask never
// reopens its parent.
func (s *TodoService) ToggleComplete(ctx context.Context, userID, id string) (*model.Todo, error) {
	todo, err := s.todos.GetTodo(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	todo.Completed = !todo.Completed
	if err := s.todos.SaveTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("toggling todo %s: %w", id, err)
	}

	if todo.Completed && todo.ParentID != nil {
		if err := s.completeParentIfDone(ctx, userID, *todo.ParentID); err != nil {
			return nil, err
		}
	}

	s.invalidate(ctx, userID)
	return todo, nil
}

// UpdateDueDate sets or, with nil, clears the due date alone.
func (s *TodoService) UpdateDueDate(
	ctx context.Context,
	userID, id string,
	dueDate *model.Date,
) (*model.Todo, error) {
	todo, err := s.todos.GetTodo(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	todo.DueDate = dueDate
	if err := s.todos.SaveTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("updating due date of todo %s: %w", id, err)
	}

	s.invalidate(ctx, userID)
	return todo, nil
}

// Delete removes a todo and its subtasks. It reports false when there
// was nothing of the user's to delete.
func (s *TodoService) Delete(ctx context.Context, userID, id string) (bool, error) {
	err := s.todos.DeleteTodo(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.invalidate(ctx, userID)
	return true, nil
}

// Reorder sets each todo's display order to its index in ids. Unknown or
// foreign ids are skipped, and earlier writes stay applied if a later one
// fails.
func (s *TodoService) Reorder(ctx context.Context, userID string, ids []string) error {
	defer s.invalidate(ctx, userID)

	for i, id := range ids {
		todo, err := s.todos.GetTodo(ctx, userID, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}

		todo.DisplayOrder = i
		if err := s.todos.SaveTodo(ctx, todo); err != nil {
			return fmt.Errorf("reordering todo %s: %w", id, err)
		}
	}
	return nil
}

// completeParentIfDone marks the parent completed once every one of its
// direct subtasks is. It stops there and never looks at the grandparent.
func (s *TodoService) completeParentIfDone(ctx context.Context, userID, parentID string) error {
	parent, err := s.todos.GetTodo(ctx, userID, parentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading parent %s: %w", parentID, err)
	}
	if parent.Completed {
		return nil
	}

	for _, sub := range parent.Subtasks {
		if !sub.Completed {
			return nil
		}
	}

	parent.Completed = true
	if err := s.todos.SaveTodo(ctx, parent); err != nil {
		return fmt.Errorf("completing parent %s: %w", parentID, err)
	}
	s.logger.Debug("auto-completed parent", "user", userID, "todo", parentID)
	return nil
}

// invalidate drops cached reads for userID. A cache failure is logged and
// never fails the mutation.
func (s *TodoService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.logger.Warn("cache invalidation failed", "user", userID, "err", err)
	}
}
