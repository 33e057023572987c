package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/todocal/internal/model"
)

// ErrNotFound is returned by scoped lookups when the record does not exist
// or belongs to another user. The two cases are indistinguishable.
var ErrNotFound = errors.New("not found")

// TodoStore persists todos, their parent links and tag associations.
// Every method that takes a userID only sees that user's records.
type TodoStore interface {
	GetTodo(ctx context.Context, userID, id string) (*model.Todo, error)
	SaveTodo(ctx context.Context, todo *model.Todo) error
	DeleteTodo(ctx context.Context, userID, id string) error

	ListRootTodos(ctx context.Context, userID string) ([]model.Todo, error)
	ListSubtasks(ctx context.Context, userID, parentID string) ([]model.Todo, error)
	ListTodosByCompletion(ctx context.Context, userID string, completed bool) ([]model.Todo, error)
	ListTodosByDate(ctx context.Context, userID string, date model.Date) ([]model.Todo, error)
	ListTodosByDateRange(ctx context.Context, userID string, start, end model.Date) ([]model.Todo, error)
	ListOverdueTodos(ctx context.Context, userID string, today model.Date, now model.TimeOfDay) ([]model.Todo, error)
	ListTodosWithoutDueDate(ctx context.Context, userID string) ([]model.Todo, error)
	ListTodosByTag(ctx context.Context, userID, tagID string) ([]model.Todo, error)

	CountTodosByDate(ctx context.Context, userID string, start, end model.Date) (map[model.Date]int, error)
	ListCompletedSince(ctx context.Context, userID string, since time.Time) ([]model.Todo, error)

	// ListDueBetween is a system query across all users, used by the
	// reminder poller. It returns open todos due on date whose due time
	// falls in (from, to].
	ListDueBetween(ctx context.Context, date model.Date, from, to model.TimeOfDay) ([]model.Todo, error)
}

// TagStore persists per-user tags.
type TagStore interface {
	GetTag(ctx context.Context, userID, id string) (*model.Tag, error)
	ListTags(ctx context.Context, userID string) ([]model.Tag, error)
	SaveTag(ctx context.Context, tag *model.Tag) error
	DeleteTag(ctx context.Context, userID, id string) error
	TagExistsByName(ctx context.Context, userID, name string) (bool, error)

	// ResolveTags returns the user's tags among ids, silently skipping
	// ids that are unknown or owned by someone else.
	ResolveTags(ctx context.Context, userID string, ids []string) ([]model.Tag, error)
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// NotificationStore persists due-time reminders.
type NotificationStore interface {
	// CreateNotification records n unless one already exists for the same
	// todo and due date. It reports whether a row was inserted.
	CreateNotification(ctx context.Context, n *model.Notification) (bool, error)
	ListUnreadNotifications(ctx context.Context, userID string) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id string) error
}

// Store is the full persistence interface.
type Store interface {
	TodoStore
	TagStore
	UserStore
	NotificationStore

	Ping(ctx context.Context) error
	Close() error
}
