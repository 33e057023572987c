package model

import "time"

// Notification is a due-time reminder recorded for a todo.
// At most one exists per todo and due date.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// UserID is the owner of the todo the reminder is about.
	UserID string `json:"-" db:"user_id"`

	// TodoID links this notification to the todo that is coming due.
	TodoID string `json:"todoId" db:"todo_id"`

	// DueDate is the date the reminder was raised for.
	DueDate Date `json:"dueDate" db:"due_date"`

	// Message is the human-readable notification text.
	Message string `json:"message" db:"message"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read" db:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
