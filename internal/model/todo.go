package model

import (
	"fmt"
	"strings"
	"time"
)

// Priority is the urgency level of a todo.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority accepts a priority name in any case. An empty string
// yields PriorityMedium.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(s))); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("invalid priority %q: expected LOW, MEDIUM or HIGH", s)
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(b []byte) error {
	parsed, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Field limits.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// Todo is a task owned by a single user. Subtasks point at their parent
// through ParentID; a todo with no parent is a root todo.
type Todo struct {
	ID           string     `json:"id" db:"id"`
	UserID       string     `json:"-" db:"user_id"`
	ParentID     *string    `json:"parentId" db:"parent_id"`
	Title        string     `json:"title" db:"title"`
	Description  string     `json:"description" db:"description"`
	Completed    bool       `json:"completed" db:"completed"`
	DueDate      *Date      `json:"dueDate" db:"due_date"`
	DueTime      *TimeOfDay `json:"dueTime" db:"due_time"`
	Priority     Priority   `json:"priority" db:"priority"`
	DisplayOrder int        `json:"displayOrder" db:"display_order"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`

	// Tags and Subtasks are loaded by the store after the row itself.
	Tags     []Tag  `json:"tags" db:"-"`
	Subtasks []Todo `json:"subtasks" db:"-"`
}

// IsRoot reports whether t has no parent.
func (t Todo) IsRoot() bool {
	return t.ParentID == nil
}

// IsOverdue reports whether t is open and past due relative to now.
// A due date without a time is only overdue from the following day.
func (t Todo) IsOverdue(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	today := DateOf(now)
	if t.DueDate.Before(today) {
		return true
	}
	if *t.DueDate == today && t.DueTime != nil {
		return t.DueTime.Before(TimeOf(now))
	}
	return false
}

// SubtaskProgress returns the integer percentage of completed subtasks,
// or 0 when there are none.
func (t Todo) SubtaskProgress() int {
	if len(t.Subtasks) == 0 {
		return 0
	}
	done := 0
	for _, s := range t.Subtasks {
		if s.Completed {
			done++
		}
	}
	return 100 * done / len(t.Subtasks)
}

// TagIDs returns the ids of t's tags in their current order.
func (t Todo) TagIDs() []string {
	ids := make([]string, len(t.Tags))
	for i, tag := range t.Tags {
		ids[i] = tag.ID
	}
	return ids
}
