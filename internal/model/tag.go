package model

import "time"

// MaxTagNameLength bounds Tag.Name.
const MaxTagNameLength = 50

// Tag is a per-user label that can be attached to many todos.
type Tag struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"-" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
