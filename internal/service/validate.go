package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/nhle/todocal/internal/model"
)

func validateTodo(in *TodoInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return invalid("title", "is required")
	}
	if n := utf8.RuneCountInString(in.Title); n > model.MaxTitleLength {
		return invalid("title", "must be at most %d characters", model.MaxTitleLength)
	}
	if n := utf8.RuneCountInString(in.Description); n > model.MaxDescriptionLength {
		return invalid("description", "must be at most %d characters", model.MaxDescriptionLength)
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !in.Priority.Valid() {
		return invalid("priority", "must be LOW, MEDIUM or HIGH")
	}
	return nil
}

func validateTag(in *TagInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name", "is required")
	}
	if utf8.RuneCountInString(in.Name) > model.MaxTagNameLength {
		return invalid("name", "must be at most %d characters", model.MaxTagNameLength)
	}
	return nil
}

// Registration limits.
const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 6
)

func validateRegistration(in *RegisterInput) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	n := utf8.RuneCountInString(in.Username)
	if n < minUsernameLength || n > maxUsernameLength {
		return invalid("username", "must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	}
	if in.Email == "" {
		return invalid("email", "is required")
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return invalid("email", "must be a valid address")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return invalid("password", "must be at least %d characters", minPasswordLength)
	}
	return nil
}
