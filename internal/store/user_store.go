package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/todocal/internal/model"
)

const userColumns = "id, username, email, password_hash, created_at"

// CreateUser inserts a new account. Username and email are unique; a
// violation surfaces as the driver's constraint error.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.stamp()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating user %q: %w", user.Username, err)
	}
	return nil
}

// GetUserByID retrieves an account by id.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByUsername retrieves an account by its login name.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUser(ctx, "username", username)
}

func (s *SQLiteStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.userExists(ctx, "username", username)
}

func (s *SQLiteStore) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.userExists(ctx, "email", email)
}

// getUser and userExists take a column name from the fixed set above,
// never from input.
func (s *SQLiteStore) getUser(ctx context.Context, column, value string) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user,
		"SELECT "+userColumns+" FROM users WHERE "+column+" = ?", value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s %q: %w", column, value, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by %s: %w", column, err)
	}
	return &user, nil
}

func (s *SQLiteStore) userExists(ctx context.Context, column, value string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM users WHERE "+column+" = ?", value)
	if err != nil {
		return false, fmt.Errorf("checking user %s: %w", column, err)
	}
	return count > 0, nil
}
