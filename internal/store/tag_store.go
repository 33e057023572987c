package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/todocal/internal/model"
)

// GetTag retrieves a single tag owned by userID.
func (s *SQLiteStore) GetTag(ctx context.Context, userID, id string) (*model.Tag, error) {
	var tag model.Tag
	err := s.db.GetContext(ctx, &tag,
		"SELECT id, user_id, name, color, created_at FROM tags WHERE id = ? AND user_id = ?",
		id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tag %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting tag %s: %w", id, err)
	}
	return &tag, nil
}

// ListTags retrieves all of the user's tags ordered by name.
func (s *SQLiteStore) ListTags(ctx context.Context, userID string) ([]model.Tag, error) {
	tags := []model.Tag{}
	err := s.db.SelectContext(ctx, &tags,
		"SELECT id, user_id, name, color, created_at FROM tags WHERE user_id = ? ORDER BY name",
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	return tags, nil
}

// SaveTag inserts a new tag or updates the name and color of an existing one.
func (s *SQLiteStore) SaveTag(ctx context.Context, tag *model.Tag) error {
	if strings.TrimSpace(tag.Name) == "" {
		return fmt.Errorf("tag name must not be empty")
	}
	if tag.UserID == "" {
		return fmt.Errorf("tag owner must not be empty")
	}
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = s.stamp()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, user_id, name, color, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color
		WHERE tags.user_id = excluded.user_id`,
		tag.ID, tag.UserID, tag.Name, tag.Color, tag.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving tag %s: %w", tag.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("tag %s: %w", tag.ID, ErrNotFound)
	}
	return nil
}

// DeleteTag removes a tag. CASCADE on todo_tags removes associations.
func (s *SQLiteStore) DeleteTag(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM tags WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("deleting tag %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("tag %s: %w", id, ErrNotFound)
	}
	return nil
}

// TagExistsByName reports whether the user already has a tag called name.
func (s *SQLiteStore) TagExistsByName(ctx context.Context, userID, name string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM tags WHERE user_id = ? AND name = ?", userID, name)
	if err != nil {
		return false, fmt.Errorf("checking tag name %q: %w", name, err)
	}
	return count > 0, nil
}

// ResolveTags returns the user's tags whose ids appear in ids, ordered by name.
func (s *SQLiteStore) ResolveTags(ctx context.Context, userID string, ids []string) ([]model.Tag, error) {
	tags := []model.Tag{}
	if len(ids) == 0 {
		return tags, nil
	}

	query, args, err := sqlx.In(
		"SELECT id, user_id, name, color, created_at FROM tags WHERE user_id = ? AND id IN (?) ORDER BY name",
		userID, ids)
	if err != nil {
		return nil, fmt.Errorf("building tag lookup: %w", err)
	}
	if err := s.db.SelectContext(ctx, &tags, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("resolving tags: %w", err)
	}
	return tags, nil
}

// tagsForTodo retrieves all tags associated with a todo.
func (s *SQLiteStore) tagsForTodo(ctx context.Context, todoID string) ([]model.Tag, error) {
	tags := []model.Tag{}
	err := s.db.SelectContext(ctx, &tags, `
		SELECT t.id, t.user_id, t.name, t.color, t.created_at FROM tags t
		INNER JOIN todo_tags tt ON t.id = tt.tag_id
		WHERE tt.todo_id = ?
		ORDER BY t.name`, todoID)
	if err != nil {
		return nil, fmt.Errorf("querying tags for todo %s: %w", todoID, err)
	}
	return tags, nil
}
