package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/todocal/internal/model"
	"github.com/nhle/todocal/internal/store"
)

// TagInput carries the editable fields of a tag.
type TagInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TagService manages a user's tags. It does not enforce unique names;
// callers check ExistsByName first when they care.
type TagService struct {
	tags store.TagStore
}

func NewTagService(tags store.TagStore) *TagService {
	return &TagService{tags: tags}
}

func (s *TagService) List(ctx context.Context, userID string) ([]model.Tag, error) {
	return s.tags.ListTags(ctx, userID)
}

func (s *TagService) Get(ctx context.Context, userID, id string) (*model.Tag, error) {
	return s.tags.GetTag(ctx, userID, id)
}

func (s *TagService) ExistsByName(ctx context.Context, userID, name string) (bool, error) {
	return s.tags.TagExistsByName(ctx, userID, name)
}

func (s *TagService) Create(ctx context.Context, userID string, in TagInput) (*model.Tag, error) {
	if err := validateTag(&in); err != nil {
		return nil, err
	}

	tag := &model.Tag{UserID: userID, Name: in.Name, Color: in.Color}
	if err := s.tags.SaveTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}
	return tag, nil
}

// Update renames or recolors a tag the user owns.
func (s *TagService) Update(ctx context.Context, userID, id string, in TagInput) (*model.Tag, error) {
	if err := validateTag(&in); err != nil {
		return nil, err
	}

	tag, err := s.tags.GetTag(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	tag.Name = in.Name
	tag.Color = in.Color
	if err := s.tags.SaveTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("updating tag %s: %w", id, err)
	}
	return tag, nil
}

// Delete removes a tag and its todo associations. It reports false when
// the user had no such tag.
func (s *TagService) Delete(ctx context.Context, userID, id string) (bool, error) {
	err := s.tags.DeleteTag(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
