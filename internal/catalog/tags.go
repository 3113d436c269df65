package catalog

import (
	"context"
	"log/slog"

	"github.com/erazemk/katalog/internal/auth"
	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

// TagInput is the body of a tag create or rename.
type TagInput struct {
	Name string `json:"name"`
}

const (
	tagTaken    = "Tag with such name already exists"
	tagNotFound = "Tag with such id not found"
)

// ListTags returns all tags ordered by name.
func (s *Service) ListTags(ctx context.Context) ([]model.Tag, error) {
	tags, err := store.ListTags(ctx, s.DB)
	if err != nil {
		return nil, storeFailure("failed to list tags", err)
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	return tags, nil
}

// GetTag returns a single tag.
func (s *Service) GetTag(ctx context.Context, id string) (*model.Tag, error) {
	t, err := store.GetTag(ctx, s.DB, id)
	if err != nil {
		return nil, storeFailure("failed to get tag", err)
	}
	if t == nil {
		return nil, notFound("Tag not found")
	}
	return t, nil
}

// CreateTag adds a tag. Admin only.
func (s *Service) CreateTag(ctx context.Context, caller auth.Identity, in TagInput) (*model.Tag, error) {
	if err := s.requireAdmin(caller); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, badRequest("No name found")
	}

	existing, err := store.GetTagByName(ctx, s.DB, in.Name)
	if err != nil {
		return nil, storeFailure("failed to check tag name", err)
	}
	if existing != nil {
		return nil, conflict(tagTaken)
	}

	now := s.now()
	t := &model.Tag{
		ID:        s.newID(),
		CreatedAt: now,
		UpdatedAt: now,
		Name:      in.Name,
		Type:      model.TypeTag,
	}
	if err := store.CreateTag(ctx, s.DB, t); err != nil {
		return nil, writeFailure(err, tagNotFound, tagTaken, "Tag was not saved.")
	}

	slog.Info("tag created", "id", t.ID, "name", t.Name)
	return t, nil
}

// UpdateTag renames a tag. Admin only. Renaming a tag to its current name
// only refreshes updatedAt.
func (s *Service) UpdateTag(ctx context.Context, caller auth.Identity, id string, in TagInput) (*model.Tag, error) {
	if err := s.requireAdmin(caller); err != nil {
		return nil, err
	}
	if id == "" || in.Name == "" {
		return nil, badRequest("id and new name are required")
	}

	t, err := store.GetTag(ctx, s.DB, id)
	if err != nil {
		return nil, storeFailure("failed to get tag", err)
	}
	if t == nil {
		return nil, notFound(tagNotFound)
	}

	other, err := store.GetTagByName(ctx, s.DB, in.Name)
	if err != nil {
		return nil, storeFailure("failed to check tag name", err)
	}
	if other != nil && other.ID != id {
		return nil, conflict(tagTaken)
	}

	t.Name = in.Name
	t.UpdatedAt = s.now()
	if err := store.UpdateTag(ctx, s.DB, t); err != nil {
		return nil, writeFailure(err, tagNotFound, tagTaken, "Tag was not updated.")
	}

	slog.Info("tag updated", "id", t.ID, "name", t.Name)
	return t, nil
}

// DeleteTag removes a tag. Admin only. Items keep referencing its name.
func (s *Service) DeleteTag(ctx context.Context, caller auth.Identity, id string) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}

	if err := store.DeleteTag(ctx, s.DB, id); err != nil {
		return writeFailure(err, tagNotFound, tagTaken, "Deletion failed")
	}

	slog.Info("tag deleted", "id", id)
	return nil
}
