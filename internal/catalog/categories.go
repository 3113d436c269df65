package catalog

import (
	"context"
	"log/slog"

	"github.com/erazemk/katalog/internal/auth"
	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

// CategoryInput is the body of a category create or update. Nil fields keep
// their stored value on update.
type CategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

const (
	categoryTaken    = "Category with such name already exists"
	categoryNotFound = "Category with such id not found"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ListCategories returns all categories ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := store.ListCategories(ctx, s.DB)
	if err != nil {
		return nil, storeFailure("failed to list categories", err)
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}

// GetCategory returns a single category.
func (s *Service) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	c, err := store.GetCategory(ctx, s.DB, id)
	if err != nil {
		return nil, storeFailure("failed to get category", err)
	}
	if c == nil {
		return nil, notFound("Category not found")
	}
	return c, nil
}

// CreateCategory adds a category. Admin only.
func (s *Service) CreateCategory(ctx context.Context, caller auth.Identity, in CategoryInput) (*model.Category, error) {
	if err := s.requireAdmin(caller); err != nil {
		return nil, err
	}
	name := deref(in.Name)
	if name == "" {
		return nil, badRequest("No name found")
	}

	existing, err := store.GetCategoryByName(ctx, s.DB, name)
	if err != nil {
		return nil, storeFailure("failed to check category name", err)
	}
	if existing != nil {
		return nil, conflict(categoryTaken)
	}

	now := s.now()
	c := &model.Category{
		ID:          s.newID(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Name:        name,
		Description: deref(in.Description),
		Image:       deref(in.Image),
		Type:        model.TypeCategory,
	}
	if err := store.CreateCategory(ctx, s.DB, c); err != nil {
		return nil, writeFailure(err, categoryNotFound, categoryTaken, "Category was not saved.")
	}

	slog.Info("category created", "id", c.ID, "name", c.Name)
	return c, nil
}

// UpdateCategory merges in into the stored category. Admin only. Replacing
// the image deletes the previous object before the record is written.
func (s *Service) UpdateCategory(ctx context.Context, caller auth.Identity, id string, in CategoryInput) (*model.Category, error) {
	if err := s.requireAdmin(caller); err != nil {
		return nil, err
	}

	c, err := store.GetCategory(ctx, s.DB, id)
	if err != nil {
		return nil, storeFailure("failed to get category", err)
	}
	if c == nil {
		return nil, notFound(categoryNotFound)
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, badRequest("name must not be empty")
		}
		other, err := store.GetCategoryByName(ctx, s.DB, *in.Name)
		if err != nil {
			return nil, storeFailure("failed to check category name", err)
		}
		if other != nil && other.ID != id {
			return nil, conflict(categoryTaken)
		}
		c.Name = *in.Name
	}

	if in.Image != nil && c.Image != "" && c.Image != *in.Image {
		if err := s.deleteImage(ctx, c.Image); err != nil {
			return nil, storeFailure("failed to delete previous image", err)
		}
	}

	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Image != nil {
		c.Image = *in.Image
	}
	c.UpdatedAt = s.now()

	if err := store.UpdateCategory(ctx, s.DB, c); err != nil {
		return nil, writeFailure(err, categoryNotFound, categoryTaken, "Category was not updated.")
	}

	slog.Info("category updated", "id", c.ID, "name", c.Name)
	return c, nil
}

// DeleteCategory removes a category and then its image. Admin only. Items
// keep referencing its name.
func (s *Service) DeleteCategory(ctx context.Context, caller auth.Identity, id string) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}

	c, err := store.GetCategory(ctx, s.DB, id)
	if err != nil {
		return storeFailure("failed to get category", err)
	}
	if c == nil {
		return notFound(categoryNotFound)
	}

	if err := store.DeleteCategory(ctx, s.DB, id); err != nil {
		return writeFailure(err, categoryNotFound, categoryTaken, "Deletion failed")
	}
	slog.Info("category deleted", "id", id)

	if c.Image != "" {
		if err := s.deleteImage(ctx, c.Image); err != nil {
			return storeFailure("failed to delete category image", err)
		}
	}
	return nil
}
