package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/katalog/internal/model"
)

const categoryColumns = `id, name, description, image, created_at, updated_at`

func scanCategory(s scanner) (*model.Category, error) {
	c := &model.Category{Type: model.TypeCategory}
	var createdAt, updatedAt string
	if err := s.Scan(&c.ID, &c.Name, &c.Description, &c.Image, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCategory inserts a new category. Returns ErrNameTaken if the name is in use.
func CreateCategory(ctx context.Context, db *sql.DB, c *model.Category) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.Image, formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return writeError("creating category", err)
	}
	return nil
}

// GetCategory returns a category by ID, or nil if it does not exist.
func GetCategory(ctx context.Context, db *sql.DB, id string) (*model.Category, error) {
	c, err := scanCategory(db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return c, nil
}

// GetCategoryByName returns the category with the given name, or nil.
func GetCategoryByName(ctx context.Context, db *sql.DB, name string) (*model.Category, error) {
	c, err := scanCategory(db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name = ?`, name,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category by name: %w", err)
	}
	return c, nil
}

// ListCategories returns all categories ordered by name.
func ListCategories(ctx context.Context, db *sql.DB) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// UpdateCategory overwrites a category's mutable fields.
func UpdateCategory(ctx context.Context, db *sql.DB, c *model.Category) error {
	res, err := db.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ?, image = ?, updated_at = ?
		 WHERE id = ?`,
		c.Name, c.Description, c.Image, formatTime(c.UpdatedAt), c.ID,
	)
	if err != nil {
		return writeError("updating category", err)
	}
	n, err := res.RowsAffected()
	return affected("updating category", n, err)
}

// DeleteCategory removes a category.
func DeleteCategory(ctx context.Context, db *sql.DB, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	n, err := res.RowsAffected()
	return affected("deleting category", n, err)
}
