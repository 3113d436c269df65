package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/katalog/internal/model"
)

const tagColumns = `id, name, created_at, updated_at`

func scanTag(s scanner) (*model.Tag, error) {
	t := &model.Tag{Type: model.TypeTag}
	var createdAt, updatedAt string
	if err := s.Scan(&t.ID, &t.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTag inserts a new tag. Returns ErrNameTaken if the name is in use.
func CreateTag(ctx context.Context, db *sql.DB, t *model.Tag) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO tags (`+tagColumns+`) VALUES (?, ?, ?, ?)`,
		t.ID, t.Name, formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		return writeError("creating tag", err)
	}
	return nil
}

// GetTag returns a tag by ID, or nil if it does not exist.
func GetTag(ctx context.Context, db *sql.DB, id string) (*model.Tag, error) {
	t, err := scanTag(db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting tag: %w", err)
	}
	return t, nil
}

// GetTagByName returns the tag with the given name, or nil.
func GetTagByName(ctx context.Context, db *sql.DB, name string) (*model.Tag, error) {
	t, err := scanTag(db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE name = ?`, name,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting tag by name: %w", err)
	}
	return t, nil
}

// ListTags returns all tags ordered by name.
func ListTags(ctx context.Context, db *sql.DB) ([]model.Tag, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

// UpdateTag renames a tag and refreshes updated_at.
func UpdateTag(ctx context.Context, db *sql.DB, t *model.Tag) error {
	res, err := db.ExecContext(ctx,
		`UPDATE tags SET name = ?, updated_at = ? WHERE id = ?`,
		t.Name, formatTime(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return writeError("updating tag", err)
	}
	n, err := res.RowsAffected()
	return affected("updating tag", n, err)
}

// DeleteTag removes a tag.
func DeleteTag(ctx context.Context, db *sql.DB, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting tag: %w", err)
	}
	n, err := res.RowsAffected()
	return affected("deleting tag", n, err)
}
