package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/erazemk/katalog/internal/model"
)

const itemColumns = `id, name, namesearch, description, category, tags, images, created_by, created_at, updated_at`

// tagMatch is true when the item's tags array holds the bound value.
const tagMatch = `EXISTS (SELECT 1 FROM json_each(items.tags) WHERE json_each.value = ?)`

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{Type: model.TypeItem}
	var tags, images, createdAt, updatedAt string
	err := s.Scan(&item.ID, &item.Name, &item.NameSearch, &item.Description, &item.Category,
		&tags, &images, &item.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	if err := json.Unmarshal([]byte(images), &item.Images); err != nil {
		return nil, fmt.Errorf("decoding images: %w", err)
	}
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return item, nil
}

// encodeList stores nil slices as an empty JSON array.
func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func encodeItemLists(item *model.Item) (tags, images string, err error) {
	if tags, err = encodeList(item.Tags); err != nil {
		return "", "", fmt.Errorf("encoding tags: %w", err)
	}
	if images, err = encodeList(item.Images); err != nil {
		return "", "", fmt.Errorf("encoding images: %w", err)
	}
	return tags, images, nil
}

// CreateItem inserts a new item. Returns ErrNameTaken if the name is in use.
func CreateItem(ctx context.Context, db *sql.DB, item *model.Item) error {
	tags, images, err := encodeItemLists(item)
	if err != nil {
		return fmt.Errorf("creating item: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.NameSearch, item.Description, item.Category,
		tags, images, item.CreatedBy, formatTime(item.CreatedAt), formatTime(item.UpdatedAt),
	)
	if err != nil {
		return writeError("creating item", err)
	}
	return nil
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// GetItemByName returns the item with the given name, or nil.
func GetItemByName(ctx context.Context, db *sql.DB, name string) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE name = ?`, name,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item by name: %w", err)
	}
	return item, nil
}

// QueryItems runs a listing strategy. Filters narrow the rows and the strategy
// picks a single sort: by name, or by updated_at for StrategyByDate.
func QueryItems(ctx context.Context, db *sql.DB, q model.ItemQuery) ([]model.Item, error) {
	var where []string
	var args []any
	order := "name ASC"

	switch q.Strategy {
	case model.StrategyAll:
	case model.StrategyCreatedBy:
		where = append(where, "instr(created_by, ?) > 0")
		args = append(args, q.CreatedBy)
	case model.StrategyNameSearch:
		where = append(where, "instr(namesearch, ?) > 0")
		args = append(args, q.NameSearch)
	case model.StrategyCategory:
		where = append(where, "instr(category, ?) > 0")
		args = append(args, q.Category)
	case model.StrategyTag:
		where = append(where, tagMatch)
		args = append(args, q.Tag)
	case model.StrategyCategoryAndTag:
		where = append(where, tagMatch, "category = ?")
		args = append(args, q.Tag, q.Category)
	case model.StrategyByDate:
		switch {
		case q.Category != "" && q.Tag != "":
			where = append(where, tagMatch, "category = ?")
			args = append(args, q.Tag, q.Category)
		case q.Category != "":
			where = append(where, "instr(category, ?) > 0")
			args = append(args, q.Category)
		case q.Tag != "":
			where = append(where, tagMatch)
			args = append(args, q.Tag)
		}
		order = "updated_at ASC, name ASC"
		if q.Latest {
			order = "updated_at DESC, name ASC"
		}
	default:
		return nil, fmt.Errorf("querying items: strategy %s is not a listing", q.Strategy)
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY ` + order

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem overwrites an item's mutable fields. created_by and created_at
// are never touched.
func UpdateItem(ctx context.Context, db *sql.DB, item *model.Item) error {
	tags, images, err := encodeItemLists(item)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}

	res, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, namesearch = ?, description = ?, category = ?,
		        tags = ?, images = ?, updated_at = ?
		 WHERE id = ?`,
		item.Name, item.NameSearch, item.Description, item.Category,
		tags, images, formatTime(item.UpdatedAt), item.ID,
	)
	if err != nil {
		return writeError("updating item", err)
	}
	n, err := res.RowsAffected()
	return affected("updating item", n, err)
}

// DeleteItem removes an item.
func DeleteItem(ctx context.Context, db *sql.DB, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	n, err := res.RowsAffected()
	return affected("deleting item", n, err)
}
