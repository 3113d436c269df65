package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/erazemk/katalog/internal/auth"
	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

// ItemInput is the body of an item create or update. On update, empty
// strings and nil lists keep the stored value; an empty list clears it.
type ItemInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
}

func (in ItemInput) validate() error {
	if err := checkList("tags", in.Tags); err != nil {
		return err
	}
	return checkList("images", in.Images)
}

// ItemListing is the result of a listing request: either Items for listing
// strategies, or Item for a lookup by id.
type ItemListing struct {
	Strategy model.ItemStrategy
	Items    []model.Item
	Item     *model.Item
}

const (
	itemTaken    = "Item with such name already exists"
	itemNotFound = "Item with such id not found"
)

// ListItems routes params to a retrieval strategy and runs it.
func (s *Service) ListItems(ctx context.Context, params map[string]string) (ItemListing, error) {
	q, ok := RouteItemQuery(params)
	if !ok {
		return ItemListing{}, badRequest("No result returned")
	}

	if q.Strategy == model.StrategyByID {
		item, err := store.GetItem(ctx, s.DB, q.ID)
		if err != nil {
			return ItemListing{}, storeFailure("failed to get item", err)
		}
		if item == nil {
			return ItemListing{}, notFound("Item not found")
		}
		return ItemListing{Strategy: q.Strategy, Item: item}, nil
	}

	items, err := store.QueryItems(ctx, s.DB, q)
	if err != nil {
		return ItemListing{}, storeFailure("failed to list items", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	slog.Debug("listed items", "strategy", q.Strategy.String(), "count", len(items))
	return ItemListing{Strategy: q.Strategy, Items: items}, nil
}

// CreateItem adds an item owned by the caller. Any authenticated caller may
// create items.
func (s *Service) CreateItem(ctx context.Context, caller auth.Identity, in ItemInput) (*model.Item, error) {
	if in.Name == "" {
		return nil, badRequest("No name found")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	existing, err := store.GetItemByName(ctx, s.DB, in.Name)
	if err != nil {
		return nil, storeFailure("failed to check item name", err)
	}
	if existing != nil {
		return nil, conflict(itemTaken)
	}

	createdBy := caller.Email
	if createdBy == "" {
		createdBy = model.UnknownCreator
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}

	now := s.now()
	item := &model.Item{
		ID:          s.newID(),
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   createdBy,
		Type:        model.TypeItem,
		Name:        in.Name,
		NameSearch:  strings.ToLower(in.Name),
		Description: in.Description,
		Category:    in.Category,
		Tags:        tags,
		Images:      images,
	}
	if err := store.CreateItem(ctx, s.DB, item); err != nil {
		return nil, writeFailure(err, itemNotFound, itemTaken, "Item was not saved.")
	}

	slog.Info("item created", "id", item.ID, "name", item.Name, "created_by", item.CreatedBy)
	return item, nil
}

// UpdateItem merges in into the stored item. Admins and the item's creator
// may update it. Images dropped by the update are handed to the event bus.
func (s *Service) UpdateItem(ctx context.Context, caller auth.Identity, id string, in ItemInput) (*model.Item, error) {
	item, err := store.GetItem(ctx, s.DB, id)
	if err != nil {
		return nil, storeFailure("failed to get item", err)
	}
	if item == nil {
		return nil, notFound(itemNotFound)
	}
	if err := s.canModify(caller, item.CreatedBy); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	if in.Name != "" {
		other, err := store.GetItemByName(ctx, s.DB, in.Name)
		if err != nil {
			return nil, storeFailure("failed to check item name", err)
		}
		if other != nil && other.ID != id {
			return nil, conflict(itemTaken)
		}
		item.Name = in.Name
	}
	item.NameSearch = strings.ToLower(item.Name)
	if in.Description != "" {
		item.Description = in.Description
	}
	if in.Category != "" {
		item.Category = in.Category
	}
	if in.Tags != nil {
		item.Tags = in.Tags
	}

	previous := item.Images
	if in.Images != nil {
		item.Images = in.Images
	}
	item.UpdatedAt = s.now()

	if err := store.UpdateItem(ctx, s.DB, item); err != nil {
		return nil, writeFailure(err, itemNotFound, itemTaken, "Item was not updated.")
	}
	slog.Info("item updated", "id", item.ID, "name", item.Name)

	s.publishCleanup(ctx, orphaned(previous, item.Images))
	return item, nil
}

// DeleteItem removes an item and hands all its images to the event bus.
// Admin only.
func (s *Service) DeleteItem(ctx context.Context, caller auth.Identity, id string) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}

	item, err := store.GetItem(ctx, s.DB, id)
	if err != nil {
		return storeFailure("failed to get item", err)
	}
	if item == nil {
		return notFound(itemNotFound)
	}

	if err := store.DeleteItem(ctx, s.DB, id); err != nil {
		return writeFailure(err, itemNotFound, itemTaken, "Deletion failed")
	}
	slog.Info("item deleted", "id", id)

	s.publishCleanup(ctx, orphaned(item.Images, nil))
	return nil
}
