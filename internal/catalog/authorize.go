package catalog

import (
	"context"

	"github.com/erazemk/katalog/internal/auth"
	"github.com/erazemk/katalog/internal/store"
)

// isAdmin reports whether the caller belongs to the configured admin group.
func (s *Service) isAdmin(id auth.Identity) bool {
	return id.InGroup(s.adminGroup())
}

func (s *Service) requireAdmin(id auth.Identity) error {
	if !s.isAdmin(id) {
		return forbidden("Admin access required")
	}
	return nil
}

// canModify allows admins and the record's creator.
func (s *Service) canModify(id auth.Identity, createdBy string) error {
	if s.isAdmin(id) || id.Owns(createdBy) {
		return nil
	}
	return forbidden("You are not allowed to update this item")
}

func (s *Service) adminGroup() string {
	if s.AdminGroup == "" {
		return auth.DefaultAdminGroup
	}
	return s.AdminGroup
}

// AuthorizeAdmin fails with Forbidden unless the caller is an admin. Callers
// run it before reading a request body.
func (s *Service) AuthorizeAdmin(caller auth.Identity) error {
	return s.requireAdmin(caller)
}

// AuthorizeItemUpdate fails with NotFound for a missing item and Forbidden
// unless the caller is an admin or the item's creator.
func (s *Service) AuthorizeItemUpdate(ctx context.Context, caller auth.Identity, id string) error {
	item, err := store.GetItem(ctx, s.DB, id)
	if err != nil {
		return storeFailure("failed to get item", err)
	}
	if item == nil {
		return notFound(itemNotFound)
	}
	return s.canModify(caller, item.CreatedBy)
}
