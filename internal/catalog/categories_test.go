package catalog

import (
	"context"
	"errors"
	"testing"
)

func ptr(s string) *string { return &s }

func TestCreateCategory(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, admin, CategoryInput{Name: ptr("tools"), Image: ptr(imageURL("tools.png"))})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if c.Description != "" || c.Image != imageURL("tools.png") {
		t.Errorf("unexpected category %+v", c)
	}

	_, err = svc.CreateCategory(ctx, admin, CategoryInput{Name: ptr("tools")})
	assertKind(t, err, Conflict)

	_, err = svc.CreateCategory(ctx, ana, CategoryInput{Name: ptr("food")})
	assertKind(t, err, Forbidden)

	_, err = svc.CreateCategory(ctx, admin, CategoryInput{})
	assertKind(t, err, BadRequest)
}

func TestUpdateCategoryMergesFields(t *testing.T) {
	svc, images, _ := newTestService(t)
	ctx := context.Background()

	c, _ := svc.CreateCategory(ctx, admin, CategoryInput{
		Name: ptr("tools"), Description: ptr("hand tools"), Image: ptr(imageURL("tools.png")),
	})

	updated, err := svc.UpdateCategory(ctx, admin, c.ID, CategoryInput{Description: ptr("all tools")})
	if err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if updated.Name != "tools" || updated.Description != "all tools" || updated.Image != imageURL("tools.png") {
		t.Errorf("unexpected merge result %+v", updated)
	}
	if len(images.deleted) != 0 {
		t.Errorf("image must be kept when not supplied, deleted %v", images.deleted)
	}
}

func TestUpdateCategoryReplacesImage(t *testing.T) {
	svc, images, pub := newTestService(t)
	ctx := context.Background()

	c, _ := svc.CreateCategory(ctx, admin, CategoryInput{Name: ptr("tools"), Image: ptr(imageURL("old.png"))})

	updated, err := svc.UpdateCategory(ctx, admin, c.ID, CategoryInput{Image: ptr(imageURL("new.png"))})
	if err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if updated.Image != imageURL("new.png") {
		t.Errorf("expected new image, got %q", updated.Image)
	}
	if len(images.deleted) != 1 || images.deleted[0] != "old.png" {
		t.Errorf("expected old.png deleted, got %v", images.deleted)
	}
	if len(pub.events) != 0 {
		t.Errorf("category images never go through the bus, got %v", pub.events)
	}
}

func TestUpdateCategoryConflictsAndMissing(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tools, _ := svc.CreateCategory(ctx, admin, CategoryInput{Name: ptr("tools")})
	svc.CreateCategory(ctx, admin, CategoryInput{Name: ptr("food")})

	_, err := svc.UpdateCategory(ctx, admin, tools.ID, CategoryInput{Name: ptr("food")})
	assertKind(t, err, Conflict)

	if _, err := svc.UpdateCategory(ctx, admin, tools.ID, CategoryInput{Name: ptr("tools")}); err != nil {
		t.Errorf("renaming to own name: %v", err)
	}

	_, err = svc.UpdateCategory(ctx, admin, "missing", CategoryInput{Name: ptr("x")})
	assertKind(t, err, NotFound)
}

func TestDeleteCategoryDeletesImage(t *testing.T) {
	svc, images, _ := newTestService(t)
	ctx := context.Background()

	c, _ := svc.CreateCategory(ctx, admin, CategoryInput{Name: ptr("tools"), Image: ptr(imageURL("tools.png"))})

	if err := svc.DeleteCategory(ctx, admin, c.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if len(images.deleted) != 1 || images.deleted[0] != "tools.png" {
		t.Errorf("expected tools.png deleted before returning, got %v", images.deleted)
	}

	assertKind(t, svc.DeleteCategory(ctx, admin, c.ID), NotFound)
}

func TestDeleteCategoryImageFailure(t *testing.T) {
	svc, images, _ := newTestService(t)
	ctx := context.Background()

	c, _ := svc.CreateCategory(ctx, admin, CategoryInput{Name: ptr("tools"), Image: ptr(imageURL("tools.png"))})
	images.err = errors.New("access denied")

	assertKind(t, svc.DeleteCategory(ctx, admin, c.ID), StoreFailure)

	// The record is gone regardless.
	_, err := svc.GetCategory(ctx, c.ID)
	assertKind(t, err, NotFound)
}
