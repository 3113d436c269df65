// Package catalog implements the tag, category and item operations: query
// routing, uniqueness and ownership checks, and reclamation of image objects
// that mutations leave unreferenced.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/katalog/internal/events"
	"github.com/erazemk/katalog/internal/store"
)

// Images is the part of the object store the catalog needs.
type Images interface {
	Delete(ctx context.Context, key string) error
	Key(ref string) string
}

// Service runs catalog operations against the database, object store and
// event bus it is given.
type Service struct {
	DB     *sql.DB
	Images Images
	Events events.Publisher
	// AdminGroup defaults to auth.DefaultAdminGroup.
	AdminGroup string

	Now   func() time.Time
	NewID func() string
}

// New returns a Service using the wall clock and random UUIDs.
func New(db *sql.DB, images Images, pub events.Publisher, adminGroup string) *Service {
	return &Service{
		DB:         db,
		Images:     images,
		Events:     pub,
		AdminGroup: adminGroup,
		Now:        func() time.Time { return time.Now().UTC() },
		NewID:      uuid.NewString,
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID == nil {
		return uuid.NewString()
	}
	return s.NewID()
}

// writeFailure translates store write errors. notFoundMsg and takenMsg are the
// messages reported for the corresponding sentinels.
func writeFailure(err error, notFoundMsg, takenMsg, failMsg string) error {
	switch {
	case errors.Is(err, store.ErrNameTaken):
		return conflict(takenMsg)
	case errors.Is(err, store.ErrNotFound):
		return notFound(notFoundMsg)
	default:
		return storeFailure(failMsg, err)
	}
}

// publishCleanup sends one cleanup event for the given image references.
// Failures are logged and never returned.
func (s *Service) publishCleanup(ctx context.Context, refs []string) {
	if len(refs) == 0 || s.Events == nil {
		return
	}

	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		if key := s.Images.Key(ref); key != "" {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return
	}

	if err := s.Events.Publish(ctx, events.NewCleanupEvent(keys)); err != nil {
		slog.Error("failed to publish image cleanup", "images", keys, "error", err)
		return
	}
	slog.Debug("published image cleanup", "images", keys)
}

// deleteImage removes a single image object right away.
func (s *Service) deleteImage(ctx context.Context, ref string) error {
	key := s.Images.Key(ref)
	if key == "" {
		return nil
	}
	if err := s.Images.Delete(ctx, key); err != nil {
		return err
	}
	slog.Info("deleted image", "key", key)
	return nil
}

// orphaned returns the references in before that are missing from after.
func orphaned(before, after []string) []string {
	keep := make(map[string]bool, len(after))
	for _, ref := range after {
		keep[ref] = true
	}

	var out []string
	seen := make(map[string]bool)
	for _, ref := range before {
		if keep[ref] || seen[ref] {
			continue
		}
		seen[ref] = true
		out = append(out, ref)
	}
	return out
}

// checkList rejects empty entries in tags or images.
func checkList(field string, list []string) error {
	for _, v := range list {
		if v == "" {
			return badRequest(field + " must be an array of non-empty strings")
		}
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}
