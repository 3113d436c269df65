package events

import (
	"context"
	"errors"
	"log/slog"
)

// Deleter removes stored objects by key. Missing keys must not be an error.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// Cleaner deletes the objects named by cleanup events.
type Cleaner struct {
	Objects Deleter
}

// Handle deletes every key in the event. A failed key does not stop the
// rest; the joined error is returned so the bus can redeliver.
func (c *Cleaner) Handle(ctx context.Context, ev CleanupEvent) error {
	var errs []error
	for _, key := range ev.Keys() {
		if err := c.Objects.Delete(ctx, key); err != nil {
			slog.Error("failed to delete image", "key", key, "error", err)
			errs = append(errs, err)
			continue
		}
		slog.Info("image deleted", "key", key)
	}
	return errors.Join(errs...)
}
