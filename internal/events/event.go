// Package events carries image cleanup events from the catalog to the worker
// that deletes orphaned objects. Delivery is at-least-once, so handlers must
// tolerate seeing the same event twice.
package events

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Source and DetailType identify cleanup events on the bus.
const (
	Source     = "katalog.items"
	DetailType = "DeleteImages"
)

// CleanupEvent lists object keys to delete. Images is a mapping (image1,
// image2, ...) rather than an array so the payload stays a flat key/value
// document on every bus.
type CleanupEvent struct {
	Images map[string]string `json:"images"`
}

// NewCleanupEvent builds an event for the given object keys, skipping empty ones.
func NewCleanupEvent(keys []string) CleanupEvent {
	ev := CleanupEvent{Images: make(map[string]string, len(keys))}
	n := 0
	for _, k := range keys {
		if k == "" {
			continue
		}
		n++
		ev.Images[fmt.Sprintf("image%d", n)] = k
	}
	return ev
}

// Keys returns the object keys in image1, image2, ... order.
func (e CleanupEvent) Keys() []string {
	names := make([]string, 0, len(e.Images))
	for name := range e.Images {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, aok := imageIndex(names[i])
		b, bok := imageIndex(names[j])
		if aok && bok {
			return a < b
		}
		if aok != bok {
			return aok
		}
		return names[i] < names[j]
	})

	keys := make([]string, 0, len(names))
	for _, name := range names {
		if k := e.Images[name]; k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func imageIndex(name string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(name, "image"))
	if err != nil || !strings.HasPrefix(name, "image") {
		return 0, false
	}
	return n, true
}

// Publisher sends cleanup events. Publish returning nil means the bus
// accepted the event, not that the objects are gone.
type Publisher interface {
	Publish(ctx context.Context, ev CleanupEvent) error
}

// Handler processes one delivered event.
type Handler func(ctx context.Context, ev CleanupEvent) error
