package events

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// memObjects is an idempotent in-memory Deleter.
type memObjects struct {
	mu      sync.Mutex
	objects map[string]bool
	fail    map[string]error
	deleted []string
}

func newMemObjects(keys ...string) *memObjects {
	m := &memObjects{objects: map[string]bool{}, fail: map[string]error{}}
	for _, k := range keys {
		m.objects[k] = true
	}
	return m
}

func (m *memObjects) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[key]; err != nil {
		return err
	}
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func TestCleanerDeletesAllKeys(t *testing.T) {
	objects := newMemObjects("a.png", "b.png", "keep.png")
	c := &Cleaner{Objects: objects}

	if err := c.Handle(context.Background(), NewCleanupEvent([]string{"a.png", "b.png"})); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(objects.objects) != 1 || !objects.objects["keep.png"] {
		t.Errorf("unexpected remaining objects: %v", objects.objects)
	}

	// Redelivery of the same event succeeds.
	if err := c.Handle(context.Background(), NewCleanupEvent([]string{"a.png", "b.png"})); err != nil {
		t.Errorf("redelivered Handle: %v", err)
	}
}

func TestCleanerContinuesAfterFailure(t *testing.T) {
	objects := newMemObjects("a.png", "b.png")
	objects.fail["a.png"] = errors.New("access denied")
	c := &Cleaner{Objects: objects}

	err := c.Handle(context.Background(), NewCleanupEvent([]string{"a.png", "b.png"}))
	if err == nil {
		t.Fatal("expected error")
	}
	if objects.objects["b.png"] {
		t.Error("expected b.png to be deleted despite a.png failing")
	}
}
