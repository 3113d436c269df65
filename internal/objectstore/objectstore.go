// Package objectstore stores image objects and maps between public URLs and
// object keys. Deleting a missing object is never an error.
package objectstore

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"
)

// Store is a blob store with public read URLs.
type Store interface {
	// Put stores body under key and returns its public URL.
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	// Delete removes the object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL for key.
	URL(key string) string
	// Key returns the object key referenced by a public URL.
	Key(ref string) string
}

// KeyFromURL extracts an object key from a stored image reference.
//
// With a baseURL, only references under it map to a key (the remainder of the
// path); anything else maps to "" so foreign objects are never touched.
// Without one, absolute URLs use the part after the first ".com/"
// (bucket-hosted URLs), falling back to the last path segment, and a
// reference that is not a URL is already a key.
func KeyFromURL(baseURL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	if baseURL != "" {
		prefix := strings.TrimSuffix(baseURL, "/") + "/"
		if !strings.HasPrefix(ref, prefix) {
			return ""
		}
		return stripQuery(strings.TrimPrefix(ref, prefix))
	}

	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ref
	}

	if i := strings.Index(ref, ".com/"); i >= 0 {
		return stripQuery(ref[i+len(".com/"):])
	}

	return path.Base(u.Path)
}

func stripQuery(key string) string {
	if q := strings.IndexAny(key, "?#"); q >= 0 {
		return key[:q]
	}
	return key
}
