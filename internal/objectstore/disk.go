package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Disk stores objects as files under Root and serves them below BaseURL.
type Disk struct {
	Root    string
	BaseURL string
}

// NewDisk creates the root directory if needed.
func NewDisk(root, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating object directory: %w", err)
	}
	return &Disk{Root: root, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (d *Disk) path(key string) (string, error) {
	if key == "" || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(d.Root, filepath.FromSlash(key)), nil
}

// Put writes the object to a temp file and renames it into place.
func (d *Disk) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	p, err := d.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("creating object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating object file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing object: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return "", fmt.Errorf("storing object: %w", err)
	}

	return d.URL(key), nil
}

// Delete removes the object file.
func (d *Disk) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

func (d *Disk) URL(key string) string {
	return d.BaseURL + "/" + key
}

func (d *Disk) Key(ref string) string {
	return KeyFromURL(d.BaseURL, ref)
}

// Handler serves stored objects for public read. Mount it with the URL
// prefix stripped.
func (d *Disk) Handler() http.Handler {
	return http.FileServerFS(os.DirFS(d.Root))
}
