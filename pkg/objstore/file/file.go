// Package file implements objstore.Backend on the local filesystem.
//
// Keys map to relative paths under BaseDir. Writes go through a temp file
// and rename so readers never see a partial object. Intended for
// development and single-node deployments.
package file

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/castforge/castforge/pkg/objstore"
)

const backendName = "file"

type Config struct {
	// BaseDir is the root directory all keys resolve under.
	BaseDir string

	// BaseURL, when set, prefixes locators returned by URL (e.g. the
	// public address the server serves artifacts from). Defaults to
	// file:// paths.
	BaseURL string
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseDir) == "" {
		return fmt.Errorf("base dir is required")
	}
	return nil
}

// Backend implements objstore.Backend for local paths.
type Backend struct {
	baseDir string
	baseURL string
}

var _ objstore.Backend = (*Backend)(nil)

func New(cfg Config) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Backend{
		baseDir: filepath.Clean(cfg.BaseDir),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

func (b *Backend) Close() error { return nil }

func (b *Backend) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_ = ctx
	_ = contentType // filesystems have no content-type metadata
	full, err := b.fullPath(key)
	if err != nil {
		return b.wrapError("Put", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return b.wrapError("Put", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), "castforge-put-*")
	if err != nil {
		return b.wrapError("Put", key, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(body); err != nil {
		return b.wrapError("Put", key, err)
	}
	if err := tmp.Close(); err != nil {
		return b.wrapError("Put", key, err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		return b.wrapError("Put", key, err)
	}
	return nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	_ = ctx
	full, err := b.fullPath(key)
	if err != nil {
		return nil, b.wrapError("Get", key, err)
	}
	body, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &objstore.Error{Op: "Get", Backend: backendName, Key: key, Err: objstore.ErrNotFound}
		}
		return nil, b.wrapError("Get", key, err)
	}
	return body, nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	_ = ctx
	full, err := b.fullPath(key)
	if err != nil {
		return b.wrapError("Delete", key, err)
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return b.wrapError("Delete", key, err)
	}
	return nil
}

func (b *Backend) List(ctx context.Context, prefix string) ([]string, error) {
	_ = ctx
	root, err := b.fullPath(prefix)
	if err != nil {
		return nil, b.wrapError("List", prefix, err)
	}
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, b.wrapError("List", prefix, err)
	}

	var keys []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.baseDir, path)
		if err != nil {
			return nil
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(keys)
	return keys, nil
}

func (b *Backend) URL(key string) string {
	key = strings.TrimPrefix(key, "/")
	if b.baseURL != "" {
		return b.baseURL + "/" + key
	}
	return "file://" + filepath.Join(b.baseDir, filepath.FromSlash(key))
}

func (b *Backend) fullPath(key string) (string, error) {
	key = strings.TrimSpace(key)
	key = strings.TrimPrefix(key, "/")
	// Prevent path traversal.
	clean := filepath.Clean("/" + key)
	clean = strings.TrimPrefix(clean, "/")
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid key path")
	}
	return filepath.Join(b.baseDir, filepath.FromSlash(clean)), nil
}

func (b *Backend) wrapError(op, key string, err error) error {
	wrapped := &objstore.Error{Op: op, Backend: backendName, Key: key, Err: err}
	if err == nil {
		wrapped.Err = fmt.Errorf("unknown error")
	}
	// Normalize common filesystem errors to sentinels.
	if os.IsNotExist(err) {
		wrapped.Err = objstore.ErrNotFound
	}
	if os.IsPermission(err) {
		wrapped.Err = objstore.ErrAccessDenied
	}
	return wrapped
}
