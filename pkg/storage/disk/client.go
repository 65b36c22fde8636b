package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/stylesense/stylesense-backend/pkg/config"
	"github.com/stylesense/stylesense-backend/pkg/logger"
)

// Client stores uploaded blobs on the local filesystem under generated
// names. Names are never reused, so no locking is needed around the
// directory.
type Client struct {
	dir string
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient prepares the upload directory and verifies it is writable.
func NewClient(ctx context.Context, cfg config.UploadConfig, logg *logger.Logger) (*Client, error) {
	if cfg.Dir == "" {
		return nil, errors.New("upload directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	client := &Client{dir: cfg.Dir}
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("blob store health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "blob store initialized")
	}
	return client, nil
}

// Dir returns the root of the blob directory.
func (c *Client) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Save writes the blob under a freshly generated unique name and returns it.
func (c *Client) Save(ctx context.Context, r io.Reader, ext string) (string, error) {
	if c == nil {
		return "", errors.New("blob store not initialized")
	}
	name := fmt.Sprintf("%s.%s", uuid.NewString(), strings.ToLower(strings.TrimPrefix(ext, ".")))

	f, err := os.Create(filepath.Join(c.dir, name))
	if err != nil {
		return "", fmt.Errorf("create blob %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(filepath.Join(c.dir, name))
		return "", fmt.Errorf("write blob %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close blob %s: %w", name, err)
	}
	return name, nil
}

// Open returns the blob contents for the given name.
func (c *Client) Open(ctx context.Context, name string) ([]byte, error) {
	path, err := c.path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Delete removes the named blob. Deleting a missing blob is not an error.
func (c *Client) Delete(ctx context.Context, name string) error {
	path, err := c.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", name, err)
	}
	return nil
}

// Ping verifies the directory accepts writes.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.dir == "" {
		return errors.New("blob store not initialized")
	}
	probe, err := os.CreateTemp(c.dir, ".ping-*")
	if err != nil {
		return fmt.Errorf("upload directory not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

// path resolves a stored name, rejecting anything that escapes the directory.
func (c *Client) path(name string) (string, error) {
	if c == nil {
		return "", errors.New("blob store not initialized")
	}
	clean := filepath.Base(strings.TrimSpace(name))
	if clean == "" || clean == "." || clean != name {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	return filepath.Join(c.dir, clean), nil
}
