package profile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrPickCancelled means the user backed out without choosing an image.
	ErrPickCancelled = errors.New("image pick cancelled")
	// ErrPermissionDenied means the image source refused access.
	ErrPermissionDenied = errors.New("permission to access images was denied")
	// ErrNotImage means the chosen file does not look like an image.
	ErrNotImage = errors.New("file is not a supported image")
)

// Picker produces a new avatar image URI.
type Picker interface {
	Pick(ctx context.Context) (uri string, err error)
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".heic": true,
}

// FilePicker turns a path typed by the user into a file:// URI. An empty
// Path is a cancellation.
type FilePicker struct {
	Path string
}

var _ Picker = FilePicker{}

func (p FilePicker) Pick(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := strings.TrimSpace(p.Path)
	if path == "" {
		return "", ErrPickCancelled
	}
	path, err := expandHome(path)
	if err != nil {
		return "", err
	}
	if !imageExtensions[strings.ToLower(filepath.Ext(path))] {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrNotImage)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", classify(path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrNotImage)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", classify(path, err)
	}
	_ = f.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve image path: %w", err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

func classify(path string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%s: %w", path, ErrPermissionDenied)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("image %s does not exist", path)
	}
	return fmt.Errorf("open image: %w", err)
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
