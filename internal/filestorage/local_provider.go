package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalURLPrefix is where the router serves the upload directory.
const LocalURLPrefix = "/uploads"

// LocalStorageProvider keeps files in a directory on disk.
type LocalStorageProvider struct {
	dir       string
	urlPrefix string
}

func NewLocalStorageProvider(dir, urlPrefix string) (*LocalStorageProvider, error) {
	if dir == "" {
		return nil, ErrNotConfigured
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &LocalStorageProvider{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

// Dir is the directory files are written to.
func (l *LocalStorageProvider) Dir() string { return l.dir }

func (l *LocalStorageProvider) path(objectName string) (string, error) {
	name := filepath.Base(objectName)
	if name != objectName || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid object name %q", objectName)
	}
	return filepath.Join(l.dir, name), nil
}

func (l *LocalStorageProvider) UploadFile(ctx context.Context, objectName string, fileContent io.Reader, contentType string) (string, error) {
	p, err := l.path(objectName)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", p, err)
	}
	if _, err := io.Copy(f, fileContent); err != nil {
		f.Close()
		os.Remove(p)
		return "", fmt.Errorf("failed to write %s: %w", p, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return objectName, nil
}

func (l *LocalStorageProvider) DeleteFile(ctx context.Context, objectName string) error {
	p, err := l.path(objectName)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (l *LocalStorageProvider) GetURL(ctx context.Context, objectName string) (string, error) {
	if _, err := l.path(objectName); err != nil {
		return "", err
	}
	return l.urlPrefix + "/" + objectName, nil
}
