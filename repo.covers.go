package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// CoverPrefix is the logical prefix under which every cover image lives.
const CoverPrefix = "covers"

// CoverStorage stores uploaded cover images and returns their logical path.
type CoverStorage interface {
	Save(name string, r io.Reader) (string, error)
	Remove(path string) error
}

type localCoverStorage struct {
	logger *zap.Logger
	root   string
}

// NewLocalCoverStorage provides a filesystem-backed cover storage rooted
// at the media folder. The covers subfolder is created upfront.
func NewLocalCoverStorage(logger *zap.Logger, root string) (CoverStorage, error) {
	if err := os.MkdirAll(filepath.Join(root, CoverPrefix), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create covers folder: %w", err)
	}
	return &localCoverStorage{
		logger: logger,
		root:   root,
	}, nil
}

// Save writes the uploaded file under the covers prefix keeping the
// original filename, and returns the logical path to store on the book.
func (cs *localCoverStorage) Save(name string, r io.Reader) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid cover filename %q", name)
	}
	logical := filepath.ToSlash(filepath.Join(CoverPrefix, name))

	file, err := os.Create(filepath.Join(cs.root, CoverPrefix, name))
	if err != nil {
		return "", fmt.Errorf("failed to create cover file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			cs.logger.Error("failed to close cover file", zap.String("cover", logical), zap.Error(cerr))
		}
	}()

	if _, err = io.Copy(file, r); err != nil {
		return "", fmt.Errorf("failed to write cover file: %w", err)
	}
	return logical, nil
}

// Remove deletes a previously saved cover image. A missing file is not
// an error, the book record is the source of truth.
func (cs *localCoverStorage) Remove(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(filepath.Join(cs.root, filepath.FromSlash(path)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cover file: %w", err)
	}
	return nil
}
