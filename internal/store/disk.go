package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ayush/travel-journal/backend/internal/models"
)

// DiskStore keeps media files flat in one directory.
type DiskStore struct {
	root string
}

// NewDiskStore creates root if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &DiskStore{root: abs}, nil
}

func (s *DiskStore) Root() string { return s.root }

// Put writes to a temporary file first so readers never see a partial file.
func (s *DiskStore) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	dst, err := s.path(name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

func (s *DiskStore) Open(_ context.Context, name string) (io.ReadCloser, models.MediaObject, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, models.MediaObject{}, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, models.MediaObject{}, ErrNotFound
	}
	if err != nil {
		return nil, models.MediaObject{}, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, models.MediaObject{}, err
	}
	if info.IsDir() {
		f.Close()
		return nil, models.MediaObject{}, ErrNotFound
	}
	return f, models.MediaObject{Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

func (s *DiskStore) Exists(_ context.Context, name string) (bool, error) {
	p, err := s.path(name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func (s *DiskStore) Remove(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

func (s *DiskStore) List(_ context.Context) ([]models.MediaObject, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}
	var objs []models.MediaObject
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		objs = append(objs, models.MediaObject{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return objs, nil
}

// path resolves a bare file name inside root.
func (s *DiskStore) path(name string) (string, error) {
	if !ValidObjectName(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.root, name), nil
}

// ValidObjectName accepts only a single, non-hidden path element.
func ValidObjectName(name string) bool {
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}
