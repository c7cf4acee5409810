// Package media stores uploaded images and maps them to public URLs.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/ayush/travel-journal/backend/internal/apperr"
	"github.com/ayush/travel-journal/backend/internal/metrics"
	"github.com/ayush/travel-journal/backend/internal/models"
	"github.com/ayush/travel-journal/backend/internal/store"
)

const (
	uploadsPrefix = "/uploads/"
	sniffLen      = 512
)

// Backend is implemented by store.DiskStore and store.MinioStore.
type Backend interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, models.MediaObject, error)
	Exists(ctx context.Context, name string) (bool, error)
	Remove(ctx context.Context, name string) error
	List(ctx context.Context) ([]models.MediaObject, error)
}

// Manager validates uploads, names them and runs all backend I/O through a
// bounded pool.
type Manager struct {
	backend  Backend
	baseURL  string
	sem      *semaphore.Weighted
	maxBytes int64
	log      *logrus.Logger
	now      func() time.Time
}

func NewManager(backend Backend, baseURL string, workers int, maxBytes int64, log *logrus.Logger) *Manager {
	if workers <= 0 {
		workers = 1
	}
	return &Manager{
		backend:  backend,
		baseURL:  strings.TrimRight(baseURL, "/"),
		sem:      semaphore.NewWeighted(int64(workers)),
		maxBytes: maxBytes,
		log:      log,
		now:      time.Now,
	}
}

// Upload stores an image and returns its public URL. Nothing is written
// when the upload is rejected.
func (m *Manager) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if r == nil {
		return "", apperr.Validation("No file uploaded")
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return "", apperr.Validation("Only image files are allowed")
	}

	var buf bytes.Buffer
	limit := m.maxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "Failed to read image", err)
	}
	if n == 0 {
		return "", apperr.Validation("No file uploaded")
	}
	if n > limit {
		return "", apperr.Validation("Image is too large")
	}

	head := buf.Bytes()
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	detected := mimetype.Detect(head)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", apperr.Validation("Only image files are allowed")
	}

	name := m.newName(detected)
	err = m.run(ctx, "put", func(ctx context.Context) error {
		return m.backend.Put(ctx, name, bytes.NewReader(buf.Bytes()), n, detected.String())
	})
	if err != nil {
		return "", apperr.Internal("Failed to upload image", err)
	}

	m.log.WithFields(logrus.Fields{"name": name, "filename": filename, "bytes": n}).Info("image stored")
	return m.PublicURL(name), nil
}

// DeleteByURL removes the file a public URL points at.
func (m *Manager) DeleteByURL(ctx context.Context, rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return apperr.Validation("Image URL is required")
	}
	name, ok := NameFromURL(rawURL)
	if !ok {
		return apperr.Validation("Invalid image URL")
	}

	var exists bool
	err := m.run(ctx, "exists", func(ctx context.Context) error {
		var err error
		exists, err = m.backend.Exists(ctx, name)
		return err
	})
	if err != nil {
		return apperr.Internal("Failed to delete image", err)
	}
	if !exists {
		return apperr.NotFound("Image not found")
	}

	err = m.run(ctx, "remove", func(ctx context.Context) error {
		return m.backend.Remove(ctx, name)
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("Image not found")
	case err != nil:
		return apperr.Internal("Failed to delete image", err)
	}
	m.log.WithField("name", name).Info("image deleted")
	return nil
}

// Open returns the stored file for name. The caller closes the reader.
func (m *Manager) Open(ctx context.Context, name string) (io.ReadCloser, models.MediaObject, error) {
	if !store.ValidObjectName(name) {
		return nil, models.MediaObject{}, apperr.NotFound("Image not found")
	}
	var (
		rc  io.ReadCloser
		obj models.MediaObject
	)
	err := m.run(ctx, "open", func(ctx context.Context) error {
		var err error
		rc, obj, err = m.backend.Open(ctx, name)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.MediaObject{}, apperr.NotFound("Image not found")
	}
	if err != nil {
		return nil, models.MediaObject{}, apperr.Internal("Failed to read image", err)
	}
	return rc, obj, nil
}

// PublicURL is the address a stored name is served under.
func (m *Manager) PublicURL(name string) string {
	return m.baseURL + uploadsPrefix + name
}

// Manages reports whether rawURL points into this manager's upload space.
func (m *Manager) Manages(rawURL string) bool {
	return strings.HasPrefix(rawURL, m.baseURL+uploadsPrefix)
}

// NameFromURL extracts the stored file name from a public URL. Only the
// final path element is used, so a URL can never address anything outside
// the storage root.
func NameFromURL(rawURL string) (string, bool) {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "", false
	}
	name := path.Base(p)
	if !store.ValidObjectName(name) {
		return "", false
	}
	return name, true
}

// run executes fn while holding a pool slot. Waiting for a slot honours ctx.
func (m *Manager) run(ctx context.Context, op string, fn func(context.Context) error) error {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("media pool: %w", err)
	}
	defer m.sem.Release(1)

	err := fn(ctx)
	metrics.RecordMediaOp(op, err)
	return err
}

// newName ignores the client's file name; the extension always follows the
// sniffed type so the file is served back as an image.
func (m *Manager) newName(detected *mimetype.MIME) string {
	ext := detected.Extension()
	return fmt.Sprintf("%d-%s%s", m.now().UnixMilli(), uuid.NewString()[:8], ext)
}
