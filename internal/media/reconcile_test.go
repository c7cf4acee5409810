package media

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/travel-journal/backend/internal/logging"
)

type staticRefs struct {
	urls []string
	err  error
}

func (s staticRefs) ImageURLs(context.Context) ([]string, error) { return s.urls, s.err }

func TestSweepRemovesOnlyOldUnreferencedFiles(t *testing.T) {
	ctx := context.Background()
	m, disk := newTestManager(t)

	kept, err := m.Upload(ctx, "kept.png", "image/png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	orphan, err := m.Upload(ctx, "orphan.png", "image/png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	fresh, err := m.Upload(ctx, "fresh.png", "image/png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)

	old := time.Now().Add(-48 * time.Hour)
	for _, u := range []string{kept, orphan} {
		name, _ := NameFromURL(u)
		require.NoError(t, os.Chtimes(filepath.Join(disk.Root(), name), old, old))
	}

	refs := staticRefs{urls: []string{kept, "https://elsewhere.example/uploads/x.png", ""}}
	rec := NewReconciler(m, refs, 24*time.Hour, logging.Discard())
	removed, err := rec.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	remaining := files(t, disk.Root())
	keptName, _ := NameFromURL(kept)
	freshName, _ := NameFromURL(fresh)
	assert.ElementsMatch(t, []string{keptName, freshName}, remaining)
}

func TestSweepStopsWhenReferencesFail(t *testing.T) {
	ctx := context.Background()
	m, disk := newTestManager(t)
	_, err := m.Upload(ctx, "a.png", "image/png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)

	rec := NewReconciler(m, staticRefs{err: errors.New("mongo down")}, 0, logging.Discard())
	_, err = rec.Sweep(ctx)
	assert.Error(t, err)
	assert.Len(t, files(t, disk.Root()), 1)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	m, _ := newTestManager(t)
	rec := NewReconciler(m, staticRefs{}, time.Hour, logging.Discard())
	_, err := rec.Start("not a schedule")
	assert.Error(t, err)

	c, err := rec.Start("@every 1h")
	require.NoError(t, err)
	<-c.Stop().Done()
}

func TestSweepKeepsFilesReferencedUnderAnotherBaseURL(t *testing.T) {
	ctx := context.Background()
	m, disk := newTestManager(t)

	u, err := m.Upload(ctx, "beach.png", "image/png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	name, ok := NameFromURL(u)
	require.True(t, ok)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(disk.Root(), name), old, old))

	refs := staticRefs{urls: []string{"https://journal.example.com/uploads/" + name}}
	removed, err := NewReconciler(m, refs, 24*time.Hour, logging.Discard()).Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, []string{name}, files(t, disk.Root()))
}

func TestUploadReference(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"http://localhost:8000/uploads/a.png", "a.png", true},
		{"https://old-host.example/uploads/a.png?v=2", "a.png", true},
		{"/uploads/a.png", "a.png", true},
		{"https://cdn.example.com/images/a.png", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := uploadReference(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
