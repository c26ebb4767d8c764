package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"freleefty/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mib = 1 << 20

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	return m
}

func tmpEntries(t *testing.T, m *Manager) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(m.Root(), "tmp"))
	require.NoError(t, err)
	return entries
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestUpload_RenameIntoDraft(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	up, err := m.Upload(ctx, strings.NewReader("hello"), 5, 10*mib)
	require.NoError(t, err)
	assert.Equal(t, int64(5), up.Size())
	assert.Len(t, tmpEntries(t, m), 1)

	require.NoError(t, up.Rename(7, 101, "photo.png"))
	assert.Empty(t, tmpEntries(t, m))
	assert.Equal(t, "hello", readFile(t, filepath.Join(m.Root(), "d", "7", "101", "photo.png")))

	up.Cancel()
	assert.FileExists(t, filepath.Join(m.Root(), "d", "7", "101", "photo.png"))
}

func TestUpload_TooLarge(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	payload := bytes.Repeat([]byte{'x'}, 11*mib)

	t.Run("declared size refused up front", func(t *testing.T) {
		_, err := m.Upload(ctx, bytes.NewReader(payload), int64(len(payload)), 10*mib)
		assert.ErrorIs(t, err, models.ErrTooLarge)
		assert.Empty(t, tmpEntries(t, m))
	})

	t.Run("unknown size detected while streaming", func(t *testing.T) {
		_, err := m.Upload(ctx, io.MultiReader(bytes.NewReader(payload)), -1, 10*mib)
		assert.ErrorIs(t, err, models.ErrTooLarge)
		assert.Empty(t, tmpEntries(t, m))
	})

	t.Run("exactly at the limit is accepted", func(t *testing.T) {
		up, err := m.Upload(ctx, bytes.NewReader(payload[:10*mib]), -1, 10*mib)
		require.NoError(t, err)
		up.Cancel()
		assert.Empty(t, tmpEntries(t, m))
	})
}

func TestUpload_Cancel(t *testing.T) {
	m := newManager(t)
	up, err := m.Upload(context.Background(), strings.NewReader("data"), -1, mib)
	require.NoError(t, err)

	up.Cancel()
	up.Cancel()
	assert.Empty(t, tmpEntries(t, m))
}

func TestUpload_RejectsUnsafeName(t *testing.T) {
	m := newManager(t)
	up, err := m.Upload(context.Background(), strings.NewReader("data"), -1, mib)
	require.NoError(t, err)
	defer up.Cancel()

	for _, name := range []string{"", "..", "../escape", `a\b`, "a/b"} {
		assert.Error(t, up.Rename(1, 1, name), name)
	}
}

func TestMoveDraftFilesToEdition(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	up, err := m.Upload(ctx, strings.NewReader("png"), -1, mib)
	require.NoError(t, err)
	require.NoError(t, up.Rename(10, 101, "a.png"))

	require.NoError(t, m.MoveDraftFilesToEdition(10, 3))
	assert.NoDirExists(t, filepath.Join(m.Root(), "d", "10"))
	assert.Equal(t, "png", readFile(t, filepath.Join(m.Root(), "e", "3", "101", "a.png")))

	// A retried move after success is a no-op.
	require.NoError(t, m.MoveDraftFilesToEdition(10, 3))

	// Nothing on either side is a real failure.
	assert.Error(t, m.MoveDraftFilesToEdition(11, 4))
}

func TestLinkEditionFilesToDraft(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	for id, name := range map[uint]string{1: "a.png", 2: "b.pdf"} {
		up, err := m.Upload(ctx, strings.NewReader(name), -1, mib)
		require.NoError(t, err)
		require.NoError(t, up.Rename(5, id, name))
	}
	require.NoError(t, m.MoveDraftFilesToEdition(5, 9))

	links := []FileLink{
		{EditionFileID: 1, DraftFileID: 11, Name: "a.png"},
		{EditionFileID: 2, DraftFileID: 12, Name: "b.pdf"},
	}
	require.NoError(t, m.LinkEditionFilesToDraft(ctx, 9, 6, links))
	assert.Equal(t, "a.png", readFile(t, filepath.Join(m.Root(), "d", "6", "11", "a.png")))
	assert.Equal(t, "b.pdf", readFile(t, filepath.Join(m.Root(), "d", "6", "12", "b.pdf")))

	src, err := os.Stat(filepath.Join(m.Root(), "e", "9", "1", "a.png"))
	require.NoError(t, err)
	dst, err := os.Stat(filepath.Join(m.Root(), "d", "6", "11", "a.png"))
	require.NoError(t, err)
	assert.True(t, os.SameFile(src, dst))

	// Linking again is tolerated.
	require.NoError(t, m.LinkEditionFilesToDraft(ctx, 9, 6, links))

	err = m.LinkEditionFilesToDraft(ctx, 9, 6, []FileLink{{EditionFileID: 99, DraftFileID: 13, Name: "missing"}})
	assert.Error(t, err)
}

func TestDeleteFiles(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	for _, id := range []uint{1, 2} {
		up, err := m.Upload(ctx, strings.NewReader("x"), -1, mib)
		require.NoError(t, err)
		require.NoError(t, up.Rename(4, id, "f.txt"))
	}

	require.NoError(t, m.DeleteOneDraftFile(4, 1))
	assert.NoDirExists(t, filepath.Join(m.Root(), "d", "4", "1"))
	assert.DirExists(t, filepath.Join(m.Root(), "d", "4", "2"))
	require.NoError(t, m.DeleteOneDraftFile(4, 1))

	require.NoError(t, m.DeleteDraftFiles(4))
	assert.NoDirExists(t, filepath.Join(m.Root(), "d", "4"))
	require.NoError(t, m.DeleteDraftFiles(4))
	require.NoError(t, m.DeleteEditionFiles(123))
}

func TestOpen(t *testing.T) {
	m := newManager(t)
	up, err := m.Upload(context.Background(), strings.NewReader("body"), -1, mib)
	require.NoError(t, err)
	require.NoError(t, up.Rename(1, 2, "note.txt"))

	f, err := m.Open(models.DraftOwner{DraftID: 1}, 2, "note.txt")
	require.NoError(t, err)
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	_ = f.Close()
	assert.Equal(t, "body", string(b))

	_, err = m.Open(models.EditionOwner{EditionID: 1}, 2, "note.txt")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
