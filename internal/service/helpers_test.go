package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"freleefty/internal/models"
	"freleefty/internal/repository"
	"freleefty/internal/storage"
	"freleefty/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func base() time.Time {
	return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

type testEnv struct {
	db    *gorm.DB
	store *repository.Store
	files *storage.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	files, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)

	testutil.CreateUser(t, db, "alice", models.RoleUser)
	testutil.CreateUser(t, db, "bob", models.RoleUser)
	testutil.CreateUser(t, db, "root", models.RoleAdmin)
	return &testEnv{db: db, store: repository.NewStore(db), files: files}
}

// attach inserts a file row for the owner and writes its bytes.
func (e *testEnv) attach(t *testing.T, owner models.FileOwner, name, mimeType, content string) *models.File {
	t.Helper()
	f := testutil.AttachFile(t, e.db, owner, name, mimeType)
	p, err := e.files.Path(owner, f.ID, name)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o640))
	return f
}

func (e *testEnv) readFile(t *testing.T, owner models.FileOwner, id uint, name string) string {
	t.Helper()
	p, err := e.files.Path(owner, id, name)
	require.NoError(t, err)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

// assertSingleOwner checks that every file row has exactly one owner.
func (e *testEnv) assertSingleOwner(t *testing.T) {
	t.Helper()
	var files []models.File
	require.NoError(t, e.db.Find(&files).Error)
	for _, f := range files {
		assert.NotNil(t, f.Owner(), "file %d has draft_id=%v edition_id=%v", f.ID, f.DraftID, f.EditionID)
	}
}

func (e *testEnv) assertNoTempFiles(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(e.files.Root(), "tmp"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}
