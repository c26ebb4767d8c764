package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"freleefty/internal/config"
	"freleefty/internal/models"
	"freleefty/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileService(env *testEnv) *FileService {
	return NewFileService(env.store, env.files, config.DefaultUploadMaxBytes)
}

func upload(draftID uint, author, name, content string) CreateFileInput {
	return CreateFileInput{
		DraftID:  draftID,
		AuthorID: author,
		Name:     name,
		MimeType: "text/plain",
		Size:     int64(len(content)),
		Body:     strings.NewReader(content),
	}
}

func TestCreateFile(t *testing.T) {
	env := newTestEnv(t)
	svc := newFileService(env)
	ctx := context.Background()
	draft := testutil.CreateDraft(t, env.db, "alice", "Hello", "")

	file, err := svc.CreateFile(ctx, upload(draft.ID, "alice", "notes.txt", "hello"))
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", file.Name)
	assert.Equal(t, models.FileOwner(models.DraftOwner{DraftID: draft.ID}), file.Owner())
	assert.Equal(t, "hello", env.readFile(t, models.DraftOwner{DraftID: draft.ID}, file.ID, "notes.txt"))
	env.assertNoTempFiles(t)
}

func TestCreateFile_NormalizesName(t *testing.T) {
	env := newTestEnv(t)
	svc := newFileService(env)
	draft := testutil.CreateDraft(t, env.db, "alice", "Hello", "")

	// "e" followed by a combining acute accent.
	file, err := svc.CreateFile(context.Background(), upload(draft.ID, "alice", "cafe\u0301.txt", "x"))
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9.txt", file.Name)
}

func TestCreateFile_TooLarge(t *testing.T) {
	env := newTestEnv(t)
	svc := newFileService(env)
	ctx := context.Background()
	draft := testutil.CreateDraft(t, env.db, "alice", "Hello", "")
	payload := bytes.Repeat([]byte{'x'}, 11<<20)

	t.Run("declared", func(t *testing.T) {
		in := upload(draft.ID, "alice", "big.bin", "")
		in.Size = int64(len(payload))
		in.Body = bytes.NewReader(payload)
		_, err := svc.CreateFile(ctx, in)
		assert.ErrorIs(t, err, models.ErrTooLarge)
		env.assertNoTempFiles(t)
	})

	t.Run("streamed", func(t *testing.T) {
		in := upload(draft.ID, "alice", "big.bin", "")
		in.Size = -1
		in.Body = bytes.NewReader(payload)
		_, err := svc.CreateFile(ctx, in)
		assert.ErrorIs(t, err, models.ErrTooLarge)
		env.assertNoTempFiles(t)
	})

	assert.Zero(t, env.count(t, &models.File{}, ""))
}

func TestCreateFile_Failures(t *testing.T) {
	env := newTestEnv(t)
	svc := newFileService(env)
	ctx := context.Background()
	draft := testutil.CreateDraft(t, env.db, "alice", "Hello", "")

	first, err := svc.CreateFile(ctx, upload(draft.ID, "alice", "a.txt", "first"))
	require.NoError(t, err)

	t.Run("duplicate name", func(t *testing.T) {
		_, err := svc.CreateFile(ctx, upload(draft.ID, "alice", "a.txt", "second"))
		assert.ErrorIs(t, err, models.ErrConflict)
		env.assertNoTempFiles(t)
	})

	t.Run("other author", func(t *testing.T) {
		_, err := svc.CreateFile(ctx, upload(draft.ID, "bob", "b.txt", "x"))
		assert.ErrorIs(t, err, models.ErrNotFound)
		env.assertNoTempFiles(t)
	})

	t.Run("missing draft", func(t *testing.T) {
		_, err := svc.CreateFile(ctx, upload(9999, "alice", "b.txt", "x"))
		assert.ErrorIs(t, err, models.ErrNotFound)
		env.assertNoTempFiles(t)
	})

	for _, name := range []string{"", ".hidden", "a/b.txt", `a\b.txt`, strings.Repeat("n", 256)} {
		t.Run("invalid name "+name, func(t *testing.T) {
			_, err := svc.CreateFile(ctx, upload(draft.ID, "alice", name, "x"))
			assertValidationError(t, err)
		})
	}

	assert.Equal(t, int64(1), env.count(t, &models.File{}, ""))
	assert.Equal(t, "first", env.readFile(t, models.DraftOwner{DraftID: draft.ID}, first.ID, "a.txt"))
}

func TestDeleteFile(t *testing.T) {
	env := newTestEnv(t)
	svc := newFileService(env)
	ctx := context.Background()

	draft := testutil.CreateDraft(t, env.db, "alice", "Hello", "")
	edition := testutil.CreateEdition(t, env.db, draft.ArticleID, "Hello", base())
	owner := models.DraftOwner{DraftID: draft.ID}
	f := env.attach(t, owner, "a.txt", "text/plain", "a")
	published := env.attach(t, models.EditionOwner{EditionID: edition.ID}, "p.txt", "text/plain", "p")

	assert.ErrorIs(t, svc.DeleteFile(ctx, f.ID, "bob"), models.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteFile(ctx, published.ID, "alice"), models.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteFile(ctx, 9999, "alice"), models.ErrNotFound)

	require.NoError(t, svc.DeleteFile(ctx, f.ID, "alice"))
	assert.Zero(t, env.count(t, &models.File{}, "id = ?", f.ID))
	p, err := env.files.Path(owner, f.ID, "a.txt")
	require.NoError(t, err)
	assert.NoFileExists(t, p)
}

func TestOpenFile(t *testing.T) {
	env := newTestEnv(t)
	svc := newFileService(env)
	ctx := context.Background()

	draft := testutil.CreateDraft(t, env.db, "alice", "Hello", "")
	f := env.attach(t, models.DraftOwner{DraftID: draft.ID}, "a.txt", "text/plain", "content")

	meta, r, err := svc.OpenFile(ctx, f.ID, "a.txt", "alice")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	assert.Equal(t, "text/plain", meta.MimeType)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "content", string(b))

	_, _, err = svc.OpenFile(ctx, f.ID, "other.txt", "alice")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, _, err = svc.OpenFile(ctx, 9999, "", "alice")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOpenFile_DraftFilesArePrivate(t *testing.T) {
	env := newTestEnv(t)
	svc := newFileService(env)
	ctx := context.Background()

	draft := testutil.CreateDraft(t, env.db, "alice", "Hello", "")
	f := env.attach(t, models.DraftOwner{DraftID: draft.ID}, "secret.txt", "text/plain", "draft only")

	for _, viewer := range []string{"", "bob", "root"} {
		_, _, err := svc.OpenFile(ctx, f.ID, "secret.txt", viewer)
		assert.ErrorIs(t, err, models.ErrNotFound, "viewer %q", viewer)
	}

	edition := testutil.CreateEdition(t, env.db, draft.ArticleID, "Hello", base())
	pub := env.attach(t, models.EditionOwner{EditionID: edition.ID}, "public.txt", "text/plain", "published")
	for _, viewer := range []string{"", "bob"} {
		_, r, err := svc.OpenFile(ctx, pub.ID, "public.txt", viewer)
		require.NoError(t, err, "viewer %q", viewer)
		b, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "published", string(b))
		_ = r.Close()
	}
}
