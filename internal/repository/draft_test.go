package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"freleefty/internal/models"
	"freleefty/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDraftRepository_ListByAuthor(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.CreateUser(t, db, "alice", models.RoleUser)
	testutil.CreateUser(t, db, "bob", models.RoleUser)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	fresh := testutil.CreateDraft(t, db, "alice", "fresh", "")
	editing := testutil.CreateDraft(t, db, "alice", "editing", "")
	testutil.CreateEdition(t, db, editing.ArticleID, "editing", base)
	testutil.CreateDraft(t, db, "bob", "not mine", "")

	drafts, err := repo.ListByAuthor(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	published := map[uint]bool{}
	for _, d := range drafts {
		published[d.ID] = d.Published
	}
	assert.False(t, published[fresh.ID])
	assert.True(t, published[editing.ID])

	none, err := repo.ListByAuthor(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDraftRepository_AuthorScoping(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.CreateUser(t, db, "alice", models.RoleUser)
	testutil.CreateUser(t, db, "bob", models.RoleUser)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	draft := testutil.CreateDraft(t, db, "alice", "Hello", "World")

	got, err := repo.GetForAuthor(ctx, draft.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)

	_, err = repo.GetForAuthor(ctx, draft.ID, "bob")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	ok, err := repo.UpdateForAuthor(ctx, draft.ID, "bob", "hijack", "", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	later := time.Now().UTC().Add(time.Minute)
	ok, err = repo.UpdateForAuthor(ctx, draft.ID, "alice", "Hello 2", "World 2", later)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repo.GetForAuthor(ctx, draft.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Hello 2", got.Title)
	assert.Equal(t, "World 2", got.Content)
	assert.WithinDuration(t, later, got.UpdatedAt, time.Second)

	id, err := repo.GetIDByArticle(ctx, draft.ArticleID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, id)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.CreateUser(t, db, "alice", models.RoleUser)
	store := NewStore(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Transaction(ctx, func(tx *Store) error {
		article := &models.Article{AuthorID: "alice"}
		if err := tx.Articles.Create(ctx, article); err != nil {
			return err
		}
		if err := tx.Drafts.Create(ctx, &models.Draft{ArticleID: article.ID}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var articles, drafts int64
	require.NoError(t, db.Model(&models.Article{}).Count(&articles).Error)
	require.NoError(t, db.Model(&models.Draft{}).Count(&drafts).Error)
	assert.Zero(t, articles)
	assert.Zero(t, drafts)
}
