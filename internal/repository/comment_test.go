package repository

import (
	"context"
	"errors"
	"testing"

	"freleefty/internal/models"
	"freleefty/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCommentRepository_ListByUser(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.CreateUser(t, db, "alice", models.RoleUser)
	testutil.CreateUser(t, db, "bob", models.RoleUser)
	article, _ := publishedArticle(t, db, "alice", "A", base)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	var created []uint
	for _, content := range []string{"first", "second", "third"} {
		c := &models.Comment{ArticleID: article.ID, UserID: "bob", Content: content}
		require.NoError(t, repo.Create(ctx, c))
		created = append(created, c.ID)
	}
	require.NoError(t, repo.Create(ctx, &models.Comment{ArticleID: article.ID, UserID: "alice", Content: "reply"}))

	page, err := repo.ListByUser(ctx, "bob", 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "third", page[0].Content)
	assert.Equal(t, "bob", page[0].UserName)

	page, err = repo.ListByUser(ctx, "bob", page[1].ID, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, created[0], page[0].ID)

	all, err := repo.ListByArticle(ctx, article.ID)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "first", all[0].Content)
}

func TestLikeRepository_Lifecycle(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.CreateUser(t, db, "alice", models.RoleUser)
	testutil.CreateUser(t, db, "bob", models.RoleUser)
	article, _ := publishedArticle(t, db, "alice", "A", base)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Like{ArticleID: article.ID, UserID: "bob"}))
	err := repo.Create(ctx, &models.Like{ArticleID: article.ID, UserID: "bob"})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	likers, err := repo.ListLikers(ctx, article.ID)
	require.NoError(t, err)
	require.Len(t, likers, 1)
	assert.Equal(t, "bob", likers[0].UserName)

	removed, err := repo.Delete(ctx, article.ID, "bob")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Delete(ctx, article.ID, "bob")
	require.NoError(t, err)
	assert.False(t, removed)
}
