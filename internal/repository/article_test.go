package repository

import (
	"context"
	"testing"
	"time"

	"freleefty/internal/models"
	"freleefty/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func publishedArticle(t *testing.T, db *gorm.DB, authorID, title string, at time.Time) (*models.Article, *models.Edition) {
	t.Helper()
	article := &models.Article{AuthorID: authorID}
	require.NoError(t, db.Create(article).Error)
	edition := testutil.CreateEdition(t, db, article.ID, title, at)
	return article, edition
}

type articleFixture struct {
	db         *gorm.DB
	a1, a2, a3 *models.Article
	a1Latest   *models.Edition
	thumb      *models.File
}

func setupArticles(t *testing.T) *articleFixture {
	db := testutil.NewSQLiteDB(t)
	testutil.CreateUser(t, db, "alice", models.RoleUser)
	testutil.CreateUser(t, db, "bob", models.RoleUser)

	f := &articleFixture{db: db}
	f.a1, _ = publishedArticle(t, db, "alice", "A1", base)
	f.a2, _ = publishedArticle(t, db, "bob", "A2", base.Add(time.Hour))
	f.a3, _ = publishedArticle(t, db, "alice", "A3", base.Add(2*time.Hour))

	f.a1Latest = testutil.CreateEdition(t, db, f.a1.ID, "A1 v2", base.Add(3*time.Hour))
	f.thumb = testutil.AttachFile(t, db, models.EditionOwner{EditionID: f.a1Latest.ID}, "cover.png", "image/png")
	require.NoError(t, db.Model(f.a1Latest).Update("thumbnail_id", f.thumb.ID).Error)

	// Draft-only articles never show up in listings.
	testutil.CreateDraft(t, db, "alice", "unpublished", "")
	return f
}

func ids(articles []models.ArticleSummary) []uint {
	out := make([]uint, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.ID)
	}
	return out
}

func TestArticleRepository_List(t *testing.T) {
	f := setupArticles(t)
	repo := NewArticleRepository(f.db)
	ctx := context.Background()

	all, err := repo.List(ctx, ArticleListQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uint{f.a3.ID, f.a2.ID, f.a1.ID}, ids(all))

	a1 := all[2]
	assert.Equal(t, "A1 v2", a1.Title)
	assert.Equal(t, f.a1Latest.ID, a1.EditionID)
	assert.True(t, base.Equal(a1.FirstPublishedAt), "first published %v", a1.FirstPublishedAt)
	assert.True(t, base.Add(3*time.Hour).Equal(a1.LastPublishedAt))
	assert.Equal(t, "alice", a1.AuthorName)
	require.NotNil(t, a1.ThumbnailName)
	assert.Equal(t, "cover.png", *a1.ThumbnailName)

	t.Run("keyset", func(t *testing.T) {
		before := all[1].FirstPublishedAt
		page, err := repo.List(ctx, ArticleListQuery{Before: &before, BeforeID: all[1].ID, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []uint{f.a1.ID}, ids(page))
	})

	t.Run("limit", func(t *testing.T) {
		page, err := repo.List(ctx, ArticleListQuery{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []uint{f.a3.ID}, ids(page))
	})

	t.Run("by author", func(t *testing.T) {
		page, err := repo.List(ctx, ArticleListQuery{AuthorID: "alice", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []uint{f.a3.ID, f.a1.ID}, ids(page))
	})

	t.Run("liked by", func(t *testing.T) {
		require.NoError(t, NewLikeRepository(f.db).Create(ctx, &models.Like{ArticleID: f.a2.ID, UserID: "alice"}))
		page, err := repo.List(ctx, ArticleListQuery{LikedBy: "alice", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []uint{f.a2.ID}, ids(page))
		assert.Equal(t, int64(1), page[0].Likes)
	})
}

func TestArticleRepository_Popular(t *testing.T) {
	f := setupArticles(t)
	repo := NewArticleRepository(f.db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, f.db.Create(&models.View{ArticleID: f.a2.ID, CreatedAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, f.db.Create(&models.View{ArticleID: f.a2.ID, CreatedAt: now.Add(-2 * time.Hour)}).Error)
	require.NoError(t, f.db.Create(&models.View{ArticleID: f.a1.ID, CreatedAt: now.Add(-30 * 24 * time.Hour)}).Error)

	popular, err := repo.Popular(ctx, now.Add(-14*24*time.Hour), 5)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, f.a2.ID, popular[0].ID)
	assert.Equal(t, int64(2), popular[0].Views)
}

func TestArticleRepository_NextPrev(t *testing.T) {
	f := setupArticles(t)
	repo := NewArticleRepository(f.db)
	ctx := context.Background()

	next, err := repo.Next(ctx, f.a2.ID)
	require.NoError(t, err)
	assert.Equal(t, f.a3.ID, next.ID)

	prev, err := repo.Prev(ctx, f.a2.ID)
	require.NoError(t, err)
	assert.Equal(t, f.a1.ID, prev.ID)

	_, err = repo.Next(ctx, f.a3.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.Prev(ctx, f.a1.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.Next(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestArticleRepository_GetDetail(t *testing.T) {
	f := setupArticles(t)
	repo := NewArticleRepository(f.db)
	ctx := context.Background()

	detail, err := repo.GetDetail(ctx, f.a1.ID)
	require.NoError(t, err)
	assert.Equal(t, "A1 v2", detail.Title)
	assert.Equal(t, "content of A1 v2", detail.Content)
	assert.Equal(t, int64(2), detail.EditionsCount)
	require.NotNil(t, detail.ThumbnailID)
	assert.Equal(t, f.thumb.ID, *detail.ThumbnailID)

	summary, err := repo.GetSummary(ctx, f.a2.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", summary.AuthorName)

	_, err = repo.GetDetail(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestArticleRepository_IsOrphanAndDelete(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.CreateUser(t, db, "alice", models.RoleUser)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	draft := testutil.CreateDraft(t, db, "alice", "t", "c")
	orphan, err := repo.IsOrphan(ctx, draft.ArticleID)
	require.NoError(t, err)
	assert.False(t, orphan)

	require.NoError(t, NewDraftRepository(db).Delete(ctx, draft.ID))
	orphan, err = repo.IsOrphan(ctx, draft.ArticleID)
	require.NoError(t, err)
	assert.True(t, orphan)

	require.NoError(t, repo.Delete(ctx, draft.ArticleID))
	assert.ErrorIs(t, repo.Delete(ctx, draft.ArticleID), gorm.ErrRecordNotFound)
}
