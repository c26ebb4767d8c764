package seed

import (
	"context"
	"os"
	"testing"

	"freleefty/internal/models"
	"freleefty/internal/service"
	"freleefty/internal/storage"
	"freleefty/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func count(t *testing.T, s *Seeder, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(model).Count(&n).Error)
	return n
}

func TestRun(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, nil)

	sum, err := s.Run(context.Background(), Options{Users: 6, Articles: 10, Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, 6, sum.Users)
	assert.Equal(t, 10, sum.Articles)
	assert.GreaterOrEqual(t, sum.Editions, 10)
	assert.Equal(t, int64(sum.Users), count(t, s, &models.User{}))
	assert.Equal(t, int64(sum.Editions), count(t, s, &models.Edition{}))
	assert.Equal(t, int64(sum.Comments), count(t, s, &models.Comment{}))
	assert.Equal(t, int64(sum.Likes), count(t, s, &models.Like{}))
	assert.Equal(t, int64(sum.Views), count(t, s, &models.View{}))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	for _, u := range users {
		assert.NoError(t, service.ValidateUserID(u.ID), u.ID)
		_, err := service.NormalizeUserName(u.Name)
		assert.NoError(t, err, u.Name)
	}

	// Every article is published.
	var unpublished int64
	require.NoError(t, db.Model(&models.Article{}).
		Where("NOT EXISTS (SELECT 1 FROM editions e WHERE e.article_id = articles.id)").
		Count(&unpublished).Error)
	assert.Zero(t, unpublished)
}

func TestRun_RequiresUsers(t *testing.T) {
	s := NewSeeder(testutil.NewSQLiteDB(t), nil)
	_, err := s.Run(context.Background(), Options{Articles: 3})
	assert.Error(t, err)
}

func TestClearAll(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	files, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)
	s := NewSeeder(db, files)

	_, err = s.Run(context.Background(), Options{Users: 3, Articles: 4, Seed: 7})
	require.NoError(t, err)

	var edition models.Edition
	require.NoError(t, db.First(&edition).Error)
	dir := files.OwnerDir(models.EditionOwner{EditionID: edition.ID})
	require.NoError(t, os.MkdirAll(dir, 0o750))

	_, err = s.Run(context.Background(), Options{Users: 2, Articles: 1, Clean: true, Seed: 8})
	require.NoError(t, err)

	assert.Equal(t, int64(2), count(t, s, &models.User{}))
	assert.Equal(t, int64(1), count(t, s, &models.Article{}))
	assert.NoDirExists(t, dir)
}
