package database_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"freleefty/internal/config"
	"freleefty/internal/database"
	"freleefty/internal/models"
	"freleefty/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "blog"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=blog sslmode=disable", database.DSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, database.DSN(cfg), "sslmode=require")
}

func TestFileOwnershipConstraints(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.CreateUser(t, db, "alice", models.RoleUser)
	draft := testutil.CreateDraft(t, db, "alice", "Hello", "World")

	t.Run("neither owner", func(t *testing.T) {
		err := db.Create(&models.File{Name: "orphan.png", MimeType: "image/png"}).Error
		assert.Error(t, err)
	})

	t.Run("both owners", func(t *testing.T) {
		d, e := draft.ID, uint(99)
		err := db.Create(&models.File{DraftID: &d, EditionID: &e, Name: "both.png", MimeType: "image/png"}).Error
		assert.Error(t, err)
	})

	t.Run("duplicate name in draft", func(t *testing.T) {
		testutil.AttachFile(t, db, models.DraftOwner{DraftID: draft.ID}, "a.png", "image/png")
		f := &models.File{Name: "a.png", MimeType: "image/png"}
		f.SetOwner(models.DraftOwner{DraftID: draft.ID})
		err := db.Create(f).Error
		assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
	})

	t.Run("draft per article is unique", func(t *testing.T) {
		err := db.Create(&models.Draft{ArticleID: draft.ArticleID}).Error
		assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
	})
}

func TestCustomGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := database.NewGormLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx := context.Background()
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(ctx, time.Now(), sql, errors.New("boom"))
	assert.Contains(t, buf.String(), "GORM query error")

	buf.Reset()
	l.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	assert.Contains(t, buf.String(), "GORM slow query")

	buf.Reset()
	l.LogMode(logger.Silent).Trace(ctx, time.Now(), sql, errors.New("boom"))
	assert.Empty(t, buf.String())
}

func TestRunMigrations_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	status, err := database.Status(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, status.Applied)
	assert.Len(t, status.Pending, len(database.GetMigrations()))
}
