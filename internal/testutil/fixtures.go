package testutil

import (
	"testing"
	"time"

	"freleefty/internal/models"

	"gorm.io/gorm"
)

// CreateUser inserts a user with the given id, using it as name and provider id.
func CreateUser(t testing.TB, db *gorm.DB, id string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{ID: id, ProviderID: "provider-" + id, Name: id, Role: role}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	return u
}

// CreateDraft inserts an article owned by authorID with a draft carrying title and content.
func CreateDraft(t testing.TB, db *gorm.DB, authorID, title, content string) *models.Draft {
	t.Helper()
	article := &models.Article{AuthorID: authorID}
	if err := db.Create(article).Error; err != nil {
		t.Fatalf("create article: %v", err)
	}
	draft := &models.Draft{ArticleID: article.ID, Title: title, Content: content}
	if err := db.Create(draft).Error; err != nil {
		t.Fatalf("create draft: %v", err)
	}
	return draft
}

// AttachFile inserts a file row owned by owner.
func AttachFile(t testing.TB, db *gorm.DB, owner models.FileOwner, name, mimeType string) *models.File {
	t.Helper()
	f := &models.File{Name: name, MimeType: mimeType}
	f.SetOwner(owner)
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("create file %s: %v", name, err)
	}
	return f
}

// CreateEdition inserts an edition of articleID published at publishedAt.
func CreateEdition(t testing.TB, db *gorm.DB, articleID uint, title string, publishedAt time.Time) *models.Edition {
	t.Helper()
	e := &models.Edition{ArticleID: articleID, Title: title, Content: "content of " + title, PublishedAt: publishedAt}
	if err := db.Create(e).Error; err != nil {
		t.Fatalf("create edition: %v", err)
	}
	return e
}
