// Package seed fills a database with demo users, articles and reader
// activity for development. It writes rows directly and never creates
// attachment bytes.
package seed

import (
	"fmt"
	"strings"
	"time"

	"freleefty/internal/models"
	"freleefty/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain rows with fake content and persists them.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	now   time.Time

	usedIDs   map[string]bool
	usedNames map[string]bool
}

// NewFactory returns a Factory. A zero seed draws a random one.
func NewFactory(db *gorm.DB, seed int64) *Factory {
	return &Factory{
		db:        db,
		faker:     gofakeit.New(seed),
		now:       time.Now().UTC(),
		usedIDs:   make(map[string]bool),
		usedNames: make(map[string]bool),
	}
}

// CreateUser persists a user whose id and name pass the same checks as
// registration.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	id, name, err := f.identity()
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:               id,
		ProviderID:       "seed-" + f.faker.UUID(),
		Name:             name,
		Role:             models.RoleUser,
		NewArticleNotify: f.faker.Bool(),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.ID, err)
	}
	f.usedIDs[user.ID] = true
	f.usedNames[user.Name] = true
	return user, nil
}

func (f *Factory) identity() (string, string, error) {
	for range 50 {
		first := f.faker.FirstName()
		n := f.faker.Number(10, 9999)
		id := fmt.Sprintf("%s%d", strings.ToLower(alnum(first)), n)
		if len(id) > 20 {
			id = id[len(id)-20:]
		}
		name, err := service.NormalizeUserName(fmt.Sprintf("%s %d", first, n))
		if err != nil || service.ValidateUserID(id) != nil {
			continue
		}
		if f.usedIDs[id] || f.usedNames[name] {
			continue
		}
		return id, name, nil
	}
	return "", "", fmt.Errorf("seed: could not generate a unique user identity")
}

func alnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 128 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

// CreateArticle persists an article by author with the given number of
// editions spread over the last maxDays. With withDraft the latest edition
// is also open for editing.
func (f *Factory) CreateArticle(author *models.User, editions, maxDays int, withDraft bool) (*models.Article, []models.Edition, error) {
	if editions < 1 {
		editions = 1
	}
	if maxDays < 1 {
		maxDays = 1
	}

	published := f.now.Add(-time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute)
	article := &models.Article{AuthorID: author.ID, CreatedAt: published.Add(-time.Hour)}
	out := make([]models.Edition, 0, editions)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(article).Error; err != nil {
			return err
		}
		at := published
		for i := range editions {
			notes := ""
			if i > 0 {
				notes = f.faker.Sentence(6)
			}
			e := models.Edition{
				ArticleID:   article.ID,
				Title:       strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 7)), "."),
				Content:     f.faker.Paragraph(2, 4, 12, "\n\n"),
				Notes:       notes,
				PublishedAt: at,
			}
			if err := tx.Create(&e).Error; err != nil {
				return err
			}
			out = append(out, e)
			at = at.Add(time.Duration(f.faker.Number(10, 600)) * time.Minute)
			if at.After(f.now) {
				at = f.now
			}
		}
		if withDraft {
			last := out[len(out)-1]
			return tx.Create(&models.Draft{ArticleID: article.ID, Title: last.Title, Content: last.Content}).Error
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create article: %w", err)
	}
	return article, out, nil
}

// CreateComment persists a comment by user on article.
func (f *Factory) CreateComment(article *models.Article, user *models.User, after time.Time) (*models.Comment, error) {
	c := &models.Comment{
		ArticleID: article.ID,
		UserID:    user.ID,
		Content:   f.faker.Sentence(f.faker.Number(4, 20)),
		CreatedAt: f.between(after),
	}
	if err := f.db.Omit("User").Create(c).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// CreateLike persists user's like of article.
func (f *Factory) CreateLike(article *models.Article, user *models.User, after time.Time) error {
	l := &models.Like{ArticleID: article.ID, UserID: user.ID, CreatedAt: f.between(after)}
	if err := f.db.Create(l).Error; err != nil {
		return fmt.Errorf("create like: %w", err)
	}
	return nil
}

// CreateViews persists n views of article dated after after.
func (f *Factory) CreateViews(article *models.Article, n int, after time.Time) error {
	if n <= 0 {
		return nil
	}
	views := make([]models.View, n)
	for i := range views {
		views[i] = models.View{ArticleID: article.ID, CreatedAt: f.between(after)}
	}
	if err := f.db.CreateInBatches(views, 200).Error; err != nil {
		return fmt.Errorf("create views: %w", err)
	}
	return nil
}

// between returns a random instant in [after, now].
func (f *Factory) between(after time.Time) time.Time {
	if !after.Before(f.now) {
		return f.now
	}
	return f.faker.DateRange(after, f.now).UTC()
}
