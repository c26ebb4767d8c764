package seed

import (
	"context"
	"fmt"

	"freleefty/internal/middleware"
	"freleefty/internal/models"
	"freleefty/internal/storage"

	"gorm.io/gorm"
)

// Options controls a seeding run.
type Options struct {
	Users    int
	Articles int
	// MaxDays bounds how far back publication dates are spread.
	MaxDays int
	// Clean removes existing content before seeding.
	Clean bool
	// Seed makes runs reproducible; zero means random.
	Seed int64
}

// Summary reports what a run created.
type Summary struct {
	Users    int
	Articles int
	Editions int
	Comments int
	Likes    int
	Views    int
}

// Seeder populates a database. files is optional; when set, ClearAll also
// removes the attachment directories of deleted drafts and editions.
type Seeder struct {
	db    *gorm.DB
	files *storage.Manager
}

func NewSeeder(db *gorm.DB, files *storage.Manager) *Seeder {
	return &Seeder{db: db, files: files}
}

// Run seeds users, then articles by random authors, then reader activity.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Users < 1 {
		return nil, fmt.Errorf("seed: at least one user is required")
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	if opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	db := s.db.WithContext(ctx)
	f := NewFactory(db, opts.Seed)
	sum := &Summary{}

	users := make([]*models.User, 0, opts.Users)
	for range opts.Users {
		u, err := f.CreateUser()
		if err != nil {
			return sum, err
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	middleware.Logger.Info("seeded users", "count", sum.Users)

	for range opts.Articles {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		author := users[f.faker.Number(0, len(users)-1)]
		article, editions, err := f.CreateArticle(author, f.faker.Number(1, 3), opts.MaxDays, f.faker.Number(1, 4) == 1)
		if err != nil {
			return sum, err
		}
		sum.Articles++
		sum.Editions += len(editions)

		first := editions[0].PublishedAt
		for range f.faker.Number(0, 4) {
			if _, err := f.CreateComment(article, users[f.faker.Number(0, len(users)-1)], first); err != nil {
				return sum, err
			}
			sum.Comments++
		}
		for _, u := range users {
			if f.faker.Number(1, 3) != 1 {
				continue
			}
			if err := f.CreateLike(article, u, first); err != nil {
				return sum, err
			}
			sum.Likes++
		}
		n := f.faker.Number(0, 40)
		if err := f.CreateViews(article, n, first); err != nil {
			return sum, err
		}
		sum.Views += n
	}

	middleware.Logger.Info("seeding completed",
		"users", sum.Users,
		"articles", sum.Articles,
		"editions", sum.Editions,
		"comments", sum.Comments,
		"likes", sum.Likes,
		"views", sum.Views,
	)
	return sum, nil
}

// ClearAll deletes every row the application owns, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	var draftIDs, editionIDs []uint
	if s.files != nil {
		if err := db.Model(&models.Draft{}).Pluck("id", &draftIDs).Error; err != nil {
			return fmt.Errorf("seed: list drafts: %w", err)
		}
		if err := db.Model(&models.Edition{}).Pluck("id", &editionIDs).Error; err != nil {
			return fmt.Errorf("seed: list editions: %w", err)
		}
	}

	all := models.All()
	err := db.Transaction(func(tx *gorm.DB) error {
		tx = tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for i := len(all) - 1; i >= 0; i-- {
			if err := tx.Delete(all[i]).Error; err != nil {
				return fmt.Errorf("seed: clear %T: %w", all[i], err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, id := range draftIDs {
		if err := s.files.DeleteDraftFiles(id); err != nil {
			middleware.Logger.Warn("seed: leftover draft files", "draft_id", id, "error", err)
		}
	}
	for _, id := range editionIDs {
		if err := s.files.DeleteEditionFiles(id); err != nil {
			middleware.Logger.Warn("seed: leftover edition files", "edition_id", id, "error", err)
		}
	}
	middleware.Logger.Info("cleared existing data")
	return nil
}
