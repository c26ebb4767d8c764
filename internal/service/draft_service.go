package service

import (
	"context"
	"errors"
	"time"

	"freleefty/internal/middleware"
	"freleefty/internal/models"
	"freleefty/internal/repository"
	"freleefty/internal/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// DraftService manages an author's working copies.
type DraftService struct {
	store *repository.Store
	files *storage.Manager
	now   func() time.Time
}

type UpdateDraftInput struct {
	ID       uint
	AuthorID string
	Title    string
	Content  string
}

func NewDraftService(store *repository.Store, files *storage.Manager) *DraftService {
	return &DraftService{store: store, files: files, now: utcNow}
}

func (s *DraftService) ListDrafts(ctx context.Context, authorID string) ([]models.DraftSummary, error) {
	return s.store.Drafts.ListByAuthor(ctx, authorID)
}

// GetDraft returns the draft with its files. A draft of another author is
// reported as not found.
func (s *DraftService) GetDraft(ctx context.Context, id uint, authorID string) (*models.DraftDetail, error) {
	draft, err := s.store.Drafts.GetForAuthor(ctx, id, authorID)
	if err != nil {
		return nil, notFound(err, "Draft", id)
	}

	files, err := s.store.Files.ListByOwner(ctx, models.DraftOwner{DraftID: draft.ID})
	if err != nil {
		return nil, err
	}

	published := true
	if _, err := s.store.Editions.Latest(ctx, draft.ArticleID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		published = false
	}

	return &models.DraftDetail{Draft: *draft, Published: published, Files: fileInfos(files)}, nil
}

// CreateDraft creates an empty draft and the article backing it.
func (s *DraftService) CreateDraft(ctx context.Context, authorID string) (*models.Draft, error) {
	var draft *models.Draft
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		article := &models.Article{AuthorID: authorID}
		if err := tx.Articles.Create(ctx, article); err != nil {
			return err
		}
		draft = &models.Draft{ArticleID: article.ID}
		return tx.Drafts.Create(ctx, draft)
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// CreateDraftFromArticle opens a draft seeded with the article's latest
// edition. Callers check authorship first.
func (s *DraftService) CreateDraftFromArticle(ctx context.Context, articleID uint) (*models.Draft, error) {
	var draft *models.Draft
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		draft, _, err = createDraftFromArticle(ctx, tx, articleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

func createDraftFromArticle(ctx context.Context, tx *repository.Store, articleID uint) (*models.Draft, *models.Edition, error) {
	latest, err := tx.Editions.Latest(ctx, articleID)
	if err != nil {
		return nil, nil, notFound(err, "Article", articleID)
	}

	draft := &models.Draft{ArticleID: articleID, Title: latest.Title, Content: latest.Content}
	if err := tx.Drafts.Create(ctx, draft); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, models.NewConflictError("Article already has a draft in progress")
		}
		return nil, nil, err
	}
	return draft, latest, nil
}

// UpdateDraft overwrites title and content. A missing or foreign draft is
// reported as not found.
func (s *DraftService) UpdateDraft(ctx context.Context, in UpdateDraftInput) error {
	if err := validation.Validate(in.Title, validation.RuneLength(0, maxTitleLen)); err != nil {
		return validationError("title", err)
	}

	ok, err := s.store.Drafts.UpdateForAuthor(ctx, in.ID, in.AuthorID, in.Title, in.Content, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Draft", in.ID)
	}
	return nil
}

// DeleteDraft removes the draft and its file rows, and the article too once
// nothing else backs it. The draft directory is removed after commit.
func (s *DraftService) DeleteDraft(ctx context.Context, id uint, authorID string) error {
	ctx = middleware.WithDraftID(ctx, id)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		draft, err := tx.Drafts.GetForAuthor(ctx, id, authorID)
		if err != nil {
			return notFound(err, "Draft", id)
		}
		if err := tx.Files.DeleteByOwner(ctx, models.DraftOwner{DraftID: draft.ID}); err != nil {
			return err
		}
		if err := tx.Drafts.Delete(ctx, draft.ID); err != nil {
			return notFound(err, "Draft", id)
		}

		orphan, err := tx.Articles.IsOrphan(ctx, draft.ArticleID)
		if err != nil {
			return err
		}
		if orphan {
			return tx.Articles.Delete(ctx, draft.ArticleID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.files.DeleteDraftFiles(id); err != nil {
		postCommitFailure(ctx, "delete_draft", err)
	}
	return nil
}
