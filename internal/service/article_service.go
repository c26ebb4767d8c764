package service

import (
	"context"
	"fmt"
	"time"

	"freleefty/internal/middleware"
	"freleefty/internal/models"
	"freleefty/internal/repository"
	"freleefty/internal/storage"

	"golang.org/x/sync/errgroup"
)

const (
	popularWindow = 14 * 24 * time.Hour
	popularLimit  = 5

	cleanupConcurrency = 4
)

// ArticleService serves published articles and the author actions on them.
type ArticleService struct {
	store  *repository.Store
	files  *storage.Manager
	drafts *DraftService
	now    func() time.Time
}

// ListArticlesInput pages through articles by first publish time, newest
// first. Before and BeforeID come from the last row of the previous page.
type ListArticlesInput struct {
	AuthorID string
	LikedBy  string
	Before   *time.Time
	BeforeID uint
	Limit    int
}

func NewArticleService(store *repository.Store, files *storage.Manager, drafts *DraftService) *ArticleService {
	return &ArticleService{store: store, files: files, drafts: drafts, now: utcNow}
}

func (s *ArticleService) ListArticles(ctx context.Context, in ListArticlesInput) ([]models.ArticleSummary, error) {
	q := repository.ArticleListQuery{
		AuthorID: in.AuthorID,
		LikedBy:  in.LikedBy,
		BeforeID: in.BeforeID,
		Limit:    pageSize(in.Limit),
	}
	if in.Before != nil {
		before := in.Before.UTC()
		q.Before = &before
	}
	return s.store.Articles.List(ctx, q)
}

// ListPopularArticles ranks articles by views over the last two weeks.
func (s *ArticleService) ListPopularArticles(ctx context.Context) ([]models.ArticleSummary, error) {
	return s.store.Articles.Popular(ctx, s.now().Add(-popularWindow), popularLimit)
}

func (s *ArticleService) GetArticle(ctx context.Context, id uint) (*models.ArticleDetail, error) {
	article, err := s.store.Articles.GetDetail(ctx, id)
	if err != nil {
		return nil, notFound(err, "Article", id)
	}
	return article, nil
}

// GetNextArticle returns the article first published right after id.
func (s *ArticleService) GetNextArticle(ctx context.Context, id uint) (*models.ArticleSummary, error) {
	article, err := s.store.Articles.Next(ctx, id)
	if err != nil {
		return nil, notFound(err, "Article", id)
	}
	return article, nil
}

// GetPrevArticle returns the article first published right before id.
func (s *ArticleService) GetPrevArticle(ctx context.Context, id uint) (*models.ArticleSummary, error) {
	article, err := s.store.Articles.Prev(ctx, id)
	if err != nil {
		return nil, notFound(err, "Article", id)
	}
	return article, nil
}

// GetArticleDraftID returns the id of the draft in progress for the
// author's article.
func (s *ArticleService) GetArticleDraftID(ctx context.Context, articleID uint, userID string) (uint, error) {
	if _, err := s.authorArticle(ctx, s.store, articleID, userID); err != nil {
		return 0, err
	}
	id, err := s.store.Drafts.GetIDByArticle(ctx, articleID)
	if err != nil {
		return 0, notFound(err, "Draft", articleID)
	}
	return id, nil
}

// GetArticleFiles lists the attachments of the latest edition.
func (s *ArticleService) GetArticleFiles(ctx context.Context, articleID uint) ([]models.FileInfo, error) {
	latest, err := s.store.Editions.Latest(ctx, articleID)
	if err != nil {
		return nil, notFound(err, "Article", articleID)
	}
	return s.ListEditionFiles(ctx, latest.ID)
}

func (s *ArticleService) ListEditions(ctx context.Context, articleID uint) ([]models.EditionSummary, error) {
	editions, err := s.store.Editions.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if len(editions) == 0 {
		return nil, models.NewNotFoundError("Article", articleID)
	}
	return editions, nil
}

func (s *ArticleService) GetEdition(ctx context.Context, editionID uint) (*models.EditionDetail, error) {
	edition, err := s.store.Editions.GetByID(ctx, editionID)
	if err != nil {
		return nil, notFound(err, "Edition", editionID)
	}
	files, err := s.ListEditionFiles(ctx, editionID)
	if err != nil {
		return nil, err
	}
	return &models.EditionDetail{Edition: *edition, Files: files}, nil
}

func (s *ArticleService) ListEditionFiles(ctx context.Context, editionID uint) ([]models.FileInfo, error) {
	files, err := s.store.Files.ListByOwner(ctx, models.EditionOwner{EditionID: editionID})
	if err != nil {
		return nil, err
	}
	return fileInfos(files), nil
}

// EditArticle opens a draft from the latest edition, duplicating its files
// as new draft rows whose bytes are hard-linked after commit. If linking
// fails the new draft is deleted again.
func (s *ArticleService) EditArticle(ctx context.Context, articleID uint, userID string) (*models.Draft, error) {
	ctx = middleware.WithArticleID(ctx, articleID)
	var (
		draft     *models.Draft
		editionID uint
		links     []storage.FileLink
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := s.authorArticle(ctx, tx, articleID, userID); err != nil {
			return err
		}

		var (
			latest *models.Edition
			err    error
		)
		draft, latest, err = createDraftFromArticle(ctx, tx, articleID)
		if err != nil {
			return err
		}
		editionID = latest.ID

		files, err := tx.Files.ListByOwner(ctx, models.EditionOwner{EditionID: latest.ID})
		if err != nil {
			return err
		}
		links = make([]storage.FileLink, 0, len(files))
		for _, f := range files {
			dup := &models.File{Name: f.Name, MimeType: f.MimeType}
			dup.SetOwner(models.DraftOwner{DraftID: draft.ID})
			if err := tx.Files.Create(ctx, dup); err != nil {
				return err
			}
			links = append(links, storage.FileLink{EditionFileID: f.ID, DraftFileID: dup.ID, Name: f.Name})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = middleware.WithDraftID(ctx, draft.ID)
	if len(links) > 0 {
		if err := s.files.LinkEditionFilesToDraft(ctx, editionID, draft.ID, links); err != nil {
			postCommitFailure(ctx, "link", err, "edition_id", editionID)
			if delErr := s.drafts.DeleteDraft(context.WithoutCancel(ctx), draft.ID, userID); delErr != nil {
				postCommitFailure(ctx, "link_rollback", delErr)
			}
			return nil, fmt.Errorf("link edition files: %w", err)
		}
	}
	return draft, nil
}

// DeleteArticle removes the article with everything under it. Only the
// author or an admin may do this. Directories are removed after commit.
func (s *ArticleService) DeleteArticle(ctx context.Context, articleID uint, userID string) error {
	ctx = middleware.WithArticleID(ctx, articleID)
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return notFound(err, "User", userID)
	}

	var draftIDs, editionIDs []uint
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		article, err := tx.Articles.GetByID(ctx, articleID)
		if err != nil {
			return notFound(err, "Article", articleID)
		}
		if article.AuthorID != userID && !user.IsAdmin() {
			return models.NewForbiddenError("You can only delete your own articles")
		}

		if draftIDs, err = tx.Drafts.IDsByArticle(ctx, articleID); err != nil {
			return err
		}
		if editionIDs, err = tx.Editions.IDsByArticle(ctx, articleID); err != nil {
			return err
		}
		for _, id := range draftIDs {
			if err := tx.Files.DeleteByOwner(ctx, models.DraftOwner{DraftID: id}); err != nil {
				return err
			}
			if err := tx.Drafts.Delete(ctx, id); err != nil {
				return err
			}
		}
		for _, id := range editionIDs {
			if err := tx.Files.DeleteByOwner(ctx, models.EditionOwner{EditionID: id}); err != nil {
				return err
			}
		}
		if err := tx.Editions.DeleteByArticle(ctx, articleID); err != nil {
			return err
		}
		return tx.Articles.Delete(ctx, articleID)
	})
	if err != nil {
		return err
	}

	g := new(errgroup.Group)
	g.SetLimit(cleanupConcurrency)
	for _, id := range draftIDs {
		g.Go(func() error { return s.files.DeleteDraftFiles(id) })
	}
	for _, id := range editionIDs {
		g.Go(func() error { return s.files.DeleteEditionFiles(id) })
	}
	if err := g.Wait(); err != nil {
		postCommitFailure(ctx, "delete_article", err)
	}
	return nil
}

// authorArticle loads the article and checks that userID wrote it.
func (s *ArticleService) authorArticle(ctx context.Context, store *repository.Store, articleID uint, userID string) (*models.Article, error) {
	article, err := store.Articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, notFound(err, "Article", articleID)
	}
	if article.AuthorID != userID {
		return nil, models.NewForbiddenError("You are not the author of this article")
	}
	return article, nil
}
