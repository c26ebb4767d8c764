package service

import (
	"context"
	"time"

	"freleefty/internal/middleware"
	"freleefty/internal/models"
	"freleefty/internal/observability"
	"freleefty/internal/reconcile"
	"freleefty/internal/repository"
	"freleefty/internal/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.opentelemetry.io/otel/attribute"
)

// Notifier announces a newly published article. Implementations must not
// block the caller for long; delivery is best-effort.
type Notifier interface {
	NotifyNewArticle(ctx context.Context, articleID uint)
}

// PublishService turns drafts into editions.
type PublishService struct {
	store    *repository.Store
	mover    *reconcile.Reconciler
	notifier Notifier
	now      func() time.Time
}

type PublishInput struct {
	DraftID     uint
	AuthorID    string
	Notes       string
	ThumbnailID *uint
	// Notify fans the new article out to the configured webhooks.
	Notify bool
	// RememberNotify stores Notify as the author's default.
	RememberNotify bool
}

func NewPublishService(store *repository.Store, files *storage.Manager, notifier Notifier) *PublishService {
	return &PublishService{
		store:    store,
		mover:    reconcile.New(store, files),
		notifier: notifier,
		now:      utcNow,
	}
}

// PublishDraft snapshots the draft into a new edition, hands its files to
// the edition and deletes the draft, all in one transaction. The attachment
// directory is moved only after commit; a failed move stays queued in
// pending_file_moves and does not fail the publish.
func (s *PublishService) PublishDraft(ctx context.Context, in PublishInput) (articleID uint, err error) {
	ctx, span := observability.StartSpan(ctx, "PublishService.PublishDraft",
		attribute.Int64("draft.id", int64(in.DraftID)))
	defer func() {
		observability.PublishTotal.WithLabelValues(observability.ResultLabel(err)).Inc()
		span.End(err)
	}()
	ctx = middleware.WithDraftID(ctx, in.DraftID)

	if err := validation.Validate(in.Notes, validation.RuneLength(0, maxNotesLen)); err != nil {
		return 0, validationError("notes", err)
	}

	draft, err := s.store.Drafts.GetForAuthor(ctx, in.DraftID, in.AuthorID)
	if err != nil {
		return 0, notFound(err, "Draft", in.DraftID)
	}
	ctx = middleware.WithArticleID(ctx, draft.ArticleID)
	if draft.Title == "" {
		return 0, models.ErrNoTitle
	}

	from := models.DraftOwner{DraftID: draft.ID}
	files, err := s.store.Files.ListByOwner(ctx, from)
	if err != nil {
		return 0, err
	}
	if in.ThumbnailID != nil && !isImageAmong(files, *in.ThumbnailID) {
		return 0, models.ErrInvalidThumbnail
	}

	edition := &models.Edition{
		ArticleID:   draft.ArticleID,
		Title:       draft.Title,
		Content:     draft.Content,
		Notes:       in.Notes,
		ThumbnailID: in.ThumbnailID,
		PublishedAt: s.now(),
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Editions.Create(ctx, edition); err != nil {
			return err
		}
		if _, err := tx.Files.ReassignOwner(ctx, from, models.EditionOwner{EditionID: edition.ID}); err != nil {
			return err
		}
		if len(files) > 0 {
			move := &models.PendingFileMove{DraftID: draft.ID, EditionID: edition.ID}
			if err := tx.PendingMoves.Create(ctx, move); err != nil {
				return err
			}
		}
		if in.RememberNotify {
			if err := tx.Users.SetNewArticleNotify(ctx, in.AuthorID, in.Notify); err != nil {
				return err
			}
		}
		// Zero rows here means a concurrent publish of the same draft won.
		if err := tx.Drafts.Delete(ctx, draft.ID); err != nil {
			return notFound(err, "Draft", draft.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(files) > 0 {
		move := models.PendingFileMove{DraftID: draft.ID, EditionID: edition.ID}
		if err := s.mover.Settle(ctx, move); err != nil {
			postCommitFailure(ctx, "move", err, "edition_id", edition.ID)
		}
	}

	middleware.Logger.InfoContext(ctx, "draft published",
		"edition_id", edition.ID, "files", len(files))

	if in.Notify && s.notifier != nil {
		go s.notifier.NotifyNewArticle(context.WithoutCancel(ctx), draft.ArticleID)
	}
	return draft.ArticleID, nil
}

func isImageAmong(files []models.File, id uint) bool {
	for i := range files {
		if files[i].ID == id {
			return files[i].IsImage()
		}
	}
	return false
}
