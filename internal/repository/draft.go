package repository

import (
	"context"
	"time"

	"freleefty/internal/models"

	"gorm.io/gorm"
)

// DraftRepository defines interface for draft operations. Author-scoped
// methods treat a draft of another author exactly like a missing one.
type DraftRepository interface {
	Create(ctx context.Context, draft *models.Draft) error
	ListByAuthor(ctx context.Context, authorID string) ([]models.DraftSummary, error)
	GetForAuthor(ctx context.Context, id uint, authorID string) (*models.Draft, error)
	GetIDByArticle(ctx context.Context, articleID uint) (uint, error)
	IDsByArticle(ctx context.Context, articleID uint) ([]uint, error)
	UpdateForAuthor(ctx context.Context, id uint, authorID, title, content string, at time.Time) (bool, error)
	Delete(ctx context.Context, id uint) error
}

type draftRepository struct {
	db *gorm.DB
}

// NewDraftRepository creates a new DraftRepository
func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

func (r *draftRepository) Create(ctx context.Context, draft *models.Draft) error {
	return r.db.WithContext(ctx).Omit("Article").Create(draft).Error
}

func (r *draftRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.DraftSummary, error) {
	drafts := []models.DraftSummary{}
	err := r.db.WithContext(ctx).Raw(`
SELECT d.id, d.article_id, d.title, d.created_at, d.updated_at,
	EXISTS (SELECT 1 FROM editions e WHERE e.article_id = d.article_id) AS published
FROM drafts d
JOIN articles a ON a.id = d.article_id
WHERE a.author_id = ?
ORDER BY d.updated_at DESC, d.id DESC`, authorID).Scan(&drafts).Error
	return drafts, err
}

func (r *draftRepository) GetForAuthor(ctx context.Context, id uint, authorID string) (*models.Draft, error) {
	var draft models.Draft
	err := r.db.WithContext(ctx).
		Joins("JOIN articles ON articles.id = drafts.article_id").
		Where("drafts.id = ? AND articles.author_id = ?", id, authorID).
		First(&draft).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *draftRepository) GetIDByArticle(ctx context.Context, articleID uint) (uint, error) {
	var draft models.Draft
	if err := r.db.WithContext(ctx).Select("id").Where("article_id = ?", articleID).First(&draft).Error; err != nil {
		return 0, err
	}
	return draft.ID, nil
}

func (r *draftRepository) IDsByArticle(ctx context.Context, articleID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Draft{}).Where("article_id = ?", articleID).Pluck("id", &ids).Error
	return ids, err
}

func (r *draftRepository) UpdateForAuthor(ctx context.Context, id uint, authorID, title, content string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Draft{}).
		Where("id = ? AND article_id IN (?)", id,
			r.db.Model(&models.Article{}).Select("id").Where("author_id = ?", authorID)).
		Updates(map[string]interface{}{"title": title, "content": content, "updated_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *draftRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Draft{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
