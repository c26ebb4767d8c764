package repository

import (
	"context"

	"freleefty/internal/models"

	"gorm.io/gorm"
)

// EditionRepository defines interface for edition operations. Editions are
// insert-only; nothing here updates one.
type EditionRepository interface {
	Create(ctx context.Context, edition *models.Edition) error
	GetByID(ctx context.Context, id uint) (*models.Edition, error)
	Latest(ctx context.Context, articleID uint) (*models.Edition, error)
	ListByArticle(ctx context.Context, articleID uint) ([]models.EditionSummary, error)
	IDsByArticle(ctx context.Context, articleID uint) ([]uint, error)
	DeleteByArticle(ctx context.Context, articleID uint) error
}

type editionRepository struct {
	db *gorm.DB
}

// NewEditionRepository creates a new EditionRepository
func NewEditionRepository(db *gorm.DB) EditionRepository {
	return &editionRepository{db: db}
}

func (r *editionRepository) Create(ctx context.Context, edition *models.Edition) error {
	return r.db.WithContext(ctx).Omit("Article").Create(edition).Error
}

func (r *editionRepository) GetByID(ctx context.Context, id uint) (*models.Edition, error) {
	var edition models.Edition
	if err := r.db.WithContext(ctx).First(&edition, id).Error; err != nil {
		return nil, err
	}
	return &edition, nil
}

func (r *editionRepository) Latest(ctx context.Context, articleID uint) (*models.Edition, error) {
	var edition models.Edition
	err := r.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("published_at DESC, id DESC").
		First(&edition).Error
	if err != nil {
		return nil, err
	}
	return &edition, nil
}

func (r *editionRepository) ListByArticle(ctx context.Context, articleID uint) ([]models.EditionSummary, error) {
	editions := []models.EditionSummary{}
	err := r.db.WithContext(ctx).Model(&models.Edition{}).
		Select("id, title, notes, published_at").
		Where("article_id = ?", articleID).
		Order("published_at DESC, id DESC").
		Scan(&editions).Error
	return editions, err
}

func (r *editionRepository) IDsByArticle(ctx context.Context, articleID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Edition{}).Where("article_id = ?", articleID).Pluck("id", &ids).Error
	return ids, err
}

func (r *editionRepository) DeleteByArticle(ctx context.Context, articleID uint) error {
	return r.db.WithContext(ctx).Where("article_id = ?", articleID).Delete(&models.Edition{}).Error
}
