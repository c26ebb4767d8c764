package repository

import (
	"context"

	"freleefty/internal/models"

	"gorm.io/gorm"
)

// ViewRepository records article reads.
type ViewRepository interface {
	Create(ctx context.Context, articleID uint) error
}

type viewRepository struct {
	db *gorm.DB
}

// NewViewRepository creates a new ViewRepository
func NewViewRepository(db *gorm.DB) ViewRepository {
	return &viewRepository{db: db}
}

func (r *viewRepository) Create(ctx context.Context, articleID uint) error {
	return r.db.WithContext(ctx).Create(&models.View{ArticleID: articleID}).Error
}
