package repository

import (
	"context"

	"freleefty/internal/models"

	"gorm.io/gorm"
)

// LikeRepository defines interface for like operations
type LikeRepository interface {
	Create(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, articleID uint, userID string) (bool, error)
	ListLikers(ctx context.Context, articleID uint) ([]models.Liker, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Create inserts the like; a repeated pair fails with gorm.ErrDuplicatedKey.
func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *likeRepository) Delete(ctx context.Context, articleID uint, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("article_id = ? AND user_id = ?", articleID, userID).
		Delete(&models.Like{})
	return res.RowsAffected > 0, res.Error
}

func (r *likeRepository) ListLikers(ctx context.Context, articleID uint) ([]models.Liker, error) {
	likers := []models.Liker{}
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Select("likes.user_id, users.name AS user_name, likes.created_at").
		Joins("JOIN users ON users.id = likes.user_id").
		Where("likes.article_id = ?", articleID).
		Order("likes.created_at DESC").
		Scan(&likers).Error
	return likers, err
}
