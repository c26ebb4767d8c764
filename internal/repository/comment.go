package repository

import (
	"context"

	"freleefty/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByArticle(ctx context.Context, articleID uint) ([]models.CommentView, error)
	ListByUser(ctx context.Context, userID string, beforeID uint, limit int) ([]models.CommentView, error)
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

const commentViewColumns = "comments.id, comments.article_id, comments.user_id, users.name AS user_name, comments.content, comments.created_at"

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit("User").Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByArticle(ctx context.Context, articleID uint) ([]models.CommentView, error) {
	comments := []models.CommentView{}
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select(commentViewColumns).
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.article_id = ?", articleID).
		Order("comments.id ASC").
		Scan(&comments).Error
	return comments, err
}

// ListByUser returns the user's comments newest first. A non-zero beforeID
// continues after that comment.
func (r *commentRepository) ListByUser(ctx context.Context, userID string, beforeID uint, limit int) ([]models.CommentView, error) {
	query := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select(commentViewColumns).
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.user_id = ?", userID)
	if beforeID > 0 {
		query = query.Where("comments.id < ?", beforeID)
	}

	comments := []models.CommentView{}
	err := query.Order("comments.id DESC").Limit(limit).Scan(&comments).Error
	return comments, err
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
