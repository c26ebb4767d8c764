package repository

import (
	"context"

	"freleefty/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines interface for category operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error

	CountChildren(ctx context.Context, id uint) (int64, error)
	CountArticles(ctx context.Context, id uint) (int64, error)

	ListForArticle(ctx context.Context, articleID uint) ([]models.Category, error)
	SetForArticle(ctx context.Context, articleID uint, categoryIDs []uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Omit("Parent").Create(category).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the category and its article links. Children are detached
// and become roots.
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Category{}).Where("parent_id = ?", id).Update("parent_id", nil).Error; err != nil {
		return err
	}
	if err := db.Where("category_id = ?", id).Delete(&models.ArticleCategory{}).Error; err != nil {
		return err
	}
	res := db.Delete(&models.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *categoryRepository) CountChildren(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("parent_id = ?", id).Count(&n).Error
	return n, err
}

func (r *categoryRepository) CountArticles(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ArticleCategory{}).Where("category_id = ?", id).Count(&n).Error
	return n, err
}

func (r *categoryRepository) ListForArticle(ctx context.Context, articleID uint) ([]models.Category, error) {
	categories := []models.Category{}
	err := r.db.WithContext(ctx).
		Joins("JOIN article_categories ac ON ac.category_id = categories.id").
		Where("ac.article_id = ?", articleID).
		Order("categories.name ASC, categories.id ASC").
		Find(&categories).Error
	return categories, err
}

// SetForArticle replaces the article's category set. Run it inside a
// transaction so the old links never disappear on their own.
func (r *categoryRepository) SetForArticle(ctx context.Context, articleID uint, categoryIDs []uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("article_id = ?", articleID).Delete(&models.ArticleCategory{}).Error; err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	links := make([]models.ArticleCategory, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		links = append(links, models.ArticleCategory{ArticleID: articleID, CategoryID: id})
	}
	return db.Omit("Article", "Category").Create(&links).Error
}
