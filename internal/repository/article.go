package repository

import (
	"context"
	"strings"
	"time"

	"freleefty/internal/models"

	"gorm.io/gorm"
)

// ArticleListQuery selects a page of published articles, newest first.
// Before/BeforeID is the keyset cursor of the last row already seen.
type ArticleListQuery struct {
	AuthorID string
	LikedBy  string
	Before   *time.Time
	BeforeID uint
	Limit    int
}

// ArticleRepository defines interface for article operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	IsOrphan(ctx context.Context, id uint) (bool, error)
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, q ArticleListQuery) ([]models.ArticleSummary, error)
	Popular(ctx context.Context, since time.Time, limit int) ([]models.ArticleSummary, error)
	GetDetail(ctx context.Context, id uint) (*models.ArticleDetail, error)
	GetSummary(ctx context.Context, id uint) (*models.ArticleSummary, error)
	Next(ctx context.Context, id uint) (*models.ArticleSummary, error)
	Prev(ctx context.Context, id uint) (*models.ArticleSummary, error)
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates a new ArticleRepository
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

// Latest edition is joined as e, first edition as fe. Only articles with
// at least one edition survive the inner joins.
const articleSummaryFrom = `
FROM articles a
JOIN users u ON u.id = a.author_id
JOIN editions e ON e.id = (
	SELECT e2.id FROM editions e2 WHERE e2.article_id = a.id
	ORDER BY e2.published_at DESC, e2.id DESC LIMIT 1)
JOIN editions fe ON fe.id = (
	SELECT e3.id FROM editions e3 WHERE e3.article_id = a.id
	ORDER BY e3.published_at ASC, e3.id ASC LIMIT 1)
LEFT JOIN files tf ON tf.id = e.thumbnail_id`

const articleSummaryColumns = `
SELECT a.id AS id, a.author_id AS author_id, u.name AS author_name,
	e.id AS edition_id, e.title AS title,
	e.thumbnail_id AS thumbnail_id, tf.name AS thumbnail_name,
	fe.published_at AS first_published_at, e.published_at AS last_published_at,
	(SELECT COUNT(*) FROM likes l WHERE l.article_id = a.id) AS likes,
	(SELECT COUNT(*) FROM comments c WHERE c.article_id = a.id) AS comments`

const allViews = `(SELECT COUNT(*) FROM views v WHERE v.article_id = a.id)`

const recentViews = `(SELECT COUNT(*) FROM views v WHERE v.article_id = a.id AND v.created_at >= ?)`

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	return r.db.WithContext(ctx).Omit("Author").Create(article).Error
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).First(&article, id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// IsOrphan reports whether the article has neither a draft nor an edition.
func (r *articleRepository) IsOrphan(ctx context.Context, id uint) (bool, error) {
	var drafts, editions int64
	if err := r.db.WithContext(ctx).Model(&models.Draft{}).Where("article_id = ?", id).Count(&drafts).Error; err != nil {
		return false, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Edition{}).Where("article_id = ?", id).Count(&editions).Error; err != nil {
		return false, err
	}
	return drafts == 0 && editions == 0, nil
}

// Delete removes the article row together with its comments, likes and
// views. Drafts, editions and files must already be gone.
func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	for _, child := range []interface{}{&models.Comment{}, &models.Like{}, &models.View{}, &models.ArticleCategory{}} {
		if err := db.Where("article_id = ?", id).Delete(child).Error; err != nil {
			return err
		}
	}
	res := db.Delete(&models.Article{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *articleRepository) List(ctx context.Context, q ArticleListQuery) ([]models.ArticleSummary, error) {
	var (
		where []string
		args  []interface{}
	)
	if q.AuthorID != "" {
		where = append(where, "a.author_id = ?")
		args = append(args, q.AuthorID)
	}
	if q.LikedBy != "" {
		where = append(where, "EXISTS (SELECT 1 FROM likes lb WHERE lb.article_id = a.id AND lb.user_id = ?)")
		args = append(args, q.LikedBy)
	}
	if q.Before != nil {
		where = append(where, "(fe.published_at < ? OR (fe.published_at = ? AND a.id < ?))")
		args = append(args, *q.Before, *q.Before, q.BeforeID)
	}

	var sb strings.Builder
	sb.WriteString(articleSummaryColumns)
	sb.WriteString(",\n\t" + allViews + " AS views")
	sb.WriteString(articleSummaryFrom)
	if len(where) > 0 {
		sb.WriteString("\nWHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString("\nORDER BY fe.published_at DESC, a.id DESC LIMIT ?")
	args = append(args, q.Limit)

	articles := []models.ArticleSummary{}
	err := r.db.WithContext(ctx).Raw(sb.String(), args...).Scan(&articles).Error
	return articles, err
}

// Popular returns up to limit articles ranked by views since the given
// time. Articles without a recent view are left out.
func (r *articleRepository) Popular(ctx context.Context, since time.Time, limit int) ([]models.ArticleSummary, error) {
	query := articleSummaryColumns + ",\n\t" + recentViews + " AS views" + articleSummaryFrom +
		"\nWHERE " + recentViews + " > 0" +
		"\nORDER BY views DESC, a.id DESC LIMIT ?"

	articles := []models.ArticleSummary{}
	err := r.db.WithContext(ctx).Raw(query, since, since, limit).Scan(&articles).Error
	return articles, err
}

func (r *articleRepository) GetSummary(ctx context.Context, id uint) (*models.ArticleSummary, error) {
	query := articleSummaryColumns + ",\n\t" + allViews + " AS views" + articleSummaryFrom +
		"\nWHERE a.id = ?"
	var articles []models.ArticleSummary
	if err := r.db.WithContext(ctx).Raw(query, id).Scan(&articles).Error; err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &articles[0], nil
}

func (r *articleRepository) GetDetail(ctx context.Context, id uint) (*models.ArticleDetail, error) {
	query := articleSummaryColumns + ",\n\t" + allViews + " AS views" +
		",\n\te.content AS content, e.notes AS notes" +
		",\n\t(SELECT COUNT(*) FROM editions ec WHERE ec.article_id = a.id) AS editions_count" +
		articleSummaryFrom + "\nWHERE a.id = ?"
	var articles []models.ArticleDetail
	if err := r.db.WithContext(ctx).Raw(query, id).Scan(&articles).Error; err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &articles[0], nil
}

// Next returns the article first published right after id, or
// gorm.ErrRecordNotFound when id is the newest.
func (r *articleRepository) Next(ctx context.Context, id uint) (*models.ArticleSummary, error) {
	return r.neighbour(ctx, id, ">", "ASC")
}

// Prev returns the article first published right before id.
func (r *articleRepository) Prev(ctx context.Context, id uint) (*models.ArticleSummary, error) {
	return r.neighbour(ctx, id, "<", "DESC")
}

func (r *articleRepository) neighbour(ctx context.Context, id uint, cmp, dir string) (*models.ArticleSummary, error) {
	var first []time.Time
	err := r.db.WithContext(ctx).Model(&models.Edition{}).
		Where("article_id = ?", id).
		Order("published_at ASC").
		Limit(1).
		Pluck("published_at", &first).Error
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	query := articleSummaryColumns + ",\n\t" + allViews + " AS views" + articleSummaryFrom +
		"\nWHERE fe.published_at " + cmp + " ?" +
		"\nORDER BY fe.published_at " + dir + ", a.id " + dir + " LIMIT 1"
	var articles []models.ArticleSummary
	if err := r.db.WithContext(ctx).Raw(query, first[0]).Scan(&articles).Error; err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &articles[0], nil
}
