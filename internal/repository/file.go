package repository

import (
	"context"

	"freleefty/internal/models"

	"gorm.io/gorm"
)

// FileRepository defines interface for attachment metadata operations.
type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id uint) (*models.File, error)
	GetDraftFileForAuthor(ctx context.Context, id uint, authorID string) (*models.File, error)
	GetForOwner(ctx context.Context, id uint, owner models.FileOwner) (*models.File, error)
	ListByOwner(ctx context.Context, owner models.FileOwner) ([]models.File, error)
	ReassignOwner(ctx context.Context, from, to models.FileOwner) (int64, error)
	Delete(ctx context.Context, id uint) error
	DeleteByOwner(ctx context.Context, owner models.FileOwner) error
}

type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func ownerColumn(owner models.FileOwner) string {
	if _, ok := owner.(models.EditionOwner); ok {
		return "files.edition_id"
	}
	return "files.draft_id"
}

func (r *fileRepository) Create(ctx context.Context, file *models.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *fileRepository) GetByID(ctx context.Context, id uint) (*models.File, error) {
	var file models.File
	if err := r.db.WithContext(ctx).First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// GetDraftFileForAuthor returns a draft-owned file whose draft belongs to
// authorID. Edition-owned files never match.
func (r *fileRepository) GetDraftFileForAuthor(ctx context.Context, id uint, authorID string) (*models.File, error) {
	var file models.File
	err := r.db.WithContext(ctx).
		Joins("JOIN drafts ON drafts.id = files.draft_id").
		Joins("JOIN articles ON articles.id = drafts.article_id").
		Where("files.id = ? AND articles.author_id = ?", id, authorID).
		First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) GetForOwner(ctx context.Context, id uint, owner models.FileOwner) (*models.File, error) {
	var file models.File
	err := r.db.WithContext(ctx).
		Where("files.id = ? AND "+ownerColumn(owner)+" = ?", id, owner.OwnerID()).
		First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) ListByOwner(ctx context.Context, owner models.FileOwner) ([]models.File, error) {
	files := []models.File{}
	err := r.db.WithContext(ctx).
		Where(ownerColumn(owner)+" = ?", owner.OwnerID()).
		Order("id ASC").
		Find(&files).Error
	return files, err
}

// ReassignOwner moves every file of from to to in one statement and
// returns the number of rows moved.
func (r *fileRepository) ReassignOwner(ctx context.Context, from, to models.FileOwner) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.File{}).
		Where(ownerColumn(from)+" = ?", from.OwnerID()).
		Updates(models.OwnerColumns(to))
	return res.RowsAffected, res.Error
}

func (r *fileRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.File{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *fileRepository) DeleteByOwner(ctx context.Context, owner models.FileOwner) error {
	return r.db.WithContext(ctx).
		Where(ownerColumn(owner)+" = ?", owner.OwnerID()).
		Delete(&models.File{}).Error
}
