package repository

import (
	"context"

	"freleefty/internal/models"

	"gorm.io/gorm"
)

// PendingMoveRepository is the outbox of draft directories that still have
// to be moved to their edition after a committed publish.
type PendingMoveRepository interface {
	Create(ctx context.Context, move *models.PendingFileMove) error
	List(ctx context.Context, limit int) ([]models.PendingFileMove, error)
	RecordFailure(ctx context.Context, draftID uint, reason string) error
	Delete(ctx context.Context, draftID uint) error
}

type pendingMoveRepository struct {
	db *gorm.DB
}

// NewPendingMoveRepository creates a new PendingMoveRepository
func NewPendingMoveRepository(db *gorm.DB) PendingMoveRepository {
	return &pendingMoveRepository{db: db}
}

func (r *pendingMoveRepository) Create(ctx context.Context, move *models.PendingFileMove) error {
	return r.db.WithContext(ctx).Create(move).Error
}

func (r *pendingMoveRepository) List(ctx context.Context, limit int) ([]models.PendingFileMove, error) {
	moves := []models.PendingFileMove{}
	err := r.db.WithContext(ctx).Order("created_at ASC, draft_id ASC").Limit(limit).Find(&moves).Error
	return moves, err
}

func (r *pendingMoveRepository) RecordFailure(ctx context.Context, draftID uint, reason string) error {
	if len(reason) > 1000 {
		reason = reason[:1000]
	}
	return r.db.WithContext(ctx).Model(&models.PendingFileMove{}).
		Where("draft_id = ?", draftID).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": reason,
		}).Error
}

func (r *pendingMoveRepository) Delete(ctx context.Context, draftID uint) error {
	return r.db.WithContext(ctx).Where("draft_id = ?", draftID).Delete(&models.PendingFileMove{}).Error
}
