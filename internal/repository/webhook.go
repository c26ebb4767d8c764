package repository

import (
	"context"

	"freleefty/internal/models"

	"gorm.io/gorm"
)

// WebhookRepository defines interface for webhook operations
type WebhookRepository interface {
	Create(ctx context.Context, hook *models.Webhook) error
	GetByID(ctx context.Context, id uint) (*models.Webhook, error)
	List(ctx context.Context) ([]models.Webhook, error)
	Delete(ctx context.Context, id uint) error
}

type webhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository creates a new WebhookRepository
func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

func (r *webhookRepository) Create(ctx context.Context, hook *models.Webhook) error {
	return r.db.WithContext(ctx).Create(hook).Error
}

func (r *webhookRepository) GetByID(ctx context.Context, id uint) (*models.Webhook, error) {
	var hook models.Webhook
	if err := r.db.WithContext(ctx).First(&hook, id).Error; err != nil {
		return nil, err
	}
	return &hook, nil
}

func (r *webhookRepository) List(ctx context.Context) ([]models.Webhook, error) {
	hooks := []models.Webhook{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&hooks).Error
	return hooks, err
}

func (r *webhookRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Webhook{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
