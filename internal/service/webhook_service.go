package service

import (
	"context"

	"freleefty/internal/models"
	"freleefty/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// WebhookAnnouncer greets endpoints as they are added and removed.
type WebhookAnnouncer interface {
	Greet(ctx context.Context, url string)
	Farewell(ctx context.Context, url string)
}

// WebhookService manages webhook endpoints. Every operation is admin-only.
type WebhookService struct {
	hooks     repository.WebhookRepository
	announcer WebhookAnnouncer
}

type CreateWebhookInput struct {
	Name string
	URL  string
}

func NewWebhookService(hooks repository.WebhookRepository, announcer WebhookAnnouncer) *WebhookService {
	return &WebhookService{hooks: hooks, announcer: announcer}
}

func requireAdmin(role models.Role) error {
	if role != models.RoleAdmin {
		return models.NewForbiddenError("Admin access required")
	}
	return nil
}

func (s *WebhookService) CreateWebhook(ctx context.Context, role models.Role, in CreateWebhookInput) (*models.Webhook, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}
	if err := validation.Validate(in.Name, validation.Required, validation.RuneLength(1, 255)); err != nil {
		return nil, validationError("name", err)
	}
	if err := validation.Validate(in.URL, validation.Required, validation.RuneLength(1, 255), is.URL); err != nil {
		return nil, validationError("url", err)
	}

	hook := &models.Webhook{Name: in.Name, URL: in.URL}
	if err := s.hooks.Create(ctx, hook); err != nil {
		return nil, err
	}
	if s.announcer != nil {
		go s.announcer.Greet(context.WithoutCancel(ctx), hook.URL)
	}
	return hook, nil
}

func (s *WebhookService) DeleteWebhook(ctx context.Context, role models.Role, id uint) error {
	if err := requireAdmin(role); err != nil {
		return err
	}
	hook, err := s.hooks.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "Webhook", id)
	}
	if err := s.hooks.Delete(ctx, id); err != nil {
		return notFound(err, "Webhook", id)
	}
	if s.announcer != nil {
		go s.announcer.Farewell(context.WithoutCancel(ctx), hook.URL)
	}
	return nil
}

func (s *WebhookService) ListWebhooks(ctx context.Context, role models.Role) ([]models.Webhook, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}
	return s.hooks.List(ctx)
}
