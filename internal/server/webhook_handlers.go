package server

import (
	"freleefty/internal/models"
	"freleefty/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListWebhooks handles GET /api/admin/webhooks
func (s *Server) ListWebhooks(c *fiber.Ctx) error {
	hooks, err := s.webhookService.ListWebhooks(c.UserContext(), currentRole(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(hooks)
}

// CreateWebhook handles POST /api/admin/webhooks
func (s *Server) CreateWebhook(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	hook, err := s.webhookService.CreateWebhook(c.UserContext(), currentRole(c), service.CreateWebhookInput{
		Name: req.Name,
		URL:  req.URL,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(hook)
}

// DeleteWebhook handles DELETE /api/admin/webhooks/:id
func (s *Server) DeleteWebhook(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.webhookService.DeleteWebhook(c.UserContext(), currentRole(c), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
