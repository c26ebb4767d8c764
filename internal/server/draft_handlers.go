package server

import (
	"freleefty/internal/models"
	"freleefty/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListDrafts handles GET /api/drafts
func (s *Server) ListDrafts(c *fiber.Ctx) error {
	drafts, err := s.draftService.ListDrafts(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(drafts)
}

// CreateDraft handles POST /api/drafts
func (s *Server) CreateDraft(c *fiber.Ctx) error {
	draft, err := s.draftService.CreateDraft(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(draft)
}

// GetDraft handles GET /api/drafts/:id
func (s *Server) GetDraft(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	draft, err := s.draftService.GetDraft(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(draft)
}

// UpdateDraft handles PUT /api/drafts/:id
func (s *Server) UpdateDraft(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	err = s.draftService.UpdateDraft(c.UserContext(), service.UpdateDraftInput{
		ID:       id,
		AuthorID: currentUserID(c),
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteDraft handles DELETE /api/drafts/:id
func (s *Server) DeleteDraft(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.draftService.DeleteDraft(c.UserContext(), id, currentUserID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PublishDraft handles POST /api/drafts/:id/publish
func (s *Server) PublishDraft(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Notes          string `json:"notes"`
		ThumbnailID    *uint  `json:"thumbnail_id"`
		Notify         bool   `json:"notify"`
		RememberNotify bool   `json:"remember_notify"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	articleID, err := s.publishService.PublishDraft(c.UserContext(), service.PublishInput{
		DraftID:        id,
		AuthorID:       currentUserID(c),
		Notes:          req.Notes,
		ThumbnailID:    req.ThumbnailID,
		Notify:         req.Notify,
		RememberNotify: req.RememberNotify,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"article_id": articleID})
}
