package server

import (
	"freleefty/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.UserContext(), pathParam(c, "id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyName handles PUT /api/users/me/name
func (s *Server) UpdateMyName(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.userService.UpdateUserName(c.UserContext(), currentUserID(c), req.Name); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetMyNotify handles GET /api/users/me/notify
func (s *Server) GetMyNotify(c *fiber.Ctx) error {
	notify, err := s.userService.GetNewArticleNotify(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"notify": notify})
}

// SetMyNotify handles PUT /api/users/me/notify
func (s *Server) SetMyNotify(c *fiber.Ctx) error {
	var req struct {
		Notify bool `json:"notify"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.userService.SetNewArticleNotify(c.UserContext(), currentUserID(c), req.Notify); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
