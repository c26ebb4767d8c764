package server

import (
	"errors"
	"time"

	"freleefty/internal/models"
	"freleefty/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Login handles POST /api/auth/login. It exchanges an OAuth authorization
// code for tokens, or for a registration code when the identity is new.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Authorization code is required"))
	}

	res, err := s.authService.LoginWithCode(c.UserContext(), req.Code)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(res)
}

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code"`
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	res, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Code: req.Code,
		ID:   req.ID,
		Name: req.Name,
	})
	if err != nil {
		// A taken id or name comes with a fresh registration code.
		var appErr *models.AppError
		if res != nil && errors.As(err, &appErr) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": appErr.Message,
				"code":  appErr.Code,
				"retry": res,
			})
		}
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Refresh handles POST /api/auth/refresh
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Refresh token is required"))
	}

	pair, err := s.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(pair)
}

// Logout handles POST /api/auth/logout. The refresh token is dropped; a
// valid access token, if sent, is revoked until it expires.
func (s *Server) Logout(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.BodyParser(&req)

	var (
		jti       string
		expiresAt time.Time
	)
	if token := bearerToken(c); token != "" {
		if claims, err := s.parseAccessToken(token); err == nil {
			jti, expiresAt = claims.JTI, claims.ExpiresAt
		}
	}

	if err := s.authService.Logout(c.UserContext(), req.RefreshToken, jti, expiresAt); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DevLogin handles POST /api/auth/dev-login. Development only.
func (s *Server) DevLogin(c *fiber.Ctx) error {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	pair, err := s.authService.DevLogin(c.UserContext(), req.ID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(pair)
}
