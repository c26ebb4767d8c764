package server

import (
	"encoding/json"

	"freleefty/internal/models"
	"freleefty/internal/service"

	"github.com/gofiber/fiber/v2"
)

// optionalID tells an absent JSON field apart from an explicit null.
type optionalID struct {
	Set   bool
	Value *uint
}

func (o *optionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v uint
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// ListCategories handles GET /api/admin/categories
func (s *Server) ListCategories(c *fiber.Ctx) error {
	tree, err := s.categoryService.ListCategories(c.UserContext(), currentRole(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(tree)
}

// CreateCategory handles POST /api/admin/categories
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		ParentID *uint  `json:"parent_id"`
		IsGroup  bool   `json:"is_group"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	category, err := s.categoryService.CreateCategory(c.UserContext(), currentRole(c), service.CreateCategoryInput{
		Name:     req.Name,
		ParentID: req.ParentID,
		IsGroup:  req.IsGroup,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// UpdateCategory handles PUT /api/admin/categories/:id. Omitted fields are
// kept; "parent_id": null moves the category to the root.
func (s *Server) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Name     *string    `json:"name"`
		ParentID optionalID `json:"parent_id"`
		IsGroup  *bool      `json:"is_group"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	category, err := s.categoryService.UpdateCategory(c.UserContext(), currentRole(c), service.UpdateCategoryInput{
		ID:        id,
		Name:      req.Name,
		SetParent: req.ParentID.Set,
		ParentID:  req.ParentID.Value,
		IsGroup:   req.IsGroup,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(category)
}

// DeleteCategory handles DELETE /api/admin/categories/:id
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.categoryService.DeleteCategory(c.UserContext(), currentRole(c), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListArticleCategories handles GET /api/articles/:id/categories
func (s *Server) ListArticleCategories(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	categories, err := s.categoryService.ArticleCategories(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(categories)
}

// SetArticleCategories handles PUT /api/articles/:id/categories
func (s *Server) SetArticleCategories(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		CategoryIDs []uint `json:"category_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	categories, err := s.categoryService.SetArticleCategories(c.UserContext(), id, currentUserID(c), req.CategoryIDs)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(categories)
}
