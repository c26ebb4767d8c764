package server

import (
	"freleefty/internal/models"
	"freleefty/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/articles/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	articleID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:    currentUserID(c),
		ArticleID: articleID,
		Content:   req.Content,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ListComments handles GET /api/articles/:id/comments
func (s *Server) ListComments(c *fiber.Ctx) error {
	articleID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.UserContext(), articleID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(comments)
}

// ListUserComments handles GET /api/users/:id/comments?before_id=&limit=
func (s *Server) ListUserComments(c *fiber.Ctx) error {
	beforeID := c.QueryInt("before_id", 0)
	if beforeID < 0 {
		beforeID = 0
	}

	comments, err := s.commentService.ListUserComments(c.UserContext(), service.ListUserCommentsInput{
		UserID:   pathParam(c, "id"),
		BeforeID: uint(beforeID),
		Limit:    c.QueryInt("limit", 0),
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(comments)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	err = s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    currentUserID(c),
		CommentID: id,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Like handles POST /api/articles/:id/like
func (s *Server) Like(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.likeService.Like(c.UserContext(), id, currentUserID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Unlike handles DELETE /api/articles/:id/like
func (s *Server) Unlike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.likeService.Unlike(c.UserContext(), id, currentUserID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListLikers handles GET /api/articles/:id/likes
func (s *Server) ListLikers(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	likers, err := s.likeService.ListLikers(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(likers)
}

// IssueViewToken handles POST /api/articles/:id/view-token
func (s *Server) IssueViewToken(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	token, err := s.viewService.IssueViewToken(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"view_token": token})
}

// SubmitView handles POST /api/views. Unknown tokens are accepted silently.
func (s *Server) SubmitView(c *fiber.Ctx) error {
	var req struct {
		ViewToken string `json:"view_token"`
	}
	if err := c.BodyParser(&req); err != nil || req.ViewToken == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("View token is required"))
	}

	if err := s.viewService.SubmitView(c.UserContext(), req.ViewToken); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
