package server

import (
	"freleefty/internal/service"

	"github.com/gofiber/fiber/v2"
)

// listArticles serves every keyset-paginated article list.
func (s *Server) listArticles(c *fiber.Ctx, in service.ListArticlesInput) error {
	before, beforeID, err := articleCursor(c)
	if err != nil {
		return nil
	}
	in.Before = before
	in.BeforeID = beforeID
	in.Limit = c.QueryInt("limit", 0)

	articles, err := s.articleService.ListArticles(c.UserContext(), in)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(articles)
}

// ListArticles handles GET /api/articles
func (s *Server) ListArticles(c *fiber.Ctx) error {
	return s.listArticles(c, service.ListArticlesInput{})
}

// ListUserArticles handles GET /api/users/:id/articles
func (s *Server) ListUserArticles(c *fiber.Ctx) error {
	return s.listArticles(c, service.ListArticlesInput{AuthorID: pathParam(c, "id")})
}

// ListUserLikedArticles handles GET /api/users/:id/likes
func (s *Server) ListUserLikedArticles(c *fiber.Ctx) error {
	return s.listArticles(c, service.ListArticlesInput{LikedBy: pathParam(c, "id")})
}

// ListPopularArticles handles GET /api/articles/popular
func (s *Server) ListPopularArticles(c *fiber.Ctx) error {
	articles, err := s.articleService.ListPopularArticles(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(articles)
}

// GetArticle handles GET /api/articles/:id
func (s *Server) GetArticle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	article, err := s.articleService.GetArticle(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(article)
}

// GetNextArticle handles GET /api/articles/:id/next
func (s *Server) GetNextArticle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	article, err := s.articleService.GetNextArticle(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(article)
}

// GetPrevArticle handles GET /api/articles/:id/prev
func (s *Server) GetPrevArticle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	article, err := s.articleService.GetPrevArticle(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(article)
}

// GetArticleFiles handles GET /api/articles/:id/files
func (s *Server) GetArticleFiles(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	files, err := s.articleService.GetArticleFiles(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(files)
}

// ListEditions handles GET /api/articles/:id/editions
func (s *Server) ListEditions(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	editions, err := s.articleService.ListEditions(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(editions)
}

// GetEdition handles GET /api/editions/:id
func (s *Server) GetEdition(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	edition, err := s.articleService.GetEdition(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(edition)
}

// EditArticle handles POST /api/articles/:id/edit. It opens a draft seeded
// with the latest edition.
func (s *Server) EditArticle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	draft, err := s.articleService.EditArticle(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(draft)
}

// GetArticleDraft handles GET /api/articles/:id/draft
func (s *Server) GetArticleDraft(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	draftID, err := s.articleService.GetArticleDraftID(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"draft_id": draftID})
}

// DeleteArticle handles DELETE /api/articles/:id
func (s *Server) DeleteArticle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.articleService.DeleteArticle(c.UserContext(), id, currentUserID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
