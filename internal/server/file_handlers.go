package server

import (
	"fmt"
	"mime"

	"freleefty/internal/models"
	"freleefty/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadFile handles POST /api/drafts/:id/files. The body is multipart with
// the bytes in "file"; an optional "name" overrides the uploaded file name.
func (s *Server) UploadFile(c *fiber.Ctx) error {
	draftID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	header, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Multipart field \"file\" is required"))
	}
	body, err := header.Open()
	if err != nil {
		return mapServiceError(c, fmt.Errorf("open multipart file: %w", err))
	}
	defer func() { _ = body.Close() }()

	name := c.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	file, err := s.fileService.CreateFile(c.UserContext(), service.CreateFileInput{
		DraftID:  draftID,
		AuthorID: currentUserID(c),
		Name:     name,
		MimeType: header.Header.Get(fiber.HeaderContentType),
		Size:     header.Size,
		Body:     body,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.FileInfo{
		ID:       file.ID,
		Name:     file.Name,
		MimeType: file.MimeType,
	})
}

// DeleteFile handles DELETE /api/files/:id
func (s *Server) DeleteFile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.fileService.DeleteFile(c.UserContext(), id, currentUserID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DownloadFile handles GET /api/files/:id/:name. Draft files need the
// author's token.
func (s *Server) DownloadFile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	meta, f, err := s.fileService.OpenFile(c.UserContext(), id, pathParam(c, "name"), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return mapServiceError(c, fmt.Errorf("stat file: %w", err))
	}

	c.Set(fiber.HeaderContentType, meta.MimeType)
	c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": meta.Name}))
	if meta.EditionID != nil {
		// Edition bytes never change.
		c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	} else {
		c.Set(fiber.HeaderCacheControl, "private, no-cache")
	}
	return c.SendStream(f, int(info.Size()))
}
