package server

import (
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode"

	"freleefty/internal/middleware"
	"freleefty/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// statusByCode maps AppError codes to HTTP statuses.
var statusByCode = map[string]int{
	models.CodeNotFound:         fiber.StatusNotFound,
	models.CodeForbidden:        fiber.StatusForbidden,
	models.CodeValidation:       fiber.StatusBadRequest,
	models.CodeNoTitle:          fiber.StatusBadRequest,
	models.CodeInvalidThumbnail: fiber.StatusBadRequest,
	models.CodeInvalidAction:    fiber.StatusBadRequest,
	models.CodeConflict:         fiber.StatusConflict,
	models.CodeTooLarge:         fiber.StatusRequestEntityTooLarge,
	models.CodeTooSoon:          fiber.StatusTooManyRequests,
	models.CodeUnauthorized:     fiber.StatusUnauthorized,
}

// mapServiceError writes the response for a service error. Infrastructure
// errors become an opaque 500.
func mapServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		if status, ok := statusByCode[appErr.Code]; ok {
			return models.RespondWithError(c, status, err)
		}
	}
	middleware.Logger.ErrorContext(c.UserContext(), "request failed", "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "thumbnailId" -> "thumbnail ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// pathParam returns the unescaped route parameter.
func pathParam(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// currentUserID returns the authenticated user. Only valid behind AuthRequired.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

func currentRole(c *fiber.Ctx) models.Role {
	role, _ := c.Locals("role").(models.Role)
	return role
}

// articleCursor reads the keyset cursor of an article list: "before" is the
// RFC 3339 first publish time of the last row seen and "before_id" its id.
func articleCursor(c *fiber.Ctx) (*time.Time, uint, error) {
	raw := c.Query("before")
	if raw == "" {
		return nil, 0, nil
	}
	before, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid before cursor"))
		return nil, 0, errResponseWritten
	}
	beforeID := c.QueryInt("before_id", 0)
	if beforeID < 0 {
		beforeID = 0
	}
	return &before, uint(beforeID), nil
}
