package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"freleefty/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "thumbnail ID", humanizeParam("thumbnailId"))
	assert.Equal(t, "draft file ID", humanizeParam("draftFileId"))
	assert.Equal(t, "name", humanizeParam("name"))
}

func TestParseID(t *testing.T) {
	app := fiber.New()
	app.Get("/x/:id", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	for path, want := range map[string]int{"/x/7": 200, "/x/0": 400, "/x/abc": 400, "/x/-3": 400} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
		_ = resp.Body.Close()
	}
}

func TestMapServiceError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{models.NewNotFoundError("Draft", 1), http.StatusNotFound},
		{models.ErrForbidden, http.StatusForbidden},
		{models.ErrNoTitle, http.StatusBadRequest},
		{models.ErrInvalidThumbnail, http.StatusBadRequest},
		{models.NewTooLargeError(10), http.StatusRequestEntityTooLarge},
		{models.NewConflictError("dup"), http.StatusConflict},
		{models.ErrTooSoon, http.StatusTooManyRequests},
		{models.NewUnauthorizedError("no"), http.StatusUnauthorized},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return mapServiceError(c, tc.err) })
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
		_ = resp.Body.Close()
	}
}
