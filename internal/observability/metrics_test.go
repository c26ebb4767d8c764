package observability

import (
	"errors"
	"fmt"
	"testing"

	"freleefty/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", ResultLabel(nil))
	assert.Equal(t, "no_title", ResultLabel(models.ErrNoTitle))
	assert.Equal(t, "not_found", ResultLabel(fmt.Errorf("publish: %w", models.NewNotFoundError("draft", 7))))
	assert.Equal(t, "error", ResultLabel(errors.New("connection reset")))
}
