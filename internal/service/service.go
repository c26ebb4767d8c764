// Package service holds the application's use cases. Services return
// *models.AppError values for expected outcomes and plain errors for
// infrastructure failures.
package service

import (
	"context"
	"errors"
	"time"

	"freleefty/internal/middleware"
	"freleefty/internal/models"
	"freleefty/internal/observability"

	"gorm.io/gorm"
)

const (
	maxTitleLen   = 255
	maxNotesLen   = 255
	maxCommentLen = 1023
	maxFileName   = 255

	defaultPageSize = 20
	maxPageSize     = 100
)

func utcNow() time.Time {
	return time.Now().UTC()
}

// notFound turns a missing row into a typed not-found error.
func notFound(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}

func validationError(field string, err error) error {
	return models.NewValidationError(field + ": " + err.Error())
}

func pageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// postCommitFailure records a filesystem step that failed after its
// transaction committed. The database stays authoritative.
func postCommitFailure(ctx context.Context, op string, err error, args ...any) {
	observability.PostCommitFailures.WithLabelValues(op).Inc()
	middleware.Logger.ErrorContext(ctx, "filesystem step failed after commit",
		append([]any{"op", op, "error", err}, args...)...)
}

func fileInfos(files []models.File) []models.FileInfo {
	out := make([]models.FileInfo, 0, len(files))
	for _, f := range files {
		out = append(out, models.FileInfo{ID: f.ID, Name: f.Name, MimeType: f.MimeType})
	}
	return out
}
