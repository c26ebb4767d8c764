package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"freleefty/internal/middleware"
	"freleefty/internal/models"
	"freleefty/internal/observability"
	"freleefty/internal/repository"
	"freleefty/internal/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// A file name may not start with a dot and may not contain a path separator.
var fileNamePattern = regexp.MustCompile(`^[^/\\.][^/\\]*$`)

const defaultMimeType = "application/octet-stream"

// FileService handles attachment uploads, downloads and deletes.
type FileService struct {
	store    *repository.Store
	files    *storage.Manager
	maxBytes int64
}

type CreateFileInput struct {
	DraftID  uint
	AuthorID string
	Name     string
	MimeType string
	// Size is the client-declared length, or -1 when unknown.
	Size int64
	Body io.Reader
}

func NewFileService(store *repository.Store, files *storage.Manager, maxBytes int64) *FileService {
	return &FileService{store: store, files: files, maxBytes: maxBytes}
}

// NormalizeFileName returns name in NFC form, or a validation error.
func NormalizeFileName(name string) (string, error) {
	name = norm.NFC.String(name)
	err := validation.Validate(name,
		validation.Required,
		validation.RuneLength(1, maxFileName),
		validation.Match(fileNamePattern).Error("must not start with a dot or contain a path separator"),
	)
	if err != nil {
		return "", validationError("name", err)
	}
	return name, nil
}

// CreateFile stores an upload as a new attachment of the draft. Oversized
// input is refused before any disk or database work. The temp file is moved
// into place only after its row commits, and discarded on every other path.
func (s *FileService) CreateFile(ctx context.Context, in CreateFileInput) (file *models.File, err error) {
	ctx, span := observability.StartSpan(ctx, "FileService.CreateFile",
		attribute.Int64("draft.id", int64(in.DraftID)))
	defer func() {
		observability.UploadsTotal.WithLabelValues(observability.ResultLabel(err)).Inc()
		span.End(err)
	}()
	ctx = middleware.WithDraftID(ctx, in.DraftID)

	if in.Size > s.maxBytes {
		return nil, models.NewTooLargeError(s.maxBytes)
	}
	name, err := NormalizeFileName(in.Name)
	if err != nil {
		return nil, err
	}

	upload, err := s.files.Upload(ctx, in.Body, in.Size, s.maxBytes)
	if err != nil {
		return nil, err
	}
	defer upload.Cancel()

	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	file = &models.File{Name: name, MimeType: mimeType}
	file.SetOwner(models.DraftOwner{DraftID: in.DraftID})

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Drafts.GetForAuthor(ctx, in.DraftID, in.AuthorID); err != nil {
			return notFound(err, "Draft", in.DraftID)
		}
		if err := tx.Files.Create(ctx, file); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.NewConflictError(fmt.Sprintf("A file named %q already exists", name))
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := upload.Rename(in.DraftID, file.ID, name); err != nil {
		if delErr := s.store.Files.Delete(ctx, file.ID); delErr != nil {
			middleware.Logger.ErrorContext(ctx, "failed to drop file row after rename failure",
				"file_id", file.ID, "error", delErr)
		}
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "file uploaded",
		"file_id", file.ID, "size", upload.Size())
	return file, nil
}

// DeleteFile removes one of the caller's draft attachments. Edition files
// and files of other authors cannot be deleted.
func (s *FileService) DeleteFile(ctx context.Context, fileID uint, userID string) error {
	file, err := s.store.Files.GetByID(ctx, fileID)
	if err != nil {
		return notFound(err, "File", fileID)
	}
	if file.DraftID == nil {
		return models.NewForbiddenError("Published files cannot be deleted")
	}
	if _, err := s.store.Files.GetDraftFileForAuthor(ctx, fileID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewForbiddenError("You can only delete files of your own drafts")
		}
		return err
	}

	if err := s.store.Files.Delete(ctx, fileID); err != nil {
		return notFound(err, "File", fileID)
	}
	if err := s.files.DeleteOneDraftFile(*file.DraftID, fileID); err != nil {
		postCommitFailure(ctx, "delete_file", err, "file_id", fileID)
	}
	return nil
}

// OpenFile opens an attachment for download. name must match the stored
// name when given. Edition files are public; draft files are visible only
// to the draft's author, and look missing to everyone else. viewerID is
// empty for anonymous requests.
func (s *FileService) OpenFile(ctx context.Context, fileID uint, name, viewerID string) (*models.File, *os.File, error) {
	file, err := s.store.Files.GetByID(ctx, fileID)
	if err != nil {
		return nil, nil, notFound(err, "File", fileID)
	}
	if file.DraftID != nil {
		if viewerID == "" {
			return nil, nil, models.NewNotFoundError("File", fileID)
		}
		if file, err = s.store.Files.GetDraftFileForAuthor(ctx, fileID, viewerID); err != nil {
			return nil, nil, notFound(err, "File", fileID)
		}
	}
	if name != "" && norm.NFC.String(name) != file.Name {
		return nil, nil, models.NewNotFoundError("File", fileID)
	}
	owner := file.Owner()
	if owner == nil {
		return nil, nil, models.NewNotFoundError("File", fileID)
	}

	f, err := s.files.Open(owner, file.ID, file.Name)
	if err != nil {
		return nil, nil, err
	}
	return file, f, nil
}
