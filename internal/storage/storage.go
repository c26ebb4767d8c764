// Package storage keeps attachment bytes on the local filesystem in lockstep
// with the file rows that describe them.
//
// Layout under the root directory:
//
//	d/<draftID>/<fileID>/<name>    draft-owned files
//	e/<editionID>/<fileID>/<name>  edition-owned files
//	tmp/<uuid>                     uploads not yet attached to a row
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"freleefty/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	dirPerm  = 0o750
	filePerm = 0o640

	linkConcurrency = 8
)

// Manager owns the attachment tree rooted at a directory.
type Manager struct {
	root string
}

// NewManager prepares root for use, creating its namespaces if needed.
func NewManager(root string) (*Manager, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	for _, sub := range []string{"d", "e", "tmp"} {
		if err := os.MkdirAll(filepath.Join(abs, sub), dirPerm); err != nil {
			return nil, fmt.Errorf("storage: create %s: %w", sub, err)
		}
	}
	return &Manager{root: abs}, nil
}

// Root returns the absolute root directory.
func (m *Manager) Root() string {
	return m.root
}

// OwnerDir returns the directory holding every file of owner.
func (m *Manager) OwnerDir(owner models.FileOwner) string {
	return filepath.Join(m.root, owner.Kind(), strconv.FormatUint(uint64(owner.OwnerID()), 10))
}

// Path returns the location of one file's bytes.
func (m *Manager) Path(owner models.FileOwner, fileID uint, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	return filepath.Join(m.OwnerDir(owner), strconv.FormatUint(uint64(fileID), 10), name), nil
}

// checkName rejects names that would escape their file directory.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("storage: unsafe file name %q", name)
	}
	return nil
}

// Open opens a stored file for reading. A missing file is models.ErrNotFound.
func (m *Manager) Open(owner models.FileOwner, fileID uint, name string) (*os.File, error) {
	p, err := m.Path(owner, fileID, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, models.NewNotFoundError("file", fileID)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	return f, nil
}

// Upload is an incoming file held in tmp until its row is committed.
type Upload struct {
	m    *Manager
	path string
	size int64
}

// Upload streams r into a temporary file. declared is the client-announced
// size, or -1 if unknown. Input above maxBytes yields models.ErrTooLarge and
// leaves nothing on disk; a declared size above the limit is refused before
// any file is created.
func (m *Manager) Upload(ctx context.Context, r io.Reader, declared, maxBytes int64) (*Upload, error) {
	if declared > maxBytes {
		return nil, models.NewTooLargeError(maxBytes)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(m.root, "tmp", uuid.NewString())
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
	if err != nil {
		return nil, fmt.Errorf("storage: create temp: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, maxBytes+1))
	if err == nil && n > maxBytes {
		err = models.NewTooLargeError(maxBytes)
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("storage: write temp: %w", err)
	}

	return &Upload{m: m, path: path, size: n}, nil
}

// Size is the number of bytes received.
func (u *Upload) Size() int64 {
	return u.size
}

// Rename moves the upload to its final draft-owned path. Call it only after
// the file row is committed.
func (u *Upload) Rename(draftID, fileID uint, name string) error {
	dst, err := u.m.Path(models.DraftOwner{DraftID: draftID}, fileID, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return fmt.Errorf("storage: create file dir: %w", err)
	}
	if err := os.Rename(u.path, dst); err != nil {
		return fmt.Errorf("storage: rename upload: %w", err)
	}
	u.path = ""
	return nil
}

// Cancel discards the upload. It is safe after Rename and safe to repeat.
func (u *Upload) Cancel() {
	if u.path == "" {
		return
	}
	_ = os.Remove(u.path)
	u.path = ""
}

// MoveDraftFilesToEdition renames the draft's directory to the edition's.
// Running it again after success is a no-op.
func (m *Manager) MoveDraftFilesToEdition(draftID, editionID uint) error {
	src := m.OwnerDir(models.DraftOwner{DraftID: draftID})
	dst := m.OwnerDir(models.EditionOwner{EditionID: editionID})

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if _, serr := os.Stat(src); errors.Is(serr, fs.ErrNotExist) {
		if _, derr := os.Stat(dst); derr == nil {
			return nil
		}
	}
	return fmt.Errorf("storage: move draft %d to edition %d: %w", draftID, editionID, err)
}

// FileLink maps an edition file to the id of its copy in a draft.
type FileLink struct {
	EditionFileID uint
	DraftFileID   uint
	Name          string
}

// LinkEditionFilesToDraft hard-links edition files into a draft under their
// new ids. Edition bytes are immutable, so sharing inodes is safe.
func (m *Manager) LinkEditionFilesToDraft(ctx context.Context, editionID, draftID uint, links []FileLink) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(linkConcurrency)

	for _, l := range links {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := m.Path(models.EditionOwner{EditionID: editionID}, l.EditionFileID, l.Name)
			if err != nil {
				return err
			}
			dst, err := m.Path(models.DraftOwner{DraftID: draftID}, l.DraftFileID, l.Name)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
				return fmt.Errorf("storage: create file dir: %w", err)
			}
			if err := os.Link(src, dst); err != nil && !errors.Is(err, fs.ErrExist) {
				return fmt.Errorf("storage: link %s: %w", l.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// DeleteDraftFiles removes every file of a draft.
func (m *Manager) DeleteDraftFiles(draftID uint) error {
	return removeAll(m.OwnerDir(models.DraftOwner{DraftID: draftID}))
}

// DeleteEditionFiles removes every file of an edition.
func (m *Manager) DeleteEditionFiles(editionID uint) error {
	return removeAll(m.OwnerDir(models.EditionOwner{EditionID: editionID}))
}

// DeleteOneDraftFile removes a single draft file.
func (m *Manager) DeleteOneDraftFile(draftID, fileID uint) error {
	dir := filepath.Join(m.OwnerDir(models.DraftOwner{DraftID: draftID}), strconv.FormatUint(uint64(fileID), 10))
	return removeAll(dir)
}

// removeAll is os.RemoveAll with a storage-prefixed error; missing paths succeed.
func removeAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("storage: remove %s: %w", path, err)
	}
	return nil
}
