package models

import (
	"strings"
	"time"
)

// File is attachment metadata. Exactly one of DraftID and EditionID is set;
// change ownership only through SetOwner.
type File struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DraftID   *uint     `gorm:"uniqueIndex:idx_files_draft_name,priority:1" json:"draft_id,omitempty"`
	EditionID *uint     `gorm:"uniqueIndex:idx_files_edition_name,priority:1" json:"edition_id,omitempty"`
	Name      string    `gorm:"not null;size:255;uniqueIndex:idx_files_draft_name,priority:2;uniqueIndex:idx_files_edition_name,priority:2;check:chk_files_single_owner,(draft_id IS NULL) <> (edition_id IS NULL)" json:"name"`
	MimeType  string    `gorm:"not null;size:255" json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}

// FileOwner is the owner of an attachment: DraftOwner or EditionOwner.
type FileOwner interface {
	// Kind is the storage namespace of the owner, "d" or "e".
	Kind() string
	OwnerID() uint
	isFileOwner()
}

// DraftOwner marks a file owned by a draft.
type DraftOwner struct{ DraftID uint }

// EditionOwner marks a file owned by an edition.
type EditionOwner struct{ EditionID uint }

func (DraftOwner) Kind() string      { return "d" }
func (o DraftOwner) OwnerID() uint   { return o.DraftID }
func (DraftOwner) isFileOwner()      {}
func (EditionOwner) Kind() string    { return "e" }
func (o EditionOwner) OwnerID() uint { return o.EditionID }
func (EditionOwner) isFileOwner()    {}

// Owner returns the current owner, or nil for a row with neither column set.
func (f *File) Owner() FileOwner {
	switch {
	case f.DraftID != nil && f.EditionID == nil:
		return DraftOwner{DraftID: *f.DraftID}
	case f.EditionID != nil && f.DraftID == nil:
		return EditionOwner{EditionID: *f.EditionID}
	}
	return nil
}

// SetOwner assigns the file to owner and clears the other column.
func (f *File) SetOwner(owner FileOwner) {
	switch o := owner.(type) {
	case DraftOwner:
		id := o.DraftID
		f.DraftID, f.EditionID = &id, nil
	case EditionOwner:
		id := o.EditionID
		f.DraftID, f.EditionID = nil, &id
	}
}

// OwnerColumns returns the column assignment for moving rows to owner,
// for use in bulk updates.
func OwnerColumns(owner FileOwner) map[string]interface{} {
	switch o := owner.(type) {
	case DraftOwner:
		return map[string]interface{}{"draft_id": o.DraftID, "edition_id": nil}
	case EditionOwner:
		return map[string]interface{}{"draft_id": nil, "edition_id": o.EditionID}
	}
	return nil
}

// IsImage reports whether the MIME type is an image type.
func (f *File) IsImage() bool {
	return strings.HasPrefix(f.MimeType, "image/")
}
