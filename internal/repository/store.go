// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups every repository over one database handle. A Store built
// inside Transaction shares that transaction across all its repositories.
type Store struct {
	db *gorm.DB

	Users        UserRepository
	Articles     ArticleRepository
	Drafts       DraftRepository
	Editions     EditionRepository
	Files        FileRepository
	Comments     CommentRepository
	Likes        LikeRepository
	Views        ViewRepository
	Webhooks     WebhookRepository
	Categories   CategoryRepository
	PendingMoves PendingMoveRepository
}

// NewStore wires every repository to db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Users:        NewUserRepository(db),
		Articles:     NewArticleRepository(db),
		Drafts:       NewDraftRepository(db),
		Editions:     NewEditionRepository(db),
		Files:        NewFileRepository(db),
		Comments:     NewCommentRepository(db),
		Likes:        NewLikeRepository(db),
		Views:        NewViewRepository(db),
		Webhooks:     NewWebhookRepository(db),
		Categories:   NewCategoryRepository(db),
		PendingMoves: NewPendingMoveRepository(db),
	}
}

// DB returns the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn against a Store bound to a single database
// transaction. Any error returned by fn, or a panic, rolls back every write.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
