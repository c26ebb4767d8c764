package models

import "time"

// FileInfo is the public projection of an attachment.
type FileInfo struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}

// DraftSummary is one row of a user's draft list.
type DraftSummary struct {
	ID        uint      `json:"id"`
	ArticleID uint      `json:"article_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Published bool      `json:"published"`
}

// DraftDetail is a draft with its attachments.
type DraftDetail struct {
	Draft
	Published bool       `json:"published"`
	Files     []FileInfo `json:"files"`
}

// ArticleSummary is one row of an article listing, built from the latest edition.
type ArticleSummary struct {
	ID               uint      `json:"id"`
	AuthorID         string    `json:"author_id"`
	AuthorName       string    `json:"author_name"`
	EditionID        uint      `json:"edition_id"`
	Title            string    `json:"title"`
	ThumbnailID      *uint     `json:"thumbnail_id,omitempty"`
	ThumbnailName    *string   `json:"thumbnail_name,omitempty"`
	FirstPublishedAt time.Time `json:"first_published_at"`
	LastPublishedAt  time.Time `json:"last_published_at"`
	Views            int64     `json:"views"`
	Likes            int64     `json:"likes"`
	Comments         int64     `json:"comments"`
}

// ArticleDetail is a single article with the content of its latest edition.
type ArticleDetail struct {
	ArticleSummary
	Content       string `json:"content"`
	Notes         string `json:"notes"`
	EditionsCount int64  `json:"editions_count"`
}

// EditionSummary is one entry of an article's edition history.
type EditionSummary struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Notes       string    `json:"notes"`
	PublishedAt time.Time `json:"published_at"`
}

// CommentView is a comment with its author's display name.
type CommentView struct {
	ID        uint      `json:"id"`
	ArticleID uint      `json:"article_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Liker is a user who liked an article.
type Liker struct {
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	CreatedAt time.Time `json:"created_at"`
}

// EditionDetail is a single edition with its attachments.
type EditionDetail struct {
	Edition
	Files []FileInfo `json:"files"`
}
