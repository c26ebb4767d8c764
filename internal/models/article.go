package models

import "time"

// Article is the aggregate root under which drafts and editions live.
type Article struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  string    `gorm:"not null;index;size:20" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Draft is the mutable working copy of an article. At most one draft
// exists per article.
type Draft struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"not null;uniqueIndex" json:"article_id"`
	Article   Article   `gorm:"foreignKey:ArticleID" json:"-"`
	Title     string    `gorm:"not null;default:''" json:"title"`
	Content   string    `gorm:"type:text;not null;default:''" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Edition is an immutable published snapshot of an article.
type Edition struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ArticleID   uint      `gorm:"not null;index:idx_editions_article_published,priority:1" json:"article_id"`
	Article     Article   `gorm:"foreignKey:ArticleID" json:"-"`
	Title       string    `gorm:"not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Notes       string    `gorm:"not null;default:''" json:"notes"`
	ThumbnailID *uint     `json:"thumbnail_id,omitempty"`
	PublishedAt time.Time `gorm:"not null;index:idx_editions_article_published,priority:2" json:"published_at"`
}

// Comment is a reader comment on an article.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"not null;index" json:"article_id"`
	UserID    string    `gorm:"not null;index;size:20" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Content   string    `gorm:"not null;size:1023" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Like records a user's like on an article. The pair is unique.
type Like struct {
	ArticleID uint      `gorm:"primaryKey;autoIncrement:false" json:"article_id"`
	UserID    string    `gorm:"primaryKey;size:20" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// View is one counted read of an article.
type View struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ArticleID uint      `gorm:"not null;index" json:"article_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// Webhook is an admin-configured endpoint notified of new articles.
type Webhook struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	URL       string    `gorm:"not null;size:255" json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// Category is an admin-managed label. Groups hold other categories and
// leaves are attached to articles.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	IsGroup   bool      `gorm:"not null;default:false" json:"is_group"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	Parent    *Category `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryNode is a category with its children, as listed to admins.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}

// ArticleCategory links an article to a leaf category.
type ArticleCategory struct {
	ArticleID  uint     `gorm:"primaryKey;autoIncrement:false" json:"article_id"`
	Article    Article  `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"-"`
	CategoryID uint     `gorm:"primaryKey;autoIncrement:false;index" json:"category_id"`
	Category   Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
}

// PendingFileMove records a committed publish whose attachment directory
// has not yet been moved from the draft to the edition.
type PendingFileMove struct {
	DraftID   uint      `gorm:"primaryKey;autoIncrement:false" json:"draft_id"`
	EditionID uint      `gorm:"not null" json:"edition_id"`
	Attempts  int       `gorm:"not null;default:0" json:"attempts"`
	LastError string    `gorm:"not null;default:''" json:"last_error"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// All returns every persisted model, in dependency order, for migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Article{},
		&Draft{},
		&Edition{},
		&File{},
		&Comment{},
		&Like{},
		&View{},
		&Webhook{},
		&Category{},
		&ArticleCategory{},
		&PendingFileMove{},
	}
}
