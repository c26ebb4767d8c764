// Package models contains data structures for the application's domain models.
package models

import "time"

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an author or reader identified through the external OAuth provider.
type User struct {
	ID               string     `gorm:"primaryKey;size:20" json:"id"`
	ProviderID       string     `gorm:"uniqueIndex;not null" json:"-"`
	Name             string     `gorm:"uniqueIndex;not null;size:20" json:"name"`
	Role             Role       `gorm:"not null;size:16;default:user" json:"role"`
	NameUpdatedAt    *time.Time `json:"name_updated_at,omitempty"`
	NewArticleNotify bool       `gorm:"not null;default:false" json:"new_article_notify"`
	CreatedAt        time.Time  `json:"created_at"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
