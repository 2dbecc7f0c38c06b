package entities

import "time"

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"  // May manage the catalog and other users
	UserRoleMember UserRole = "member" // May rate, annotate and keep a reading list
)

type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Username       string     `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email          string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash   string     `gorm:"size:255" json:"-"`
	Role           UserRole   `gorm:"size:20;default:'member'" json:"role"`
	TokenHash      string     `gorm:"index;size:64" json:"-"` // SHA-256 of the API token
	TokenCreatedAt *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user may manage the catalog.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
