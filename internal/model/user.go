package model

import "time"

// UserRole is the role carried by a User directory record.
type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleAdmin   UserRole = "admin"
)

// User is a student (or admin) profile created when onboarding completes.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ClerkID   string    `json:"clerkId" gorm:"size:191;uniqueIndex;not null"`
	FirstName string    `json:"firstName" gorm:"size:255;not null"`
	LastName  string    `json:"lastName" gorm:"size:255;not null"`
	Email     string    `json:"email" gorm:"size:191;uniqueIndex;not null"`
	Role      UserRole  `json:"role" gorm:"type:varchar(20);not null;default:'student'"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayName joins first and last name.
func (u *User) DisplayName() string {
	return joinName(u.FirstName, u.LastName)
}
