package model

import (
	"strings"
	"time"
)

// StaffRole is the role carried by a Staff directory record.
type StaffRole string

const (
	StaffRoleStaff StaffRole = "staff"
	StaffRoleAdmin StaffRole = "admin"
)

// Valid reports whether r is a known staff role.
func (r StaffRole) Valid() bool {
	return r == StaffRoleStaff || r == StaffRoleAdmin
}

// Staff is a lecturer or administrator profile, created only by promoting a User.
type Staff struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ClerkID    string    `json:"clerkId" gorm:"size:191;uniqueIndex;not null"`
	FirstName  string    `json:"firstName" gorm:"size:255;not null"`
	LastName   string    `json:"lastName" gorm:"size:255;not null"`
	Email      string    `json:"email" gorm:"size:191;index;not null"`
	Department string    `json:"department" gorm:"size:191;index;not null"`
	Role       StaffRole `json:"role" gorm:"type:varchar(20);not null;default:'staff'"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName keeps the plural-free table name.
func (Staff) TableName() string { return "staff" }

// DisplayName joins first and last name.
func (s *Staff) DisplayName() string {
	return joinName(s.FirstName, s.LastName)
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
