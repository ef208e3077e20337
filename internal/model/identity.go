package model

import "time"

// IdentityKind names the directory table that holds an external identity.
type IdentityKind string

const (
	IdentityKindStudent IdentityKind = "student"
	IdentityKindStaff   IdentityKind = "staff"
)

// IdentityRole maps one external identity to exactly one directory. The primary key
// on ClerkID is what guarantees an identity never lives in both users and staff.
type IdentityRole struct {
	ClerkID   string       `json:"clerkId" gorm:"size:191;primaryKey"`
	Kind      IdentityKind `json:"kind" gorm:"type:varchar(20);not null"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
