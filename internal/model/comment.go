package model

import "time"

// Comment is a message on an issue thread. Exactly one of UserID and StaffID is set.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	IssueID   uint      `json:"issueId" gorm:"not null;index"`
	UserID    *uint     `json:"userId" gorm:"index"`
	StaffID   *uint     `json:"staffId" gorm:"index"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Author is the resolved display name; it is filled on read and never stored.
	Author string `json:"author" gorm:"-"`

	// Relations
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Staff *Staff `json:"staff,omitempty" gorm:"foreignKey:StaffID"`
}

// AuthorName resolves the display name of whichever directory record wrote the comment.
func (c *Comment) AuthorName() string {
	switch {
	case c.User != nil:
		return c.User.DisplayName()
	case c.Staff != nil:
		return c.Staff.DisplayName()
	default:
		return ""
	}
}
