package model

import (
	"time"

	"gorm.io/datatypes"
)

// PublicIssue is an announcement visible to everyone. The author is always recorded,
// even when IsAnonymous hides them from readers.
type PublicIssue struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	Title       string                      `json:"title" gorm:"size:255;not null"`
	Content     string                      `json:"content" gorm:"type:text;not null"`
	IssueType   string                      `json:"issuetype" gorm:"column:issuetype;size:100;not null"`
	Attachments datatypes.JSONSlice[string] `json:"attachments"`
	IsAnonymous bool                        `json:"isAnonymous" gorm:"not null;default:false"`
	UserID      uint                        `json:"-" gorm:"not null;index"`
	CreatedAt   time.Time                   `json:"createdAt" gorm:"index"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}
