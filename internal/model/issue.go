package model

import (
	"time"

	"gorm.io/datatypes"
)

// IssueStatus represents the lifecycle state of an issue.
type IssueStatus string

const (
	IssueStatusPending   IssueStatus = "pending"
	IssueStatusReviewing IssueStatus = "reviewing"
	IssueStatusResolved  IssueStatus = "resolved"
)

// IssueStatuses lists every valid status in lifecycle order.
var IssueStatuses = []IssueStatus{IssueStatusPending, IssueStatusReviewing, IssueStatusResolved}

// Valid reports whether s is one of pending, reviewing or resolved.
func (s IssueStatus) Valid() bool {
	for _, v := range IssueStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// DefaultIssueType is stored on issues created without an explicit type.
const DefaultIssueType = "normal"

// Issue is a helpdesk ticket raised by a student.
type Issue struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	Title       string                      `json:"title" gorm:"size:255;not null"`
	Description string                      `json:"description" gorm:"type:text;not null"`
	IssueType   string                      `json:"issueType" gorm:"size:50;not null;default:'normal'"`
	Department  string                      `json:"department" gorm:"size:191;not null;index"`
	Status      IssueStatus                 `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Attachments datatypes.JSONSlice[string] `json:"attachments"`
	StudentID   uint                        `json:"studentId" gorm:"not null;index"`
	StaffID     *uint                       `json:"staffId" gorm:"index"`
	CreatedAt   time.Time                   `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time                   `json:"updatedAt"`

	// Relations
	Student  *User     `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Staff    *Staff    `json:"staff,omitempty" gorm:"foreignKey:StaffID"`
	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:IssueID"`
}
