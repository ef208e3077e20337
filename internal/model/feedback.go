package model

import "time"

// FeedbackSender labels who posted a feedback entry.
type FeedbackSender string

const (
	FeedbackSenderStudent  FeedbackSender = "student"
	FeedbackSenderLecturer FeedbackSender = "lecturer"
)

// Feedback is a message on a project review thread. The role label is derived when the
// entry is written; the actor reference is stored next to it for auditing.
type Feedback struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	ProjectID     uint           `json:"projectId" gorm:"not null;index"`
	Message       string         `json:"message" gorm:"type:text;not null"`
	Sender        FeedbackSender `json:"sender" gorm:"type:varchar(20);not null"`
	SenderUserID  *uint          `json:"senderUserId,omitempty" gorm:"index"`
	SenderStaffID *uint          `json:"senderStaffId,omitempty" gorm:"index"`
	CreatedAt     time.Time      `json:"createdAt" gorm:"index"`
	Author        string         `json:"author,omitempty" gorm:"-"`

	SenderUser  *User  `json:"-" gorm:"foreignKey:SenderUserID"`
	SenderStaff *Staff `json:"-" gorm:"foreignKey:SenderStaffID"`
}

// ActorName resolves the display name of the stored actor, if any.
func (f *Feedback) ActorName() string {
	switch {
	case f.SenderUser != nil:
		return f.SenderUser.DisplayName()
	case f.SenderStaff != nil:
		return f.SenderStaff.DisplayName()
	default:
		return ""
	}
}
