package model

import "time"

// Project is a student's submitted project document. Name and registration number are
// captured as typed on submission, not read from the User record.
type Project struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	StudentID          uint      `json:"studentId" gorm:"not null;index"`
	FirstName          string    `json:"firstName" gorm:"size:255;not null"`
	LastName           string    `json:"lastName" gorm:"size:255;not null"`
	RegistrationNumber string    `json:"registrationNumber" gorm:"size:100;not null;index"`
	FileURL            string    `json:"fileUrl" gorm:"size:1024;not null"`
	ProjectURL         *string   `json:"projecturl,omitempty" gorm:"column:project_url;size:1024"`
	CreatedAt          time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt          time.Time `json:"updatedAt"`

	// Relations
	Student   *User      `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Feedbacks []Feedback `json:"feedbacks" gorm:"foreignKey:ProjectID"`
}
