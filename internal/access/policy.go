package access

import (
	"strings"

	apperrors "campusdesk/internal/errors"
	"campusdesk/internal/model"
)

// RequireResolved fails when the caller has not completed onboarding.
func RequireResolved(id Identity) error {
	if !id.Resolved() {
		return apperrors.ErrProfileNotFound
	}
	return nil
}

// RequireUser fails unless the caller is backed by a User record. Staff never own
// issues, projects or announcements.
func RequireUser(id Identity, action string) error {
	if err := RequireResolved(id); err != nil {
		return err
	}
	if !id.IsUser() {
		return apperrors.Forbidden("only students can " + action)
	}
	return nil
}

// RequireAdmin fails unless the caller holds the admin role.
func RequireAdmin(id Identity) error {
	if err := RequireResolved(id); err != nil {
		return err
	}
	if !id.IsAdmin() {
		return apperrors.Forbidden("only admins can perform this action")
	}
	return nil
}

// OwnerScope returns the student id listings must be restricted to, or 0 when the
// caller sees every owner's records.
func OwnerScope(id Identity) uint {
	if id.Privileged() {
		return 0
	}
	return id.UserID()
}

// CanSeeIssue reports whether the caller may read the issue.
func CanSeeIssue(id Identity, issue *model.Issue) bool {
	if !id.Resolved() {
		return false
	}
	if id.Privileged() {
		return true
	}
	return issue.StudentID == id.UserID()
}

// ParseStatus validates a requested status value.
func ParseStatus(raw string) (model.IssueStatus, error) {
	status := model.IssueStatus(strings.TrimSpace(raw))
	if !status.Valid() {
		return "", apperrors.Invalid("status %q must be one of pending, reviewing, resolved", raw)
	}
	return status, nil
}

// FilterStatus interprets a status listing filter. Unknown values mean "no filter".
func FilterStatus(raw string) (model.IssueStatus, bool) {
	status := model.IssueStatus(strings.TrimSpace(raw))
	if !status.Valid() {
		return "", false
	}
	return status, true
}

// AuthorizeStatusChange allows only staff to move an issue through its lifecycle.
func AuthorizeStatusChange(id Identity) error {
	if err := RequireResolved(id); err != nil {
		return err
	}
	if !id.IsStaff() {
		return apperrors.Forbidden("only staff can change issue status")
	}
	return nil
}

// ApplyStatus moves the issue to status and stamps the acting staff member as assignee.
// Any transition between valid states is allowed; the last writer becomes the assignee.
func ApplyStatus(id Identity, issue *model.Issue, status model.IssueStatus) {
	staffID := id.StaffID()
	issue.Status = status
	issue.StaffID = &staffID
	issue.Staff = id.Staff
}

// AuthorizeComment allows any resolved caller who can see the issue to comment on it.
func AuthorizeComment(id Identity, issue *model.Issue) error {
	if err := RequireResolved(id); err != nil {
		return err
	}
	if !CanSeeIssue(id, issue) {
		return apperrors.Forbidden("you can only comment on your own issues")
	}
	return nil
}

// NewComment builds a comment authored by the caller, setting exactly one author reference.
func NewComment(id Identity, issueID uint, message string) *model.Comment {
	c := &model.Comment{Message: message, IssueID: issueID}
	if id.IsStaff() {
		staffID := id.StaffID()
		c.StaffID = &staffID
		c.Staff = id.Staff
	} else {
		userID := id.UserID()
		c.UserID = &userID
		c.User = id.User
	}
	return c
}

// AuthorizeCommentEdit allows only the comment's author to change it.
func AuthorizeCommentEdit(id Identity, c *model.Comment) error {
	if err := RequireResolved(id); err != nil {
		return err
	}
	if id.IsUser() && (c.UserID == nil || *c.UserID != id.UserID()) ||
		id.IsStaff() && (c.StaffID == nil || *c.StaffID != id.StaffID()) {
		return apperrors.Forbidden("you can only update your own comment")
	}
	return nil
}

// CanSeeProject reports whether the caller may read the project and its feedback.
func CanSeeProject(id Identity, p *model.Project) bool {
	if !id.Resolved() {
		return false
	}
	if id.Privileged() {
		return true
	}
	return p.StudentID == id.UserID()
}

// NewFeedback builds a feedback entry from the caller, deriving the sender label and
// recording the actor.
func NewFeedback(id Identity, projectID uint, message string) *model.Feedback {
	f := &model.Feedback{ProjectID: projectID, Message: message}
	if id.IsStaff() {
		staffID := id.StaffID()
		f.Sender = model.FeedbackSenderLecturer
		f.SenderStaffID = &staffID
		f.SenderStaff = id.Staff
	} else {
		userID := id.UserID()
		f.Sender = model.FeedbackSenderStudent
		f.SenderUserID = &userID
		f.SenderUser = id.User
	}
	return f
}
