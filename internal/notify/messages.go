package notify

import (
	"fmt"

	"campusdesk/internal/model"
)

// StatusChanged tells the owning student that staff moved their issue.
func StatusChanged(issue *model.Issue, student *model.User, staff *model.Staff) Message {
	who := "A staff member"
	if staff != nil {
		who = staff.DisplayName()
	}
	return Message{
		To:      student.Email,
		Subject: fmt.Sprintf("Issue #%d is now %s", issue.ID, issue.Status),
		Body: fmt.Sprintf("Hello %s,\n\n%s changed the status of your issue %q to %s.\n",
			student.FirstName, who, issue.Title, issue.Status),
	}
}

// FeedbackPosted tells the owning student that a lecturer reviewed their project.
func FeedbackPosted(project *model.Project, student *model.User, feedback *model.Feedback) Message {
	return Message{
		To:      student.Email,
		Subject: fmt.Sprintf("New feedback on project %s", project.RegistrationNumber),
		Body: fmt.Sprintf("Hello %s,\n\n%s left feedback on your project:\n\n%s\n",
			student.FirstName, feedback.ActorName(), feedback.Message),
	}
}
