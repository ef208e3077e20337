package service

import (
	"context"
	"fmt"
	"strings"

	"campusdesk/internal/access"
	apperrors "campusdesk/internal/errors"
	"campusdesk/internal/model"
	"campusdesk/internal/notify"
	"campusdesk/internal/repository"
)

// CreateProjectInput is a project submission.
type CreateProjectInput struct {
	FirstName          string
	LastName           string
	RegistrationNumber string
	FileURL            string
	ProjectURL         string
}

// FeedbackInput is a message on a project review thread.
type FeedbackInput struct {
	ProjectID uint
	Message   string
}

// ProjectService manages project submissions and their feedback threads.
type ProjectService interface {
	Create(ctx context.Context, caller access.Identity, in CreateProjectInput) (*model.Project, error)
	List(ctx context.Context, caller access.Identity) ([]model.Project, error)
	AddFeedback(ctx context.Context, caller access.Identity, in FeedbackInput) (*model.Feedback, error)
	ListFeedback(ctx context.Context, caller access.Identity, projectID uint) ([]model.Feedback, error)
}

type projectService struct {
	repo     repository.ProjectRepository
	notifier notify.Notifier
}

// NewProjectService creates a new project service.
func NewProjectService(repo repository.ProjectRepository, notifier notify.Notifier) ProjectService {
	return &projectService{repo: repo, notifier: notifier}
}

func (s *projectService) Create(ctx context.Context, caller access.Identity, in CreateProjectInput) (*model.Project, error) {
	if err := access.RequireUser(caller, "submit projects"); err != nil {
		return nil, err
	}

	project := &model.Project{
		StudentID:          caller.UserID(),
		FirstName:          strings.TrimSpace(in.FirstName),
		LastName:           strings.TrimSpace(in.LastName),
		RegistrationNumber: strings.TrimSpace(in.RegistrationNumber),
		FileURL:            strings.TrimSpace(in.FileURL),
	}
	if project.FirstName == "" || project.LastName == "" || project.RegistrationNumber == "" || project.FileURL == "" {
		return nil, apperrors.Invalid("firstName, lastName, registrationNumber and fileUrl are required")
	}
	if u := strings.TrimSpace(in.ProjectURL); u != "" {
		project.ProjectURL = &u
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	project.Student = caller.User
	project.Feedbacks = []model.Feedback{}
	return project, nil
}

// List returns every project to staff and admins, and only their own to students.
func (s *projectService) List(ctx context.Context, caller access.Identity) ([]model.Project, error) {
	if err := access.RequireResolved(caller); err != nil {
		return nil, err
	}

	projects, err := s.repo.List(ctx, access.OwnerScope(caller))
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	for i := range projects {
		if projects[i].Feedbacks == nil {
			projects[i].Feedbacks = []model.Feedback{}
		}
		fillFeedbackAuthors(projects[i].Feedbacks)
	}
	return projects, nil
}

// AddFeedback posts on a project thread. The sender label comes from the caller's
// directory at write time and the caller is stored next to it.
func (s *projectService) AddFeedback(ctx context.Context, caller access.Identity, in FeedbackInput) (*model.Feedback, error) {
	if err := access.RequireResolved(caller); err != nil {
		return nil, err
	}
	message := strings.TrimSpace(in.Message)
	if in.ProjectID == 0 || message == "" {
		return nil, apperrors.Invalid("projectId and message are required")
	}

	project, err := s.visibleProject(ctx, caller, in.ProjectID)
	if err != nil {
		return nil, err
	}

	feedback := access.NewFeedback(caller, project.ID, message)
	if err := s.repo.CreateFeedback(ctx, feedback); err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	feedback.Author = feedback.ActorName()

	if feedback.Sender == model.FeedbackSenderLecturer && project.Student != nil {
		s.notifier.Notify(ctx, notify.FeedbackPosted(project, project.Student, feedback))
	}
	return feedback, nil
}

func (s *projectService) ListFeedback(ctx context.Context, caller access.Identity, projectID uint) ([]model.Feedback, error) {
	if err := access.RequireResolved(caller); err != nil {
		return nil, err
	}
	if _, err := s.visibleProject(ctx, caller, projectID); err != nil {
		return nil, err
	}

	feedback, err := s.repo.ListFeedback(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	fillFeedbackAuthors(feedback)
	return feedback, nil
}

func (s *projectService) visibleProject(ctx context.Context, caller access.Identity, id uint) (*model.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err, "project")
	}
	if !access.CanSeeProject(caller, project) {
		return nil, apperrors.Forbidden("you can only access your own projects")
	}
	return project, nil
}

func fillFeedbackAuthors(feedback []model.Feedback) {
	for i := range feedback {
		feedback[i].Author = feedback[i].ActorName()
	}
}
