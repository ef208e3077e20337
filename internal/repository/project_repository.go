package repository

import (
	"context"

	"gorm.io/gorm"

	"campusdesk/internal/model"
)

// ProjectRepository defines project and feedback persistence operations.
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, id uint) (*model.Project, error)
	// List returns projects newest first; studentID 0 lists every owner.
	List(ctx context.Context, studentID uint) ([]model.Project, error)

	CreateFeedback(ctx context.Context, feedback *model.Feedback) error
	ListFeedback(ctx context.Context, projectID uint) ([]model.Feedback, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Omit("Student", "Feedbacks").Create(project).Error
}

func (r *projectRepository) FindByID(ctx context.Context, id uint) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Preload("Student").Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, studentID uint) ([]model.Project, error) {
	query := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Feedbacks", orderedFeedback).
		Preload("Feedbacks.SenderUser").
		Preload("Feedbacks.SenderStaff")
	if studentID != 0 {
		query = query.Where("student_id = ?", studentID)
	}

	var projects []model.Project
	if err := query.Order("created_at DESC").Order("id DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) CreateFeedback(ctx context.Context, feedback *model.Feedback) error {
	return r.db.WithContext(ctx).Omit("SenderUser", "SenderStaff").Create(feedback).Error
}

func (r *projectRepository) ListFeedback(ctx context.Context, projectID uint) ([]model.Feedback, error) {
	var feedback []model.Feedback
	if err := orderedFeedback(r.db.WithContext(ctx)).
		Preload("SenderUser").
		Preload("SenderStaff").
		Where("project_id = ?", projectID).
		Find(&feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

func orderedFeedback(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}
