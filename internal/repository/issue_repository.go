package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"campusdesk/internal/model"
)

// IssueFilter is the closed set of listing predicates. Zero values mean "no restriction".
type IssueFilter struct {
	StudentID   uint
	Department  string
	Status      model.IssueStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// IssueRepository defines issue and comment persistence operations.
type IssueRepository interface {
	Create(ctx context.Context, issue *model.Issue) error
	FindByID(ctx context.Context, id uint) (*model.Issue, error)
	FindByIDWithThread(ctx context.Context, id uint) (*model.Issue, error)
	List(ctx context.Context, filter IssueFilter) ([]model.Issue, error)
	UpdateStatus(ctx context.Context, id uint, status model.IssueStatus, staffID uint) error

	CreateComment(ctx context.Context, comment *model.Comment) error
	FindCommentByID(ctx context.Context, id uint) (*model.Comment, error)
	UpdateCommentMessage(ctx context.Context, id uint, message string) error

	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo IssueRepository) error) error
}

type issueRepository struct {
	db *gorm.DB
}

// NewIssueRepository creates a new issue repository.
func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &issueRepository{db: db}
}

// Create creates a new issue.
func (r *issueRepository) Create(ctx context.Context, issue *model.Issue) error {
	return r.db.WithContext(ctx).Create(issue).Error
}

// FindByID finds an issue by ID without relations.
func (r *issueRepository) FindByID(ctx context.Context, id uint) (*model.Issue, error) {
	var issue model.Issue
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&issue).Error; err != nil {
		return nil, err
	}
	return &issue, nil
}

// FindByIDWithThread finds an issue with its owner, assignee and comment thread.
func (r *issueRepository) FindByIDWithThread(ctx context.Context, id uint) (*model.Issue, error) {
	var issue model.Issue
	if err := withThread(r.db.WithContext(ctx)).Where("id = ?", id).First(&issue).Error; err != nil {
		return nil, err
	}
	return &issue, nil
}

// List returns matching issues newest first, each with its comment thread oldest first.
func (r *issueRepository) List(ctx context.Context, filter IssueFilter) ([]model.Issue, error) {
	query := withThread(r.db.WithContext(ctx).Model(&model.Issue{}))

	if filter.StudentID != 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var issues []model.Issue
	if err := query.Order("created_at DESC").Order("id DESC").Find(&issues).Error; err != nil {
		return nil, err
	}
	return issues, nil
}

// UpdateStatus sets the status and the assigned staff member in a single write.
func (r *issueRepository) UpdateStatus(ctx context.Context, id uint, status model.IssueStatus, staffID uint) error {
	res := r.db.WithContext(ctx).Model(&model.Issue{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "staff_id": staffID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateComment appends a comment to an issue thread.
func (r *issueRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Omit("User", "Staff").Create(comment).Error
}

// FindCommentByID finds a comment by ID.
func (r *issueRepository) FindCommentByID(ctx context.Context, id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateCommentMessage replaces a comment's message.
func (r *issueRepository) UpdateCommentMessage(ctx context.Context, id uint, message string) error {
	res := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", id).
		Update("message", message)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// WithTransaction executes a function within a database transaction.
func (r *issueRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo IssueRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &issueRepository{db: tx}
		return fn(ctx, txRepo)
	})
}

func withThread(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Student").
		Preload("Staff").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Preload("Comments.User").
		Preload("Comments.Staff")
}
