package repository

import (
	"context"

	"gorm.io/gorm"

	"campusdesk/internal/model"
)

// AnnouncementRepository defines public announcement persistence operations.
type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *model.PublicIssue) error
	ListLatest(ctx context.Context, limit int) ([]model.PublicIssue, error)
}

type announcementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository creates a new announcement repository.
func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

// Create creates a new announcement.
func (r *announcementRepository) Create(ctx context.Context, announcement *model.PublicIssue) error {
	return r.db.WithContext(ctx).Omit("User").Create(announcement).Error
}

// ListLatest lists the newest announcements with their authors.
func (r *announcementRepository) ListLatest(ctx context.Context, limit int) ([]model.PublicIssue, error) {
	var announcements []model.PublicIssue
	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&announcements).Error; err != nil {
		return nil, err
	}
	return announcements, nil
}
