package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campusdesk/internal/access"
	"campusdesk/internal/cache"
	apperrors "campusdesk/internal/errors"
	"campusdesk/internal/model"
	"campusdesk/internal/repository"
)

const (
	// MaxAnnouncementFeed caps how many announcements a single listing may return.
	MaxAnnouncementFeed = 50

	announcementFeedKey = "announcements:feed"
	announcementFeedTTL = 5 * time.Minute
)

// CreateAnnouncementInput is a new public announcement.
type CreateAnnouncementInput struct {
	Title       string
	Content     string
	IssueType   string
	Attachments []string
	IsAnonymous bool
}

// Announcement is the public view of a PublicIssue. Author is empty when the poster
// asked to stay anonymous.
type Announcement struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	IssueType   string    `json:"issuetype"`
	Attachments []string  `json:"attachments"`
	IsAnonymous bool      `json:"isAnonymous"`
	Author      string    `json:"author,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AnnouncementService manages the public announcement board.
type AnnouncementService interface {
	Create(ctx context.Context, caller access.Identity, in CreateAnnouncementInput) (*Announcement, error)
	List(ctx context.Context, limit int) ([]Announcement, error)
}

type announcementService struct {
	repo        repository.AnnouncementRepository
	cache       *cache.Client
	defaultSize int
}

// NewAnnouncementService creates a new announcement service. defaultSize is the
// listing size used when the caller gives none.
func NewAnnouncementService(repo repository.AnnouncementRepository, cache *cache.Client, defaultSize int) AnnouncementService {
	if defaultSize <= 0 || defaultSize > MaxAnnouncementFeed {
		defaultSize = 5
	}
	return &announcementService{repo: repo, cache: cache, defaultSize: defaultSize}
}

func (s *announcementService) Create(ctx context.Context, caller access.Identity, in CreateAnnouncementInput) (*Announcement, error) {
	if err := access.RequireUser(caller, "post announcements"); err != nil {
		return nil, err
	}

	announcement := &model.PublicIssue{
		Title:       strings.TrimSpace(in.Title),
		Content:     strings.TrimSpace(in.Content),
		IssueType:   strings.TrimSpace(in.IssueType),
		IsAnonymous: in.IsAnonymous,
		UserID:      caller.UserID(),
	}
	if announcement.Title == "" || announcement.Content == "" || announcement.IssueType == "" {
		return nil, apperrors.Invalid("title, content and issuetype are required")
	}
	attachments, err := normalizeURLs(in.Attachments)
	if err != nil {
		return nil, err
	}
	announcement.Attachments = attachments

	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, fmt.Errorf("create announcement: %w", err)
	}
	announcement.User = caller.User

	_ = s.cache.Delete(ctx, announcementFeedKey)

	view := toAnnouncement(announcement)
	return &view, nil
}

// List returns the newest announcements, at most limit of them. limit 0 selects the
// configured default.
func (s *announcementService) List(ctx context.Context, limit int) ([]Announcement, error) {
	switch {
	case limit == 0:
		limit = s.defaultSize
	case limit < 0 || limit > MaxAnnouncementFeed:
		return nil, apperrors.Invalid("limit must be between 1 and %d", MaxAnnouncementFeed)
	}

	var feed []Announcement
	if !s.cache.GetJSON(ctx, announcementFeedKey, &feed) {
		rows, err := s.repo.ListLatest(ctx, MaxAnnouncementFeed)
		if err != nil {
			return nil, fmt.Errorf("list announcements: %w", err)
		}
		feed = make([]Announcement, 0, len(rows))
		for i := range rows {
			feed = append(feed, toAnnouncement(&rows[i]))
		}
		s.cache.SetJSON(ctx, announcementFeedKey, feed, announcementFeedTTL)
	}

	if len(feed) > limit {
		feed = feed[:limit]
	}
	return feed, nil
}

// toAnnouncement builds the public view. The author is dropped here, before the
// view is cached or returned, whenever the announcement is anonymous.
func toAnnouncement(p *model.PublicIssue) Announcement {
	a := Announcement{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		IssueType:   p.IssueType,
		Attachments: []string(p.Attachments),
		IsAnonymous: p.IsAnonymous,
		CreatedAt:   p.CreatedAt,
	}
	if a.Attachments == nil {
		a.Attachments = []string{}
	}
	if !p.IsAnonymous && p.User != nil {
		a.Author = p.User.DisplayName()
	}
	return a
}
