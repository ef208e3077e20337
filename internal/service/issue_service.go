package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusdesk/internal/access"
	"campusdesk/internal/config"
	apperrors "campusdesk/internal/errors"
	"campusdesk/internal/model"
	"campusdesk/internal/notify"
	"campusdesk/internal/repository"
)

// Sub-operations of a combined issue update, as reported in UpdateResult.
const (
	OpStatus        = "status"
	OpComment       = "comment"
	OpUpdateComment = "updateComment"
)

// CreateIssueInput is a new helpdesk ticket.
type CreateIssueInput struct {
	Title       string
	Description string
	IssueType   string
	Department  string
	Attachments []string
}

// IssueQuery holds the listing filters a caller may supply. Status values outside the
// lifecycle are ignored rather than rejected.
type IssueQuery struct {
	Department string
	Status     string
	From       *time.Time
	To         *time.Time
}

// UpdateIssueInput bundles the optional parts of a combined update.
type UpdateIssueInput struct {
	IssueID       uint
	Status        string
	Comment       string
	CommentID     uint
	UpdateComment string
}

// UpdateResult reports what a combined update did.
type UpdateResult struct {
	Issue         *model.Issue   `json:"issue,omitempty"`
	Comment       *model.Comment `json:"comment,omitempty"`
	EditedComment *model.Comment `json:"editedComment,omitempty"`
	Applied       []string       `json:"applied"`
	Ignored       []string       `json:"ignored,omitempty"`
}

// IssueService implements the issue lifecycle.
type IssueService interface {
	Create(ctx context.Context, caller access.Identity, in CreateIssueInput) (*model.Issue, error)
	List(ctx context.Context, caller access.Identity, q IssueQuery) ([]model.Issue, error)
	// Update applies a combined update. In independent mode the result is returned
	// alongside a joined error when some sub-operations failed.
	Update(ctx context.Context, caller access.Identity, in UpdateIssueInput) (*UpdateResult, error)
}

type issueService struct {
	repo     repository.IssueRepository
	notifier notify.Notifier
	mode     config.UpdateMode
}

// NewIssueService creates a new issue service.
func NewIssueService(repo repository.IssueRepository, notifier notify.Notifier, mode config.UpdateMode) IssueService {
	if mode == "" {
		mode = config.UpdateModeIndependent
	}
	return &issueService{repo: repo, notifier: notifier, mode: mode}
}

func (s *issueService) Create(ctx context.Context, caller access.Identity, in CreateIssueInput) (*model.Issue, error) {
	if err := access.RequireUser(caller, "create issues"); err != nil {
		return nil, err
	}

	issue := &model.Issue{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		IssueType:   strings.TrimSpace(in.IssueType),
		Department:  strings.TrimSpace(in.Department),
		Status:      model.IssueStatusPending,
		StudentID:   caller.UserID(),
	}
	if issue.Title == "" || issue.Description == "" || issue.Department == "" {
		return nil, apperrors.Invalid("title, description and department are required")
	}
	if issue.IssueType == "" {
		issue.IssueType = model.DefaultIssueType
	}
	attachments, err := normalizeURLs(in.Attachments)
	if err != nil {
		return nil, err
	}
	issue.Attachments = attachments

	if err := s.repo.Create(ctx, issue); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	issue.Student = caller.User
	return issue, nil
}

// List returns the issues visible to caller, newest first, each with its thread.
// Students only ever see their own issues.
func (s *issueService) List(ctx context.Context, caller access.Identity, q IssueQuery) ([]model.Issue, error) {
	if err := access.RequireResolved(caller); err != nil {
		return nil, err
	}

	filter := repository.IssueFilter{
		StudentID:  access.OwnerScope(caller),
		Department: strings.TrimSpace(q.Department),
	}
	if status, ok := access.FilterStatus(q.Status); ok {
		filter.Status = status
	}
	if q.From != nil {
		from := q.From.Local()
		filter.CreatedFrom = &from
	}
	if q.To != nil {
		to := q.To.Local()
		filter.CreatedTo = &to
	}
	if filter.CreatedFrom != nil && filter.CreatedTo != nil && filter.CreatedFrom.After(*filter.CreatedTo) {
		return nil, apperrors.Invalid("startDate must not be after endDate")
	}

	issues, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	for i := range issues {
		fillAuthors(&issues[i])
	}
	return issues, nil
}

func (s *issueService) Update(ctx context.Context, caller access.Identity, in UpdateIssueInput) (*UpdateResult, error) {
	if err := access.RequireResolved(caller); err != nil {
		return nil, err
	}
	status, err := validateUpdate(&in)
	if err != nil {
		return nil, err
	}

	if s.mode == config.UpdateModeStrict {
		return s.updateStrict(ctx, caller, in, status)
	}
	return s.updateIndependent(ctx, caller, in, status)
}

// validateUpdate runs every input check that must pass before anything is written.
// It trims both messages in place; a message that was sent but is blank is rejected.
func validateUpdate(in *UpdateIssueInput) (model.IssueStatus, error) {
	if in.Comment != "" && strings.TrimSpace(in.Comment) == "" {
		return "", apperrors.Invalid("comment must not be blank")
	}
	if in.UpdateComment != "" && strings.TrimSpace(in.UpdateComment) == "" {
		return "", apperrors.Invalid("updateComment must not be blank")
	}
	in.Comment = strings.TrimSpace(in.Comment)
	in.UpdateComment = strings.TrimSpace(in.UpdateComment)

	if in.IssueID == 0 && in.CommentID == 0 {
		return "", apperrors.Invalid("issueId or commentId is required")
	}
	if (in.CommentID != 0) != (in.UpdateComment != "") {
		return "", apperrors.Invalid("commentId and updateComment must be sent together")
	}
	if in.IssueID == 0 && (in.Status != "" || in.Comment != "") {
		return "", apperrors.Invalid("issueId is required to change status or add a comment")
	}
	if in.Status == "" {
		return "", nil
	}
	return access.ParseStatus(in.Status)
}

// updateIndependent authorises and applies each sub-operation on its own. A status
// change from a non-staff caller is ignored; other failures are collected.
func (s *issueService) updateIndependent(ctx context.Context, caller access.Identity, in UpdateIssueInput, status model.IssueStatus) (*UpdateResult, error) {
	result := &UpdateResult{Applied: []string{}}
	var errs []error

	var issue *model.Issue
	if in.IssueID != 0 {
		found, err := s.repo.FindByID(ctx, in.IssueID)
		if err != nil {
			errs = append(errs, apperrors.FromStore(err, "issue"))
		} else {
			issue = found
		}
	}

	statusChanged := false
	if issue != nil && status != "" {
		if err := access.AuthorizeStatusChange(caller); err != nil {
			result.Ignored = append(result.Ignored, OpStatus)
		} else if err := s.repo.UpdateStatus(ctx, issue.ID, status, caller.StaffID()); err != nil {
			errs = append(errs, apperrors.FromStore(err, "issue"))
		} else {
			statusChanged = true
			result.Applied = append(result.Applied, OpStatus)
		}
	}

	if issue != nil && in.Comment != "" {
		comment, err := s.addComment(ctx, s.repo, caller, issue, in.Comment)
		if err != nil {
			errs = append(errs, err)
		} else {
			result.Comment = comment
			result.Applied = append(result.Applied, OpComment)
		}
	}

	if in.CommentID != 0 {
		edited, err := s.editComment(ctx, s.repo, caller, in.CommentID, in.UpdateComment)
		if err != nil {
			errs = append(errs, err)
		} else {
			result.EditedComment = edited
			result.Applied = append(result.Applied, OpUpdateComment)
		}
	}

	if err := s.finish(ctx, caller, result, issue, statusChanged); err != nil {
		errs = append(errs, err)
	}
	return result, errors.Join(errs...)
}

// updateStrict authorises every sub-operation before writing and commits all writes in
// one transaction. Any failure leaves the store untouched.
func (s *issueService) updateStrict(ctx context.Context, caller access.Identity, in UpdateIssueInput, status model.IssueStatus) (*UpdateResult, error) {
	if status != "" {
		if err := access.AuthorizeStatusChange(caller); err != nil {
			return nil, err
		}
	}

	result := &UpdateResult{Applied: []string{}}
	var issue *model.Issue
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.IssueRepository) error {
		if in.IssueID != 0 {
			found, err := repo.FindByID(ctx, in.IssueID)
			if err != nil {
				return apperrors.FromStore(err, "issue")
			}
			issue = found
		}
		if in.Comment != "" {
			if err := access.AuthorizeComment(caller, issue); err != nil {
				return err
			}
		}
		var target *model.Comment
		if in.CommentID != 0 {
			found, err := repo.FindCommentByID(ctx, in.CommentID)
			if err != nil {
				return apperrors.FromStore(err, "comment")
			}
			if err := access.AuthorizeCommentEdit(caller, found); err != nil {
				return err
			}
			target = found
		}

		if status != "" {
			if err := repo.UpdateStatus(ctx, issue.ID, status, caller.StaffID()); err != nil {
				return apperrors.FromStore(err, "issue")
			}
			result.Applied = append(result.Applied, OpStatus)
		}
		if in.Comment != "" {
			comment, err := s.addComment(ctx, repo, caller, issue, in.Comment)
			if err != nil {
				return err
			}
			result.Comment = comment
			result.Applied = append(result.Applied, OpComment)
		}
		if target != nil {
			if err := repo.UpdateCommentMessage(ctx, target.ID, in.UpdateComment); err != nil {
				return apperrors.FromStore(err, "comment")
			}
			target.Message = in.UpdateComment
			target.Author = caller.DisplayName()
			result.EditedComment = target
			result.Applied = append(result.Applied, OpUpdateComment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.finish(ctx, caller, result, issue, status != ""); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *issueService) addComment(ctx context.Context, repo repository.IssueRepository, caller access.Identity, issue *model.Issue, message string) (*model.Comment, error) {
	if err := access.AuthorizeComment(caller, issue); err != nil {
		return nil, err
	}
	comment := access.NewComment(caller, issue.ID, message)
	if err := repo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	comment.Author = caller.DisplayName()
	return comment, nil
}

func (s *issueService) editComment(ctx context.Context, repo repository.IssueRepository, caller access.Identity, commentID uint, message string) (*model.Comment, error) {
	comment, err := repo.FindCommentByID(ctx, commentID)
	if err != nil {
		return nil, apperrors.FromStore(err, "comment")
	}
	if err := access.AuthorizeCommentEdit(caller, comment); err != nil {
		return nil, err
	}
	if err := repo.UpdateCommentMessage(ctx, comment.ID, message); err != nil {
		return nil, apperrors.FromStore(err, "comment")
	}
	comment.Message = message
	comment.Author = caller.DisplayName()
	return comment, nil
}

// finish reloads the issue thread for the response and notifies the owner of a
// committed status change. Issues the caller cannot see are left out of the result.
func (s *issueService) finish(ctx context.Context, caller access.Identity, result *UpdateResult, issue *model.Issue, statusChanged bool) error {
	if issue == nil || !access.CanSeeIssue(caller, issue) {
		return nil
	}
	reloaded, err := s.repo.FindByIDWithThread(ctx, issue.ID)
	if err != nil {
		return fmt.Errorf("reload issue: %w", err)
	}
	fillAuthors(reloaded)
	result.Issue = reloaded

	if statusChanged && reloaded.Student != nil {
		s.notifier.Notify(ctx, notify.StatusChanged(reloaded, reloaded.Student, reloaded.Staff))
	}
	return nil
}

func fillAuthors(issue *model.Issue) {
	for i := range issue.Comments {
		issue.Comments[i].Author = issue.Comments[i].AuthorName()
	}
}

// normalizeURLs rejects blank entries and never returns nil, so stored attachment
// lists are always JSON arrays.
func normalizeURLs(urls []string) ([]string, error) {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			return nil, apperrors.Invalid("attachments must not contain empty URLs")
		}
		out = append(out, u)
	}
	return out, nil
}
