package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campusdesk/internal/access"
	"campusdesk/internal/config"
	apperrors "campusdesk/internal/errors"
	"campusdesk/internal/model"
	"campusdesk/internal/repository"
)

type issueFixture struct {
	db       *gorm.DB
	repo     repository.IssueRepository
	notifier *recordingNotifier
	alice    access.Identity
	bob      access.Identity
	admin    access.Identity
	staff    access.Identity
	other    access.Identity
}

func newIssueFixture(t *testing.T) *issueFixture {
	gdb := newTestDB(t)
	return &issueFixture{
		db:       gdb,
		repo:     repository.NewIssueRepository(gdb),
		notifier: &recordingNotifier{},
		alice:    seedStudent(t, gdb, "user_alice", "Alice"),
		bob:      seedStudent(t, gdb, "user_bob", "Bob"),
		admin:    seedUser(t, gdb, "user_admin", "Root", "admin@uni.example", model.UserRoleAdmin),
		staff:    seedStaff(t, gdb, "user_lee", "Lee", model.StaffRoleStaff),
		other:    seedStaff(t, gdb, "user_kim", "Kim", model.StaffRoleStaff),
	}
}

func (f *issueFixture) service(mode config.UpdateMode) IssueService {
	return NewIssueService(f.repo, f.notifier, mode)
}

func (f *issueFixture) createIssue(t *testing.T, owner access.Identity, title, dept string) *model.Issue {
	t.Helper()
	issue, err := f.service(config.UpdateModeIndependent).Create(context.Background(), owner, CreateIssueInput{
		Title: title, Description: "details", Department: dept,
	})
	require.NoError(t, err)
	return issue
}

func (f *issueFixture) reload(t *testing.T, id uint) *model.Issue {
	t.Helper()
	issue, err := f.repo.FindByIDWithThread(context.Background(), id)
	require.NoError(t, err)
	return issue
}

func TestIssueService_Create(t *testing.T) {
	f := newIssueFixture(t)
	svc := f.service(config.UpdateModeIndependent)
	ctx := context.Background()

	issue, err := svc.Create(ctx, f.alice, CreateIssueInput{Title: " Printer broken ", Description: "Paper jam", Department: "IT"})
	require.NoError(t, err)
	assert.Equal(t, "Printer broken", issue.Title)
	assert.Equal(t, model.DefaultIssueType, issue.IssueType)
	assert.Equal(t, model.IssueStatusPending, issue.Status)
	assert.Equal(t, f.alice.UserID(), issue.StudentID)
	assert.Nil(t, issue.StaffID)
	assert.NotNil(t, issue.Attachments)
	assert.Empty(t, issue.Attachments)

	stored := f.reload(t, issue.ID)
	assert.Equal(t, []string{}, []string(stored.Attachments))

	withFiles, err := svc.Create(ctx, f.alice, CreateIssueInput{
		Title: "Leak", Description: "Roof", Department: "Estates", IssueType: "urgent",
		Attachments: []string{"https://files.example/a.png", "https://files.example/b.pdf"},
	})
	require.NoError(t, err)
	assert.Equal(t, "urgent", withFiles.IssueType)
	assert.Equal(t, []string{"https://files.example/a.png", "https://files.example/b.pdf"}, []string(f.reload(t, withFiles.ID).Attachments))

	tests := []struct {
		name    string
		caller  access.Identity
		input   CreateIssueInput
		wantErr error
	}{
		{"staff cannot raise issues", f.staff, CreateIssueInput{Title: "t", Description: "d", Department: "IT"}, apperrors.ErrForbidden},
		{"no profile", access.Anonymous("user_new"), CreateIssueInput{Title: "t", Description: "d", Department: "IT"}, apperrors.ErrNotFound},
		{"missing title", f.alice, CreateIssueInput{Description: "d", Department: "IT"}, apperrors.ErrInvalidInput},
		{"missing department", f.alice, CreateIssueInput{Title: "t", Description: "d"}, apperrors.ErrInvalidInput},
		{"blank attachment", f.alice, CreateIssueInput{Title: "t", Description: "d", Department: "IT", Attachments: []string{" "}}, apperrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.caller, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIssueService_ListVisibility(t *testing.T) {
	f := newIssueFixture(t)
	svc := f.service(config.UpdateModeIndependent)
	ctx := context.Background()

	a1 := f.createIssue(t, f.alice, "Printer broken", "IT")
	b1 := f.createIssue(t, f.bob, "Heating", "Estates")
	a2 := f.createIssue(t, f.alice, "Wifi", "IT")

	ids := func(issues []model.Issue) []uint {
		out := make([]uint, len(issues))
		for i := range issues {
			out[i] = issues[i].ID
		}
		return out
	}

	asAlice, err := svc.List(ctx, f.alice, IssueQuery{})
	require.NoError(t, err)
	assert.Equal(t, []uint{a2.ID, a1.ID}, ids(asAlice))

	asBob, err := svc.List(ctx, f.bob, IssueQuery{})
	require.NoError(t, err)
	assert.Equal(t, []uint{b1.ID}, ids(asBob))

	for _, caller := range []access.Identity{f.staff, f.admin} {
		all, err := svc.List(ctx, caller, IssueQuery{})
		require.NoError(t, err)
		assert.Equal(t, []uint{a2.ID, b1.ID, a1.ID}, ids(all))
	}

	// Ownership composes with explicit filters.
	bobIT, err := svc.List(ctx, f.bob, IssueQuery{Department: "IT"})
	require.NoError(t, err)
	assert.Empty(t, bobIT)

	_, err = svc.List(ctx, access.Anonymous("user_new"), IssueQuery{})
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
}

func TestIssueService_ListFilters(t *testing.T) {
	f := newIssueFixture(t)
	svc := f.service(config.UpdateModeIndependent)
	ctx := context.Background()

	printer := f.createIssue(t, f.alice, "Printer broken", "IT")
	heating := f.createIssue(t, f.bob, "Heating", "Estates")
	require.NoError(t, f.repo.UpdateStatus(ctx, heating.ID, model.IssueStatusResolved, f.staff.StaffID()))

	now := time.Now()
	hourAgo := now.Add(-time.Hour)
	inAnHour := now.Add(time.Hour)
	yesterday := now.Add(-24 * time.Hour)

	tests := []struct {
		name  string
		query IssueQuery
		want  []uint
	}{
		{"department", IssueQuery{Department: "IT"}, []uint{printer.ID}},
		{"status", IssueQuery{Status: "resolved"}, []uint{heating.ID}},
		{"unknown status is ignored", IssueQuery{Status: "archived"}, []uint{heating.ID, printer.ID}},
		{"range covering now", IssueQuery{From: &hourAgo, To: &inAnHour}, []uint{heating.ID, printer.ID}},
		{"range in the past", IssueQuery{From: &yesterday, To: &hourAgo}, nil},
		{"open-ended start in the future", IssueQuery{From: &inAnHour}, nil},
		{"status and department", IssueQuery{Status: "pending", Department: "Estates"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues, err := svc.List(ctx, f.staff, tt.query)
			require.NoError(t, err)
			var got []uint
			for _, issue := range issues {
				got = append(got, issue.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := svc.List(ctx, f.staff, IssueQuery{From: &inAnHour, To: &hourAgo})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestIssueService_Scenario(t *testing.T) {
	for _, mode := range []config.UpdateMode{config.UpdateModeIndependent, config.UpdateModeStrict} {
		t.Run(string(mode), func(t *testing.T) {
			f := newIssueFixture(t)
			svc := f.service(mode)
			ctx := context.Background()

			issue, err := svc.Create(ctx, f.alice, CreateIssueInput{Title: "Printer broken", Description: "Jammed", Department: "IT"})
			require.NoError(t, err)

			res, err := svc.Update(ctx, f.staff, UpdateIssueInput{IssueID: issue.ID, Status: "reviewing"})
			require.NoError(t, err)
			assert.Equal(t, []string{OpStatus}, res.Applied)

			res, err = svc.Update(ctx, f.alice, UpdateIssueInput{IssueID: issue.ID, Comment: "still broken"})
			require.NoError(t, err)
			require.NotNil(t, res.Comment)
			assert.Equal(t, "Alice Test", res.Comment.Author)

			issues, err := svc.List(ctx, f.alice, IssueQuery{})
			require.NoError(t, err)
			require.Len(t, issues, 1)
			got := issues[0]
			assert.Equal(t, model.IssueStatusReviewing, got.Status)
			require.NotNil(t, got.StaffID)
			assert.Equal(t, f.staff.StaffID(), *got.StaffID)
			require.NotNil(t, got.Staff)
			assert.Equal(t, "Lee", got.Staff.FirstName)
			require.Len(t, got.Comments, 1)
			assert.Equal(t, "still broken", got.Comments[0].Message)
			assert.Equal(t, "Alice Test", got.Comments[0].Author)

			msgs := f.notifier.messages()
			require.Len(t, msgs, 1)
			assert.Equal(t, "user_alice@uni.example", msgs[0].To)
		})
	}
}

func TestIssueService_LastStaffWriterIsAssigned(t *testing.T) {
	f := newIssueFixture(t)
	svc := f.service(config.UpdateModeIndependent)
	ctx := context.Background()
	issue := f.createIssue(t, f.alice, "Printer broken", "IT")

	_, err := svc.Update(ctx, f.staff, UpdateIssueInput{IssueID: issue.ID, Status: "reviewing"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, f.other, UpdateIssueInput{IssueID: issue.ID, Status: "resolved"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, f.staff, UpdateIssueInput{IssueID: issue.ID, Status: "pending"})
	require.NoError(t, err)

	stored := f.reload(t, issue.ID)
	assert.Equal(t, model.IssueStatusPending, stored.Status)
	assert.Equal(t, f.staff.StaffID(), *stored.StaffID)
}

func TestIssueService_ValidationPrecedesWrites(t *testing.T) {
	for _, mode := range []config.UpdateMode{config.UpdateModeIndependent, config.UpdateModeStrict} {
		t.Run(string(mode), func(t *testing.T) {
			f := newIssueFixture(t)
			svc := f.service(mode)
			ctx := context.Background()
			issue := f.createIssue(t, f.alice, "Printer broken", "IT")

			tests := []struct {
				name   string
				caller access.Identity
				input  UpdateIssueInput
			}{
				{"archived status with comment", f.staff, UpdateIssueInput{IssueID: issue.ID, Status: "archived", Comment: "closing"}},
				{"archived status from a student", f.alice, UpdateIssueInput{IssueID: issue.ID, Status: "archived", Comment: "please"}},
				{"no target", f.alice, UpdateIssueInput{Comment: "orphan"}},
				{"commentId without message", f.alice, UpdateIssueInput{IssueID: issue.ID, CommentID: 1, Comment: "x"}},
				{"updateComment without commentId", f.alice, UpdateIssueInput{IssueID: issue.ID, UpdateComment: "x", Comment: "y"}},
				{"status without issue", f.staff, UpdateIssueInput{CommentID: 1, UpdateComment: "x", Status: "resolved"}},
				{"blank comment", f.alice, UpdateIssueInput{IssueID: issue.ID, Comment: "   "}},
				{"blank comment with status", f.staff, UpdateIssueInput{IssueID: issue.ID, Status: "resolved", Comment: "\t\n"}},
				{"blank comment edit", f.alice, UpdateIssueInput{CommentID: 1, UpdateComment: "  "}},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					_, err := svc.Update(ctx, tt.caller, tt.input)
					assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				})
			}

			stored := f.reload(t, issue.ID)
			assert.Equal(t, model.IssueStatusPending, stored.Status)
			assert.Empty(t, stored.Comments)
		})
	}
}

func TestIssueService_IndependentMode(t *testing.T) {
	f := newIssueFixture(t)
	svc := f.service(config.UpdateModeIndependent)
	ctx := context.Background()
	issue := f.createIssue(t, f.alice, "Printer broken", "IT")
	bobs := f.createIssue(t, f.bob, "Heating", "Estates")

	t.Run("student status request is ignored, comment applies", func(t *testing.T) {
		res, err := svc.Update(ctx, f.alice, UpdateIssueInput{IssueID: issue.ID, Status: "resolved", Comment: "fixed it myself"})
		require.NoError(t, err)
		assert.Equal(t, []string{OpComment}, res.Applied)
		assert.Equal(t, []string{OpStatus}, res.Ignored)

		stored := f.reload(t, issue.ID)
		assert.Equal(t, model.IssueStatusPending, stored.Status)
		assert.Nil(t, stored.StaffID)
		require.Len(t, stored.Comments, 1)
		assert.Equal(t, "fixed it myself", stored.Comments[0].Message)
	})

	t.Run("admin user cannot move status either", func(t *testing.T) {
		res, err := svc.Update(ctx, f.admin, UpdateIssueInput{IssueID: issue.ID, Status: "resolved"})
		require.NoError(t, err)
		assert.Empty(t, res.Applied)
		assert.Equal(t, []string{OpStatus}, res.Ignored)
		assert.Equal(t, model.IssueStatusPending, f.reload(t, issue.ID).Status)
	})

	t.Run("failed edit does not block a valid comment", func(t *testing.T) {
		staffComment, err := svc.Update(ctx, f.staff, UpdateIssueInput{IssueID: issue.ID, Comment: "looking into it"})
		require.NoError(t, err)

		res, err := svc.Update(ctx, f.alice, UpdateIssueInput{
			IssueID: issue.ID, Comment: "thanks", CommentID: staffComment.Comment.ID, UpdateComment: "hijacked",
		})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		require.NotNil(t, res)
		assert.Equal(t, []string{OpComment}, res.Applied)
		require.NotNil(t, res.Issue)

		var stored model.Comment
		require.NoError(t, f.db.First(&stored, staffComment.Comment.ID).Error)
		assert.Equal(t, "looking into it", stored.Message)
	})

	t.Run("student cannot comment on someone else's issue", func(t *testing.T) {
		res, err := svc.Update(ctx, f.alice, UpdateIssueInput{IssueID: bobs.ID, Comment: "me too"})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.Nil(t, res.Issue)
		assert.Empty(t, f.reload(t, bobs.ID).Comments)
	})

	t.Run("missing issue", func(t *testing.T) {
		_, err := svc.Update(ctx, f.staff, UpdateIssueInput{IssueID: 9999, Status: "resolved", Comment: "x"})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("missing comment", func(t *testing.T) {
		_, err := svc.Update(ctx, f.alice, UpdateIssueInput{CommentID: 9999, UpdateComment: "x"})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestIssueService_CommentEditAuthorship(t *testing.T) {
	f := newIssueFixture(t)
	svc := f.service(config.UpdateModeIndependent)
	ctx := context.Background()
	issue := f.createIssue(t, f.alice, "Printer broken", "IT")

	byAlice, err := svc.Update(ctx, f.alice, UpdateIssueInput{IssueID: issue.ID, Comment: "original"})
	require.NoError(t, err)
	byStaff, err := svc.Update(ctx, f.staff, UpdateIssueInput{IssueID: issue.ID, Comment: "staff note"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		caller    access.Identity
		commentID uint
		wantErr   error
		wantText  string
	}{
		{"other user", f.bob, byAlice.Comment.ID, apperrors.ErrForbidden, "original"},
		{"staff on a user's comment", f.staff, byAlice.Comment.ID, apperrors.ErrForbidden, "original"},
		{"other staff", f.other, byStaff.Comment.ID, apperrors.ErrForbidden, "staff note"},
		{"user on staff comment", f.alice, byStaff.Comment.ID, apperrors.ErrForbidden, "staff note"},
		{"author edits", f.alice, byAlice.Comment.ID, nil, "edited"},
		{"staff author edits", f.staff, byStaff.Comment.ID, nil, "edited"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Update(ctx, tt.caller, UpdateIssueInput{CommentID: tt.commentID, UpdateComment: "edited"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "edited", res.EditedComment.Message)
			}

			var stored model.Comment
			require.NoError(t, f.db.First(&stored, tt.commentID).Error)
			assert.Equal(t, tt.wantText, stored.Message)
		})
	}
}

func TestIssueService_StrictMode(t *testing.T) {
	f := newIssueFixture(t)
	svc := f.service(config.UpdateModeStrict)
	ctx := context.Background()
	issue := f.createIssue(t, f.alice, "Printer broken", "IT")

	t.Run("student status request rejects the whole update", func(t *testing.T) {
		_, err := svc.Update(ctx, f.alice, UpdateIssueInput{IssueID: issue.ID, Status: "resolved", Comment: "fixed"})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)

		stored := f.reload(t, issue.ID)
		assert.Equal(t, model.IssueStatusPending, stored.Status)
		assert.Empty(t, stored.Comments)
	})

	t.Run("unauthorised edit rolls back status and comment", func(t *testing.T) {
		res, err := svc.Update(ctx, f.alice, UpdateIssueInput{IssueID: issue.ID, Comment: "mine"})
		require.NoError(t, err)

		_, err = svc.Update(ctx, f.staff, UpdateIssueInput{
			IssueID: issue.ID, Status: "reviewing", Comment: "on it", CommentID: res.Comment.ID, UpdateComment: "hijacked",
		})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)

		stored := f.reload(t, issue.ID)
		assert.Equal(t, model.IssueStatusPending, stored.Status)
		assert.Nil(t, stored.StaffID)
		require.Len(t, stored.Comments, 1)
		assert.Equal(t, "mine", stored.Comments[0].Message)
		assert.Empty(t, f.notifier.messages())
	})

	t.Run("staff update commits everything", func(t *testing.T) {
		res, err := svc.Update(ctx, f.staff, UpdateIssueInput{IssueID: issue.ID, Status: "resolved", Comment: "replaced toner"})
		require.NoError(t, err)
		assert.Equal(t, []string{OpStatus, OpComment}, res.Applied)
		require.NotNil(t, res.Issue)
		assert.Equal(t, model.IssueStatusResolved, res.Issue.Status)
		assert.Len(t, res.Issue.Comments, 2)
		assert.Len(t, f.notifier.messages(), 1)
	})
}
