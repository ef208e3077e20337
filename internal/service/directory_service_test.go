package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusdesk/internal/access"
	apperrors "campusdesk/internal/errors"
	"campusdesk/internal/model"
	"campusdesk/internal/repository"
)

func newDirectoryService(t *testing.T) (DirectoryService, repository.DirectoryRepository, *recordingInvalidator) {
	repo := repository.NewDirectoryRepository(newTestDB(t))
	inv := &recordingInvalidator{}
	return NewDirectoryService(repo, inv), repo, inv
}

func TestDirectoryService_Onboard(t *testing.T) {
	svc, repo, inv := newDirectoryService(t)
	ctx := context.Background()

	user, err := svc.Onboard(ctx, "user_1", OnboardInput{FirstName: " Ada ", LastName: "Obi", Email: "Ada@Uni.Example"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, "ada@uni.example", user.Email)
	assert.Equal(t, model.UserRoleStudent, user.Role)
	assert.Equal(t, []string{"user_1"}, inv.keys)

	identity, err := repo.FindIdentity(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, model.IdentityKindStudent, identity.Kind)

	tests := []struct {
		name    string
		clerkID string
		input   OnboardInput
		wantErr error
	}{
		{"same identity twice", "user_1", OnboardInput{FirstName: "A", LastName: "B", Email: "other@uni.example"}, apperrors.ErrConflict},
		{"email taken", "user_2", OnboardInput{FirstName: "A", LastName: "B", Email: "ada@uni.example"}, apperrors.ErrConflict},
		{"missing name", "user_3", OnboardInput{LastName: "B", Email: "x@uni.example"}, apperrors.ErrInvalidInput},
		{"no session subject", "", OnboardInput{FirstName: "A", LastName: "B", Email: "y@uni.example"}, apperrors.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Onboard(ctx, tt.clerkID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDirectoryService_OnboardRejectsStaffIdentity(t *testing.T) {
	gdb := newTestDB(t)
	seedStaff(t, gdb, "user_staff", "Lee", model.StaffRoleStaff)
	svc := NewDirectoryService(repository.NewDirectoryRepository(gdb), &recordingInvalidator{})

	_, err := svc.Onboard(context.Background(), "user_staff", OnboardInput{FirstName: "Lee", LastName: "S", Email: "new@uni.example"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDirectoryService_SearchUserByEmail(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewDirectoryService(repository.NewDirectoryRepository(gdb), &recordingInvalidator{})
	ctx := context.Background()

	admin := seedUser(t, gdb, "user_admin", "Root", "admin@uni.example", model.UserRoleAdmin)
	staffAdmin := seedStaff(t, gdb, "user_head", "Head", model.StaffRoleAdmin)
	lecturer := seedStaff(t, gdb, "user_lec", "Lec", model.StaffRoleStaff)
	student := seedStudent(t, gdb, "user_s", "Sam")

	tests := []struct {
		name    string
		caller  access.Identity
		email   string
		wantErr error
	}{
		{"admin user finds student", admin, " USER_S@uni.example ", nil},
		{"staff admin is forbidden", staffAdmin, "user_s@uni.example", apperrors.ErrForbidden},
		{"student is forbidden", student, "user_s@uni.example", apperrors.ErrForbidden},
		{"plain staff is forbidden", lecturer, "user_s@uni.example", apperrors.ErrForbidden},
		{"anonymous has no profile", access.Anonymous("user_new"), "user_s@uni.example", apperrors.ErrNotFound},
		{"unknown email", admin, "ghost@uni.example", apperrors.ErrNotFound},
		{"empty email", admin, "  ", apperrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.SearchUserByEmail(ctx, tt.caller, tt.email)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user_s", user.ClerkID)
		})
	}
}

func TestDirectoryService_PromoteToStaff(t *testing.T) {
	gdb := newTestDB(t)
	repo := repository.NewDirectoryRepository(gdb)
	inv := &recordingInvalidator{}
	svc := NewDirectoryService(repo, inv)
	ctx := context.Background()

	admin := seedUser(t, gdb, "user_admin", "Root", "admin@uni.example", model.UserRoleAdmin)
	seedStudent(t, gdb, "user_lee", "Lee")

	in := PromoteInput{ClerkID: "user_lee", FirstName: "Lee", LastName: "Chan", Email: "user_lee@uni.example", Department: "Physics"}
	staff, err := svc.PromoteToStaff(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, model.StaffRoleStaff, staff.Role)
	assert.Equal(t, "Physics", staff.Department)
	assert.Equal(t, []string{"user_lee"}, inv.keys)

	_, err = repo.FindUserByClerkID(ctx, "user_lee")
	assert.Error(t, err, "promoted user must leave the User directory")
	identity, err := repo.FindIdentity(ctx, "user_lee")
	require.NoError(t, err)
	assert.Equal(t, model.IdentityKindStaff, identity.Kind)

	// Second promotion for the same identity conflicts and leaves the staff row alone.
	again := in
	again.Department = "Chemistry"
	again.Role = model.StaffRoleAdmin
	_, err = svc.PromoteToStaff(ctx, admin, again)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	stored, err := repo.FindStaffByClerkID(ctx, "user_lee")
	require.NoError(t, err)
	assert.Equal(t, staff.ID, stored.ID)
	assert.Equal(t, "Physics", stored.Department)
	assert.Equal(t, model.StaffRoleStaff, stored.Role)
}

func TestDirectoryService_PromoteToStaffFailures(t *testing.T) {
	gdb := newTestDB(t)
	repo := repository.NewDirectoryRepository(gdb)
	svc := NewDirectoryService(repo, &recordingInvalidator{})
	ctx := context.Background()

	admin := seedUser(t, gdb, "user_admin", "Root", "admin@uni.example", model.UserRoleAdmin)
	student := seedStudent(t, gdb, "user_s", "Sam")
	staffAdmin := seedStaff(t, gdb, "user_head", "Head", model.StaffRoleAdmin)
	owner := seedStudent(t, gdb, "user_owner", "Olu")
	require.NoError(t, gdb.Create(&model.Issue{
		Title: "Wifi", Description: "down", IssueType: "normal", Department: "IT",
		Status: model.IssueStatusPending, StudentID: owner.UserID(), Attachments: []string{},
	}).Error)

	valid := PromoteInput{ClerkID: "user_s", FirstName: "Sam", LastName: "T", Email: "user_s@uni.example", Department: "IT"}
	with := func(mut func(*PromoteInput)) PromoteInput {
		in := valid
		mut(&in)
		return in
	}

	tests := []struct {
		name    string
		caller  access.Identity
		input   PromoteInput
		wantErr error
	}{
		{"student cannot promote", student, valid, apperrors.ErrForbidden},
		{"staff admin cannot promote", staffAdmin, valid, apperrors.ErrForbidden},
		{"missing department", admin, with(func(in *PromoteInput) { in.Department = "" }), apperrors.ErrInvalidInput},
		{"unknown role", admin, with(func(in *PromoteInput) { in.Role = "dean" }), apperrors.ErrInvalidInput},
		{"no user with email", admin, with(func(in *PromoteInput) { in.Email = "ghost@uni.example" }), apperrors.ErrNotFound},
		{"clerk id of someone else", admin, with(func(in *PromoteInput) { in.ClerkID = "user_other" }), apperrors.ErrInvalidInput},
		{"user still owns issues", admin, PromoteInput{ClerkID: "user_owner", FirstName: "Olu", LastName: "T", Email: "user_owner@uni.example", Department: "IT"}, apperrors.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PromoteToStaff(ctx, tt.caller, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Nothing above may have moved either identity.
	for _, clerkID := range []string{"user_s", "user_owner"} {
		_, err := repo.FindUserByClerkID(ctx, clerkID)
		assert.NoError(t, err)
		_, err = repo.FindStaffByClerkID(ctx, clerkID)
		assert.Error(t, err)
	}
}
