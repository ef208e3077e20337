package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"campusdesk/internal/access"
	apperrors "campusdesk/internal/errors"
	"campusdesk/internal/model"
	"campusdesk/internal/repository"
)

// IdentityInvalidator drops cached identity resolutions after directory changes.
type IdentityInvalidator interface {
	Invalidate(ctx context.Context, clerkID string)
}

// OnboardInput is the profile a signed-in subject submits to become a student.
type OnboardInput struct {
	FirstName string
	LastName  string
	Email     string
}

// PromoteInput describes the Staff record that replaces an existing User.
type PromoteInput struct {
	ClerkID    string
	FirstName  string
	LastName   string
	Email      string
	Department string
	Role       model.StaffRole
}

// DirectoryService manages User and Staff profiles.
type DirectoryService interface {
	Onboard(ctx context.Context, clerkID string, in OnboardInput) (*model.User, error)
	SearchUserByEmail(ctx context.Context, caller access.Identity, email string) (*model.User, error)
	PromoteToStaff(ctx context.Context, caller access.Identity, in PromoteInput) (*model.Staff, error)
}

type directoryService struct {
	repo       repository.DirectoryRepository
	identities IdentityInvalidator
}

// NewDirectoryService creates a new directory service.
func NewDirectoryService(repo repository.DirectoryRepository, identities IdentityInvalidator) DirectoryService {
	return &directoryService{repo: repo, identities: identities}
}

// Onboard creates the student profile for clerkID and maps the identity to the User
// directory, both in one transaction.
func (s *directoryService) Onboard(ctx context.Context, clerkID string, in OnboardInput) (*model.User, error) {
	if clerkID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	user := &model.User{
		ClerkID:   clerkID,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     normalizeEmail(in.Email),
		Role:      model.UserRoleStudent,
	}
	if user.FirstName == "" || user.LastName == "" || user.Email == "" {
		return nil, apperrors.Invalid("firstName, lastName and email are required")
	}

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.DirectoryRepository) error {
		if _, err := repo.FindIdentity(ctx, clerkID); !errors.Is(err, gorm.ErrRecordNotFound) {
			return absent(err, "profile")
		}
		if _, err := repo.FindUserByClerkID(ctx, clerkID); !errors.Is(err, gorm.ErrRecordNotFound) {
			return absent(err, "profile")
		}
		if _, err := repo.FindStaffByClerkID(ctx, clerkID); !errors.Is(err, gorm.ErrRecordNotFound) {
			return absent(err, "staff profile")
		}
		if _, err := repo.FindUserByEmail(ctx, user.Email); !errors.Is(err, gorm.ErrRecordNotFound) {
			return absent(err, "user with this email")
		}

		if err := repo.CreateIdentity(ctx, &model.IdentityRole{ClerkID: clerkID, Kind: model.IdentityKindStudent}); err != nil {
			return apperrors.FromStore(err, "profile")
		}
		if err := repo.CreateUser(ctx, user); err != nil {
			return apperrors.FromStore(err, "user with this email")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.identities.Invalidate(ctx, clerkID)
	return user, nil
}

func (s *directoryService) SearchUserByEmail(ctx context.Context, caller access.Identity, email string) (*model.User, error) {
	if err := access.RequireAdmin(caller); err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.Invalid("email query parameter is required")
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.FromStore(err, "user")
	}
	return user, nil
}

// PromoteToStaff replaces the User found by email with a Staff record. The Staff
// insert, the User delete and the identity remap commit together or not at all.
func (s *directoryService) PromoteToStaff(ctx context.Context, caller access.Identity, in PromoteInput) (*model.Staff, error) {
	if err := access.RequireAdmin(caller); err != nil {
		return nil, err
	}

	staff := &model.Staff{
		ClerkID:    strings.TrimSpace(in.ClerkID),
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      normalizeEmail(in.Email),
		Department: strings.TrimSpace(in.Department),
		Role:       in.Role,
	}
	if staff.ClerkID == "" || staff.FirstName == "" || staff.LastName == "" || staff.Email == "" || staff.Department == "" {
		return nil, apperrors.Invalid("clerkId, firstName, lastName, email and department are required")
	}
	if staff.Role == "" {
		staff.Role = model.StaffRoleStaff
	}
	if !staff.Role.Valid() {
		return nil, apperrors.Invalid("role %q must be staff or admin", staff.Role)
	}

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.DirectoryRepository) error {
		if _, err := repo.FindStaffByClerkID(ctx, staff.ClerkID); !errors.Is(err, gorm.ErrRecordNotFound) {
			return absent(err, "staff with this clerk id")
		}

		user, err := repo.FindUserByEmail(ctx, staff.Email)
		if err != nil {
			return apperrors.FromStore(err, "user")
		}
		if user.ClerkID != staff.ClerkID {
			return apperrors.Invalid("clerkId does not belong to the user with email %s", staff.Email)
		}

		owned, err := repo.CountUserRecords(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("count user records: %w", err)
		}
		if owned > 0 {
			return fmt.Errorf("%w: user still owns %d issues, comments, announcements, projects or feedback entries",
				apperrors.ErrConflict, owned)
		}

		if err := repo.CreateStaff(ctx, staff); err != nil {
			return apperrors.FromStore(err, "staff with this clerk id")
		}
		if err := repo.DeleteUser(ctx, user.ID); err != nil {
			return apperrors.FromStore(err, "user")
		}
		if err := repo.SetIdentityKind(ctx, staff.ClerkID, model.IdentityKindStaff); err != nil {
			return fmt.Errorf("remap identity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.identities.Invalidate(ctx, staff.ClerkID)
	return staff, nil
}

// absent reports a lookup that was expected to miss. A found row is a Conflict;
// store failures pass through.
func absent(err error, entity string) error {
	if err == nil {
		return apperrors.Conflict(entity)
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
