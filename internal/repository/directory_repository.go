package repository

import (
	"context"

	"gorm.io/gorm"

	"campusdesk/internal/model"
)

// DirectoryRepository persists User and Staff profiles and the identity mapping between them.
type DirectoryRepository interface {
	FindIdentity(ctx context.Context, clerkID string) (*model.IdentityRole, error)
	CreateIdentity(ctx context.Context, identity *model.IdentityRole) error
	SetIdentityKind(ctx context.Context, clerkID string, kind model.IdentityKind) error

	CreateUser(ctx context.Context, user *model.User) error
	UpdateUserRole(ctx context.Context, id uint, role model.UserRole) error
	DeleteUser(ctx context.Context, id uint) error
	FindUserByClerkID(ctx context.Context, clerkID string) (*model.User, error)
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	CountUserRecords(ctx context.Context, userID uint) (int64, error)

	CreateStaff(ctx context.Context, staff *model.Staff) error
	FindStaffByClerkID(ctx context.Context, clerkID string) (*model.Staff, error)

	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo DirectoryRepository) error) error
}

type directoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository creates a new directory repository.
func NewDirectoryRepository(db *gorm.DB) DirectoryRepository {
	return &directoryRepository{db: db}
}

func (r *directoryRepository) FindIdentity(ctx context.Context, clerkID string) (*model.IdentityRole, error) {
	var identity model.IdentityRole
	if err := r.db.WithContext(ctx).Where("clerk_id = ?", clerkID).First(&identity).Error; err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *directoryRepository) CreateIdentity(ctx context.Context, identity *model.IdentityRole) error {
	return r.db.WithContext(ctx).Create(identity).Error
}

// SetIdentityKind moves an identity to another directory, creating the mapping if it is missing.
func (r *directoryRepository) SetIdentityKind(ctx context.Context, clerkID string, kind model.IdentityKind) error {
	res := r.db.WithContext(ctx).Model(&model.IdentityRole{}).
		Where("clerk_id = ?", clerkID).
		Update("kind", kind)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.db.WithContext(ctx).Create(&model.IdentityRole{ClerkID: clerkID, Kind: kind}).Error
	}
	return nil
}

func (r *directoryRepository) CreateUser(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *directoryRepository) UpdateUserRole(ctx context.Context, id uint, role model.UserRole) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("role", role).Error
}

func (r *directoryRepository) DeleteUser(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *directoryRepository) FindUserByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("clerk_id = ?", clerkID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *directoryRepository) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CountUserRecords counts rows that reference the user as an owner or author.
func (r *directoryRepository) CountUserRecords(ctx context.Context, userID uint) (int64, error) {
	var total int64
	refs := []struct {
		model  any
		column string
	}{
		{&model.Issue{}, "student_id"},
		{&model.Comment{}, "user_id"},
		{&model.PublicIssue{}, "user_id"},
		{&model.Project{}, "student_id"},
		{&model.Feedback{}, "sender_user_id"},
	}
	for _, ref := range refs {
		var n int64
		if err := r.db.WithContext(ctx).Model(ref.model).Where(ref.column+" = ?", userID).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (r *directoryRepository) CreateStaff(ctx context.Context, staff *model.Staff) error {
	return r.db.WithContext(ctx).Create(staff).Error
}

func (r *directoryRepository) FindStaffByClerkID(ctx context.Context, clerkID string) (*model.Staff, error) {
	var staff model.Staff
	if err := r.db.WithContext(ctx).Where("clerk_id = ?", clerkID).First(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

// WithTransaction executes a function within a database transaction.
func (r *directoryRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo DirectoryRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &directoryRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
