// Package access holds the rules deciding who may read and mutate issues, comments,
// projects and feedback, and how a caller's role is derived from the directory.
package access

import "campusdesk/internal/model"

// Kind is the role a caller resolves to.
type Kind string

const (
	// KindAnonymous is a valid session whose identity has no directory profile yet.
	KindAnonymous Kind = "anonymous"
	KindStudent   Kind = "student"
	// KindAdmin is a User whose role is admin.
	KindAdmin Kind = "admin"
	KindStaff Kind = "staff"
)

// Identity is the resolved caller. Exactly one of User and Staff is set unless the
// identity is anonymous, in which case neither is.
type Identity struct {
	Kind    Kind         `json:"kind"`
	ClerkID string       `json:"clerkId"`
	User    *model.User  `json:"user,omitempty"`
	Staff   *model.Staff `json:"staff,omitempty"`
}

// Anonymous returns the identity of a signed-in subject that has not onboarded.
func Anonymous(clerkID string) Identity {
	return Identity{Kind: KindAnonymous, ClerkID: clerkID}
}

// ForUser derives a student or admin identity from a User record.
func ForUser(u *model.User) Identity {
	kind := KindStudent
	if u.Role == model.UserRoleAdmin {
		kind = KindAdmin
	}
	return Identity{Kind: kind, ClerkID: u.ClerkID, User: u}
}

// ForStaff derives a staff identity from a Staff record.
func ForStaff(s *model.Staff) Identity {
	return Identity{Kind: KindStaff, ClerkID: s.ClerkID, Staff: s}
}

// Resolved reports whether the caller has a directory profile.
func (id Identity) Resolved() bool {
	return (id.Kind == KindStudent || id.Kind == KindAdmin) && id.User != nil ||
		id.Kind == KindStaff && id.Staff != nil
}

// IsUser reports whether the caller is backed by a User record (student or admin).
func (id Identity) IsUser() bool {
	return id.Resolved() && id.User != nil
}

// IsStaff reports whether the caller is backed by a Staff record.
func (id Identity) IsStaff() bool {
	return id.Resolved() && id.Staff != nil
}

// IsAdmin reports whether the caller is a User with the admin role. A Staff record's
// admin role is descriptive only and grants nothing beyond staff rights.
func (id Identity) IsAdmin() bool {
	return id.IsUser() && id.User.Role == model.UserRoleAdmin
}

// Privileged reports whether the caller reads across every owner (staff or any admin).
func (id Identity) Privileged() bool {
	return id.IsStaff() || id.IsAdmin()
}

// UserID returns the User surrogate id, or 0 when the caller is not a User.
func (id Identity) UserID() uint {
	if id.IsUser() {
		return id.User.ID
	}
	return 0
}

// StaffID returns the Staff surrogate id, or 0 when the caller is not Staff.
func (id Identity) StaffID() uint {
	if id.IsStaff() {
		return id.Staff.ID
	}
	return 0
}

// DisplayName returns the caller's name from whichever record backs them.
func (id Identity) DisplayName() string {
	switch {
	case id.IsUser():
		return id.User.DisplayName()
	case id.IsStaff():
		return id.Staff.DisplayName()
	default:
		return ""
	}
}
