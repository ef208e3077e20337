package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campusdesk/internal/access"
	"campusdesk/internal/db"
	"campusdesk/internal/model"
	"campusdesk/internal/notify"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.NewSQLite(":memory:", db.NewTestConfig())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, clerkID, first, email string, role model.UserRole) access.Identity {
	t.Helper()
	user := &model.User{ClerkID: clerkID, FirstName: first, LastName: "Test", Email: email, Role: role}
	require.NoError(t, gdb.Create(&model.IdentityRole{ClerkID: clerkID, Kind: model.IdentityKindStudent}).Error)
	require.NoError(t, gdb.Create(user).Error)
	return access.ForUser(user)
}

func seedStudent(t *testing.T, gdb *gorm.DB, clerkID, first string) access.Identity {
	return seedUser(t, gdb, clerkID, first, clerkID+"@uni.example", model.UserRoleStudent)
}

func seedStaff(t *testing.T, gdb *gorm.DB, clerkID, first string, role model.StaffRole) access.Identity {
	t.Helper()
	staff := &model.Staff{ClerkID: clerkID, FirstName: first, LastName: "Staff", Email: clerkID + "@uni.example", Department: "IT", Role: role}
	require.NoError(t, gdb.Create(&model.IdentityRole{ClerkID: clerkID, Kind: model.IdentityKindStaff}).Error)
	require.NoError(t, gdb.Create(staff).Error)
	return access.ForStaff(staff)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) Close() {}

func (n *recordingNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}

type recordingInvalidator struct {
	keys []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, clerkID string) {
	r.keys = append(r.keys, clerkID)
}
