package db

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusdesk/internal/config"
	"campusdesk/internal/model"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "test.db")}

	gdb, err := Open(cfg, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, Migrate(gdb))

	for _, table := range []interface{}{
		&model.IdentityRole{}, &model.User{}, &model.Staff{}, &model.Issue{},
		&model.Comment{}, &model.PublicIssue{}, &model.Project{}, &model.Feedback{},
	} {
		assert.True(t, gdb.Migrator().HasTable(table))
	}

	// migrations are repeatable
	assert.NoError(t, Migrate(gdb))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "postgres"}, io.Discard)
	assert.ErrorContains(t, err, "postgres")
}
