package db

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campusdesk/internal/config"
	"campusdesk/internal/model"
)

// Open returns a connected GORM DB instance for the configured driver.
func Open(cfg *config.Config, logWriter io.Writer) (*gorm.DB, error) {
	gcfg := gormConfig(logWriter, cfg.DebugSQL)
	switch cfg.DBDriver {
	case "sqlite":
		return NewSQLite(cfg.SQLitePath, gcfg)
	case "mysql", "":
		return NewMySQL(cfg.MySQLDSN, gcfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// NewMySQL returns a connected GORM DB instance.
func NewMySQL(dsn string, gcfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), gcfg)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// NewSQLite opens a pure-Go sqlite database. Pass ":memory:" for a throwaway store.
func NewSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gcfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// sqlite serialises writers anyway; a single connection also keeps ":memory:" databases shared.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.IdentityRole{},
		&model.User{},
		&model.Staff{},
		&model.Issue{},
		&model.Comment{},
		&model.PublicIssue{},
		&model.Project{},
		&model.Feedback{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

func gormConfig(w io.Writer, debug bool) *gorm.Config {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(
			log.New(w, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  level,
				IgnoreRecordNotFoundError: true,
			},
		),
	}
}

// NewTestConfig returns the GORM config used for throwaway databases in tests.
func NewTestConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
}
