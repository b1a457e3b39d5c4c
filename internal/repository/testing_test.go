package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"schedule-planner/internal/model"
)

// newTestDB opens a private in-memory database per test. The shared
// cache keeps every pooled connection on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.Activity{}, &model.Task{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func newTestScheduleRepo(t *testing.T) (*ScheduleRepository, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewScheduleRepository(db, zerolog.Nop()), db
}

func countRows(t *testing.T, db *gorm.DB, value any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(value).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func taskIDs(t *testing.T, db *gorm.DB) []uint {
	t.Helper()
	var ids []uint
	if err := db.Model(&model.Task{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		t.Fatalf("pluck task ids: %v", err)
	}
	return ids
}
