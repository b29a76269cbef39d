package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/readingroom/backend/internal/model"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	// 内存库每个连接独立，固定为单连接
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&model.ReadingMaterial{}, &model.ReadingDiscussion{}, &model.LegacyBookDiscussion{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}
