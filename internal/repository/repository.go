package repository

import (
	"context"
	"errors"
	"time"

	"github.com/readingroom/backend/internal/model"
)

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")

// MaterialRepository 资料仓储
type MaterialRepository interface {
	// Create 写入前把客户端类型转换为存储标签，成功后回填 ID
	Create(ctx context.Context, material *model.ReadingMaterial) error
	// Search 按书名+类型（可选文件名）查询，最新的在前
	Search(ctx context.Context, bookTitle string, materialType model.MaterialType, fileName string) ([]model.ReadingMaterial, error)
	ListBookTitles(ctx context.Context) ([]string, error)
	ListFiles(ctx context.Context, bookTitle string, materialType model.MaterialType) ([]model.ReadingMaterial, error)
	CountByBookAndType(ctx context.Context) ([]MaterialCount, error)
}

// MaterialCount 按书名和类型分组的计数
type MaterialCount struct {
	BookTitle string
	Type      string
	Count     int64
}

// DiscussionRepository 讨论仓储
type DiscussionRepository interface {
	Create(ctx context.Context, discussion *model.ReadingDiscussion) error
	// CreateWithMaterials 在同一事务中写入两份资料和讨论记录
	CreateWithMaterials(ctx context.Context, summary, application *model.ReadingMaterial, date time.Time) (*model.ReadingDiscussion, error)
	Get(ctx context.Context, id uint) (*model.ReadingDiscussion, error)
	// List bookTitle 为空时返回全部，否则按书名子串匹配
	List(ctx context.Context, bookTitle string) ([]model.ReadingDiscussion, error)
}

// LegacyDiscussionRepository 旧表 book_discussions，仅用于迁移
type LegacyDiscussionRepository interface {
	ListUnmigrated(ctx context.Context, limit int) ([]model.LegacyBookDiscussion, error)
	// Migrate 在同一事务中写入规范化记录并标记旧行已迁移
	Migrate(ctx context.Context, legacy *model.LegacyBookDiscussion) (*model.ReadingDiscussion, error)
}
