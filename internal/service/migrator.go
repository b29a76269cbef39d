package service

import (
	"context"
	"errors"
	"slices"

	"github.com/readingroom/backend/internal/eventbus"
	"github.com/readingroom/backend/internal/model"
	"github.com/readingroom/backend/internal/repository"
	"k8s.io/klog/v2"
)

const migrateBatchSize = 100

// Migrator 把旧表 book_discussions 的数据迁入规范化表
type Migrator struct {
	legacy    repository.LegacyDiscussionRepository
	materials repository.MaterialRepository
	bus       *eventbus.DiscussionEventBus
}

func NewMigrator(legacy repository.LegacyDiscussionRepository, materials repository.MaterialRepository, bus *eventbus.DiscussionEventBus) *Migrator {
	return &Migrator{legacy: legacy, materials: materials, bus: bus}
}

// MigrateLegacy 每行一个事务，已迁移的行跳过，可重复执行
func (m *Migrator) MigrateLegacy(ctx context.Context) (int, error) {
	migrated := 0
	for {
		rows, err := m.legacy.ListUnmigrated(ctx, migrateBatchSize)
		if err != nil {
			return migrated, storageErr("list legacy discussions", err)
		}
		if len(rows) == 0 {
			break
		}

		progressed := false
		for i := range rows {
			row := &rows[i]
			discussion, err := m.legacy.Migrate(ctx, row)
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if err != nil {
				klog.Errorf("迁移旧讨论记录失败: legacyID=%d, err=%v", row.ID, err)
				return migrated, storageErr("migrate legacy discussion", err)
			}
			migrated++
			progressed = true
			if err := m.bus.Publish(ctx, eventbus.DiscussionEventMigrated, eventbus.DiscussionEvent{
				Type:         eventbus.DiscussionEventMigrated,
				DiscussionID: discussion.ID,
				BookTitle:    row.BookTitle,
				LegacyID:     row.ID,
			}); err != nil {
				klog.Warningf("发布迁移事件失败: legacyID=%d, err=%v", row.ID, err)
			}
		}
		if !progressed {
			break
		}
	}

	if migrated > 0 {
		klog.Infof("旧讨论记录迁移完成: %d 条", migrated)
	}
	return migrated, nil
}

// sampleBook 示例数据的书名
const sampleBook = "퍼스널 MBA"

var sampleMaterials = []model.ReadingMaterial{
	{BookTitle: sampleBook, FileName: "1장_요약.md", Content: "# 1장 요약\n\n비즈니스의 기본 원리...", Type: model.MaterialTypeSummary},
	{BookTitle: sampleBook, FileName: "2장_요약.md", Content: "# 2장 요약\n\n마케팅의 핵심...", Type: model.MaterialTypeSummary},
	{BookTitle: sampleBook, FileName: "1장_적용.md", Content: "# 1장 적용\n\n우리 회사에 적용할 점...", Type: model.MaterialTypeApplication},
}

// SeedSample 示例书目不存在时写入示例资料
func (m *Migrator) SeedSample(ctx context.Context) (bool, error) {
	titles, err := m.materials.ListBookTitles(ctx)
	if err != nil {
		return false, storageErr("list book titles", err)
	}
	if slices.Contains(titles, sampleBook) {
		klog.V(6).Infof("示例数据已存在，跳过")
		return false, nil
	}

	for _, sample := range sampleMaterials {
		material := sample
		if err := m.materials.Create(ctx, &material); err != nil {
			return false, storageErr("seed sample material", err)
		}
	}
	klog.Infof("已写入示例数据: book=%s, %d 份资料", sampleBook, len(sampleMaterials))
	return true, nil
}
