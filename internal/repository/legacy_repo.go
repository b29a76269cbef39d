package repository

import (
	"context"
	"time"

	"github.com/readingroom/backend/internal/model"
	"gorm.io/gorm"
)

type legacyDiscussionRepository struct {
	db *gorm.DB
}

func NewLegacyDiscussionRepository(db *gorm.DB) LegacyDiscussionRepository {
	return &legacyDiscussionRepository{db: db}
}

func (r *legacyDiscussionRepository) ListUnmigrated(ctx context.Context, limit int) ([]model.LegacyBookDiscussion, error) {
	var rows []model.LegacyBookDiscussion
	query := r.db.WithContext(ctx).
		Where("migrated_discussion_id IS NULL").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&rows).Error
	return rows, err
}

// Migrate 旧行拆成两份资料 + 一条讨论，讨论日期取旧行创建日期
func (r *legacyDiscussionRepository) Migrate(ctx context.Context, legacy *model.LegacyBookDiscussion) (*model.ReadingDiscussion, error) {
	var discussion *model.ReadingDiscussion
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 行可能已被并发迁移
		res := tx.Model(&model.LegacyBookDiscussion{}).
			Where("id = ? AND migrated_discussion_id IS NULL", legacy.ID).
			Update("migrated_discussion_id", 0)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		created := legacy.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		summary := &model.ReadingMaterial{
			BookTitle: legacy.BookTitle,
			FileName:  legacy.SummaryFileName,
			Content:   legacy.SummaryContent,
			Type:      model.MaterialTypeSummary,
			CreatedAt: created,
		}
		application := &model.ReadingMaterial{
			BookTitle: legacy.BookTitle,
			FileName:  legacy.ApplicationFileName,
			Content:   legacy.ApplicationContent,
			Type:      model.MaterialTypeApplication,
			CreatedAt: created,
		}

		var err error
		discussion, err = createDiscussionTx(tx, summary, application, created)
		if err != nil {
			return err
		}
		return tx.Model(&model.LegacyBookDiscussion{}).
			Where("id = ?", legacy.ID).
			Update("migrated_discussion_id", discussion.ID).Error
	})
	if err != nil {
		return nil, err
	}
	id := discussion.ID
	legacy.MigratedDiscussionID = &id
	return discussion, nil
}
