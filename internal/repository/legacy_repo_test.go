package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/readingroom/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyDiscussionRepository_Migrate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLegacyDiscussionRepository(db)
	ctx := context.Background()

	legacy := model.LegacyBookDiscussion{
		BookTitle:           "퍼스널 MBA",
		SummaryContent:      "요약",
		ApplicationContent:  "적용",
		SummaryFileName:     "s.md",
		ApplicationFileName: "a.md",
		CreatedAt:           time.Date(2023, 11, 2, 9, 0, 0, 0, time.Local),
	}
	require.NoError(t, db.Create(&legacy).Error)

	rows, err := repo.ListUnmigrated(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	d, err := repo.Migrate(ctx, &rows[0])
	require.NoError(t, err)
	require.NotNil(t, rows[0].MigratedDiscussionID)
	assert.Equal(t, d.ID, *rows[0].MigratedDiscussionID)

	rows, err = repo.ListUnmigrated(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// 重复迁移同一行不产生新记录
	_, err = repo.Migrate(ctx, &legacy)
	assert.True(t, errors.Is(err, ErrNotFound))

	var materials int64
	db.Model(&model.ReadingMaterial{}).Count(&materials)
	assert.Equal(t, int64(2), materials)

	got, err := NewDiscussionRepository(db).Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "2023-11-02", model.NewBookDiscussion(got).DiscussionDate)
	assert.Equal(t, "a.md", got.ReadingMaterial.FileName)
}
