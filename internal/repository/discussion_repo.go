package repository

import (
	"context"
	"errors"
	"time"

	"github.com/readingroom/backend/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type discussionRepository struct {
	db *gorm.DB
}

func NewDiscussionRepository(db *gorm.DB) DiscussionRepository {
	return &discussionRepository{db: db}
}

// Create 不校验资料是否存在
func (r *discussionRepository) Create(ctx context.Context, discussion *model.ReadingDiscussion) error {
	return r.db.WithContext(ctx).Create(discussion).Error
}

func (r *discussionRepository) CreateWithMaterials(ctx context.Context, summary, application *model.ReadingMaterial, date time.Time) (*model.ReadingDiscussion, error) {
	var discussion *model.ReadingDiscussion
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		discussion, err = createDiscussionTx(tx, summary, application, date)
		return err
	})
	if err != nil {
		return nil, err
	}
	return discussion, nil
}

// createDiscussionTx 资料、资料、讨论依次写入，任一失败由调用方事务回滚
func createDiscussionTx(tx *gorm.DB, summary, application *model.ReadingMaterial, date time.Time) (*model.ReadingDiscussion, error) {
	if err := tx.Create(summary).Error; err != nil {
		return nil, err
	}
	if err := tx.Create(application).Error; err != nil {
		return nil, err
	}
	discussion := &model.ReadingDiscussion{
		DiscussionDate:    datatypes.Date(date),
		BaseMaterialID:    summary.ID,
		ReadingMaterialID: application.ID,
	}
	if err := tx.Create(discussion).Error; err != nil {
		return nil, err
	}
	discussion.BaseMaterial = summary
	discussion.ReadingMaterial = application
	return discussion, nil
}

func (r *discussionRepository) Get(ctx context.Context, id uint) (*model.ReadingDiscussion, error) {
	var discussion model.ReadingDiscussion
	err := r.db.WithContext(ctx).
		Preload("BaseMaterial").
		Preload("ReadingMaterial").
		First(&discussion, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &discussion, nil
}

func (r *discussionRepository) List(ctx context.Context, bookTitle string) ([]model.ReadingDiscussion, error) {
	var discussions []model.ReadingDiscussion
	query := r.db.WithContext(ctx).
		Preload("BaseMaterial").
		Preload("ReadingMaterial")
	if bookTitle != "" {
		sub := r.db.Model(&model.ReadingMaterial{}).
			Select("id").
			Where("book_title LIKE ?", "%"+bookTitle+"%")
		query = query.Where("base_material_id IN (?)", sub)
	}
	err := query.Order("created_at DESC, id DESC").Find(&discussions).Error
	return discussions, err
}
