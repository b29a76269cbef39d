package repository

import (
	"context"

	"github.com/readingroom/backend/internal/model"
	"gorm.io/gorm"
)

type materialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &materialRepository{db: db}
}

// Create 存储标签由 MaterialType.Value 转换，未识别的类型在此处报错
func (r *materialRepository) Create(ctx context.Context, material *model.ReadingMaterial) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *materialRepository) Search(ctx context.Context, bookTitle string, materialType model.MaterialType, fileName string) ([]model.ReadingMaterial, error) {
	label, err := materialType.StorageLabel()
	if err != nil {
		return nil, err
	}

	var materials []model.ReadingMaterial
	query := r.db.WithContext(ctx).
		Where("book_title = ? AND type = ?", bookTitle, label)
	if fileName != "" {
		query = query.Where("file_name = ?", fileName)
	}
	err = query.Order("created_at DESC, id DESC").Find(&materials).Error
	return materials, err
}

func (r *materialRepository) ListBookTitles(ctx context.Context) ([]string, error) {
	var titles []string
	err := r.db.WithContext(ctx).
		Model(&model.ReadingMaterial{}).
		Distinct("book_title").
		Order("book_title ASC").
		Pluck("book_title", &titles).Error
	return titles, err
}

// ListFiles 文件下拉选项需要完整记录（含 content 与 updated_at），排序同 Search
func (r *materialRepository) ListFiles(ctx context.Context, bookTitle string, materialType model.MaterialType) ([]model.ReadingMaterial, error) {
	label, err := materialType.StorageLabel()
	if err != nil {
		return nil, err
	}

	var materials []model.ReadingMaterial
	err = r.db.WithContext(ctx).
		Where("book_title = ? AND type = ?", bookTitle, label).
		Order("created_at DESC, id DESC").
		Find(&materials).Error
	return materials, err
}

func (r *materialRepository) CountByBookAndType(ctx context.Context) ([]MaterialCount, error) {
	var counts []MaterialCount
	err := r.db.WithContext(ctx).
		Model(&model.ReadingMaterial{}).
		Select("book_title, type, COUNT(*) AS count").
		Group("book_title, type").
		Order("book_title ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for i := range counts {
		counts[i].Type = model.FromStorage(counts[i].Type)
	}
	return counts, nil
}
