package service

import (
	"context"
	"strings"
	"time"

	"github.com/readingroom/backend/internal/model"
	"github.com/readingroom/backend/internal/repository"
	"k8s.io/klog/v2"
)

// FileOption 文件下拉选项
type FileOption struct {
	ID        uint               `json:"id"`
	BookTitle string             `json:"bookTitle"`
	FileName  string             `json:"fileName"`
	Content   string             `json:"content"`
	Type      model.MaterialType `json:"type"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type MaterialService struct {
	repo repository.MaterialRepository
}

func NewMaterialService(repo repository.MaterialRepository) *MaterialService {
	return &MaterialService{repo: repo}
}

// SaveMaterial 保存单份资料，类型无法识别时直接拒绝
func (s *MaterialService) SaveMaterial(ctx context.Context, bookTitle, fileName, content, materialType string) (uint, error) {
	mt, err := model.ParseMaterialType(materialType)
	if err != nil {
		return 0, invalid("type", MsgUnknownType)
	}
	if strings.TrimSpace(bookTitle) == "" {
		return 0, invalid("bookTitle", MsgMissingBookTitle)
	}

	material := &model.ReadingMaterial{
		BookTitle: bookTitle,
		FileName:  fileName,
		Content:   content,
		Type:      mt,
	}
	klog.V(6).Infof("保存资料: book=%s, file=%s, type=%s, 内容长度=%d", bookTitle, fileName, mt, len(content))
	if err := s.repo.Create(ctx, material); err != nil {
		return 0, storageErr("save material", err)
	}
	return material.ID, nil
}

func (s *MaterialService) Search(ctx context.Context, bookTitle, materialType, fileName string) ([]model.ReadingMaterial, error) {
	mt, err := parseQuery(bookTitle, materialType)
	if err != nil {
		return nil, err
	}

	klog.V(6).Infof("查询资料: book=%s, type=%s, file=%s", bookTitle, mt, fileName)
	materials, err := s.repo.Search(ctx, bookTitle, mt, fileName)
	if err != nil {
		return nil, storageErr("search materials", err)
	}
	if materials == nil {
		materials = []model.ReadingMaterial{}
	}
	return materials, nil
}

func (s *MaterialService) BookTitles(ctx context.Context) ([]string, error) {
	titles, err := s.repo.ListBookTitles(ctx)
	if err != nil {
		return nil, storageErr("list book titles", err)
	}
	if titles == nil {
		titles = []string{}
	}
	return titles, nil
}

func (s *MaterialService) Files(ctx context.Context, bookTitle, materialType string) ([]FileOption, error) {
	mt, err := parseQuery(bookTitle, materialType)
	if err != nil {
		return nil, err
	}

	if klog.V(6).Enabled() {
		if counts, err := s.repo.CountByBookAndType(ctx); err == nil {
			klog.V(6).Infof("资料分布: %+v", counts)
		}
	}

	materials, err := s.repo.ListFiles(ctx, bookTitle, mt)
	if err != nil {
		return nil, storageErr("list files", err)
	}
	if len(materials) == 0 {
		klog.V(6).Infof("未找到文件: book=%s, type=%s", bookTitle, mt)
	}

	files := make([]FileOption, 0, len(materials))
	for _, m := range materials {
		files = append(files, FileOption{
			ID:        m.ID,
			BookTitle: m.BookTitle,
			FileName:  m.FileName,
			Content:   m.Content,
			Type:      m.Type,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		})
	}
	return files, nil
}

func parseQuery(bookTitle, materialType string) (model.MaterialType, error) {
	if strings.TrimSpace(bookTitle) == "" {
		return "", invalid("bookTitle", MsgMissingBookTitle)
	}
	mt, err := model.ParseMaterialType(materialType)
	if err != nil {
		return "", invalid("type", MsgUnknownType)
	}
	return mt, nil
}
