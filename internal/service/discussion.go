package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/readingroom/backend/internal/eventbus"
	"github.com/readingroom/backend/internal/model"
	"github.com/readingroom/backend/internal/repository"
	"k8s.io/klog/v2"
)

// UploadFile 上传的 markdown 文件
type UploadFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// UploadDiscussionRequest /api/discussions/upload 请求体
type UploadDiscussionRequest struct {
	BookTitle   string      `json:"book_title"`
	Summary     *UploadFile `json:"summary"`
	Application *UploadFile `json:"application"`
}

// CreateBookDiscussionRequest /api/discussions 请求体
type CreateBookDiscussionRequest struct {
	BookTitle           string `json:"bookTitle"`
	SummaryContent      string `json:"summaryContent"`
	ApplicationContent  string `json:"applicationContent"`
	SummaryFileName     string `json:"summaryFileName"`
	ApplicationFileName string `json:"applicationFileName"`
}

type DiscussionService struct {
	repo repository.DiscussionRepository
	bus  *eventbus.DiscussionEventBus
	now  func() time.Time
}

func NewDiscussionService(repo repository.DiscussionRepository, bus *eventbus.DiscussionEventBus) *DiscussionService {
	return &DiscussionService{repo: repo, bus: bus, now: time.Now}
}

// Upload 校验通过后才写库，两份资料与讨论在同一事务中
func (s *DiscussionService) Upload(ctx context.Context, req *UploadDiscussionRequest) (*model.ReadingDiscussion, error) {
	if req == nil || strings.TrimSpace(req.BookTitle) == "" || req.Summary == nil || req.Application == nil {
		return nil, invalid("", MsgMissingData)
	}

	klog.V(6).Infof("登记讨论: book=%s, summary=%s(%d), application=%s(%d)",
		req.BookTitle, req.Summary.Name, len(req.Summary.Content), req.Application.Name, len(req.Application.Content))

	return s.create(ctx, req.BookTitle,
		req.Summary.Name, req.Summary.Content,
		req.Application.Name, req.Application.Content)
}

// CreateBookDiscussion 旧版登记接口，写入同样的规范化表
func (s *DiscussionService) CreateBookDiscussion(ctx context.Context, req *CreateBookDiscussionRequest) (*model.ReadingDiscussion, error) {
	if req == nil || strings.TrimSpace(req.BookTitle) == "" {
		return nil, invalid("bookTitle", MsgMissingBookTitle)
	}
	if req.SummaryContent == "" || req.ApplicationContent == "" {
		return nil, invalid("content", MsgMissingContent)
	}
	if req.SummaryFileName == "" || req.ApplicationFileName == "" {
		return nil, invalid("fileName", MsgMissingFileName)
	}

	return s.create(ctx, req.BookTitle,
		req.SummaryFileName, req.SummaryContent,
		req.ApplicationFileName, req.ApplicationContent)
}

func (s *DiscussionService) create(ctx context.Context, bookTitle, summaryName, summaryContent, applicationName, applicationContent string) (*model.ReadingDiscussion, error) {
	summary := &model.ReadingMaterial{
		BookTitle: bookTitle,
		FileName:  summaryName,
		Content:   summaryContent,
		Type:      model.MaterialTypeSummary,
	}
	application := &model.ReadingMaterial{
		BookTitle: bookTitle,
		FileName:  applicationName,
		Content:   applicationContent,
		Type:      model.MaterialTypeApplication,
	}

	discussion, err := s.repo.CreateWithMaterials(ctx, summary, application, s.now())
	if err != nil {
		klog.Errorf("登记讨论失败: book=%s, err=%v", bookTitle, err)
		return nil, storageErr("create discussion", err)
	}

	if err := s.bus.Publish(ctx, eventbus.DiscussionEventRegistered, eventbus.DiscussionEvent{
		Type:         eventbus.DiscussionEventRegistered,
		DiscussionID: discussion.ID,
		BookTitle:    bookTitle,
	}); err != nil {
		klog.Warningf("发布讨论事件失败: discussionID=%d, err=%v", discussion.ID, err)
	}

	klog.V(6).Infof("讨论登记成功: discussionID=%d, summaryID=%d, applicationID=%d", discussion.ID, summary.ID, application.ID)
	return discussion, nil
}

func (s *DiscussionService) List(ctx context.Context, bookTitle string) ([]model.BookDiscussion, error) {
	discussions, err := s.repo.List(ctx, strings.TrimSpace(bookTitle))
	if err != nil {
		return nil, storageErr("list discussions", err)
	}
	views := make([]model.BookDiscussion, 0, len(discussions))
	for i := range discussions {
		views = append(views, model.NewBookDiscussion(&discussions[i]))
	}
	return views, nil
}

// Get 不存在时返回 repository.ErrNotFound
func (s *DiscussionService) Get(ctx context.Context, id uint) (*model.BookDiscussion, error) {
	discussion, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, storageErr("get discussion", err)
	}
	view := model.NewBookDiscussion(discussion)
	return &view, nil
}
