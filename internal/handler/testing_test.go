package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/readingroom/backend/internal/eventbus"
	"github.com/readingroom/backend/internal/model"
	"github.com/readingroom/backend/internal/repository"
	"github.com/readingroom/backend/internal/service"
	"gorm.io/gorm"
)

type stubChat struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (s *stubChat) Complete(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type stubSpeech struct {
	mu    sync.Mutex
	err   error
	texts []string
}

func (s *stubSpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	if s.err != nil {
		return nil, s.err
	}
	return []byte("ID3"), nil
}

func (s *stubSpeech) Format() string { return "mp3" }

// manualClock 到期回调由测试显式触发
type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []func()
}

type manualTimer struct{}

func (manualTimer) Stop() bool { return true }

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) service.Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, f)
	return manualTimer{}
}

// fireAll 执行当前挂起的回调
func (c *manualClock) fireAll() {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, f := range pending {
		f()
	}
}

type testEnv struct {
	engine *gin.Engine
	db     *gorm.DB
	chat   *stubChat
	speech *stubSpeech
	clock  *manualClock
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
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

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	db := setupTestDB(t)
	chat := &stubChat{reply: "분석 결과"}
	speech := &stubSpeech{}
	clock := &manualClock{now: time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)}

	materials := service.NewMaterialService(repository.NewMaterialRepository(db))
	discussions := service.NewDiscussionService(repository.NewDiscussionRepository(db), eventbus.NewDiscussionEventBus())
	analysis := service.NewAnalysisService(chat, speech)
	orders := service.NewOrderService(chat)
	timers := service.NewTimerManager(analysis, eventbus.NewTimerEventBus(), time.Minute).WithClock(clock)
	t.Cleanup(timers.Close)

	materialHandler := NewMaterialHandler(materials)
	discussionHandler := NewDiscussionHandler(discussions)
	analysisHandler := NewAnalysisHandler(analysis)
	orderHandler := NewOrderHandler(orders)
	timerHandler := NewTimerHandler(timers)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/books", materialHandler.Books)
	api.GET("/materials", materialHandler.Materials)
	api.GET("/files", materialHandler.Files)
	api.POST("/discussions/upload", discussionHandler.Upload)
	api.POST("/discussions", discussionHandler.Create)
	api.GET("/discussions", discussionHandler.List)
	api.GET("/discussions/:id", discussionHandler.Get)
	api.POST("/analyze", analysisHandler.Analyze)
	api.POST("/analyze/advanced", analysisHandler.Advanced)
	api.POST("/analyze/compare", analysisHandler.Compare)
	api.POST("/analyze/transcript", analysisHandler.Transcript)
	api.POST("/speech", analysisHandler.Speech)
	api.POST("/order", orderHandler.Pick)
	timerHandler.RegisterRoutes(api)

	return &testEnv{engine: r, db: db, chat: chat, speech: speech, clock: clock}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func countRows(t *testing.T, db *gorm.DB, value interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(value).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
