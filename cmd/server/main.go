package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/readingroom/backend/config"
	"github.com/readingroom/backend/internal/eventbus"
	"github.com/readingroom/backend/internal/handler"
	"github.com/readingroom/backend/internal/pkg/cache"
	"github.com/readingroom/backend/internal/pkg/database"
	"github.com/readingroom/backend/internal/pkg/llm"
	"github.com/readingroom/backend/internal/pkg/storage"
	"github.com/readingroom/backend/internal/repository"
	"github.com/readingroom/backend/internal/router"
	"github.com/readingroom/backend/internal/service"
	"github.com/readingroom/backend/internal/subscriber"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env 不存在时忽略
	_ = godotenv.Load()

	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	cfg := config.GetConfig()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		klog.Errorf("服务异常退出: %v", err)
		klog.Flush()
		os.Exit(1)
	}
	klog.Info("服务已停止")
}

func run(ctx context.Context, cfg *config.Config) error {
	// InitDB 内部已完成建表
	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return err
	}

	// 初始化 Repository
	materialRepo := repository.NewMaterialRepository(db)
	discussionRepo := repository.NewDiscussionRepository(db)
	legacyRepo := repository.NewLegacyDiscussionRepository(db)

	// 事件总线与订阅者
	discussionBus := eventbus.NewDiscussionEventBus()
	timerBus := eventbus.NewTimerEventBus()
	subscriber.NewDiscussionEventSubscriber().Register(discussionBus)
	subscriber.NewTimerEventSubscriber().Register(timerBus)

	migrator := service.NewMigrator(legacyRepo, materialRepo, discussionBus)
	if cfg.Database.MigrateLegacy {
		if _, err := migrator.MigrateLegacy(ctx); err != nil {
			return err
		}
	}
	if cfg.Database.SeedSample {
		if _, err := migrator.SeedSample(ctx); err != nil {
			return err
		}
	}

	// AI 客户端
	policy := llm.PolicyFromConfig(cfg.LLM)
	chatModel, err := llm.NewChatModel(ctx, cfg)
	if err != nil {
		return err
	}
	chat := llm.NewChatClient(chatModel, policy)
	speech := llm.NewSpeechClient(cfg, policy)

	analysis := service.NewAnalysisService(chat, speech)
	if cfg.Cache.Enabled {
		resultCache, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			klog.Warningf("Redis 不可用，分析缓存已关闭: %v", err)
		} else {
			defer resultCache.Close()
			analysis.WithCache(resultCache)
		}
	}
	if cfg.AudioArchive.Enabled {
		store, err := storage.NewMinioStore(ctx, cfg.AudioArchive)
		if err != nil {
			klog.Warningf("对象存储不可用，音频归档已关闭: %v", err)
		} else {
			analysis.WithArchive(store)
		}
	}

	// 一次转录分析最多包含对话和语音两个阶段
	analysisTimeout := 2 * time.Duration(cfg.LLM.MaxRetries+1) * cfg.LLM.Timeout
	timers := service.NewTimerManager(analysis, timerBus, analysisTimeout)
	defer timers.Close()

	r := router.Setup(cfg, router.Handlers{
		Material:   handler.NewMaterialHandler(service.NewMaterialService(materialRepo)),
		Discussion: handler.NewDiscussionHandler(service.NewDiscussionService(discussionRepo, discussionBus)),
		Analysis:   handler.NewAnalysisHandler(analysis),
		Order:      handler.NewOrderHandler(service.NewOrderService(chat)),
		Timer:      handler.NewTimerHandler(timers),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		klog.Infof("Server starting on port %s...", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		klog.Info("收到退出信号，正在关闭 HTTP 服务...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	if sqlDB, dbErr := db.DB(); dbErr == nil {
		sqlDB.Close()
	}
	return err
}
