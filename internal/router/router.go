package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/readingroom/backend/config"
	"github.com/readingroom/backend/internal/handler"
	"github.com/readingroom/backend/internal/middleware"
	"github.com/readingroom/backend/internal/web"
)

type Handlers struct {
	Material   *handler.MaterialHandler
	Discussion *handler.DiscussionHandler
	Analysis   *handler.AnalysisHandler
	Order      *handler.OrderHandler
	Timer      *handler.TimerHandler
}

func Setup(cfg *config.Config, h Handlers) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/books", h.Material.Books)
		api.GET("/materials", h.Material.Materials)
		api.GET("/files", h.Material.Files)

		discussions := api.Group("/discussions")
		{
			discussions.POST("/upload", h.Discussion.Upload)
			discussions.POST("", h.Discussion.Create)
			discussions.GET("", h.Discussion.List)
			discussions.GET("/:id", h.Discussion.Get)
		}

		analyze := api.Group("/analyze")
		{
			analyze.POST("", h.Analysis.Analyze)
			analyze.POST("/advanced", h.Analysis.Advanced)
			analyze.POST("/compare", h.Analysis.Compare)
			analyze.POST("/transcript", h.Analysis.Transcript)
		}
		api.POST("/speech", h.Analysis.Speech)
		api.POST("/order", h.Order.Pick)

		h.Timer.RegisterRoutes(api)
	}

	// 必须在 API 路由之后设置
	web.SetupRouter(r, cfg.Web.StaticDir)

	return r
}
