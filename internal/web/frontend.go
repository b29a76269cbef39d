package web

import (
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

// SetupRouter 挂载前端构建产物，未匹配的非 API 路径一律返回 index.html
// staticDir 为空时只对 API 返回 JSON 404
func SetupRouter(r *gin.Engine, staticDir string) {
	var frontendFS fs.FS
	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			frontendFS = os.DirFS(staticDir)
		} else {
			klog.Warningf("前端目录不可用，跳过静态文件: dir=%s, err=%v", staticDir, err)
		}
	}

	if frontendFS != nil {
		if assetsFS, err := fs.Sub(frontendFS, "assets"); err == nil {
			r.GET("/assets/*filepath", gin.WrapH(http.StripPrefix("/assets", http.FileServer(http.FS(assetsFS)))))
		}

		r.GET("/favicon.ico", func(c *gin.Context) {
			favicon, err := fs.ReadFile(frontendFS, "favicon.ico")
			if err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			c.Data(http.StatusOK, "image/x-icon", favicon)
		})
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.URL.Path == "/api" {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if frontendFS == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		indexHTML, err := fs.ReadFile(frontendFS, "index.html")
		if err != nil {
			c.String(http.StatusInternalServerError, "Failed to load index.html")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
}
