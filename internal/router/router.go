package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/blockpress/internal/config"
	"github.com/blockpress/internal/handler"
	"github.com/blockpress/internal/logging"
	"github.com/blockpress/internal/validation"
	"github.com/blockpress/internal/view"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionName = "blockpress_session"

// SetupRouter 配置 Gin 引擎、中间件和全部路由
func SetupRouter(api *handler.API, cfg config.AppConfig, logger *zap.Logger) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := validation.Register(); err != nil {
		return nil, err
	}

	renderer, err := view.New()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(logging.Middleware(logger), gin.Recovery())
	r.SetHTMLTemplate(renderer.Template())

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	// 本地存储时由应用直接提供上传文件
	if cfg.Storage.Driver == config.StorageDriverLocal && cfg.UploadDir != "" {
		uploadPath := cfg.UploadURLPath
		if uploadPath == "" {
			uploadPath = "/static/uploads"
		}
		if !strings.HasPrefix(uploadPath, "/") {
			return nil, fmt.Errorf("upload url path %q must start with /", uploadPath)
		}
		r.Static(uploadPath, cfg.UploadDir)
	}

	r.GET("/healthz", api.HealthCheck)

	// 公开页面
	r.GET("/", api.ShowHome)
	r.GET("/p/*slug", api.ShowPage)
	r.GET("/gallery/:slug", api.ShowGallery)
	r.GET("/api/seo", api.GetSEODefaults)
	r.GET("/manifest.webmanifest", api.ShowManifest)
	r.GET("/robots.txt", api.ShowRobots)
	r.GET("/sitemap.xml", api.ShowSitemap)

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("", func(c *gin.Context) {
				c.Redirect(http.StatusFound, "/admin/dashboard")
			})
			auth.GET("/dashboard", api.ShowDashboard)

			apiGroup := auth.Group("/api")
			{
				apiGroup.GET("/stats", api.GetDashboardStats)
				apiGroup.PUT("/account/password", api.ChangePassword)

				apiGroup.GET("/pages", api.ListPages)
				apiGroup.POST("/pages", api.CreatePage)
				apiGroup.GET("/pages/:id", api.GetPage)
				apiGroup.PUT("/pages/:id", api.UpdatePage)
				apiGroup.DELETE("/pages/:id", api.DeletePage)
				apiGroup.PUT("/pages/:id/blocks", api.SetPageBlocks)
				apiGroup.POST("/pages/:id/duplicate", api.DuplicatePage)

				apiGroup.GET("/block-types", api.ListBlockTypes)
				apiGroup.GET("/blocks", api.ListBlocks)
				apiGroup.POST("/blocks", api.CreateBlock)
				apiGroup.GET("/blocks/:id", api.GetBlock)
				apiGroup.PUT("/blocks/:id", api.UpdateBlock)
				apiGroup.DELETE("/blocks/:id", api.DeleteBlock)

				apiGroup.GET("/navigation/variants", api.ListNavigationVariants)
				apiGroup.GET("/headers", api.ListHeaders)
				apiGroup.POST("/headers", api.CreateHeader)
				apiGroup.GET("/headers/:id", api.GetHeader)
				apiGroup.PUT("/headers/:id", api.UpdateHeader)
				apiGroup.DELETE("/headers/:id", api.DeleteHeader)
				apiGroup.POST("/headers/:id/global", api.SetGlobalHeader)

				apiGroup.GET("/footers", api.ListFooters)
				apiGroup.POST("/footers", api.CreateFooter)
				apiGroup.GET("/footers/:id", api.GetFooter)
				apiGroup.PUT("/footers/:id", api.UpdateFooter)
				apiGroup.DELETE("/footers/:id", api.DeleteFooter)
				apiGroup.POST("/footers/:id/global", api.SetGlobalFooter)

				apiGroup.GET("/selection/header", api.GetHeaderSelection)
				apiGroup.PUT("/selection/header", api.SelectHeader)
				apiGroup.DELETE("/selection/header", api.ClearHeaderSelection)
				apiGroup.GET("/selection/footer", api.GetFooterSelection)
				apiGroup.PUT("/selection/footer", api.SelectFooter)
				apiGroup.DELETE("/selection/footer", api.ClearFooterSelection)

				apiGroup.GET("/settings", api.GetSettings)
				apiGroup.PUT("/settings", api.UpdateSettings)

				apiGroup.GET("/media", api.ListMedia)
				apiGroup.POST("/media", api.UploadMedia)
				apiGroup.GET("/media/:id", api.GetMedia)
				apiGroup.PUT("/media/:id", api.UpdateMedia)
				apiGroup.DELETE("/media/:id", api.DeleteMedia)

				apiGroup.GET("/galleries", api.ListGalleries)
				apiGroup.POST("/galleries", api.CreateGallery)
				apiGroup.GET("/galleries/:id", api.GetGallery)
				apiGroup.PUT("/galleries/:id", api.UpdateGallery)
				apiGroup.DELETE("/galleries/:id", api.DeleteGallery)
				apiGroup.GET("/galleries/:id/images", api.ListGalleryImages)
				apiGroup.POST("/galleries/:id/images", api.AddGalleryImage)
				apiGroup.PUT("/gallery-images/:imageId", api.UpdateGalleryImage)
				apiGroup.DELETE("/gallery-images/:imageId", api.RemoveGalleryImage)

				apiGroup.POST("/cache/purge", api.PurgeCache)
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
			return
		}
		api.ShowNotFound(c)
	})

	return r, nil
}
