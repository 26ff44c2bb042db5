package handler

import (
	"strings"
	"time"

	"github.com/blockpress/internal/cache"
	"github.com/blockpress/internal/db"
	"github.com/blockpress/internal/service"
	"github.com/blockpress/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options carries the shared dependencies used to build an API.
type Options struct {
	DB             *gorm.DB
	Cache          *cache.Cache
	Storage        storage.Storage
	Logger         *zap.Logger
	SiteBaseURL    string
	MaxUploadBytes int64
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	cache     *cache.Cache
	logger    *zap.Logger
	siteURL   string
	maxUpload int64
	pages     *service.PageService
	blocks    *service.BlockService
	nav       *service.NavigationService
	settings  *service.SettingsService
	media     *service.MediaService
	galleries *service.GalleryService
	auth      *service.AuthService
}

// layoutData is what every public page needs besides its own content.
type layoutData struct {
	Settings db.GlobalSettings
	Header   *db.Header
	Footer   *db.Footer
}

// NewAPI constructs a handler set with shared services.
func NewAPI(opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &API{
		db:        opts.DB,
		cache:     opts.Cache,
		logger:    logger,
		siteURL:   strings.TrimRight(opts.SiteBaseURL, "/"),
		maxUpload: opts.MaxUploadBytes,
		pages:     service.NewPageService(opts.DB, opts.Cache),
		blocks:    service.NewBlockService(opts.DB, opts.Cache),
		nav:       service.NewNavigationService(opts.DB, opts.Cache),
		settings:  service.NewSettingsService(opts.DB, opts.Cache),
		media:     service.NewMediaService(opts.DB, opts.Cache, opts.Storage, opts.MaxUploadBytes),
		galleries: service.NewGalleryService(opts.DB, opts.Cache),
		auth:      service.NewAuthService(opts.DB),
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// layout 在单个请求内只解析一次全局设置与导航。
func (a *API) layout(c *gin.Context) layoutData {
	settings, err := cache.Memo(c, "settings", a.settings.Get)
	if err != nil {
		a.logger.Warn("load settings for layout", zap.Error(err))
		settings = service.DefaultSettings()
	}

	header, err := cache.Memo(c, "header", a.nav.GlobalHeader)
	if err != nil {
		a.logger.Warn("load global header", zap.Error(err))
		header = nil
	}

	footer, err := cache.Memo(c, "footer", a.nav.GlobalFooter)
	if err != nil {
		a.logger.Warn("load global footer", zap.Error(err))
		footer = nil
	}

	return layoutData{Settings: settings, Header: header, Footer: footer}
}

// renderHTML 渲染模板时自动附加站点设置、全局页眉页脚与默认 SEO 信息。
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	layout := a.layout(c)
	settings := layout.Settings

	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["site"]; !exists {
		payload["site"] = settings
	}
	if _, exists := payload["header"]; !exists {
		payload["header"] = layout.Header
	}
	if _, exists := payload["footer"]; !exists {
		payload["footer"] = layout.Footer
	}
	if _, exists := payload["lang"]; !exists {
		payload["lang"] = settings.Locale
	}
	if _, exists := payload["year"]; !exists {
		payload["year"] = time.Now().Year()
	}

	pageTitle, _ := payload["title"].(string)
	meta := metaTags{
		Title:         service.FormatTitle(settings, pageTitle),
		Description:   settings.DefaultDescription,
		Keywords:      service.SplitKeywords(settings.Keywords),
		Image:         settings.DefaultOGImage,
		TwitterHandle: settings.TwitterHandle,
		Locale:        settings.Locale,
		ThemeColor:    settings.ThemeColor,
		Robots:        "index,follow",
		Type:          "website",
	}
	if !settings.AllowIndexing {
		meta.Robots = "noindex,nofollow"
	}
	if override, ok := payload["meta"].(metaOverride); ok {
		meta.apply(override, a.siteURL)
	}
	payload["meta"] = meta

	c.HTML(status, template, payload)
}

// metaTags feeds the <head> of the public layout.
type metaTags struct {
	Title         string
	Description   string
	Keywords      []string
	Image         string
	TwitterHandle string
	Locale        string
	ThemeColor    string
	Robots        string
	Type          string
	Canonical     string
}

// metaOverride carries page level values that replace the site defaults when set.
type metaOverride struct {
	Description string
	Image       string
	Type        string
	Path        string
}

func (m *metaTags) apply(o metaOverride, siteURL string) {
	if strings.TrimSpace(o.Description) != "" {
		m.Description = o.Description
	}
	if strings.TrimSpace(o.Image) != "" {
		m.Image = o.Image
	}
	if o.Type != "" {
		m.Type = o.Type
	}
	if o.Path != "" {
		m.Canonical = siteURL + o.Path
	}
}
