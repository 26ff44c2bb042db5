package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blockpress/internal/cache"
	"github.com/blockpress/internal/config"
	"github.com/blockpress/internal/db"
	"github.com/blockpress/internal/handler"
	"github.com/blockpress/internal/service"
	"github.com/blockpress/internal/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type routerFixture struct {
	engine *gin.Engine
	cfg    config.AppConfig
	db     *gorm.DB
	cache  *cache.Cache
}

func setupTestRouter(t *testing.T) routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open(fmt.Sprintf("file:router-%d?mode=memory&cache=shared", time.Now().UnixNano()), logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := config.AppConfig{
		SessionSecret: "test-secret",
		UploadDir:     t.TempDir(),
		UploadURLPath: "/static/uploads",
		SiteBaseURL:   "https://example.com",
		Storage:       config.StorageConfig{Driver: config.StorageDriverLocal},
	}
	c := cache.New(time.Minute)
	api := handler.NewAPI(handler.Options{
		DB:             gdb,
		Cache:          c,
		Storage:        storage.NewLocalStorage(cfg.UploadDir, cfg.UploadURLPath),
		SiteBaseURL:    cfg.SiteBaseURL,
		MaxUploadBytes: 1 << 20,
	})

	r, err := SetupRouter(api, cfg, nil)
	if err != nil {
		t.Fatalf("SetupRouter returned error: %v", err)
	}
	return routerFixture{engine: r, cfg: cfg, db: gdb, cache: c}
}

func (f routerFixture) get(path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	f.engine.ServeHTTP(rr, req)
	return rr
}

// seedSite creates a published home page with a hero and a rich text block,
// a global header and footer, a draft page and a nested published page.
func (f routerFixture) seedSite(t *testing.T) {
	t.Helper()
	pages := service.NewPageService(f.db, f.cache)
	blocks := service.NewBlockService(f.db, f.cache)
	nav := service.NewNavigationService(f.db, f.cache)

	hero, err := blocks.Create(service.BlockInput{
		Name: "Hero",
		Type: service.BlockTypeHero,
		Content: db.LocalizedContent{
			"en": {"title": "Welcome home"},
			"de": {"title": "Willkommen"},
		},
	})
	if err != nil {
		t.Fatalf("create hero: %v", err)
	}
	text, err := blocks.Create(service.BlockInput{
		Name:    "Intro",
		Type:    service.BlockTypeRichText,
		Content: db.LocalizedContent{"en": {"body": "**Bold** text"}},
	})
	if err != nil {
		t.Fatalf("create rich text: %v", err)
	}

	home, err := pages.Create(service.PageInput{Slug: "home", Title: "Home", Published: true, Description: "Start here"})
	if err != nil {
		t.Fatalf("create home: %v", err)
	}
	if _, err := pages.SetBlocks(home.ID, []uint{hero.ID, text.ID}); err != nil {
		t.Fatalf("set blocks: %v", err)
	}
	if _, err := pages.Create(service.PageInput{Slug: "draft", Title: "Draft"}); err != nil {
		t.Fatalf("create draft: %v", err)
	}
	docs, err := pages.Create(service.PageInput{Slug: "docs/intro", Title: "Intro", Published: true})
	if err != nil {
		t.Fatalf("create docs page: %v", err)
	}
	if _, err := pages.SetBlocks(docs.ID, []uint{hero.ID}); err != nil {
		t.Fatalf("set docs blocks: %v", err)
	}

	if _, err := nav.CreateHeader(service.HeaderInput{
		Name:  "Main",
		Links: []service.LinkInput{{Label: "Docs", URL: "/p/docs/intro"}},
	}); err != nil {
		t.Fatalf("create header: %v", err)
	}
	if _, err := nav.CreateFooter(service.FooterInput{
		Name:      "Footer",
		Variant:   "simple",
		Copyright: "Acme Inc.",
	}); err != nil {
		t.Fatalf("create footer: %v", err)
	}
}

func TestSetupRouterServesUploads(t *testing.T) {
	f := setupTestRouter(t)
	r, cfg := f.engine, f.cfg

	fileContent := []byte("hello uploads")
	if err := os.WriteFile(filepath.Join(cfg.UploadDir, "example.txt"), fileContent, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/static/uploads/example.txt", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != string(fileContent) {
		t.Fatalf("unexpected body, got %q", rr.Body.String())
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	r := setupTestRouter(t).engine

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/api/pages", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success || body.Error == "" {
		t.Fatalf("expected failure envelope, got %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/admin/login" {
		t.Fatalf("expected redirect to login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestPublicEndpoints(t *testing.T) {
	r := setupTestRouter(t).engine

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Disallow: /admin") {
		t.Fatalf("unexpected robots.txt: %d %q", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Sitemap: https://example.com/sitemap.xml") {
		t.Fatalf("expected sitemap line, got %q", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected healthy status, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusNotFound || !strings.Contains(rr.Body.String(), "Page not found") {
		t.Fatalf("expected not found page without a home page, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/missing", nil))
	if rr.Code != http.StatusNotFound || !strings.Contains(rr.Body.String(), `"success":false`) {
		t.Fatalf("expected JSON not found envelope, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestHomePageRendersLayoutAndBlocks(t *testing.T) {
	f := setupTestRouter(t)
	f.seedSite(t)

	rr := f.get("/")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{
		"<title>Home | Blockpress</title>",
		`<meta name="description" content="Start here">`,
		`<link rel="canonical" href="https://example.com/">`,
		"site-header--default",
		`<a href="/p/docs/intro">Docs</a>`,
		"<h1>Welcome home</h1>",
		"<strong>Bold</strong> text",
		"site-footer--simple",
		"Acme Inc.",
		`<html lang="en">`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected home page to contain %q, got:\n%s", want, body)
		}
	}
}

func TestPublishedPageRoutes(t *testing.T) {
	f := setupTestRouter(t)
	f.seedSite(t)

	rr := f.get("/p/docs/intro")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "<title>Intro | Blockpress</title>") {
		t.Fatalf("expected nested page to render, got %d", rr.Code)
	}

	rr = f.get("/p/home")
	if rr.Code != http.StatusMovedPermanently || rr.Header().Get("Location") != "/" {
		t.Fatalf("expected /p/home to redirect to /, got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = f.get("/p/draft")
	if rr.Code != http.StatusNotFound || !strings.Contains(rr.Body.String(), "Page not found") {
		t.Fatalf("expected draft page to be hidden, got %d", rr.Code)
	}

	rr = f.get("/p/missing")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown page, got %d", rr.Code)
	}
}

func TestPageLanguageSelection(t *testing.T) {
	f := setupTestRouter(t)
	f.seedSite(t)

	cases := []struct {
		name     string
		path     string
		headers  []string
		wantText string
		wantLang string
	}{
		{name: "site default", path: "/", wantText: "Welcome home", wantLang: "en"},
		{name: "query", path: "/?lang=de", headers: []string{"Accept-Language", "en"}, wantText: "Willkommen", wantLang: "de"},
		{name: "accept language", path: "/", headers: []string{"Accept-Language", "fr, de-AT;q=0.8"}, wantText: "Willkommen", wantLang: "de"},
		{name: "unmatched header", path: "/", headers: []string{"Accept-Language", "ja"}, wantText: "Welcome home", wantLang: "en"},
	}

	for _, tc := range cases {
		rr := f.get(tc.path, tc.headers...)
		body := rr.Body.String()
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.name, rr.Code)
		}
		if !strings.Contains(body, "<h1>"+tc.wantText+"</h1>") {
			t.Fatalf("%s: expected %q in body", tc.name, tc.wantText)
		}
		if !strings.Contains(body, `<html lang="`+tc.wantLang+`">`) {
			t.Fatalf("%s: expected lang %q", tc.name, tc.wantLang)
		}
	}
}

func TestGalleryPage(t *testing.T) {
	f := setupTestRouter(t)
	galleries := service.NewGalleryService(f.db, f.cache)

	media := db.MediaItem{
		StorageKey:  "media/a.png",
		URL:         "/static/uploads/media/a.png",
		ContentType: "image/png",
		AltText:     "Sunset over the bay",
	}
	if err := f.db.Create(&media).Error; err != nil {
		t.Fatalf("create media: %v", err)
	}
	gallery, err := galleries.CreateGallery(service.GalleryInput{Name: "Shots", Slug: "shots", Description: "Holiday photos"})
	if err != nil {
		t.Fatalf("create gallery: %v", err)
	}
	if _, err := galleries.AddImage(gallery.ID, service.GalleryImageInput{MediaID: media.ID, Caption: "Evening"}); err != nil {
		t.Fatalf("add image: %v", err)
	}

	rr := f.get("/gallery/shots")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{
		"<h1>Shots</h1>",
		`src="/static/uploads/media/a.png"`,
		`alt="Sunset over the bay"`,
		"<figcaption>Evening</figcaption>",
		`<link rel="canonical" href="https://example.com/gallery/shots">`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected gallery page to contain %q, got:\n%s", want, body)
		}
	}

	if rr := f.get("/gallery/missing"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown gallery, got %d", rr.Code)
	}
}

func TestSitemapListsPublishedPages(t *testing.T) {
	f := setupTestRouter(t)
	f.seedSite(t)

	rr := f.get("/sitemap.xml")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`,
		"<loc>https://example.com/</loc>",
		"<loc>https://example.com/p/docs/intro</loc>",
		"<lastmod>",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected sitemap to contain %q, got:\n%s", want, body)
		}
	}
	if strings.Contains(body, "draft") {
		t.Fatalf("draft page must not be listed:\n%s", body)
	}
}
