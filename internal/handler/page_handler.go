package handler

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/blockpress/internal/cache"
	"github.com/blockpress/internal/db"
	"github.com/blockpress/internal/locale"
	"github.com/blockpress/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type pageRequest struct {
	Slug           string `json:"slug" binding:"required,slug,max=200"`
	Title          string `json:"title" binding:"required,max=200"`
	Description    string `json:"description"`
	Published      bool   `json:"published"`
	SEOTitle       string `json:"seoTitle" binding:"max=200"`
	SEODescription string `json:"seoDescription"`
	SEOImageURL    string `json:"seoImageUrl"`
}

func (r pageRequest) toInput() service.PageInput {
	return service.PageInput{
		Slug:           r.Slug,
		Title:          r.Title,
		Description:    r.Description,
		Published:      r.Published,
		SEOTitle:       r.SEOTitle,
		SEODescription: r.SEODescription,
		SEOImageURL:    r.SEOImageURL,
	}
}

type pageBlocksRequest struct {
	BlockIDs []uint `json:"blockIds"`
}

type duplicatePageRequest struct {
	Slug string `json:"slug" binding:"required,slug"`
}

// ListPages returns pages for the admin list.
func (a *API) ListPages(c *gin.Context) {
	result, err := a.pages.List(service.PageFilter{
		Search:    c.Query("search"),
		Published: parseOptionalBool(c.Query("published")),
		Page:      parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		PerPage:   parsePositiveInt(c.DefaultQuery("perPage", "20"), 20),
	})
	if err != nil {
		a.fail(c, "list pages", err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"items":      result.Items,
		"total":      result.Total,
		"page":       result.Page,
		"perPage":    result.PerPage,
		"totalPages": result.TotalPages,
	})
}

// GetPage returns a page with its ordered blocks.
func (a *API) GetPage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	page, err := a.pages.Get(id)
	if err != nil {
		a.fail(c, "get page", err)
		return
	}
	respondOK(c, http.StatusOK, page)
}

// CreatePage creates a page. A duplicate slug answers 409.
func (a *API) CreatePage(c *gin.Context) {
	var payload pageRequest
	if !bindJSON(c, &payload, "invalid page payload") {
		return
	}
	page, err := a.pages.Create(payload.toInput())
	if err != nil {
		a.fail(c, "create page", err)
		return
	}
	respondOK(c, http.StatusCreated, page)
}

// UpdatePage saves page fields.
func (a *API) UpdatePage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload pageRequest
	if !bindJSON(c, &payload, "invalid page payload") {
		return
	}
	page, err := a.pages.Update(id, payload.toInput())
	if err != nil {
		a.fail(c, "update page", err)
		return
	}
	respondOK(c, http.StatusOK, page)
}

// DeletePage removes a page.
func (a *API) DeletePage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := a.pages.Delete(id); err != nil {
		a.fail(c, "delete page", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

// SetPageBlocks replaces the block ordering of a page.
func (a *API) SetPageBlocks(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload pageBlocksRequest
	if !bindJSON(c, &payload, "blockIds must be a list of block ids") {
		return
	}
	page, err := a.pages.SetBlocks(id, payload.BlockIDs)
	if err != nil {
		a.fail(c, "set page blocks", err)
		return
	}
	respondOK(c, http.StatusOK, page)
}

// DuplicatePage copies a page under a new slug.
func (a *API) DuplicatePage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload duplicatePageRequest
	if !bindJSON(c, &payload, "a new slug is required") {
		return
	}
	page, err := a.pages.Duplicate(id, payload.Slug)
	if err != nil {
		a.fail(c, "duplicate page", err)
		return
	}
	respondOK(c, http.StatusCreated, page)
}

// ShowHome renders the page whose slug is "home".
func (a *API) ShowHome(c *gin.Context) {
	a.renderPublishedPage(c, service.HomeSlug)
}

// ShowPage renders a published page from the wildcard slug.
func (a *API) ShowPage(c *gin.Context) {
	slug := strings.Trim(c.Param("slug"), "/")
	if slug == service.HomeSlug {
		c.Redirect(http.StatusMovedPermanently, "/")
		return
	}
	a.renderPublishedPage(c, slug)
}

func (a *API) renderPublishedPage(c *gin.Context, slug string) {
	page, err := cache.Memo(c, "page:"+slug, func() (*db.Page, error) {
		return a.pages.GetPublished(slug)
	})
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			a.ShowNotFound(c)
			return
		}
		a.logger.Error("load page", zap.String("slug", slug), zap.Error(err))
		a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{
			"title": "Error",
			"error": "The page could not be loaded",
		})
		return
	}

	settings := a.layout(c).Settings
	lang := pickLocale(c, settings.Locale, page.Blocks)

	title := page.Title
	if page.SEOTitle != "" {
		title = page.SEOTitle
	}
	description := page.SEODescription
	if description == "" {
		description = page.Description
	}
	path := "/p/" + page.Slug
	if page.Slug == service.HomeSlug {
		path = "/"
	}

	a.renderHTML(c, http.StatusOK, "page.html", gin.H{
		"title":  title,
		"page":   page,
		"blocks": a.buildBlockViews(c, page.Blocks, lang, settings.Locale),
		"lang":   lang,
		"meta": metaOverride{
			Description: description,
			Image:       page.SEOImageURL,
			Type:        "article",
			Path:        path,
		},
	})
}

// ShowNotFound renders the 404 page inside the site layout.
func (a *API) ShowNotFound(c *gin.Context) {
	a.renderHTML(c, http.StatusNotFound, "not_found.html", gin.H{
		"title": "Not found",
	})
}

// pickLocale 优先使用 ?lang=，其次按 Accept-Language 匹配页面区块已有的语言。
func pickLocale(c *gin.Context, fallback string, blocks []db.PageBlock) string {
	seen := map[string]struct{}{}
	var available []string
	for _, pb := range blocks {
		for _, tag := range pb.Block.Content.Locales() {
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				available = append(available, tag)
			}
		}
	}
	sort.Strings(available)
	return locale.Resolve(c.Query("lang"), c.GetHeader("Accept-Language"), fallback, available)
}
