package handler

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"github.com/blockpress/internal/cache"
	"github.com/blockpress/internal/db"
	"github.com/blockpress/internal/service"
	"github.com/blockpress/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

const galleryBlockPageSize = 24

func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}

// buildBlockViews resolves localized fields and derived content for each block of a page.
func (a *API) buildBlockViews(c *gin.Context, blocks []db.PageBlock, locale, fallback string) []view.BlockView {
	views := make([]view.BlockView, 0, len(blocks))
	for _, pb := range blocks {
		block := pb.Block
		fields := block.Content.For(locale, fallback)
		item := view.BlockView{
			ID:      block.ID,
			Type:    block.Type,
			Variant: block.Variant,
			Fields:  fields,
		}

		switch block.Type {
		case service.BlockTypeRichText:
			body, err := renderMarkdown(stringField(fields, "body"))
			if err != nil {
				a.logger.Warn("render rich text block", zap.Uint("block_id", block.ID), zap.Error(err))
				continue
			}
			item.Body = body
		case service.BlockTypeGallery:
			slug := stringField(fields, "gallerySlug")
			if slug == "" {
				continue
			}
			gallery, err := cache.Memo(c, "gallery:"+slug, func() (service.PublicGallery, error) {
				return a.galleries.PublishedBySlug(slug, 1, galleryBlockPageSize)
			})
			if err != nil {
				if !errors.Is(err, service.ErrGalleryNotFound) {
					a.logger.Warn("load gallery block", zap.String("slug", slug), zap.Error(err))
				}
				continue
			}
			item.Gallery = &gallery
		}

		views = append(views, item)
	}
	return views
}

func stringField(fields map[string]interface{}, key string) string {
	value, ok := fields[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
