package handler

import (
	"errors"
	"net/http"

	"github.com/blockpress/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type mediaMetaRequest struct {
	Title   string `json:"title" binding:"max=200"`
	AltText string `json:"altText" binding:"max=300"`
}

// ListMedia returns uploaded media, filtered by ?kind= and ?search=.
func (a *API) ListMedia(c *gin.Context) {
	result, err := a.media.List(service.MediaFilter{
		Search:  c.Query("search"),
		Kind:    c.Query("kind"),
		Page:    parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		PerPage: parsePositiveInt(c.DefaultQuery("perPage", "24"), 24),
	})
	if err != nil {
		a.fail(c, "list media", err)
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

// multipartOverhead leaves room for the form fields around the file part.
const multipartOverhead = 1 << 20

// UploadMedia 接收 multipart 文件并写入存储后端
func (a *API) UploadMedia(c *gin.Context) {
	if a.maxUpload > 0 {
		limit := a.maxUpload + multipartOverhead
		if c.Request.ContentLength > limit {
			respondError(c, http.StatusRequestEntityTooLarge, service.ErrMediaTooLarge.Error())
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, service.ErrMediaTooLarge.Error())
			return
		}
		respondError(c, http.StatusBadRequest, service.ErrMediaMissing.Error())
		return
	}

	body, err := file.Open()
	if err != nil {
		a.fail(c, "open upload", err)
		return
	}
	defer body.Close()

	item, err := a.media.Upload(c.Request.Context(), service.UploadInput{
		FileName: file.Filename,
		Size:     file.Size,
		Body:     body,
		Title:    c.PostForm("title"),
		AltText:  c.PostForm("altText"),
	})
	if err != nil {
		a.fail(c, "upload media", err)
		return
	}

	a.logger.Info("media uploaded",
		zap.String("key", item.StorageKey),
		zap.String("content_type", item.ContentType),
		zap.Int64("size", item.Size),
	)
	respondOK(c, http.StatusCreated, item)
}

// GetMedia returns one media item.
func (a *API) GetMedia(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	item, err := a.media.Get(id)
	if err != nil {
		a.fail(c, "get media", err)
		return
	}
	respondOK(c, http.StatusOK, item)
}

// UpdateMedia changes the title and alt text.
func (a *API) UpdateMedia(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload mediaMetaRequest
	if !bindJSON(c, &payload, "invalid media payload") {
		return
	}
	item, err := a.media.UpdateMeta(id, payload.Title, payload.AltText)
	if err != nil {
		a.fail(c, "update media", err)
		return
	}
	respondOK(c, http.StatusOK, item)
}

// DeleteMedia removes the stored object and its record.
func (a *API) DeleteMedia(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := a.media.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, "delete media", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}
