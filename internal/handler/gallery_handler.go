package handler

import (
	"errors"
	"net/http"

	"github.com/blockpress/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const publicGalleryPageSize = 12

type galleryRequest struct {
	Slug        string `json:"slug" binding:"omitempty,slug"`
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
}

func (r galleryRequest) toInput() service.GalleryInput {
	return service.GalleryInput{
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
	}
}

type galleryImageRequest struct {
	MediaID   uint   `json:"mediaId"`
	Caption   string `json:"caption"`
	Status    string `json:"status" binding:"omitempty,oneof=published draft"`
	SortOrder int    `json:"sortOrder"`
}

func (r galleryImageRequest) toInput() service.GalleryImageInput {
	return service.GalleryImageInput{
		MediaID:   r.MediaID,
		Caption:   r.Caption,
		Status:    r.Status,
		SortOrder: r.SortOrder,
	}
}

// ListGalleries returns every gallery.
func (a *API) ListGalleries(c *gin.Context) {
	galleries, err := a.galleries.ListGalleries()
	if err != nil {
		a.fail(c, "list galleries", err)
		return
	}
	respondOK(c, http.StatusOK, galleries)
}

// GetGallery returns a gallery with all its images.
func (a *API) GetGallery(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	gallery, err := a.galleries.GetGallery(id)
	if err != nil {
		a.fail(c, "get gallery", err)
		return
	}
	respondOK(c, http.StatusOK, gallery)
}

// CreateGallery creates a gallery.
func (a *API) CreateGallery(c *gin.Context) {
	var payload galleryRequest
	if !bindJSON(c, &payload, "invalid gallery payload") {
		return
	}
	gallery, err := a.galleries.CreateGallery(payload.toInput())
	if err != nil {
		a.fail(c, "create gallery", err)
		return
	}
	respondOK(c, http.StatusCreated, gallery)
}

// UpdateGallery saves gallery fields.
func (a *API) UpdateGallery(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload galleryRequest
	if !bindJSON(c, &payload, "invalid gallery payload") {
		return
	}
	gallery, err := a.galleries.UpdateGallery(id, payload.toInput())
	if err != nil {
		a.fail(c, "update gallery", err)
		return
	}
	respondOK(c, http.StatusOK, gallery)
}

// DeleteGallery removes a gallery and its image rows.
func (a *API) DeleteGallery(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := a.galleries.DeleteGallery(id); err != nil {
		a.fail(c, "delete gallery", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

// ListGalleryImages returns the images of a gallery, filtered by ?status=.
func (a *API) ListGalleryImages(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	result, err := a.galleries.ListImages(service.GalleryImageFilter{
		GalleryID: id,
		Status:    c.Query("status"),
		Page:      parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		PerPage:   parsePositiveInt(c.DefaultQuery("perPage", "50"), 50),
	})
	if err != nil {
		a.fail(c, "list gallery images", err)
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

// AddGalleryImage attaches a media item to a gallery.
func (a *API) AddGalleryImage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload galleryImageRequest
	if !bindJSON(c, &payload, "invalid gallery image payload") {
		return
	}
	if payload.MediaID == 0 {
		respondError(c, http.StatusBadRequest, "mediaId is required")
		return
	}
	image, err := a.galleries.AddImage(id, payload.toInput())
	if err != nil {
		a.fail(c, "add gallery image", err)
		return
	}
	respondOK(c, http.StatusCreated, image)
}

// UpdateGalleryImage changes caption, status and order of a gallery image.
func (a *API) UpdateGalleryImage(c *gin.Context) {
	imageID, err := parseUintParam(c, "imageId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	var payload galleryImageRequest
	if !bindJSON(c, &payload, "invalid gallery image payload") {
		return
	}
	image, err := a.galleries.UpdateImage(imageID, payload.toInput())
	if err != nil {
		a.fail(c, "update gallery image", err)
		return
	}
	respondOK(c, http.StatusOK, image)
}

// RemoveGalleryImage detaches an image from its gallery.
func (a *API) RemoveGalleryImage(c *gin.Context) {
	imageID, err := parseUintParam(c, "imageId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.galleries.RemoveImage(imageID); err != nil {
		a.fail(c, "remove gallery image", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": imageID})
}

// ShowGallery renders the published images of a gallery.
func (a *API) ShowGallery(c *gin.Context) {
	page := parsePositiveInt(c.DefaultQuery("page", "1"), 1)
	result, err := a.galleries.PublishedBySlug(c.Param("slug"), page, publicGalleryPageSize)
	if err != nil {
		if errors.Is(err, service.ErrGalleryNotFound) {
			a.ShowNotFound(c)
			return
		}
		a.logger.Error("load gallery", zap.String("slug", c.Param("slug")), zap.Error(err))
		a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{
			"title": "Error",
			"error": "The gallery could not be loaded",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "gallery.html", gin.H{
		"title":      result.Gallery.Name,
		"gallery":    result.Gallery,
		"items":      result.Images.Items,
		"page":       result.Images.Page,
		"totalPages": result.Images.TotalPages,
		"hasMore":    result.Images.Page < result.Images.TotalPages,
		"nextPage":   result.Images.Page + 1,
		"meta": metaOverride{
			Description: result.Gallery.Description,
			Path:        "/gallery/" + result.Gallery.Slug,
		},
	})
}
