package handler

import (
	"net/http"

	"github.com/blockpress/internal/db"
	"github.com/blockpress/internal/service"
	"github.com/gin-gonic/gin"
)

type blockRequest struct {
	Name    string              `json:"name" binding:"max=200"`
	Type    string              `json:"type" binding:"required"`
	Variant string              `json:"variant"`
	Content db.LocalizedContent `json:"content" binding:"required"`
}

func (r blockRequest) toInput() service.BlockInput {
	return service.BlockInput{
		Name:    r.Name,
		Type:    r.Type,
		Variant: r.Variant,
		Content: r.Content,
	}
}

// ListBlockTypes returns the registered block types with their variants and fields.
func (a *API) ListBlockTypes(c *gin.Context) {
	respondOK(c, http.StatusOK, service.BlockTypes())
}

// ListBlocks returns blocks, optionally filtered by ?type=.
func (a *API) ListBlocks(c *gin.Context) {
	blocks, err := a.blocks.List(c.Query("type"))
	if err != nil {
		a.fail(c, "list blocks", err)
		return
	}
	respondOK(c, http.StatusOK, blocks)
}

// GetBlock returns one block.
func (a *API) GetBlock(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	block, err := a.blocks.Get(id)
	if err != nil {
		a.fail(c, "get block", err)
		return
	}
	respondOK(c, http.StatusOK, block)
}

// CreateBlock creates a block.
func (a *API) CreateBlock(c *gin.Context) {
	var payload blockRequest
	if !bindJSON(c, &payload, "invalid block payload") {
		return
	}
	block, err := a.blocks.Create(payload.toInput())
	if err != nil {
		a.fail(c, "create block", err)
		return
	}
	respondOK(c, http.StatusCreated, block)
}

// UpdateBlock saves a block.
func (a *API) UpdateBlock(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload blockRequest
	if !bindJSON(c, &payload, "invalid block payload") {
		return
	}
	block, err := a.blocks.Update(id, payload.toInput())
	if err != nil {
		a.fail(c, "update block", err)
		return
	}
	respondOK(c, http.StatusOK, block)
}

// DeleteBlock removes a block from the library and from every page.
func (a *API) DeleteBlock(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := a.blocks.Delete(id); err != nil {
		a.fail(c, "delete block", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}
