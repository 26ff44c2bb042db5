package handler

import (
	"net/http"

	"github.com/blockpress/internal/service"
	"github.com/gin-gonic/gin"
)

type linkRequest struct {
	Label        string `json:"label" binding:"max=120"`
	URL          string `json:"url"`
	OpenInNewTab bool   `json:"openInNewTab"`
}

type headerRequest struct {
	Name    string        `json:"name" binding:"required,max=120"`
	Variant string        `json:"variant"`
	LogoURL string        `json:"logoUrl"`
	Links   []linkRequest `json:"links" binding:"dive"`
}

type footerRequest struct {
	Name      string        `json:"name" binding:"required,max=120"`
	Variant   string        `json:"variant"`
	Copyright string        `json:"copyright"`
	Links     []linkRequest `json:"links" binding:"dive"`
}

func toLinkInputs(links []linkRequest) []service.LinkInput {
	inputs := make([]service.LinkInput, 0, len(links))
	for _, link := range links {
		inputs = append(inputs, service.LinkInput{
			Label:        link.Label,
			URL:          link.URL,
			OpenInNewTab: link.OpenInNewTab,
		})
	}
	return inputs
}

func (r headerRequest) toInput() service.HeaderInput {
	return service.HeaderInput{
		Name:    r.Name,
		Variant: r.Variant,
		LogoURL: r.LogoURL,
		Links:   toLinkInputs(r.Links),
	}
}

func (r footerRequest) toInput() service.FooterInput {
	return service.FooterInput{
		Name:      r.Name,
		Variant:   r.Variant,
		Copyright: r.Copyright,
		Links:     toLinkInputs(r.Links),
	}
}

// ListNavigationVariants returns the selectable header and footer variants.
func (a *API) ListNavigationVariants(c *gin.Context) {
	respondOK(c, http.StatusOK, gin.H{
		"header": service.HeaderVariants,
		"footer": service.FooterVariants,
	})
}

// ListHeaders returns every header.
func (a *API) ListHeaders(c *gin.Context) {
	headers, err := a.nav.ListHeaders()
	if err != nil {
		a.fail(c, "list headers", err)
		return
	}
	respondOK(c, http.StatusOK, headers)
}

// GetHeader returns one header.
func (a *API) GetHeader(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	header, err := a.nav.GetHeader(id)
	if err != nil {
		a.fail(c, "get header", err)
		return
	}
	respondOK(c, http.StatusOK, header)
}

// CreateHeader creates a header.
func (a *API) CreateHeader(c *gin.Context) {
	var payload headerRequest
	if !bindJSON(c, &payload, "invalid header payload") {
		return
	}
	header, err := a.nav.CreateHeader(payload.toInput())
	if err != nil {
		a.fail(c, "create header", err)
		return
	}
	respondOK(c, http.StatusCreated, header)
}

// UpdateHeader saves a header and its links.
func (a *API) UpdateHeader(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload headerRequest
	if !bindJSON(c, &payload, "invalid header payload") {
		return
	}
	header, err := a.nav.UpdateHeader(id, payload.toInput())
	if err != nil {
		a.fail(c, "update header", err)
		return
	}
	respondOK(c, http.StatusOK, header)
}

// DeleteHeader removes a header.
func (a *API) DeleteHeader(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := a.nav.DeleteHeader(id); err != nil {
		a.fail(c, "delete header", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

// SetGlobalHeader makes a header the site-wide one.
func (a *API) SetGlobalHeader(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	header, err := a.nav.SetGlobalHeader(id)
	if err != nil {
		a.fail(c, "set global header", err)
		return
	}
	respondOK(c, http.StatusOK, header)
}

// ListFooters returns every footer.
func (a *API) ListFooters(c *gin.Context) {
	footers, err := a.nav.ListFooters()
	if err != nil {
		a.fail(c, "list footers", err)
		return
	}
	respondOK(c, http.StatusOK, footers)
}

// GetFooter returns one footer.
func (a *API) GetFooter(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	footer, err := a.nav.GetFooter(id)
	if err != nil {
		a.fail(c, "get footer", err)
		return
	}
	respondOK(c, http.StatusOK, footer)
}

// CreateFooter creates a footer.
func (a *API) CreateFooter(c *gin.Context) {
	var payload footerRequest
	if !bindJSON(c, &payload, "invalid footer payload") {
		return
	}
	footer, err := a.nav.CreateFooter(payload.toInput())
	if err != nil {
		a.fail(c, "create footer", err)
		return
	}
	respondOK(c, http.StatusCreated, footer)
}

// UpdateFooter saves a footer and its links.
func (a *API) UpdateFooter(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload footerRequest
	if !bindJSON(c, &payload, "invalid footer payload") {
		return
	}
	footer, err := a.nav.UpdateFooter(id, payload.toInput())
	if err != nil {
		a.fail(c, "update footer", err)
		return
	}
	respondOK(c, http.StatusOK, footer)
}

// DeleteFooter removes a footer.
func (a *API) DeleteFooter(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := a.nav.DeleteFooter(id); err != nil {
		a.fail(c, "delete footer", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

// SetGlobalFooter makes a footer the site-wide one.
func (a *API) SetGlobalFooter(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	footer, err := a.nav.SetGlobalFooter(id)
	if err != nil {
		a.fail(c, "set global footer", err)
		return
	}
	respondOK(c, http.StatusOK, footer)
}
