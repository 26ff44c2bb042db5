package handler

import (
	"net/http"

	"github.com/blockpress/internal/db"
	"github.com/blockpress/internal/selection"
	"github.com/blockpress/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	selectedHeaderKey = "selected_header_id"
	selectedFooterKey = "selected_footer_id"
)

type selectRequest struct {
	ID uint `json:"id" binding:"required"`
}

func (a *API) headerSelection() *selection.Store[db.Header] {
	return selection.NewStore[db.Header](selectedHeaderKey, a.nav.GetHeader, service.ErrHeaderNotFound)
}

func (a *API) footerSelection() *selection.Store[db.Footer] {
	return selection.NewStore[db.Footer](selectedFooterKey, a.nav.GetFooter, service.ErrFooterNotFound)
}

// GetHeaderSelection returns the header currently selected in the admin session.
func (a *API) GetHeaderSelection(c *gin.Context) {
	state, err := a.headerSelection().Current(sessions.Default(c))
	if err != nil {
		a.failWithData(c, "load header selection", err, state)
		return
	}
	respondOK(c, http.StatusOK, state)
}

// SelectHeader stores the selected header id in the session.
func (a *API) SelectHeader(c *gin.Context) {
	var payload selectRequest
	if !bindJSON(c, &payload, "id is required") {
		return
	}
	state, err := a.headerSelection().Select(sessions.Default(c), payload.ID)
	if err != nil {
		a.failWithData(c, "select header", err, state)
		return
	}
	respondOK(c, http.StatusOK, state)
}

// ClearHeaderSelection drops the selected header.
func (a *API) ClearHeaderSelection(c *gin.Context) {
	state, err := a.headerSelection().Clear(sessions.Default(c))
	if err != nil {
		a.failWithData(c, "clear header selection", err, state)
		return
	}
	respondOK(c, http.StatusOK, state)
}

// GetFooterSelection returns the footer currently selected in the admin session.
func (a *API) GetFooterSelection(c *gin.Context) {
	state, err := a.footerSelection().Current(sessions.Default(c))
	if err != nil {
		a.failWithData(c, "load footer selection", err, state)
		return
	}
	respondOK(c, http.StatusOK, state)
}

// SelectFooter stores the selected footer id in the session.
func (a *API) SelectFooter(c *gin.Context) {
	var payload selectRequest
	if !bindJSON(c, &payload, "id is required") {
		return
	}
	state, err := a.footerSelection().Select(sessions.Default(c), payload.ID)
	if err != nil {
		a.failWithData(c, "select footer", err, state)
		return
	}
	respondOK(c, http.StatusOK, state)
}

// ClearFooterSelection drops the selected footer.
func (a *API) ClearFooterSelection(c *gin.Context) {
	state, err := a.footerSelection().Clear(sessions.Default(c))
	if err != nil {
		a.failWithData(c, "clear footer selection", err, state)
		return
	}
	respondOK(c, http.StatusOK, state)
}
