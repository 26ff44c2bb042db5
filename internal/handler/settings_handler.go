package handler

import (
	"net/http"

	"github.com/blockpress/internal/service"
	"github.com/gin-gonic/gin"
)

type settingsRequest struct {
	SiteName           string `json:"siteName" binding:"required,max=120"`
	TitleTemplate      string `json:"titleTemplate" binding:"max=200"`
	DefaultDescription string `json:"defaultDescription"`
	Keywords           string `json:"keywords"`
	DefaultOGImage     string `json:"defaultOgImage"`
	TwitterHandle      string `json:"twitterHandle" binding:"max=60"`
	Locale             string `json:"locale" binding:"max=20"`
	ThemeColor         string `json:"themeColor" binding:"omitempty,hexcolor"`
	BackgroundColor    string `json:"backgroundColor" binding:"omitempty,hexcolor"`
	AllowIndexing      bool   `json:"allowIndexing"`
}

func (r settingsRequest) toInput() service.SettingsInput {
	return service.SettingsInput{
		SiteName:           r.SiteName,
		TitleTemplate:      r.TitleTemplate,
		DefaultDescription: r.DefaultDescription,
		Keywords:           r.Keywords,
		DefaultOGImage:     r.DefaultOGImage,
		TwitterHandle:      r.TwitterHandle,
		Locale:             r.Locale,
		ThemeColor:         r.ThemeColor,
		BackgroundColor:    r.BackgroundColor,
		AllowIndexing:      r.AllowIndexing,
	}
}

// GetSettings returns the global settings.
func (a *API) GetSettings(c *gin.Context) {
	settings, err := a.settings.Get()
	if err != nil {
		a.fail(c, "load settings", err)
		return
	}
	respondOK(c, http.StatusOK, settings)
}

// UpdateSettings saves the global settings.
func (a *API) UpdateSettings(c *gin.Context) {
	var payload settingsRequest
	if !bindJSON(c, &payload, "invalid settings payload") {
		return
	}
	settings, err := a.settings.Update(payload.toInput())
	if err != nil {
		a.fail(c, "update settings", err)
		return
	}
	respondOK(c, http.StatusOK, settings)
}
