package handler

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/blockpress/internal/service"
	"github.com/gin-gonic/gin"
)

const manifestShortNameMax = 12

// GetSEODefaults serves the global SEO defaults.
func (a *API) GetSEODefaults(c *gin.Context) {
	seo, err := a.settings.SEODefaults()
	if err != nil {
		a.fail(c, "load seo defaults", err)
		return
	}
	c.Header("Cache-Control", "public, max-age=60")
	respondOK(c, http.StatusOK, seo)
}

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type,omitempty"`
}

type webManifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description,omitempty"`
	Lang            string         `json:"lang,omitempty"`
	StartURL        string         `json:"start_url"`
	Scope           string         `json:"scope"`
	Display         string         `json:"display"`
	ThemeColor      string         `json:"theme_color"`
	BackgroundColor string         `json:"background_color"`
	Icons           []manifestIcon `json:"icons"`
}

// shortName truncates name to the manifest short_name length on a rune boundary.
func shortName(name string) string {
	if utf8.RuneCountInString(name) <= manifestShortNameMax {
		return name
	}
	return strings.TrimSpace(string([]rune(name)[:manifestShortNameMax]))
}

// ShowManifest serves the web app manifest built from the global settings.
func (a *API) ShowManifest(c *gin.Context) {
	settings := a.layout(c).Settings

	manifest := webManifest{
		Name:            settings.SiteName,
		ShortName:       shortName(settings.SiteName),
		Description:     settings.DefaultDescription,
		Lang:            settings.Locale,
		StartURL:        "/",
		Scope:           "/",
		Display:         "standalone",
		ThemeColor:      settings.ThemeColor,
		BackgroundColor: settings.BackgroundColor,
		Icons:           []manifestIcon{},
	}
	if image := strings.TrimSpace(settings.DefaultOGImage); image != "" {
		manifest.Icons = append(manifest.Icons, manifestIcon{Src: image, Sizes: "any"})
	}

	c.Header("Content-Type", "application/manifest+json; charset=utf-8")
	c.JSON(http.StatusOK, manifest)
}

// ShowRobots serves robots.txt. The admin area is never crawlable.
func (a *API) ShowRobots(c *gin.Context) {
	settings := a.layout(c).Settings

	var b strings.Builder
	b.WriteString("User-agent: *\n")
	if settings.AllowIndexing {
		b.WriteString("Allow: /\n")
		b.WriteString("Disallow: /admin\n")
	} else {
		b.WriteString("Disallow: /\n")
	}
	fmt.Fprintf(&b, "\nSitemap: %s/sitemap.xml\n", a.siteURL)

	c.String(http.StatusOK, b.String())
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// ShowSitemap lists published pages.
func (a *API) ShowSitemap(c *gin.Context) {
	entries, err := a.pages.SitemapEntries()
	if err != nil {
		a.fail(c, "build sitemap", err)
		return
	}

	set := sitemapURLSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, entry := range entries {
		path := "/p/" + entry.Slug
		if entry.Slug == service.HomeSlug {
			path = "/"
		}
		item := sitemapURL{Loc: a.siteURL + path}
		if !entry.UpdatedAt.IsZero() {
			item.LastMod = entry.UpdatedAt.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, item)
	}

	c.XML(http.StatusOK, set)
}
