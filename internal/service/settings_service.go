package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blockpress/internal/cache"
	"github.com/blockpress/internal/db"
	"github.com/blockpress/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultSiteName        = "Blockpress"
	defaultTitleTemplate   = "%s | Blockpress"
	defaultSiteDescription = "A site built with Blockpress."
	defaultLocale          = "en"
	defaultThemeColor      = "#111827"
	defaultBackgroundColor = "#ffffff"

	settingsKey = "settings:global"
)

var (
	ErrSiteNameMissing      = errors.New("site name is required")
	ErrTitleTemplateInvalid = errors.New("title template must contain %s")
	ErrColorInvalid         = errors.New("colour must be a hex value")
)

// SettingsInput 用于更新全局设置。
type SettingsInput struct {
	SiteName           string
	TitleTemplate      string
	DefaultDescription string
	Keywords           string
	DefaultOGImage     string
	TwitterHandle      string
	Locale             string
	ThemeColor         string
	BackgroundColor    string
	AllowIndexing      bool
}

// SEODefaults is the public subset of GlobalSettings served at /api/seo.
type SEODefaults struct {
	SiteName      string   `json:"siteName"`
	TitleTemplate string   `json:"titleTemplate"`
	Description   string   `json:"description"`
	Keywords      []string `json:"keywords"`
	OGImage       string   `json:"ogImage"`
	TwitterHandle string   `json:"twitterHandle"`
	Locale        string   `json:"locale"`
	AllowIndexing bool     `json:"allowIndexing"`
}

// SettingsService 提供全局设置的读取与更新能力。
type SettingsService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewSettingsService 构造 SettingsService。
func NewSettingsService(gdb *gorm.DB, c *cache.Cache) *SettingsService {
	return &SettingsService{db: gdb, cache: c}
}

// DefaultSettings returns the values used before an admin saves anything.
func DefaultSettings() db.GlobalSettings {
	return db.GlobalSettings{
		ID:                 db.GlobalSettingsID,
		SiteName:           defaultSiteName,
		TitleTemplate:      defaultTitleTemplate,
		DefaultDescription: defaultSiteDescription,
		Locale:             defaultLocale,
		ThemeColor:         defaultThemeColor,
		BackgroundColor:    defaultBackgroundColor,
		AllowIndexing:      true,
	}
}

// Get 读取全局设置，首次访问时写入默认值。结果经缓存共享，调用方不要修改。
func (s *SettingsService) Get() (db.GlobalSettings, error) {
	return cache.Fetch(s.cache, settingsKey, []string{cache.TagSettings}, func() (db.GlobalSettings, error) {
		var settings db.GlobalSettings
		defaults := DefaultSettings()
		if err := s.db.Where(db.GlobalSettings{ID: db.GlobalSettingsID}).
			Attrs(defaults).
			FirstOrCreate(&settings).Error; err != nil {
			return settings, fmt.Errorf("load global settings: %w", err)
		}
		return settings, nil
	})
}

// Update validates and upserts the singleton row, then drops cached copies.
func (s *SettingsService) Update(input SettingsInput) (db.GlobalSettings, error) {
	settings, err := sanitizeSettings(input)
	if err != nil {
		return db.GlobalSettings{}, err
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&settings).Error; err != nil {
		return db.GlobalSettings{}, fmt.Errorf("update global settings: %w", err)
	}

	s.cache.Invalidate(cache.TagSettings)
	return s.Get()
}

// SEODefaults returns the SEO subset of the settings.
func (s *SettingsService) SEODefaults() (SEODefaults, error) {
	settings, err := s.Get()
	if err != nil {
		return SEODefaults{}, err
	}
	return SEODefaultsFrom(settings), nil
}

// SEODefaultsFrom maps settings to SEODefaults.
func SEODefaultsFrom(settings db.GlobalSettings) SEODefaults {
	return SEODefaults{
		SiteName:      settings.SiteName,
		TitleTemplate: settings.TitleTemplate,
		Description:   settings.DefaultDescription,
		Keywords:      SplitKeywords(settings.Keywords),
		OGImage:       settings.DefaultOGImage,
		TwitterHandle: settings.TwitterHandle,
		Locale:        settings.Locale,
		AllowIndexing: settings.AllowIndexing,
	}
}

// FormatTitle 按模板生成页面标题，空标题直接返回站点名称。
func FormatTitle(settings db.GlobalSettings, pageTitle string) string {
	title := strings.TrimSpace(pageTitle)
	if title == "" || title == settings.SiteName {
		return settings.SiteName
	}
	template := settings.TitleTemplate
	if !strings.Contains(template, "%s") {
		return title
	}
	return strings.ReplaceAll(template, "%s", title)
}

// NormalizeKeywords trims, de-duplicates (case-insensitively) and re-joins a comma separated list.
func NormalizeKeywords(raw string) string {
	return strings.Join(SplitKeywords(raw), ", ")
}

// SplitKeywords splits a comma separated keyword list.
func SplitKeywords(raw string) []string {
	seen := make(map[string]struct{})
	keywords := make([]string, 0)
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '，' }) {
		keyword := strings.TrimSpace(part)
		if keyword == "" {
			continue
		}
		key := strings.ToLower(keyword)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keywords = append(keywords, keyword)
	}
	return keywords
}

func sanitizeSettings(input SettingsInput) (db.GlobalSettings, error) {
	defaults := DefaultSettings()

	settings := db.GlobalSettings{
		ID:                 db.GlobalSettingsID,
		SiteName:           strings.TrimSpace(input.SiteName),
		TitleTemplate:      strings.TrimSpace(input.TitleTemplate),
		DefaultDescription: strings.TrimSpace(input.DefaultDescription),
		Keywords:           NormalizeKeywords(input.Keywords),
		DefaultOGImage:     strings.TrimSpace(input.DefaultOGImage),
		TwitterHandle:      strings.TrimSpace(input.TwitterHandle),
		Locale:             strings.ToLower(strings.TrimSpace(input.Locale)),
		ThemeColor:         strings.TrimSpace(input.ThemeColor),
		BackgroundColor:    strings.TrimSpace(input.BackgroundColor),
		AllowIndexing:      input.AllowIndexing,
	}

	if settings.SiteName == "" {
		return settings, ErrSiteNameMissing
	}
	if settings.TitleTemplate == "" {
		settings.TitleTemplate = "%s | " + settings.SiteName
	}
	if !strings.Contains(settings.TitleTemplate, "%s") {
		return settings, ErrTitleTemplateInvalid
	}
	if settings.TwitterHandle != "" && !strings.HasPrefix(settings.TwitterHandle, "@") {
		settings.TwitterHandle = "@" + settings.TwitterHandle
	}
	if settings.Locale == "" {
		settings.Locale = defaults.Locale
	}
	if settings.ThemeColor == "" {
		settings.ThemeColor = defaults.ThemeColor
	}
	if settings.BackgroundColor == "" {
		settings.BackgroundColor = defaults.BackgroundColor
	}
	if !validation.IsHexColor(settings.ThemeColor) || !validation.IsHexColor(settings.BackgroundColor) {
		return settings, ErrColorInvalid
	}

	return settings, nil
}
