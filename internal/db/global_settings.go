package db

import "time"

// GlobalSettingsID is the primary key of the singleton settings row.
const GlobalSettingsID = 1

// GlobalSettings 保存站点级 SEO 默认值，只有一行。
type GlobalSettings struct {
	ID                 uint      `gorm:"primarykey" json:"-"`
	SiteName           string    `gorm:"size:120;not null" json:"siteName"`
	TitleTemplate      string    `gorm:"size:200" json:"titleTemplate"`
	DefaultDescription string    `gorm:"type:text" json:"defaultDescription"`
	Keywords           string    `gorm:"type:text" json:"keywords"`
	DefaultOGImage     string    `json:"defaultOgImage"`
	TwitterHandle      string    `gorm:"size:60" json:"twitterHandle"`
	Locale             string    `gorm:"size:20" json:"locale"`
	ThemeColor         string    `gorm:"size:20" json:"themeColor"`
	BackgroundColor    string    `gorm:"size:20" json:"backgroundColor"`
	AllowIndexing      bool      `json:"allowIndexing"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// TableName 自定义表名以保持命名一致。
func (GlobalSettings) TableName() string {
	return "global_settings"
}
