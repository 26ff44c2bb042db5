package db

// Header 是站点顶部导航配置，同一时间最多一个 IsGlobal。
type Header struct {
	Model
	Name     string           `gorm:"size:120;not null" json:"name"`
	Variant  string           `gorm:"size:50;not null" json:"variant"`
	LogoURL  string           `json:"logoUrl"`
	IsGlobal bool             `gorm:"not null;index" json:"isGlobal"`
	Links    []NavigationLink `gorm:"foreignKey:HeaderID" json:"links"`
}

// Footer 是站点底部导航配置，同一时间最多一个 IsGlobal。
type Footer struct {
	Model
	Name      string           `gorm:"size:120;not null" json:"name"`
	Variant   string           `gorm:"size:50;not null" json:"variant"`
	Copyright string           `json:"copyright"`
	IsGlobal  bool             `gorm:"not null;index" json:"isGlobal"`
	Links     []NavigationLink `gorm:"foreignKey:FooterID" json:"links"`
}

// NavigationLink belongs to exactly one header or footer.
type NavigationLink struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	HeaderID     *uint  `gorm:"index" json:"headerId,omitempty"`
	FooterID     *uint  `gorm:"index" json:"footerId,omitempty"`
	Label        string `gorm:"size:120;not null" json:"label"`
	URL          string `gorm:"size:500;not null" json:"url"`
	Position     int    `gorm:"not null" json:"position"`
	OpenInNewTab bool   `json:"openInNewTab"`
}
