package db

// Page is a routable content page composed of ordered blocks.
type Page struct {
	Model
	Slug           string      `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Title          string      `gorm:"size:200;not null" json:"title"`
	Description    string      `gorm:"type:text" json:"description"`
	Published      bool        `gorm:"not null;index" json:"published"`
	SEOTitle       string      `gorm:"size:200" json:"seoTitle"`
	SEODescription string      `gorm:"type:text" json:"seoDescription"`
	SEOImageURL    string      `json:"seoImageUrl"`
	Blocks         []PageBlock `gorm:"foreignKey:PageID" json:"blocks,omitempty"`
}
