package db

// Gallery groups media items for display on the public site.
type Gallery struct {
	Model
	Slug        string         `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Images      []GalleryImage `gorm:"foreignKey:GalleryID" json:"images,omitempty"`
}

// GalleryImage 定义作品集中的一张图片
type GalleryImage struct {
	Model
	GalleryID uint      `gorm:"not null;index" json:"galleryId"`
	MediaID   uint      `gorm:"not null;index" json:"mediaId"`
	Media     MediaItem `json:"media"`
	Caption   string    `json:"caption"`
	Status    string    `gorm:"size:20;not null" json:"status"` // published, draft
	SortOrder int       `gorm:"not null" json:"sortOrder"`
}
