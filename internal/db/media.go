package db

// MediaItem 记录一个已上传到存储后端的文件。
type MediaItem struct {
	Model
	StorageKey  string `gorm:"size:255;uniqueIndex;not null" json:"storageKey"`
	URL         string `gorm:"not null" json:"url"`
	FileName    string `json:"fileName"`
	ContentType string `gorm:"size:100" json:"contentType"`
	Size        int64  `json:"size"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Title       string `json:"title"`
	AltText     string `json:"altText"`
}

// TableName keeps the table name stable.
func (MediaItem) TableName() string {
	return "media_items"
}
