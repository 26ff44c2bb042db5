package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/blockpress/internal/cache"
	"github.com/blockpress/internal/db"
	"github.com/blockpress/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"gorm.io/gorm"
)

var (
	ErrMediaNotFound       = errors.New("media not found")
	ErrMediaMissing        = errors.New("media file is required")
	ErrMediaTypeNotAllowed = errors.New("media type is not allowed")
	ErrMediaTooLarge       = errors.New("media file is too large")
	ErrMediaInUse          = errors.New("media is used by a gallery")
)

var allowedMediaTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/webp":      true,
	"image/bmp":       true,
	"application/pdf": true,
	"video/mp4":       true,
}

// UploadInput describes one file to store.
type UploadInput struct {
	FileName string
	Size     int64
	Body     io.ReadSeeker
	Title    string
	AltText  string
}

// MediaFilter describes filters for listing media.
type MediaFilter struct {
	Search  string
	Kind    string // image, video, document
	Page    int
	PerPage int
}

// MediaListResult aggregates paginated media results.
type MediaListResult struct {
	Items      []db.MediaItem
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// MediaService stores uploads through a Storage backend and tracks them in the database.
type MediaService struct {
	db       *gorm.DB
	cache    *cache.Cache
	store    storage.Storage
	maxBytes int64
	now      func() time.Time
}

// NewMediaService creates a MediaService instance.
func NewMediaService(gdb *gorm.DB, c *cache.Cache, store storage.Storage, maxBytes int64) *MediaService {
	return &MediaService{db: gdb, cache: c, store: store, maxBytes: maxBytes, now: time.Now}
}

// Upload 校验文件类型与大小，写入存储后端并登记媒体记录。
func (s *MediaService) Upload(ctx context.Context, input UploadInput) (*db.MediaItem, error) {
	if input.Body == nil || input.Size == 0 {
		return nil, ErrMediaMissing
	}
	if s.maxBytes > 0 && input.Size > s.maxBytes {
		return nil, ErrMediaTooLarge
	}

	mime, err := mimetype.DetectReader(input.Body)
	if err != nil {
		return nil, fmt.Errorf("detect media type: %w", err)
	}
	contentType := mime.String()
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	if !allowedMediaTypes[contentType] {
		return nil, ErrMediaTypeNotAllowed
	}

	var width, height int
	if strings.HasPrefix(contentType, "image/") {
		if _, err := input.Body.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind media: %w", err)
		}
		if cfg, _, err := image.DecodeConfig(input.Body); err == nil {
			width, height = cfg.Width, cfg.Height
		}
	}
	if _, err := input.Body.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind media: %w", err)
	}

	key := fmt.Sprintf("media/%s-%s%s", s.now().Format("20060102"), uuid.NewString(), mime.Extension())
	url, err := s.store.Put(ctx, key, contentType, input.Body, input.Size)
	if err != nil {
		return nil, fmt.Errorf("store media: %w", err)
	}

	title := strings.TrimSpace(input.Title)
	fileName := filepath.Base(strings.TrimSpace(input.FileName))
	if title == "" {
		title = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	}

	item := db.MediaItem{
		StorageKey:  key,
		URL:         url,
		FileName:    fileName,
		ContentType: contentType,
		Size:        input.Size,
		Width:       width,
		Height:      height,
		Title:       title,
		AltText:     strings.TrimSpace(input.AltText),
	}
	if err := s.db.Create(&item).Error; err != nil {
		// the object is orphaned without its row
		_ = s.store.Delete(ctx, key)
		return nil, fmt.Errorf("create media: %w", err)
	}
	return &item, nil
}

// List returns media matching the filter, newest first.
func (s *MediaService) List(filter MediaFilter) (MediaListResult, error) {
	result := MediaListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 24),
	}

	query := s.db.Model(&db.MediaItem{})
	switch strings.ToLower(strings.TrimSpace(filter.Kind)) {
	case "image":
		query = query.Where("content_type LIKE ?", "image/%")
	case "video":
		query = query.Where("content_type LIKE ?", "video/%")
	case "document":
		query = query.Where("content_type = ?", "application/pdf")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR file_name LIKE ? OR alt_text LIKE ?", like, like, like)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, fmt.Errorf("count media: %w", err)
	}

	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)
	offset := (result.Page - 1) * result.PerPage

	if err := query.Order("created_at desc").Order("id desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&result.Items).Error; err != nil {
		return result, fmt.Errorf("list media: %w", err)
	}
	return result, nil
}

// Get fetches a media item by id.
func (s *MediaService) Get(id uint) (*db.MediaItem, error) {
	var item db.MediaItem
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	return &item, nil
}

// UpdateMeta changes the title and alt text of a media item. Cached galleries
// embed the media row, so they are dropped as well.
func (s *MediaService) UpdateMeta(id uint, title, altText string) (*db.MediaItem, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	item.Title = strings.TrimSpace(title)
	item.AltText = strings.TrimSpace(altText)
	if err := s.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("update media: %w", err)
	}
	s.cache.Invalidate(cache.TagGallery)
	return item, nil
}

// Delete removes the record and its stored object. Media used by a gallery is kept.
// The row is only deleted when the object could be removed too.
func (s *MediaService) Delete(ctx context.Context, id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var uses int64
		if err := tx.Model(&db.GalleryImage{}).Where("media_id = ?", item.ID).Count(&uses).Error; err != nil {
			return fmt.Errorf("check media usage: %w", err)
		}
		if uses > 0 {
			return ErrMediaInUse
		}

		if err := tx.Delete(item).Error; err != nil {
			return fmt.Errorf("delete media: %w", err)
		}
		if err := s.store.Delete(ctx, item.StorageKey); err != nil {
			return fmt.Errorf("delete stored media: %w", err)
		}
		return nil
	})
}

// Count returns the number of media items.
func (s *MediaService) Count() (int64, error) {
	var total int64
	err := s.db.Model(&db.MediaItem{}).Count(&total).Error
	return total, err
}
