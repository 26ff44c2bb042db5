package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/blockpress/internal/cache"
	"github.com/blockpress/internal/db"
	"github.com/blockpress/internal/validation"
	"gorm.io/gorm"
)

var (
	ErrGalleryNotFound      = errors.New("gallery not found")
	ErrGalleryImageNotFound = errors.New("gallery image not found")
	ErrGalleryNameMissing   = errors.New("gallery name is required")
	ErrGallerySlugTaken     = errors.New("gallery slug already exists")
	ErrGallerySlugInvalid   = errors.New("gallery slug is invalid")
	ErrGalleryStatusInvalid = errors.New("gallery status is invalid")
)

const (
	GalleryStatusPublished = "published"
	GalleryStatusDraft     = "draft"
)

// GalleryService handles galleries and their images.
type GalleryService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// GalleryInput represents fields accepted when creating or updating a gallery.
type GalleryInput struct {
	Slug        string
	Name        string
	Description string
}

// GalleryImageInput represents fields accepted when adding or updating a gallery image.
type GalleryImageInput struct {
	MediaID   uint
	Caption   string
	Status    string
	SortOrder int
}

// GalleryImageFilter describes filters for listing gallery images.
type GalleryImageFilter struct {
	GalleryID uint
	Status    string
	Page      int
	PerPage   int
}

// GalleryListResult aggregates paginated gallery image results.
type GalleryListResult struct {
	Items      []db.GalleryImage
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// PublicGallery is a gallery with one page of its published images.
type PublicGallery struct {
	Gallery db.Gallery
	Images  GalleryListResult
}

// NewGalleryService creates a GalleryService instance.
func NewGalleryService(gdb *gorm.DB, c *cache.Cache) *GalleryService {
	return &GalleryService{db: gdb, cache: c}
}

// ListGalleries returns all galleries ordered by name.
func (s *GalleryService) ListGalleries() ([]db.Gallery, error) {
	var galleries []db.Gallery
	if err := s.db.Order("name asc").Find(&galleries).Error; err != nil {
		return nil, fmt.Errorf("list galleries: %w", err)
	}
	return galleries, nil
}

// GetGallery fetches a gallery with all of its images.
func (s *GalleryService) GetGallery(id uint) (*db.Gallery, error) {
	var gallery db.Gallery
	err := s.db.Preload("Images", func(q *gorm.DB) *gorm.DB {
		return q.Order("sort_order desc").Order("created_at desc")
	}).Preload("Images.Media").First(&gallery, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGalleryNotFound
		}
		return nil, err
	}
	return &gallery, nil
}

// CreateGallery inserts a gallery.
func (s *GalleryService) CreateGallery(input GalleryInput) (*db.Gallery, error) {
	gallery := db.Gallery{}
	if err := applyGalleryInput(&gallery, input); err != nil {
		return nil, err
	}
	if err := s.ensureSlugAvailable(gallery.Slug, 0); err != nil {
		return nil, err
	}
	if err := s.db.Create(&gallery).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrGallerySlugTaken
		}
		return nil, fmt.Errorf("create gallery: %w", err)
	}
	return &gallery, nil
}

// UpdateGallery modifies a gallery's name, slug and description.
func (s *GalleryService) UpdateGallery(id uint, input GalleryInput) (*db.Gallery, error) {
	var gallery db.Gallery
	if err := s.db.First(&gallery, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGalleryNotFound
		}
		return nil, err
	}
	if err := applyGalleryInput(&gallery, input); err != nil {
		return nil, err
	}
	if err := s.ensureSlugAvailable(gallery.Slug, gallery.ID); err != nil {
		return nil, err
	}
	if err := s.db.Save(&gallery).Error; err != nil {
		return nil, fmt.Errorf("update gallery: %w", err)
	}

	s.cache.Invalidate(cache.TagGallery)
	return &gallery, nil
}

// DeleteGallery removes a gallery and its image rows. Media items stay.
func (s *GalleryService) DeleteGallery(id uint) error {
	var gallery db.Gallery
	if err := s.db.First(&gallery, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGalleryNotFound
		}
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gallery_id = ?", gallery.ID).Delete(&db.GalleryImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&gallery).Error
	})
	if err != nil {
		return fmt.Errorf("delete gallery: %w", err)
	}

	s.cache.Invalidate(cache.TagGallery)
	return nil
}

// ListImages returns gallery images matching the filter.
func (s *GalleryService) ListImages(filter GalleryImageFilter) (GalleryListResult, error) {
	result := GalleryListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 12),
	}

	query := s.db.Model(&db.GalleryImage{}).Where("gallery_id = ?", filter.GalleryID)
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}

	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)
	offset := (result.Page - 1) * result.PerPage

	if err := query.Preload("Media").
		Order("sort_order desc").Order("created_at desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&result.Items).Error; err != nil {
		return result, err
	}

	return result, nil
}

// PublishedBySlug returns a gallery with one page of its published images, cached per page.
func (s *GalleryService) PublishedBySlug(slug string, page, perPage int) (PublicGallery, error) {
	normalized := validation.NormalizeSlug(slug)
	key := "gallery:" + normalized + ":" + strconv.Itoa(normalizePage(page)) + ":" + strconv.Itoa(perPage)
	return cache.Fetch(s.cache, key, []string{cache.TagGallery}, func() (PublicGallery, error) {
		var gallery db.Gallery
		if err := s.db.Where("slug = ?", normalized).First(&gallery).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return PublicGallery{}, ErrGalleryNotFound
			}
			return PublicGallery{}, err
		}

		images, err := s.ListImages(GalleryImageFilter{
			GalleryID: gallery.ID,
			Status:    GalleryStatusPublished,
			Page:      page,
			PerPage:   perPage,
		})
		if err != nil {
			return PublicGallery{}, err
		}
		return PublicGallery{Gallery: gallery, Images: images}, nil
	})
}

// AddImage attaches a media item to a gallery.
func (s *GalleryService) AddImage(galleryID uint, input GalleryImageInput) (*db.GalleryImage, error) {
	status, err := normalizeGalleryStatus(input.Status)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&db.Gallery{}).Where("id = ?", galleryID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrGalleryNotFound
	}
	if err := s.ensureMediaExists(input.MediaID); err != nil {
		return nil, err
	}

	sortOrder := input.SortOrder
	if sortOrder == 0 {
		order, err := s.nextSortOrder(galleryID)
		if err != nil {
			return nil, err
		}
		sortOrder = order
	}

	item := db.GalleryImage{
		GalleryID: galleryID,
		MediaID:   input.MediaID,
		Caption:   strings.TrimSpace(input.Caption),
		Status:    status,
		SortOrder: sortOrder,
	}
	if err := s.db.Omit("Media").Create(&item).Error; err != nil {
		return nil, fmt.Errorf("add gallery image: %w", err)
	}

	s.cache.Invalidate(cache.TagGallery)
	return s.getImage(item.ID)
}

// UpdateImage modifies caption, status and sort order of a gallery image.
func (s *GalleryService) UpdateImage(id uint, input GalleryImageInput) (*db.GalleryImage, error) {
	status, err := normalizeGalleryStatus(input.Status)
	if err != nil {
		return nil, err
	}

	item, err := s.getImage(id)
	if err != nil {
		return nil, err
	}
	if input.MediaID != 0 && input.MediaID != item.MediaID {
		if err := s.ensureMediaExists(input.MediaID); err != nil {
			return nil, err
		}
		item.MediaID = input.MediaID
	}

	item.Caption = strings.TrimSpace(input.Caption)
	item.Status = status
	item.SortOrder = input.SortOrder

	if err := s.db.Omit("Media").Save(item).Error; err != nil {
		return nil, fmt.Errorf("update gallery image: %w", err)
	}

	s.cache.Invalidate(cache.TagGallery)
	return s.getImage(item.ID)
}

// RemoveImage detaches an image from its gallery.
func (s *GalleryService) RemoveImage(id uint) error {
	item, err := s.getImage(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&db.GalleryImage{}, item.ID).Error; err != nil {
		return fmt.Errorf("remove gallery image: %w", err)
	}

	s.cache.Invalidate(cache.TagGallery)
	return nil
}

// Count returns the number of galleries.
func (s *GalleryService) Count() (int64, error) {
	var total int64
	err := s.db.Model(&db.Gallery{}).Count(&total).Error
	return total, err
}

func (s *GalleryService) getImage(id uint) (*db.GalleryImage, error) {
	var item db.GalleryImage
	if err := s.db.Preload("Media").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGalleryImageNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *GalleryService) ensureMediaExists(mediaID uint) error {
	var count int64
	if err := s.db.Model(&db.MediaItem{}).Where("id = ?", mediaID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrMediaNotFound
	}
	return nil
}

func (s *GalleryService) ensureSlugAvailable(slug string, exceptID uint) error {
	var count int64
	query := s.db.Model(&db.Gallery{}).Where("slug = ?", slug)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrGallerySlugTaken
	}
	return nil
}

func (s *GalleryService) nextSortOrder(galleryID uint) (int, error) {
	var maxOrder int
	if err := s.db.Model(&db.GalleryImage{}).
		Where("gallery_id = ?", galleryID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&maxOrder).Error; err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}

func applyGalleryInput(gallery *db.Gallery, input GalleryInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ErrGalleryNameMissing
	}
	slug := validation.NormalizeSlug(input.Slug)
	if slug == "" {
		slug = validation.NormalizeSlug(name)
	}
	if !validation.IsSlug(slug) {
		return ErrGallerySlugInvalid
	}

	gallery.Name = name
	gallery.Slug = slug
	gallery.Description = strings.TrimSpace(input.Description)
	return nil
}

func normalizeGalleryStatus(status string) (string, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return GalleryStatusPublished, nil
	}
	if status != GalleryStatusPublished && status != GalleryStatusDraft {
		return "", ErrGalleryStatusInvalid
	}
	return status, nil
}
