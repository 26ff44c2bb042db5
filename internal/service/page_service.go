package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blockpress/internal/cache"
	"github.com/blockpress/internal/db"
	"github.com/blockpress/internal/validation"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound     = errors.New("page not found")
	ErrPageSlugTaken    = errors.New("page slug already exists")
	ErrPageSlugInvalid  = errors.New("page slug is invalid")
	ErrPageTitleMissing = errors.New("page title is required")
)

// HomeSlug is the slug rendered at the site root.
const HomeSlug = "home"

// PageService provides CRUD for pages and their block ordering.
type PageService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// PageFilter describes filters for listing pages.
type PageFilter struct {
	Search    string
	Published *bool
	Page      int
	PerPage   int
}

// PageListResult aggregates paginated page results.
type PageListResult struct {
	Items      []db.Page
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// PageInput represents fields accepted when creating or updating a page.
type PageInput struct {
	Slug           string
	Title          string
	Description    string
	Published      bool
	SEOTitle       string
	SEODescription string
	SEOImageURL    string
}

// SitemapEntry is one published page for sitemap.xml.
type SitemapEntry struct {
	Slug      string
	UpdatedAt time.Time
}

// NewPageService returns a new PageService instance.
func NewPageService(gdb *gorm.DB, c *cache.Cache) *PageService {
	return &PageService{db: gdb, cache: c}
}

func preloadBlocks(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Blocks", func(q *gorm.DB) *gorm.DB {
		return q.Order("position asc")
	}).Preload("Blocks.Block")
}

// List returns pages matching the filter, newest first.
func (s *PageService) List(filter PageFilter) (PageListResult, error) {
	result := PageListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 20),
	}

	query := s.db.Model(&db.Page{})
	if filter.Published != nil {
		query = query.Where("published = ?", *filter.Published)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR slug LIKE ?", like, like)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, fmt.Errorf("count pages: %w", err)
	}

	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)
	offset := (result.Page - 1) * result.PerPage

	if err := query.Order("updated_at desc").Order("id desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&result.Items).Error; err != nil {
		return result, fmt.Errorf("list pages: %w", err)
	}

	return result, nil
}

// Get fetches a page by id with its blocks in order.
func (s *PageService) Get(id uint) (*db.Page, error) {
	var page db.Page
	if err := preloadBlocks(s.db).First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// GetBySlug fetches a page for a given slug regardless of its published state.
func (s *PageService) GetBySlug(slug string) (*db.Page, error) {
	var page db.Page
	if err := preloadBlocks(s.db).Where("slug = ?", validation.NormalizeSlug(slug)).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// GetPublished returns a published page through the shared cache.
// The returned page is shared between requests and must not be modified.
func (s *PageService) GetPublished(slug string) (*db.Page, error) {
	normalized := validation.NormalizeSlug(slug)
	return cache.Fetch(s.cache, "page:"+normalized, []string{cache.TagPages, cache.PageTag(normalized)}, func() (*db.Page, error) {
		page, err := s.GetBySlug(normalized)
		if err != nil {
			return nil, err
		}
		if !page.Published {
			return nil, ErrPageNotFound
		}
		return page, nil
	})
}

// Create persists a new page. Duplicate slugs fail with ErrPageSlugTaken.
func (s *PageService) Create(input PageInput) (*db.Page, error) {
	page := db.Page{}
	if err := applyPageInput(&page, input); err != nil {
		return nil, err
	}
	if err := s.ensureSlugAvailable(page.Slug, 0); err != nil {
		return nil, err
	}

	if err := s.db.Create(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPageSlugTaken
		}
		return nil, fmt.Errorf("create page: %w", err)
	}

	s.invalidate(page.Slug)
	return &page, nil
}

// Update applies changes to an existing page.
func (s *PageService) Update(id uint, input PageInput) (*db.Page, error) {
	var page db.Page
	if err := s.db.First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}

	previousSlug := page.Slug
	if err := applyPageInput(&page, input); err != nil {
		return nil, err
	}
	if err := s.ensureSlugAvailable(page.Slug, page.ID); err != nil {
		return nil, err
	}

	if err := s.db.Save(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPageSlugTaken
		}
		return nil, fmt.Errorf("update page: %w", err)
	}

	s.invalidate(previousSlug, page.Slug)
	return s.Get(page.ID)
}

// Delete removes a page together with its block ordering.
func (s *PageService) Delete(id uint) error {
	var page db.Page
	if err := s.db.First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPageNotFound
		}
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("page_id = ?", page.ID).Delete(&db.PageBlock{}).Error; err != nil {
			return err
		}
		return tx.Delete(&page).Error
	})
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}

	s.invalidate(page.Slug)
	return nil
}

// SetBlocks replaces the page's block ordering with blockIDs, positions 0..n-1.
func (s *PageService) SetBlocks(pageID uint, blockIDs []uint) (*db.Page, error) {
	var page db.Page
	if err := s.db.First(&page, pageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}

	if err := s.ensureBlocksExist(blockIDs); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return replacePageBlocks(tx, page.ID, blockIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("set page blocks: %w", err)
	}

	// UpdatedAt moves so the sitemap reflects layout changes
	if err := s.db.Model(&page).Update("updated_at", time.Now()).Error; err != nil {
		return nil, fmt.Errorf("touch page: %w", err)
	}

	s.invalidate(page.Slug)
	return s.Get(page.ID)
}

// Duplicate copies a page and its block ordering under newSlug as an unpublished draft.
func (s *PageService) Duplicate(id uint, newSlug string) (*db.Page, error) {
	source, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	copyPage := db.Page{}
	input := PageInput{
		Slug:           newSlug,
		Title:          source.Title + " (copy)",
		Description:    source.Description,
		Published:      false,
		SEOTitle:       source.SEOTitle,
		SEODescription: source.SEODescription,
		SEOImageURL:    source.SEOImageURL,
	}
	if err := applyPageInput(&copyPage, input); err != nil {
		return nil, err
	}
	if err := s.ensureSlugAvailable(copyPage.Slug, 0); err != nil {
		return nil, err
	}

	blockIDs := make([]uint, 0, len(source.Blocks))
	for _, pb := range source.Blocks {
		blockIDs = append(blockIDs, pb.BlockID)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&copyPage).Error; err != nil {
			return err
		}
		return replacePageBlocks(tx, copyPage.ID, blockIDs)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPageSlugTaken
		}
		return nil, fmt.Errorf("duplicate page: %w", err)
	}

	return s.Get(copyPage.ID)
}

// SitemapEntries lists published pages ordered by slug.
func (s *PageService) SitemapEntries() ([]SitemapEntry, error) {
	var entries []SitemapEntry
	if err := s.db.Model(&db.Page{}).
		Select("slug", "updated_at").
		Where("published = ?", true).
		Order("slug asc").
		Scan(&entries).Error; err != nil {
		return nil, fmt.Errorf("list sitemap entries: %w", err)
	}
	return entries, nil
}

// Count returns the total and published page counts.
func (s *PageService) Count() (total int64, published int64, err error) {
	if err = s.db.Model(&db.Page{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = s.db.Model(&db.Page{}).Where("published = ?", true).Count(&published).Error; err != nil {
		return 0, 0, err
	}
	return total, published, nil
}

func applyPageInput(page *db.Page, input PageInput) error {
	slug := validation.NormalizeSlug(input.Slug)
	if !validation.IsSlug(slug) {
		return ErrPageSlugInvalid
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrPageTitleMissing
	}

	page.Slug = slug
	page.Title = title
	page.Description = strings.TrimSpace(input.Description)
	page.Published = input.Published
	page.SEOTitle = strings.TrimSpace(input.SEOTitle)
	page.SEODescription = strings.TrimSpace(input.SEODescription)
	page.SEOImageURL = strings.TrimSpace(input.SEOImageURL)
	return nil
}

func (s *PageService) ensureSlugAvailable(slug string, exceptID uint) error {
	var count int64
	query := s.db.Model(&db.Page{}).Where("slug = ?", slug)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("check page slug: %w", err)
	}
	if count > 0 {
		return ErrPageSlugTaken
	}
	return nil
}

func (s *PageService) ensureBlocksExist(blockIDs []uint) error {
	unique := make(map[uint]struct{}, len(blockIDs))
	for _, id := range blockIDs {
		unique[id] = struct{}{}
	}
	if len(unique) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(unique))
	for id := range unique {
		ids = append(ids, id)
	}

	var count int64
	if err := s.db.Model(&db.Block{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return fmt.Errorf("check blocks: %w", err)
	}
	if count != int64(len(ids)) {
		return ErrBlockNotFound
	}
	return nil
}

func replacePageBlocks(tx *gorm.DB, pageID uint, blockIDs []uint) error {
	if err := tx.Where("page_id = ?", pageID).Delete(&db.PageBlock{}).Error; err != nil {
		return err
	}
	if len(blockIDs) == 0 {
		return nil
	}

	rows := make([]db.PageBlock, 0, len(blockIDs))
	for position, blockID := range blockIDs {
		rows = append(rows, db.PageBlock{PageID: pageID, BlockID: blockID, Position: position})
	}
	return tx.Omit("Block").Create(&rows).Error
}

func (s *PageService) invalidate(slugs ...string) {
	tags := []string{cache.TagPages}
	for _, slug := range slugs {
		tags = append(tags, cache.PageTag(slug))
	}
	s.cache.Invalidate(tags...)
}
