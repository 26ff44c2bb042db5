package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blockpress/internal/cache"
	"github.com/blockpress/internal/db"
	"github.com/blockpress/internal/validation"
	"gorm.io/gorm"
)

var (
	ErrHeaderNotFound        = errors.New("header not found")
	ErrFooterNotFound        = errors.New("footer not found")
	ErrNavigationNameMissing = errors.New("navigation name is required")
	ErrNavigationLinkInvalid = errors.New("navigation link needs a label and a valid url")
)

// Header and footer variants. The first entry is the fallback for unknown values.
var (
	HeaderVariants = []string{"default", "centered", "minimal"}
	FooterVariants = []string{"default", "columns", "simple"}
)

const (
	globalHeaderKey = "header:global"
	globalFooterKey = "footer:global"
)

// LinkInput is one navigation link in submission order.
type LinkInput struct {
	Label        string
	URL          string
	OpenInNewTab bool
}

// HeaderInput represents fields accepted when saving a header.
type HeaderInput struct {
	Name    string
	Variant string
	LogoURL string
	Links   []LinkInput
}

// FooterInput represents fields accepted when saving a footer.
type FooterInput struct {
	Name      string
	Variant   string
	Copyright string
	Links     []LinkInput
}

// NavigationService manages headers, footers and the global selection of each.
type NavigationService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewNavigationService creates a NavigationService instance.
func NewNavigationService(gdb *gorm.DB, c *cache.Cache) *NavigationService {
	return &NavigationService{db: gdb, cache: c}
}

func orderedLinks(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Links", func(q *gorm.DB) *gorm.DB {
		return q.Order("position asc")
	})
}

func pickVariant(variants []string, variant string) string {
	variant = strings.ToLower(strings.TrimSpace(variant))
	for _, candidate := range variants {
		if candidate == variant {
			return variant
		}
	}
	return variants[0]
}

func normalizeLinks(inputs []LinkInput) ([]db.NavigationLink, error) {
	links := make([]db.NavigationLink, 0, len(inputs))
	for _, input := range inputs {
		label := strings.TrimSpace(input.Label)
		url := strings.TrimSpace(input.URL)
		if label == "" && url == "" {
			continue
		}
		if label == "" || !validation.IsLinkURL(url) {
			return nil, ErrNavigationLinkInvalid
		}
		links = append(links, db.NavigationLink{
			Label:        label,
			URL:          url,
			Position:     len(links),
			OpenInNewTab: input.OpenInNewTab,
		})
	}
	return links, nil
}

// ListHeaders returns all headers with their links.
func (s *NavigationService) ListHeaders() ([]db.Header, error) {
	var headers []db.Header
	if err := orderedLinks(s.db).Order("is_global desc").Order("name asc").Find(&headers).Error; err != nil {
		return nil, fmt.Errorf("list headers: %w", err)
	}
	return headers, nil
}

// GetHeader fetches a header by id.
func (s *NavigationService) GetHeader(id uint) (*db.Header, error) {
	var header db.Header
	if err := orderedLinks(s.db).First(&header, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHeaderNotFound
		}
		return nil, err
	}
	return &header, nil
}

// CreateHeader inserts a header. The first header becomes global when none is.
func (s *NavigationService) CreateHeader(input HeaderInput) (*db.Header, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNavigationNameMissing
	}
	links, err := normalizeLinks(input.Links)
	if err != nil {
		return nil, err
	}

	header := db.Header{
		Name:    name,
		Variant: pickVariant(HeaderVariants, input.Variant),
		LogoURL: strings.TrimSpace(input.LogoURL),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var globals int64
		if err := tx.Model(&db.Header{}).Where("is_global = ?", true).Count(&globals).Error; err != nil {
			return err
		}
		header.IsGlobal = globals == 0

		if err := tx.Create(&header).Error; err != nil {
			return err
		}
		return replaceLinks(tx, "header_id", header.ID, links)
	})
	if err != nil {
		return nil, fmt.Errorf("create header: %w", err)
	}

	s.cache.Invalidate(cache.TagHeader)
	return s.GetHeader(header.ID)
}

// UpdateHeader saves header fields and replaces its links in the given order.
func (s *NavigationService) UpdateHeader(id uint, input HeaderInput) (*db.Header, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNavigationNameMissing
	}
	links, err := normalizeLinks(input.Links)
	if err != nil {
		return nil, err
	}

	var header db.Header
	if err := s.db.First(&header, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHeaderNotFound
		}
		return nil, err
	}

	header.Name = name
	header.Variant = pickVariant(HeaderVariants, input.Variant)
	header.LogoURL = strings.TrimSpace(input.LogoURL)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Links").Save(&header).Error; err != nil {
			return err
		}
		return replaceLinks(tx, "header_id", header.ID, links)
	})
	if err != nil {
		return nil, fmt.Errorf("update header: %w", err)
	}

	s.cache.Invalidate(cache.TagHeader)
	return s.GetHeader(header.ID)
}

// DeleteHeader removes a header and its links.
func (s *NavigationService) DeleteHeader(id uint) error {
	var header db.Header
	if err := s.db.First(&header, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHeaderNotFound
		}
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("header_id = ?", header.ID).Delete(&db.NavigationLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&header).Error
	})
	if err != nil {
		return fmt.Errorf("delete header: %w", err)
	}

	s.cache.Invalidate(cache.TagHeader)
	return nil
}

// SetGlobalHeader marks id as the global header and clears the previous one.
func (s *NavigationService) SetGlobalHeader(id uint) (*db.Header, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Header{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrHeaderNotFound
		}
		if err := tx.Model(&db.Header{}).Where("is_global = ? AND id <> ?", true, id).Update("is_global", false).Error; err != nil {
			return err
		}
		return tx.Model(&db.Header{}).Where("id = ?", id).Update("is_global", true).Error
	})
	if err != nil {
		if errors.Is(err, ErrHeaderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("set global header: %w", err)
	}

	s.cache.Invalidate(cache.TagHeader)
	return s.GetHeader(id)
}

// GlobalHeader resolves the global header through the cache. It returns nil when none is set.
func (s *NavigationService) GlobalHeader() (*db.Header, error) {
	return cache.Fetch(s.cache, globalHeaderKey, []string{cache.TagHeader}, func() (*db.Header, error) {
		var headers []db.Header
		if err := orderedLinks(s.db).Where("is_global = ?", true).Limit(1).Find(&headers).Error; err != nil {
			return nil, fmt.Errorf("load global header: %w", err)
		}
		if len(headers) == 0 {
			return nil, nil
		}
		return &headers[0], nil
	})
}

// ListFooters returns all footers with their links.
func (s *NavigationService) ListFooters() ([]db.Footer, error) {
	var footers []db.Footer
	if err := orderedLinks(s.db).Order("is_global desc").Order("name asc").Find(&footers).Error; err != nil {
		return nil, fmt.Errorf("list footers: %w", err)
	}
	return footers, nil
}

// GetFooter fetches a footer by id.
func (s *NavigationService) GetFooter(id uint) (*db.Footer, error) {
	var footer db.Footer
	if err := orderedLinks(s.db).First(&footer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFooterNotFound
		}
		return nil, err
	}
	return &footer, nil
}

// CreateFooter inserts a footer. The first footer becomes global when none is.
func (s *NavigationService) CreateFooter(input FooterInput) (*db.Footer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNavigationNameMissing
	}
	links, err := normalizeLinks(input.Links)
	if err != nil {
		return nil, err
	}

	footer := db.Footer{
		Name:      name,
		Variant:   pickVariant(FooterVariants, input.Variant),
		Copyright: strings.TrimSpace(input.Copyright),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var globals int64
		if err := tx.Model(&db.Footer{}).Where("is_global = ?", true).Count(&globals).Error; err != nil {
			return err
		}
		footer.IsGlobal = globals == 0

		if err := tx.Create(&footer).Error; err != nil {
			return err
		}
		return replaceLinks(tx, "footer_id", footer.ID, links)
	})
	if err != nil {
		return nil, fmt.Errorf("create footer: %w", err)
	}

	s.cache.Invalidate(cache.TagFooter)
	return s.GetFooter(footer.ID)
}

// UpdateFooter saves footer fields and replaces its links in the given order.
func (s *NavigationService) UpdateFooter(id uint, input FooterInput) (*db.Footer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNavigationNameMissing
	}
	links, err := normalizeLinks(input.Links)
	if err != nil {
		return nil, err
	}

	var footer db.Footer
	if err := s.db.First(&footer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFooterNotFound
		}
		return nil, err
	}

	footer.Name = name
	footer.Variant = pickVariant(FooterVariants, input.Variant)
	footer.Copyright = strings.TrimSpace(input.Copyright)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Links").Save(&footer).Error; err != nil {
			return err
		}
		return replaceLinks(tx, "footer_id", footer.ID, links)
	})
	if err != nil {
		return nil, fmt.Errorf("update footer: %w", err)
	}

	s.cache.Invalidate(cache.TagFooter)
	return s.GetFooter(footer.ID)
}

// DeleteFooter removes a footer and its links.
func (s *NavigationService) DeleteFooter(id uint) error {
	var footer db.Footer
	if err := s.db.First(&footer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFooterNotFound
		}
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("footer_id = ?", footer.ID).Delete(&db.NavigationLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&footer).Error
	})
	if err != nil {
		return fmt.Errorf("delete footer: %w", err)
	}

	s.cache.Invalidate(cache.TagFooter)
	return nil
}

// SetGlobalFooter marks id as the global footer and clears the previous one.
func (s *NavigationService) SetGlobalFooter(id uint) (*db.Footer, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Footer{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrFooterNotFound
		}
		if err := tx.Model(&db.Footer{}).Where("is_global = ? AND id <> ?", true, id).Update("is_global", false).Error; err != nil {
			return err
		}
		return tx.Model(&db.Footer{}).Where("id = ?", id).Update("is_global", true).Error
	})
	if err != nil {
		if errors.Is(err, ErrFooterNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("set global footer: %w", err)
	}

	s.cache.Invalidate(cache.TagFooter)
	return s.GetFooter(id)
}

// GlobalFooter resolves the global footer through the cache. It returns nil when none is set.
func (s *NavigationService) GlobalFooter() (*db.Footer, error) {
	return cache.Fetch(s.cache, globalFooterKey, []string{cache.TagFooter}, func() (*db.Footer, error) {
		var footers []db.Footer
		if err := orderedLinks(s.db).Where("is_global = ?", true).Limit(1).Find(&footers).Error; err != nil {
			return nil, fmt.Errorf("load global footer: %w", err)
		}
		if len(footers) == 0 {
			return nil, nil
		}
		return &footers[0], nil
	})
}

// replaceLinks swaps all links owned by ownerColumn=ownerID for links.
func replaceLinks(tx *gorm.DB, ownerColumn string, ownerID uint, links []db.NavigationLink) error {
	if err := tx.Where(ownerColumn+" = ?", ownerID).Delete(&db.NavigationLink{}).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}

	owner := ownerID
	for i := range links {
		links[i].ID = 0
		switch ownerColumn {
		case "header_id":
			links[i].HeaderID = &owner
		case "footer_id":
			links[i].FooterID = &owner
		}
	}
	return tx.Create(&links).Error
}
