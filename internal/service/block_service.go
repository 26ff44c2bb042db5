package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/blockpress/internal/cache"
	"github.com/blockpress/internal/db"
	"gorm.io/gorm"
)

var (
	ErrBlockNotFound       = errors.New("block not found")
	ErrBlockTypeInvalid    = errors.New("block type is invalid")
	ErrBlockContentMissing = errors.New("block content needs at least one locale")
)

// Block types known to the site renderer.
const (
	BlockTypeHero     = "hero"
	BlockTypeRichText = "rich_text"
	BlockTypeImage    = "image"
	BlockTypeGallery  = "gallery"
	BlockTypeCTA      = "cta"
	BlockTypeFeatures = "features"
)

// BlockTypeInfo describes a block type and the variants its template supports.
// The first variant is the default.
type BlockTypeInfo struct {
	Type     string   `json:"type"`
	Variants []string `json:"variants"`
	Fields   []string `json:"fields"`
}

var blockTypes = map[string]BlockTypeInfo{
	BlockTypeHero:     {Type: BlockTypeHero, Variants: []string{"default", "split", "fullscreen"}, Fields: []string{"title", "subtitle", "imageUrl", "ctaLabel", "ctaUrl"}},
	BlockTypeRichText: {Type: BlockTypeRichText, Variants: []string{"default", "narrow", "wide"}, Fields: []string{"body"}},
	BlockTypeImage:    {Type: BlockTypeImage, Variants: []string{"default", "full-bleed"}, Fields: []string{"imageUrl", "alt", "caption"}},
	BlockTypeGallery:  {Type: BlockTypeGallery, Variants: []string{"grid", "carousel"}, Fields: []string{"gallerySlug", "title"}},
	BlockTypeCTA:      {Type: BlockTypeCTA, Variants: []string{"default", "banner"}, Fields: []string{"title", "text", "buttonLabel", "buttonUrl"}},
	BlockTypeFeatures: {Type: BlockTypeFeatures, Variants: []string{"grid", "list"}, Fields: []string{"title", "items"}},
}

// BlockTypes returns the registry sorted by type name.
func BlockTypes() []BlockTypeInfo {
	infos := make([]BlockTypeInfo, 0, len(blockTypes))
	for _, info := range blockTypes {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Type < infos[j].Type })
	return infos
}

// NormalizeBlockVariant returns variant when typ supports it, otherwise the type's default variant.
func NormalizeBlockVariant(typ, variant string) string {
	info, ok := blockTypes[typ]
	if !ok {
		return ""
	}
	variant = strings.ToLower(strings.TrimSpace(variant))
	for _, candidate := range info.Variants {
		if candidate == variant {
			return variant
		}
	}
	return info.Variants[0]
}

// BlockService handles block CRUD.
type BlockService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// BlockInput represents fields accepted when creating or updating a block.
type BlockInput struct {
	Name    string
	Type    string
	Variant string
	Content db.LocalizedContent
}

// NewBlockService creates a BlockService instance.
func NewBlockService(gdb *gorm.DB, c *cache.Cache) *BlockService {
	return &BlockService{db: gdb, cache: c}
}

// List returns blocks, optionally restricted to one type.
func (s *BlockService) List(typ string) ([]db.Block, error) {
	var blocks []db.Block
	query := s.db.Order("updated_at desc").Order("id desc")
	if trimmed := strings.TrimSpace(typ); trimmed != "" {
		query = query.Where("type = ?", trimmed)
	}
	if err := query.Find(&blocks).Error; err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}

// Get fetches a block by id.
func (s *BlockService) Get(id uint) (*db.Block, error) {
	var block db.Block
	if err := s.db.First(&block, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlockNotFound
		}
		return nil, err
	}
	return &block, nil
}

// Create inserts a new block.
func (s *BlockService) Create(input BlockInput) (*db.Block, error) {
	block := db.Block{}
	if err := applyBlockInput(&block, input); err != nil {
		return nil, err
	}
	if err := s.db.Create(&block).Error; err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}
	return &block, nil
}

// Update modifies an existing block. Pages that use it are invalidated.
func (s *BlockService) Update(id uint, input BlockInput) (*db.Block, error) {
	block, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := applyBlockInput(block, input); err != nil {
		return nil, err
	}
	if err := s.db.Save(block).Error; err != nil {
		return nil, fmt.Errorf("update block: %w", err)
	}

	s.cache.Invalidate(cache.TagPages)
	return block, nil
}

// Delete removes a block and closes the gaps it leaves in page orderings.
func (s *BlockService) Delete(id uint) error {
	block, err := s.Get(id)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var pageIDs []uint
		if err := tx.Model(&db.PageBlock{}).
			Where("block_id = ?", block.ID).
			Distinct().
			Pluck("page_id", &pageIDs).Error; err != nil {
			return err
		}

		if err := tx.Where("block_id = ?", block.ID).Delete(&db.PageBlock{}).Error; err != nil {
			return err
		}
		for _, pageID := range pageIDs {
			if err := compactPositions(tx, pageID); err != nil {
				return err
			}
		}
		return tx.Delete(block).Error
	})
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}

	s.cache.Invalidate(cache.TagPages)
	return nil
}

// compactPositions renumbers a page's blocks to 0..n-1 keeping their order.
// Ascending order guarantees each target position is already free.
func compactPositions(tx *gorm.DB, pageID uint) error {
	var rows []db.PageBlock
	if err := tx.Where("page_id = ?", pageID).Order("position asc").Find(&rows).Error; err != nil {
		return err
	}
	for index, row := range rows {
		if row.Position == index {
			continue
		}
		if err := tx.Model(&db.PageBlock{}).Where("id = ?", row.ID).Update("position", index).Error; err != nil {
			return err
		}
	}
	return nil
}

func applyBlockInput(block *db.Block, input BlockInput) error {
	typ := strings.ToLower(strings.TrimSpace(input.Type))
	if _, ok := blockTypes[typ]; !ok {
		return ErrBlockTypeInvalid
	}

	content := make(db.LocalizedContent, len(input.Content))
	for locale, fields := range input.Content {
		key := strings.ToLower(strings.TrimSpace(locale))
		if key == "" || fields == nil {
			continue
		}
		content[key] = fields
	}
	if len(content) == 0 {
		return ErrBlockContentMissing
	}

	block.Name = strings.TrimSpace(input.Name)
	block.Type = typ
	block.Variant = NormalizeBlockVariant(typ, input.Variant)
	block.Content = content
	return nil
}
