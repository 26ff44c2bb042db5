package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Block 是可复用的内容区块，内容按语言分组存储。
type Block struct {
	Model
	Name    string           `gorm:"size:200" json:"name"`
	Type    string           `gorm:"size:50;not null;index" json:"type"`
	Variant string           `gorm:"size:50;not null" json:"variant"`
	Content LocalizedContent `gorm:"type:text" json:"content"`
}

// PageBlock orders blocks on a page. Positions run 0..n-1 per page.
type PageBlock struct {
	ID       uint  `gorm:"primarykey" json:"id"`
	PageID   uint  `gorm:"not null;uniqueIndex:idx_page_block_position" json:"pageId"`
	BlockID  uint  `gorm:"not null;index" json:"blockId"`
	Position int   `gorm:"not null;uniqueIndex:idx_page_block_position" json:"position"`
	Block    Block `json:"block"`
}

// LocalizedContent maps a locale (e.g. "en") to the block's field values.
type LocalizedContent map[string]map[string]interface{}

// Value implements driver.Valuer.
func (l LocalizedContent) Value() (driver.Value, error) {
	if l == nil {
		return "{}", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *LocalizedContent) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*l = LocalizedContent{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("localized content must be text")
	}
	if len(data) == 0 {
		*l = LocalizedContent{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// For returns the fields for locale, falling back to fallback and then to any locale present.
func (l LocalizedContent) For(locale, fallback string) map[string]interface{} {
	if fields, ok := l[locale]; ok {
		return fields
	}
	if fields, ok := l[fallback]; ok {
		return fields
	}
	// deterministic pick so the same page renders the same way every time
	var first string
	for key := range l {
		if first == "" || key < first {
			first = key
		}
	}
	if first == "" {
		return map[string]interface{}{}
	}
	return l[first]
}

// Locales 返回已有内容的语言列表。
func (l LocalizedContent) Locales() []string {
	locales := make([]string, 0, len(l))
	for key := range l {
		locales = append(locales, key)
	}
	return locales
}
