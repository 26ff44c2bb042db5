package db

import "time"

// Model replaces gorm.Model without soft deletes so unique slugs are freed on delete.
type Model struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
