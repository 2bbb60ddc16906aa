package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// File is metadata for an uploaded attachment. FileName is the generated
// storage name, distinct from the name the file was uploaded with.
type File struct {
	ID           string    `gorm:"type:char(26);primaryKey" json:"id"`
	UserID       string    `gorm:"type:uuid;not null;index" json:"userId"`
	FileName     string    `gorm:"size:255;not null" json:"fileName"`
	OriginalName string    `gorm:"size:255" json:"originalName,omitempty"`
	MimeType     string    `gorm:"size:100" json:"mimeType,omitempty"`
	Size         int64     `json:"size,omitempty"`
	Category     string    `gorm:"size:100" json:"category,omitempty"` // Storage bucket, e.g. "logos", "contacts"
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (File) TableName() string {
	return "files"
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = ulid.Make().String()
	}
	return nil
}
