package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag is a user-scoped label. Names are unique within a user's scope;
// attachment to companies, contacts and activities goes through the
// unique-pair join records in joins.go.
type Tag struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;index;uniqueIndex:idx_tags_user_name" json:"userId"`
	Name        string    `gorm:"size:255;not null;uniqueIndex:idx_tags_user_name" json:"name"`
	Color       string    `gorm:"size:50" json:"color,omitempty"` // Hex code, e.g. #FF0000
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
