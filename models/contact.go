package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Contact struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string    `gorm:"type:uuid;not null;index" json:"userId"`
	CompanyID  *string   `gorm:"type:uuid;index" json:"companyId,omitempty"` // NULL for contacts without an employer
	FirstName  string    `gorm:"size:255" json:"firstName,omitempty"`
	LastName   string    `gorm:"not null" json:"lastName"`
	Email      string    `gorm:"size:255" json:"email,omitempty"`
	Phone      string    `gorm:"size:50" json:"phone,omitempty"`
	Position   string    `gorm:"size:255" json:"position,omitempty"`
	Department string    `gorm:"size:255" json:"department,omitempty"`
	Image      string    `gorm:"size:500" json:"image,omitempty"`
	Summary    string    `gorm:"type:text" json:"summary,omitempty"` // Markdown
	Notes      string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Relationships
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Links   []Link   `gorm:"foreignKey:ContactID" json:"links,omitempty"`
	Tags    []Tag    `gorm:"many2many:contact_tags;" json:"tags,omitempty"`
	Files   []File   `gorm:"many2many:contact_files;" json:"files,omitempty"`
}

func (Contact) TableName() string {
	return "contacts"
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
