package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Company struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;index" json:"userId"`
	Name        string    `gorm:"not null" json:"name"`
	Industry    string    `gorm:"size:255" json:"industry,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Location    string    `gorm:"size:255" json:"location,omitempty"`
	Size        string    `gorm:"size:50" json:"size,omitempty"` // e.g. "1-10", "500+"
	Logo        string    `gorm:"size:500" json:"logo,omitempty"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relationships
	User            *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Contacts        []Contact        `gorm:"foreignKey:CompanyID" json:"contacts,omitempty"`
	JobApplications []JobApplication `gorm:"foreignKey:CompanyID" json:"jobApplications,omitempty"`
	Activities      []Activity       `gorm:"foreignKey:CompanyID" json:"activities,omitempty"`
	Links           []Link           `gorm:"foreignKey:CompanyID" json:"links,omitempty"`
	Tags            []Tag            `gorm:"many2many:company_tags;" json:"tags,omitempty"`
	Files           []File           `gorm:"many2many:company_files;" json:"files,omitempty"`
}

func (Company) TableName() string {
	return "companies"
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
