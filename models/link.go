package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Link is an external URL attached to exactly one parent entity. The
// exactly-one-parent rule is enforced by the links handler, not the schema.
type Link struct {
	ID               string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string    `gorm:"type:uuid;not null;index" json:"userId"`
	URL              string    `gorm:"not null" json:"url"`
	Label            string    `gorm:"size:255" json:"label,omitempty"`
	CompanyID        *string   `gorm:"type:uuid;index" json:"companyId,omitempty"`
	ContactID        *string   `gorm:"type:uuid;index" json:"contactId,omitempty"`
	JobApplicationID *string   `gorm:"type:uuid;index" json:"jobApplicationId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	// Relationships
	Company        *Company        `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Contact        *Contact        `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
	JobApplication *JobApplication `gorm:"foreignKey:JobApplicationID" json:"jobApplication,omitempty"`
}

func (Link) TableName() string {
	return "links"
}

func (l *Link) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
