package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Join records for the many-to-many associations. Each carries only the two
// foreign keys; the pair is unique. The surrogate ID gives the document
// backend a primary key to address individual association records with.

type CompanyTag struct {
	ID        string    `gorm:"type:char(26);primaryKey" json:"id"`
	CompanyID string    `gorm:"type:uuid;not null;uniqueIndex:idx_company_tag" json:"companyId"`
	TagID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_company_tag" json:"tagId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (CompanyTag) TableName() string { return "company_tags" }

func (j *CompanyTag) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = ulid.Make().String()
	}
	return nil
}

type ContactTag struct {
	ID        string    `gorm:"type:char(26);primaryKey" json:"id"`
	ContactID string    `gorm:"type:uuid;not null;uniqueIndex:idx_contact_tag" json:"contactId"`
	TagID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_contact_tag" json:"tagId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ContactTag) TableName() string { return "contact_tags" }

func (j *ContactTag) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = ulid.Make().String()
	}
	return nil
}

type ActivityTag struct {
	ID         string    `gorm:"type:char(26);primaryKey" json:"id"`
	ActivityID string    `gorm:"type:uuid;not null;uniqueIndex:idx_activity_tag" json:"activityId"`
	TagID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_activity_tag" json:"tagId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (ActivityTag) TableName() string { return "activity_tags" }

func (j *ActivityTag) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = ulid.Make().String()
	}
	return nil
}

type ActivityContact struct {
	ID         string    `gorm:"type:char(26);primaryKey" json:"id"`
	ActivityID string    `gorm:"type:uuid;not null;uniqueIndex:idx_activity_contact" json:"activityId"`
	ContactID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_activity_contact" json:"contactId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (ActivityContact) TableName() string { return "activity_contacts" }

func (j *ActivityContact) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = ulid.Make().String()
	}
	return nil
}

type CompanyFile struct {
	ID        string    `gorm:"type:char(26);primaryKey" json:"id"`
	CompanyID string    `gorm:"type:uuid;not null;uniqueIndex:idx_company_file" json:"companyId"`
	FileID    string    `gorm:"type:char(26);not null;uniqueIndex:idx_company_file" json:"fileId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (CompanyFile) TableName() string { return "company_files" }

func (j *CompanyFile) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = ulid.Make().String()
	}
	return nil
}

type ContactFile struct {
	ID        string    `gorm:"type:char(26);primaryKey" json:"id"`
	ContactID string    `gorm:"type:uuid;not null;uniqueIndex:idx_contact_file" json:"contactId"`
	FileID    string    `gorm:"type:char(26);not null;uniqueIndex:idx_contact_file" json:"fileId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ContactFile) TableName() string { return "contact_files" }

func (j *ContactFile) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = ulid.Make().String()
	}
	return nil
}

type ActivityFile struct {
	ID         string    `gorm:"type:char(26);primaryKey" json:"id"`
	ActivityID string    `gorm:"type:uuid;not null;uniqueIndex:idx_activity_file" json:"activityId"`
	FileID     string    `gorm:"type:char(26);not null;uniqueIndex:idx_activity_file" json:"fileId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (ActivityFile) TableName() string { return "activity_files" }

func (j *ActivityFile) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = ulid.Make().String()
	}
	return nil
}

type JobApplicationFile struct {
	ID               string    `gorm:"type:char(26);primaryKey" json:"id"`
	JobApplicationID string    `gorm:"type:uuid;not null;uniqueIndex:idx_application_file" json:"jobApplicationId"`
	FileID           string    `gorm:"type:char(26);not null;uniqueIndex:idx_application_file" json:"fileId"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (JobApplicationFile) TableName() string { return "job_application_files" }

func (j *JobApplicationFile) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = ulid.Make().String()
	}
	return nil
}
