package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Job application statuses
const (
	StatusApplied            = "applied"
	StatusInterviewScheduled = "interview_scheduled"
	StatusInterviewed        = "interviewed"
	StatusOffer              = "offer"
	StatusRejected           = "rejected"
	StatusAccepted           = "accepted"
	StatusWithdrawn          = "withdrawn"
	StatusClosed             = "closed"
)

type JobApplication struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string     `gorm:"type:uuid;not null;index" json:"userId"`
	CompanyID      string     `gorm:"type:uuid;not null;index" json:"companyId"`
	Position       string     `gorm:"not null" json:"position"`
	Status         string     `gorm:"size:50;not null;default:'applied'" json:"status"`
	Priority       string     `gorm:"size:20;default:'medium'" json:"priority"` // low, medium, high
	JobDescription string     `gorm:"type:text" json:"jobDescription,omitempty"`
	Salary         string     `gorm:"size:255" json:"salary,omitempty"`
	Source         string     `gorm:"size:255" json:"source,omitempty"` // e.g. "LinkedIn", "referral"
	Notes          string     `gorm:"type:text" json:"notes,omitempty"`
	AppliedDate    *time.Time `json:"appliedDate,omitempty"`
	ResponseDate   *time.Time `json:"responseDate,omitempty"`
	InterviewDate  *time.Time `json:"interviewDate,omitempty"`
	OfferDate      *time.Time `json:"offerDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	// Relationships
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Company    *Company   `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Activities []Activity `gorm:"foreignKey:JobApplicationID" json:"activities,omitempty"`
	Links      []Link     `gorm:"foreignKey:JobApplicationID" json:"links,omitempty"`
	Files      []File     `gorm:"many2many:job_application_files;" json:"files,omitempty"`
}

func (JobApplication) TableName() string {
	return "job_applications"
}

func (a *JobApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// ValidStatus reports whether s is one of the recognized application statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusApplied, StatusInterviewScheduled, StatusInterviewed, StatusOffer,
		StatusRejected, StatusAccepted, StatusWithdrawn, StatusClosed:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of low, medium or high.
func ValidPriority(p string) bool {
	return p == "low" || p == "medium" || p == "high"
}
