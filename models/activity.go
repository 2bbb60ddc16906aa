package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity types
const (
	ActivityEmail           = "EMAIL"
	ActivityPhoneCall       = "PHONE_CALL"
	ActivityMeeting         = "MEETING"
	ActivityInterview       = "INTERVIEW"
	ActivityNetworkingEvent = "NETWORKING_EVENT"
	ActivityCoffeeChat      = "COFFEE_CHAT"
	ActivityFollowUp        = "FOLLOW_UP"
	ActivityApplication     = "APPLICATION"
	ActivityReferral        = "REFERRAL"
	ActivityLinkedInMessage = "LINKEDIN_MESSAGE"
	ActivityNote            = "NOTE"
	ActivityResearch        = "RESEARCH"
	ActivityOther           = "OTHER"
)

type Activity struct {
	ID               string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string     `gorm:"type:uuid;not null;index" json:"userId"`
	CompanyID        *string    `gorm:"type:uuid;index" json:"companyId,omitempty"`
	JobApplicationID *string    `gorm:"type:uuid;index" json:"jobApplicationId,omitempty"`
	Type             string     `gorm:"size:50;not null" json:"type"`
	Subject          string     `gorm:"size:255" json:"subject,omitempty"`
	Description      string     `gorm:"type:text" json:"description,omitempty"`
	Date             time.Time  `gorm:"not null" json:"date"`
	Duration         *int       `json:"duration,omitempty"` // Minutes
	Note             string     `gorm:"type:text" json:"note,omitempty"`
	FollowUpDate     *time.Time `json:"followUpDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`

	// Relationships
	User           *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Company        *Company        `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	JobApplication *JobApplication `gorm:"foreignKey:JobApplicationID" json:"jobApplication,omitempty"`
	Contacts       []Contact       `gorm:"many2many:activity_contacts;" json:"contacts,omitempty"`
	Tags           []Tag           `gorm:"many2many:activity_tags;" json:"tags,omitempty"`
	Files          []File          `gorm:"many2many:activity_files;" json:"files,omitempty"`
}

func (Activity) TableName() string {
	return "activities"
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// ValidActivityType reports whether t is one of the recognized activity types.
func ValidActivityType(t string) bool {
	switch t {
	case ActivityEmail, ActivityPhoneCall, ActivityMeeting, ActivityInterview,
		ActivityNetworkingEvent, ActivityCoffeeChat, ActivityFollowUp,
		ActivityApplication, ActivityReferral, ActivityLinkedInMessage,
		ActivityNote, ActivityResearch, ActivityOther:
		return true
	}
	return false
}
