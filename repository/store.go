package repository

import (
	"github.com/theBenForce/CareerCraft-sub000/models"
	"gorm.io/gorm"
)

// Store bundles one typed collection per entity. Handlers receive a *Store
// and never learn which backend produced it; the choice is made once at
// process start from configuration.
type Store struct {
	Users         Collection[models.User]
	RefreshTokens Collection[models.RefreshToken]

	Companies       Collection[models.Company]
	Contacts        Collection[models.Contact]
	JobApplications Collection[models.JobApplication]
	Activities      Collection[models.Activity]
	Tags            Collection[models.Tag]
	Links           Collection[models.Link]
	Files           Collection[models.File]

	CompanyTags         Collection[models.CompanyTag]
	ContactTags         Collection[models.ContactTag]
	ActivityTags        Collection[models.ActivityTag]
	ActivityContacts    Collection[models.ActivityContact]
	CompanyFiles        Collection[models.CompanyFile]
	ContactFiles        Collection[models.ContactFile]
	ActivityFiles       Collection[models.ActivityFile]
	JobApplicationFiles Collection[models.JobApplicationFile]
}

// NewGormStore builds the relational backend over a GORM connection.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:         &gormCollection[models.User]{db: db},
		RefreshTokens: &gormCollection[models.RefreshToken]{db: db},

		Companies:       &gormCollection[models.Company]{db: db},
		Contacts:        &gormCollection[models.Contact]{db: db},
		JobApplications: &gormCollection[models.JobApplication]{db: db},
		Activities:      &gormCollection[models.Activity]{db: db},
		Tags:            &gormCollection[models.Tag]{db: db},
		Links:           &gormCollection[models.Link]{db: db},
		Files:           &gormCollection[models.File]{db: db},

		CompanyTags:         &gormCollection[models.CompanyTag]{db: db},
		ContactTags:         &gormCollection[models.ContactTag]{db: db},
		ActivityTags:        &gormCollection[models.ActivityTag]{db: db},
		ActivityContacts:    &gormCollection[models.ActivityContact]{db: db},
		CompanyFiles:        &gormCollection[models.CompanyFile]{db: db},
		ContactFiles:        &gormCollection[models.ContactFile]{db: db},
		ActivityFiles:       &gormCollection[models.ActivityFile]{db: db},
		JobApplicationFiles: &gormCollection[models.JobApplicationFile]{db: db},
	}
}

// NewDocStore builds the document backend over the shared documents table.
func NewDocStore(docs *DocumentStore) *Store {
	return &Store{
		Users: &docCollection[models.User]{
			store: docs, collection: "users",
			encodeExtra: func(u *models.User, record map[string]any) {
				record["password"] = u.Password
			},
			decodeExtra: func(record map[string]any, u *models.User) {
				u.Password, _ = record["password"].(string)
			},
		},
		RefreshTokens: &docCollection[models.RefreshToken]{
			store: docs, collection: "refresh_tokens",
			encodeExtra: func(t *models.RefreshToken, record map[string]any) {
				record["token"] = t.Token
			},
			decodeExtra: func(record map[string]any, t *models.RefreshToken) {
				t.Token, _ = record["token"].(string)
			},
		},

		Companies:       &docCollection[models.Company]{store: docs, collection: "companies"},
		Contacts:        &docCollection[models.Contact]{store: docs, collection: "contacts"},
		JobApplications: &docCollection[models.JobApplication]{store: docs, collection: "job_applications"},
		Activities:      &docCollection[models.Activity]{store: docs, collection: "activities"},
		Tags:            &docCollection[models.Tag]{store: docs, collection: "tags"},
		Links:           &docCollection[models.Link]{store: docs, collection: "links"},
		Files:           &docCollection[models.File]{store: docs, collection: "files"},

		CompanyTags:         &docCollection[models.CompanyTag]{store: docs, collection: "company_tags"},
		ContactTags:         &docCollection[models.ContactTag]{store: docs, collection: "contact_tags"},
		ActivityTags:        &docCollection[models.ActivityTag]{store: docs, collection: "activity_tags"},
		ActivityContacts:    &docCollection[models.ActivityContact]{store: docs, collection: "activity_contacts"},
		CompanyFiles:        &docCollection[models.CompanyFile]{store: docs, collection: "company_files"},
		ContactFiles:        &docCollection[models.ContactFile]{store: docs, collection: "contact_files"},
		ActivityFiles:       &docCollection[models.ActivityFile]{store: docs, collection: "activity_files"},
		JobApplicationFiles: &docCollection[models.JobApplicationFile]{store: docs, collection: "job_application_files"},
	}
}

// Migrate registers the explicit join models for GORM's many-to-many
// preloads and runs database migrations for the relational backend.
func Migrate(db *gorm.DB) error {
	joinTables := []struct {
		model    any
		field    string
		joinable any
	}{
		{&models.Company{}, "Tags", &models.CompanyTag{}},
		{&models.Company{}, "Files", &models.CompanyFile{}},
		{&models.Contact{}, "Tags", &models.ContactTag{}},
		{&models.Contact{}, "Files", &models.ContactFile{}},
		{&models.Activity{}, "Contacts", &models.ActivityContact{}},
		{&models.Activity{}, "Tags", &models.ActivityTag{}},
		{&models.Activity{}, "Files", &models.ActivityFile{}},
		{&models.JobApplication{}, "Files", &models.JobApplicationFile{}},
	}
	for _, jt := range joinTables {
		if err := db.SetupJoinTable(jt.model, jt.field, jt.joinable); err != nil {
			return err
		}
	}

	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Company{},
		&models.Contact{},
		&models.JobApplication{},
		&models.Activity{},
		&models.Tag{},
		&models.Link{},
		&models.File{},
		&models.CompanyTag{},
		&models.ContactTag{},
		&models.ActivityTag{},
		&models.ActivityContact{},
		&models.CompanyFile{},
		&models.ContactFile{},
		&models.ActivityFile{},
		&models.JobApplicationFile{},
	)
}
