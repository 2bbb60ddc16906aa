package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// All models are automatically exported from their respective files:
// - User from user.go
// - Company from company.go
// - Contact from contact.go
// - JobApplication from application.go
// - Activity from activity.go
// - Tag, Link, File from tag.go, link.go, file.go
// - Association join records from joins.go

// Database schema overview:
// 1. users - The single account that owns every other record
// 2. companies - Employers and prospects being tracked
// 3. contacts - People in the user's professional network, optionally tied to a company
// 4. job_applications - Applications against a company, with status/priority and milestone dates
// 5. activities - Meetings, calls, notes and other interactions
// 6. tags / links / files - Labels, external URLs and uploaded attachments
// 7. *_tags, *_files, activity_contacts - Unique-pair join records for the
//    many-to-many associations; maintained by application code on both backends
