package repository

// Relation metadata for the document backend. The relational backend gets
// relationship resolution for free from GORM preloads; the document store has
// no native joins, so includes are resolved by hand against this registry.

type relationKind int

const (
	belongsTo relationKind = iota
	hasMany
	manyToMany
)

type relation struct {
	kind    relationKind
	jsonKey string // Key the resolved relation is stored under
	target  string // Target collection

	// belongsTo: foreign key field on the parent record.
	// hasMany: foreign key field on the child records.
	foreignKey string

	// manyToMany join collection and its two foreign key fields.
	joinCollection string
	joinParentKey  string
	joinTargetKey  string
}

// relations maps collection -> relation field name (as used in Options.Include)
// -> resolution metadata. Field names match the Go struct fields so the same
// Include values drive GORM preloads and the document resolver.
var relations = map[string]map[string]relation{
	"companies": {
		"Contacts":        {kind: hasMany, jsonKey: "contacts", target: "contacts", foreignKey: "companyId"},
		"JobApplications": {kind: hasMany, jsonKey: "jobApplications", target: "job_applications", foreignKey: "companyId"},
		"Activities":      {kind: hasMany, jsonKey: "activities", target: "activities", foreignKey: "companyId"},
		"Links":           {kind: hasMany, jsonKey: "links", target: "links", foreignKey: "companyId"},
		"Tags":            {kind: manyToMany, jsonKey: "tags", target: "tags", joinCollection: "company_tags", joinParentKey: "companyId", joinTargetKey: "tagId"},
		"Files":           {kind: manyToMany, jsonKey: "files", target: "files", joinCollection: "company_files", joinParentKey: "companyId", joinTargetKey: "fileId"},
	},
	"contacts": {
		"Company": {kind: belongsTo, jsonKey: "company", target: "companies", foreignKey: "companyId"},
		"Links":   {kind: hasMany, jsonKey: "links", target: "links", foreignKey: "contactId"},
		"Tags":    {kind: manyToMany, jsonKey: "tags", target: "tags", joinCollection: "contact_tags", joinParentKey: "contactId", joinTargetKey: "tagId"},
		"Files":   {kind: manyToMany, jsonKey: "files", target: "files", joinCollection: "contact_files", joinParentKey: "contactId", joinTargetKey: "fileId"},
	},
	"job_applications": {
		"Company":    {kind: belongsTo, jsonKey: "company", target: "companies", foreignKey: "companyId"},
		"Activities": {kind: hasMany, jsonKey: "activities", target: "activities", foreignKey: "jobApplicationId"},
		"Links":      {kind: hasMany, jsonKey: "links", target: "links", foreignKey: "jobApplicationId"},
		"Files":      {kind: manyToMany, jsonKey: "files", target: "files", joinCollection: "job_application_files", joinParentKey: "jobApplicationId", joinTargetKey: "fileId"},
	},
	"activities": {
		"Company":        {kind: belongsTo, jsonKey: "company", target: "companies", foreignKey: "companyId"},
		"JobApplication": {kind: belongsTo, jsonKey: "jobApplication", target: "job_applications", foreignKey: "jobApplicationId"},
		"Contacts":       {kind: manyToMany, jsonKey: "contacts", target: "contacts", joinCollection: "activity_contacts", joinParentKey: "activityId", joinTargetKey: "contactId"},
		"Tags":           {kind: manyToMany, jsonKey: "tags", target: "tags", joinCollection: "activity_tags", joinParentKey: "activityId", joinTargetKey: "tagId"},
		"Files":          {kind: manyToMany, jsonKey: "files", target: "files", joinCollection: "activity_files", joinParentKey: "activityId", joinTargetKey: "fileId"},
	},
	"links": {
		"Company":        {kind: belongsTo, jsonKey: "company", target: "companies", foreignKey: "companyId"},
		"Contact":        {kind: belongsTo, jsonKey: "contact", target: "contacts", foreignKey: "contactId"},
		"JobApplication": {kind: belongsTo, jsonKey: "jobApplication", target: "job_applications", foreignKey: "jobApplicationId"},
	},
}
