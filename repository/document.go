package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document is a single record in the document backend. Every entity
// collection shares the documents table; the payload is schemaless JSON and
// referential integrity is enforced only by application code.
type Document struct {
	ID         string         `gorm:"type:char(26);primaryKey"`
	Collection string         `gorm:"size:100;not null;index"`
	Data       datatypes.JSON `gorm:"type:json"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Document) TableName() string {
	return "documents"
}

// DocumentStore implements the Collection contract over the documents table.
// Filters are flat field equality only; anything richer has to go through
// the relational backend. Includes are resolved through the relation
// registry, one extra query per relation.
type DocumentStore struct {
	db *gorm.DB
}

func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// MigrateDocuments creates the documents table.
func MigrateDocuments(db *gorm.DB) error {
	return db.AutoMigrate(&Document{})
}

// decode merges the payload with the column-held id and timestamps.
func (s *DocumentStore) decode(doc *Document) (map[string]any, error) {
	record := make(map[string]any)
	if len(doc.Data) > 0 {
		if err := json.Unmarshal(doc.Data, &record); err != nil {
			return nil, fmt.Errorf("corrupt document %s/%s: %w", doc.Collection, doc.ID, err)
		}
	}
	record["id"] = doc.ID
	record["createdAt"] = doc.CreatedAt
	record["updatedAt"] = doc.UpdatedAt
	return record, nil
}

// encode strips the column-held fields back out of the payload.
func encode(record map[string]any) (datatypes.JSON, error) {
	payload := make(map[string]any, len(record))
	for k, v := range record {
		if k == "id" || k == "createdAt" || k == "updatedAt" {
			continue
		}
		payload[k] = v
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// match compares a decoded JSON value against a filter value. JSON decoding
// loses Go types (all numbers become float64), so comparison goes through
// the printed form.
func match(docVal, want any) bool {
	if want == nil {
		return docVal == nil
	}
	if docVal == nil {
		return false
	}
	return fmt.Sprint(docVal) == fmt.Sprint(want)
}

func matchAll(record map[string]any, where Filter) bool {
	for field, want := range where {
		if !match(record[field], want) {
			return false
		}
	}
	return true
}

// compareValues orders decoded payload values by what they hold: JSON
// numbers numerically, date strings chronologically, everything else by
// the printed form. A lexical compare would mis-sort both ("10" before
// "9", mixed-offset timestamps out of order). Nil sorts first.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if fa, okA := a.(float64); okA {
		if fb, okB := b.(float64); okB {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	if sa, okA := a.(string); okA {
		if sb, okB := b.(string); okB {
			if ta, errA := parseTimeValue(sa); errA == nil {
				if tb, errB := parseTimeValue(sb); errB == nil {
					return ta.Compare(tb)
				}
			}
			return strings.Compare(sa, sb)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func parseTimeValue(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not a timestamp: %q", raw)
}

func (s *DocumentStore) findMany(ctx context.Context, collection string, where Filter, opts Options) ([]map[string]any, error) {
	field, desc := orderField(opts.OrderBy)
	if field == "" {
		field, desc = "createdAt", true
	}

	q := s.db.WithContext(ctx).Where("collection = ?", collection)
	if field == "createdAt" || field == "updatedAt" {
		clause := fieldColumn(field)
		if desc {
			clause += " DESC"
		}
		q = q.Order(clause)
	}

	var docs []Document
	if err := q.Find(&docs).Error; err != nil {
		slog.Error("Failed to query documents", "error", err, "collection", collection)
		return nil, err
	}

	records := make([]map[string]any, 0, len(docs))
	for i := range docs {
		record, err := s.decode(&docs[i])
		if err != nil {
			return nil, err
		}
		if matchAll(record, where) {
			records = append(records, record)
		}
	}

	// Payload fields can't be ordered by SQL; sort the decoded records.
	if field != "createdAt" && field != "updatedAt" {
		sort.SliceStable(records, func(i, j int) bool {
			less := compareValues(records[i][field], records[j][field]) < 0
			if desc {
				return !less
			}
			return less
		})
	}

	if opts.Skip > 0 {
		if opts.Skip >= len(records) {
			records = nil
		} else {
			records = records[opts.Skip:]
		}
	}
	if opts.Take > 0 && opts.Take < len(records) {
		records = records[:opts.Take]
	}

	for _, record := range records {
		if err := s.resolveIncludes(ctx, collection, record, opts.Include); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *DocumentStore) findUnique(ctx context.Context, collection string, where Filter, opts Options) (map[string]any, error) {
	if idVal, ok := where["id"]; ok {
		id, _ := idVal.(string)
		record, err := s.getByID(ctx, collection, id)
		if err != nil || record == nil {
			return nil, err
		}
		// Remaining filter fields still have to hold, so an ownership check
		// like {id, userId} can never leak another user's record.
		rest := make(Filter, len(where))
		for k, v := range where {
			if k != "id" {
				rest[k] = v
			}
		}
		if !matchAll(record, rest) {
			return nil, nil
		}
		if err := s.resolveIncludes(ctx, collection, record, opts.Include); err != nil {
			return nil, err
		}
		return record, nil
	}

	records, err := s.findMany(ctx, collection, where, Options{Include: opts.Include, Take: 1})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (s *DocumentStore) getByID(ctx context.Context, collection, id string) (map[string]any, error) {
	var doc Document
	err := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get document", "error", err, "collection", collection, "id", id)
		return nil, err
	}
	return s.decode(&doc)
}

func (s *DocumentStore) create(ctx context.Context, collection string, record map[string]any) (map[string]any, error) {
	id, _ := record["id"].(string)
	if id == "" {
		id = ulid.Make().String()
	}
	record["id"] = id

	payload, err := encode(record)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	doc := Document{
		ID:         id,
		Collection: collection,
		Data:       payload,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		slog.Error("Failed to create document", "error", err, "collection", collection)
		return nil, err
	}
	return s.decode(&doc)
}

func (s *DocumentStore) update(ctx context.Context, collection, id string, changes map[string]any) (map[string]any, error) {
	var doc Document
	err := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		slog.Error("Failed to get document for update", "error", err, "collection", collection, "id", id)
		return nil, err
	}

	record, err := s.decode(&doc)
	if err != nil {
		return nil, err
	}
	for field, value := range changes {
		if field == "id" || field == "createdAt" || field == "updatedAt" {
			continue
		}
		record[field] = value
	}

	payload, err := encode(record)
	if err != nil {
		return nil, err
	}
	doc.Data = payload
	doc.UpdatedAt = time.Now().UTC()
	if err := s.db.WithContext(ctx).Save(&doc).Error; err != nil {
		slog.Error("Failed to update document", "error", err, "collection", collection, "id", id)
		return nil, err
	}
	return s.decode(&doc)
}

func (s *DocumentStore) delete(ctx context.Context, collection, id string) (map[string]any, error) {
	// Fetch first so the prior value can be returned.
	var doc Document
	err := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		slog.Error("Failed to get document for deletion", "error", err, "collection", collection, "id", id)
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&doc).Error; err != nil {
		slog.Error("Failed to delete document", "error", err, "collection", collection, "id", id)
		return nil, err
	}
	return s.decode(&doc)
}

func (s *DocumentStore) count(ctx context.Context, collection string, where Filter) (int64, error) {
	records, err := s.findMany(ctx, collection, where, Options{})
	if err != nil {
		return 0, err
	}
	return int64(len(records)), nil
}

// resolveIncludes attaches related records to a decoded document using the
// relation registry.
func (s *DocumentStore) resolveIncludes(ctx context.Context, collection string, record map[string]any, includes []string) error {
	if len(includes) == 0 {
		return nil
	}
	colRelations := relations[collection]
	id, _ := record["id"].(string)

	for _, include := range includes {
		rel, ok := colRelations[include]
		if !ok {
			return fmt.Errorf("unknown relation %q on collection %q", include, collection)
		}

		switch rel.kind {
		case belongsTo:
			fk, _ := record[rel.foreignKey].(string)
			if fk == "" {
				continue
			}
			related, err := s.getByID(ctx, rel.target, fk)
			if err != nil {
				return err
			}
			if related != nil {
				record[rel.jsonKey] = related
			}

		case hasMany:
			related, err := s.findMany(ctx, rel.target, Filter{rel.foreignKey: id}, Options{})
			if err != nil {
				return err
			}
			record[rel.jsonKey] = related

		case manyToMany:
			joins, err := s.findMany(ctx, rel.joinCollection, Filter{rel.joinParentKey: id}, Options{OrderBy: "createdAt asc"})
			if err != nil {
				return err
			}
			related := make([]map[string]any, 0, len(joins))
			for _, join := range joins {
				targetID, _ := join[rel.joinTargetKey].(string)
				if targetID == "" {
					continue
				}
				target, err := s.getByID(ctx, rel.target, targetID)
				if err != nil {
					return err
				}
				if target != nil {
					related = append(related, target)
				}
			}
			record[rel.jsonKey] = related
		}
	}
	return nil
}

// docCollection adapts one model type onto the DocumentStore by JSON
// round-tripping between the struct and the schemaless record.
//
// Fields tagged `json:"-"` (password and token hashes) vanish in that
// round trip, so collections holding credentials set the two extra hooks
// to carry them in and out of the stored payload. The API's own JSON
// encoding of the struct still omits them.
type docCollection[T any] struct {
	store      *DocumentStore
	collection string

	encodeExtra func(*T, map[string]any)
	decodeExtra func(map[string]any, *T)
}

func (c *docCollection[T]) fromRecord(record map[string]any, entity *T) error {
	if err := remarshal(record, entity); err != nil {
		return err
	}
	if c.decodeExtra != nil {
		c.decodeExtra(record, entity)
	}
	return nil
}

func remarshal(from, to any) error {
	data, err := json.Marshal(from)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, to)
}

func (c *docCollection[T]) FindMany(ctx context.Context, where Filter, opts Options) ([]T, error) {
	records, err := c.store.findMany(ctx, c.collection, where, opts)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(records))
	for i, record := range records {
		if err := c.fromRecord(record, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *docCollection[T]) FindUnique(ctx context.Context, where Filter, opts Options) (*T, error) {
	record, err := c.store.findUnique(ctx, c.collection, where, opts)
	if err != nil || record == nil {
		return nil, err
	}
	entity := new(T)
	if err := c.fromRecord(record, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (c *docCollection[T]) Create(ctx context.Context, entity *T) error {
	record := make(map[string]any)
	if err := remarshal(entity, &record); err != nil {
		return err
	}
	if c.encodeExtra != nil {
		c.encodeExtra(entity, record)
	}
	created, err := c.store.create(ctx, c.collection, record)
	if err != nil {
		return err
	}
	return c.fromRecord(created, entity)
}

func (c *docCollection[T]) Update(ctx context.Context, id string, changes map[string]any) (*T, error) {
	record, err := c.store.update(ctx, c.collection, id, changes)
	if err != nil {
		return nil, err
	}
	entity := new(T)
	if err := c.fromRecord(record, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (c *docCollection[T]) Delete(ctx context.Context, id string) (*T, error) {
	record, err := c.store.delete(ctx, c.collection, id)
	if err != nil {
		return nil, err
	}
	entity := new(T)
	if err := c.fromRecord(record, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (c *docCollection[T]) Count(ctx context.Context, where Filter) (int64, error) {
	return c.store.count(ctx, c.collection, where)
}
