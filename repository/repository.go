package repository

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Update and Delete when no record matches the id.
// Lookup misses via FindUnique return (nil, nil) instead.
var ErrNotFound = errors.New("record not found")

// Filter is a flat field-equality filter. Keys use the JSON field names of
// the models (camelCase); adapters translate to their native column naming.
// A nil value matches records where the field is NULL.
type Filter map[string]any

// Options tunes a read operation.
type Options struct {
	// Include lists relation field names to resolve on the returned records,
	// e.g. "Company", "Tags". The relational adapter preloads them natively;
	// the document adapter resolves them through the relation registry.
	Include []string
	// OrderBy is a JSON field name optionally followed by "asc" or "desc",
	// e.g. "createdAt desc".
	OrderBy string
	Skip    int
	Take    int
}

// Collection is the uniform persistence contract, implemented once by the
// relational (GORM) adapter and once by the document-store adapter. Both
// backends are selected at startup; call sites never know which one they got.
type Collection[T any] interface {
	FindMany(ctx context.Context, where Filter, opts Options) ([]T, error)
	FindUnique(ctx context.Context, where Filter, opts Options) (*T, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, id string, changes map[string]any) (*T, error)
	Delete(ctx context.Context, id string) (*T, error)
	Count(ctx context.Context, where Filter) (int64, error)
}

// fieldColumn converts a JSON field name to its database column name,
// e.g. "jobApplicationId" -> "job_application_id".
func fieldColumn(field string) string {
	var b strings.Builder
	for _, r := range field {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// columnFilter rewrites a Filter's keys to column names.
func columnFilter(where Filter) map[string]any {
	cols := make(map[string]any, len(where))
	for k, v := range where {
		cols[fieldColumn(k)] = v
	}
	return cols
}

// orderField splits an OrderBy value into its field name and direction.
func orderField(orderBy string) (field string, desc bool) {
	parts := strings.Fields(orderBy)
	if len(parts) == 0 {
		return "", false
	}
	field = parts[0]
	desc = len(parts) > 1 && strings.EqualFold(parts[1], "desc")
	return field, desc
}
