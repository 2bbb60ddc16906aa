package repository

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"
)

// gormCollection adapts one model type to the Collection contract by
// delegating straight to GORM. Includes map to Preload, the flat filter to a
// column-equality Where clause.
type gormCollection[T any] struct {
	db *gorm.DB
}

func (c *gormCollection[T]) query(ctx context.Context, where Filter, opts Options) *gorm.DB {
	q := c.db.WithContext(ctx)
	if len(where) > 0 {
		q = q.Where(columnFilter(where))
	}
	for _, include := range opts.Include {
		q = q.Preload(include)
	}
	if opts.OrderBy != "" {
		field, desc := orderField(opts.OrderBy)
		clause := fieldColumn(field)
		if desc {
			clause += " DESC"
		}
		q = q.Order(clause)
	}
	if opts.Skip > 0 {
		q = q.Offset(opts.Skip)
	}
	if opts.Take > 0 {
		q = q.Limit(opts.Take)
	}
	return q
}

func (c *gormCollection[T]) FindMany(ctx context.Context, where Filter, opts Options) ([]T, error) {
	var records []T
	if err := c.query(ctx, where, opts).Find(&records).Error; err != nil {
		slog.Error("Failed to query records", "error", err)
		return nil, err
	}
	return records, nil
}

func (c *gormCollection[T]) FindUnique(ctx context.Context, where Filter, opts Options) (*T, error) {
	var record T
	opts.OrderBy = ""
	if err := c.query(ctx, where, opts).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get record", "error", err)
		return nil, err
	}
	return &record, nil
}

func (c *gormCollection[T]) Create(ctx context.Context, entity *T) error {
	if err := c.db.WithContext(ctx).Create(entity).Error; err != nil {
		slog.Error("Failed to create record", "error", err)
		return err
	}
	return nil
}

func (c *gormCollection[T]) Update(ctx context.Context, id string, changes map[string]any) (*T, error) {
	var record T
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		slog.Error("Failed to get record for update", "error", err, "id", id)
		return nil, err
	}

	if len(changes) > 0 {
		if err := c.db.WithContext(ctx).Model(&record).Updates(columnFilter(changes)).Error; err != nil {
			slog.Error("Failed to update record", "error", err, "id", id)
			return nil, err
		}
	}

	// Reload so callers see the merged state, not just the changed fields.
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		slog.Error("Failed to reload record after update", "error", err, "id", id)
		return nil, err
	}
	return &record, nil
}

func (c *gormCollection[T]) Delete(ctx context.Context, id string) (*T, error) {
	var record T
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		slog.Error("Failed to get record for deletion", "error", err, "id", id)
		return nil, err
	}
	if err := c.db.WithContext(ctx).Where("id = ?", id).Delete(&record).Error; err != nil {
		slog.Error("Failed to delete record", "error", err, "id", id)
		return nil, err
	}
	return &record, nil
}

func (c *gormCollection[T]) Count(ctx context.Context, where Filter) (int64, error) {
	var count int64
	q := c.db.WithContext(ctx).Model(new(T))
	if len(where) > 0 {
		q = q.Where(columnFilter(where))
	}
	if err := q.Count(&count).Error; err != nil {
		slog.Error("Failed to count records", "error", err)
		return 0, err
	}
	return count, nil
}
