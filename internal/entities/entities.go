// Package entities is a thin generic repository over the platform store.
// Handlers depend on this capability set, not on the backend.
package entities

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("entities: record not found")

// Filter matches records by exact column values. Keys are column names
// chosen by the caller, never user input.
type Filter map[string]any

type Repository[T any] struct {
	db *gorm.DB
}

func NewRepository[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

func (r *Repository[T]) List(ctx context.Context, filter Filter, sort string, limit int) ([]T, error) {
	q := r.db.WithContext(ctx).Model(new(T))

	for column, value := range filter {
		q = q.Where(fmt.Sprintf("%s = ?", column), value)
	}

	if sort != "" {
		q = q.Order(sort)
	}

	if limit > 0 {
		q = q.Limit(limit)
	}

	var records []T
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("could not list records: %w", err)
	}

	return records, nil
}

func (r *Repository[T]) Get(ctx context.Context, id string) (*T, error) {
	var record T

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not get record: %w", err)
	}

	return &record, nil
}

func (r *Repository[T]) Create(ctx context.Context, record *T) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("could not create record: %w", err)
	}

	return nil
}

func (r *Repository[T]) Update(ctx context.Context, id string, patch map[string]any) error {
	res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return fmt.Errorf("could not update record: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("could not delete record: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
