package postgres

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// wrap prefixes err with the failed operation, keeping it matchable with errors.Is
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// findOne loads the first T matching the condition. Misses surface as
// gorm.ErrRecordNotFound.
func findOne[T any](ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*T, error) {
	var out T
	if err := db.WithContext(ctx).Where(query, args...).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// orderBy sorts by column when it is in allowed and by fallback otherwise.
// Direction defaults to descending.
func orderBy(column, direction string, allowed []string, fallback string) func(*gorm.DB) *gorm.DB {
	if !slices.Contains(allowed, column) {
		column = fallback
	}
	dir := " DESC"
	if strings.EqualFold(direction, "asc") {
		dir = " ASC"
	}
	return func(db *gorm.DB) *gorm.DB { return db.Order(column + dir) }
}

// paginate clamps limit to (0, maxPageSize]
func paginate(limit, offset int) func(*gorm.DB) *gorm.DB {
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	return func(db *gorm.DB) *gorm.DB {
		db = db.Limit(limit)
		if offset > 0 {
			db = db.Offset(offset)
		}
		return db
	}
}
