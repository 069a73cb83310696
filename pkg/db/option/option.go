package option

import "gorm.io/gorm"

// QueryOption mutates a gorm statement before execution.
type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type optionFunc func(*gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// WithOrder appends an ORDER BY clause.
func WithOrder(order string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	})
}

// WithLimit caps the number of returned rows.
func WithLimit(limit int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit)
	})
}

// WithOffset skips rows before returning results.
func WithOffset(offset int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset)
	})
}

// WithCondition appends an arbitrary WHERE clause.
func WithCondition(query any, args ...any) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
}
