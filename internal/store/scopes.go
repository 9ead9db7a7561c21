package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters on the primary key.
func ByID(id uuid.UUID) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

// Preload eager-loads the named association.
func Preload(association string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(association)
	}
}

// OrderBy applies an ORDER BY expression.
func OrderBy(expr string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(expr)
	}
}

// Where applies a raw condition with arguments.
func Where(query string, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}
