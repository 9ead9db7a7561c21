package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entity carries the identity, audit and soft-delete columns shared by every
// persisted resource. ID and CreatedBy are set at creation and never change.
// A non-null DeletedAt removes the row from all default queries; the row
// itself is never erased.
type Entity struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedBy      string         `gorm:"not null" json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	LastModifiedAt time.Time      `gorm:"autoUpdateTime" json:"last_modified_at"`
	LastModifiedBy string         `json:"last_modified_by,omitempty"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (e *Entity) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
