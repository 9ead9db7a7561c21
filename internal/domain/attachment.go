package domain

import "github.com/google/uuid"

// Attachment represents the attachments table. BlobKey is the opaque locator
// assigned at upload time and immutable thereafter; BlobLocation is the
// resolvable address derived from it. Ownership never transfers.
type Attachment struct {
	Entity
	FileName     string    `gorm:"not null" json:"file_name"`
	BlobKey      string    `gorm:"not null" json:"blob_key"`
	BlobLocation string    `gorm:"not null" json:"blob_location"`
	OwnerID      uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`

	// Relationships
	Owner      User   `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	SharedWith []User `gorm:"many2many:received_attachments" json:"-"`
}

func (Attachment) TableName() string {
	return "attachments"
}

// IsOwnedBy reports whether the principal is the attachment's owner.
func (a *Attachment) IsOwnedBy(principalID uuid.UUID) bool {
	return a.OwnerID == principalID
}

// IsSharedWith reports whether the principal is a sharing recipient.
// Requires SharedWith to be loaded.
func (a *Attachment) IsSharedWith(principalID uuid.UUID) bool {
	for _, u := range a.SharedWith {
		if u.ID == principalID {
			return true
		}
	}
	return false
}
