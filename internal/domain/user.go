package domain

// User represents the users table. Email uniqueness among live rows is
// enforced by a partial unique index created in the SQL migrations; the
// identity service additionally checks before insert.
type User struct {
	Entity
	UserName     string `gorm:"not null" json:"user_name"`
	Email        string `gorm:"not null;index" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Relationships
	Attachments         []Attachment `gorm:"foreignKey:OwnerID" json:"-"`
	ReceivedAttachments []Attachment `gorm:"many2many:received_attachments" json:"-"`
}

func (User) TableName() string {
	return "users"
}
