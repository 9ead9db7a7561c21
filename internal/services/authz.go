package services

import (
	"fmt"

	"filevault/internal/domain"
	apperrors "filevault/pkg/errors"

	"github.com/google/uuid"
)

// Relation is the relationship a principal must hold to an attachment for an
// operation to proceed.
type Relation int

const (
	// RelationOwner admits only the attachment's owner.
	RelationOwner Relation = iota
	// RelationOwnerOrRecipient admits the owner and every sharing recipient.
	RelationOwnerOrRecipient
)

// Authorize decides whether the principal holds the required relation to the
// attachment. It is a pure predicate: the attachment must arrive with Owner
// and, for recipient checks, SharedWith already loaded. A failed check is
// always Unauthorized, never NotFound, even for principals who could not
// otherwise learn the attachment exists.
func Authorize(principalID uuid.UUID, attachment *domain.Attachment, required Relation, action string) error {
	switch required {
	case RelationOwner:
		if attachment.IsOwnedBy(principalID) {
			return nil
		}
	case RelationOwnerOrRecipient:
		if attachment.IsOwnedBy(principalID) || attachment.IsSharedWith(principalID) {
			return nil
		}
	}
	return apperrors.Unauthorized(fmt.Sprintf("you do not have permission to %s this file", action))
}
