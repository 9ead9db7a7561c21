package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"filevault/internal/domain"
	"filevault/internal/storage"
	"filevault/internal/store"
	apperrors "filevault/pkg/errors"

	"github.com/google/uuid"
)

// AttachmentService coordinates attachment metadata with the blob store.
// Blob writes and metadata writes share no transaction: a metadata failure
// after a successful blob write leaves an orphan blob behind, and no
// reconciliation pass exists here.
type AttachmentService struct {
	store *store.Store[domain.Attachment]
	users *UserService
	blobs storage.BlobStore
}

func NewAttachmentService(attachmentStore *store.Store[domain.Attachment], users *UserService, blobs storage.BlobStore) *AttachmentService {
	return &AttachmentService{store: attachmentStore, users: users, blobs: blobs}
}

// ShareResult reports the three-way sharing outcome. A request whose
// recipients were all new reports a plain success; a mix of new and existing
// recipients reports a partial success.
type ShareResult struct {
	Message       string      `json:"message"`
	SharedWith    []uuid.UUID `json:"shared_with"`
	AlreadyShared []uuid.UUID `json:"already_shared,omitempty"`
}

// AttachmentListing is one page of a user's owned and received attachments.
type AttachmentListing struct {
	UserAttachments        []domain.Attachment `json:"user_attachments"`
	SharedAttachments      []domain.Attachment `json:"shared_attachments"`
	TotalUserAttachments   int64               `json:"total_user_attachments"`
	TotalSharedAttachments int64               `json:"total_shared_attachments"`
	CurrentPage            int                 `json:"current_page"`
	TotalPages             int                 `json:"total_pages"`
}

func ownedBy(userID uuid.UUID) store.Scope {
	return store.Where("owner_id = ?", userID)
}

func sharedWithUser(userID uuid.UUID) store.Scope {
	return store.Where(
		"attachments.id IN (SELECT attachment_id FROM received_attachments WHERE user_id = ?)",
		userID,
	)
}

// blobKey derives a collision-resistant object key for a new upload. Owner
// id plus millisecond timestamp keeps keys unique by construction; no
// existence check is made against the store.
func blobKey(ownerID uuid.UUID, originalName string) string {
	return fmt.Sprintf("%s/%d_%s", ownerID, time.Now().UnixMilli(), originalName)
}

// UploadFile writes the payload to the blob store, then persists the
// attachment metadata. The two writes are deliberately not atomic.
func (s *AttachmentService) UploadFile(ctx context.Context, ownerID uuid.UUID, body io.Reader, originalName string) (*domain.Attachment, error) {
	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, apperrors.NotFound("user not found")
	}

	key := blobKey(owner.ID, originalName)
	if err := s.blobs.Put(ctx, key, body); err != nil {
		return nil, apperrors.StorageFailure("failed to store file", err)
	}

	attachment := &domain.Attachment{
		Entity:       domain.Entity{CreatedBy: owner.UserName},
		FileName:     originalName,
		BlobKey:      key,
		BlobLocation: s.blobs.Location(key),
		OwnerID:      owner.ID,
	}
	if err := s.store.Save(ctx, attachment); err != nil {
		// The blob already exists under key; it is orphaned now.
		return nil, apperrors.StorageFailure("failed to persist attachment metadata", err)
	}
	return attachment, nil
}

// DownloadFile streams an attachment's content to an owner or recipient.
// Missing metadata is NotFound; a live metadata row whose blob is gone is a
// storage failure, surfaced distinctly.
func (s *AttachmentService) DownloadFile(ctx context.Context, fileID, requesterID uuid.UUID) (io.ReadCloser, *domain.Attachment, error) {
	attachment, err := s.store.FindOne(ctx, store.ByID(fileID), store.Preload("Owner"), store.Preload("SharedWith"))
	if err != nil {
		return nil, nil, err
	}
	if attachment == nil {
		return nil, nil, apperrors.NotFound("attachment not found")
	}

	if err := Authorize(requesterID, attachment, RelationOwnerOrRecipient, "download"); err != nil {
		return nil, nil, err
	}

	body, err := s.blobs.Get(ctx, attachment.BlobKey)
	if err != nil {
		return nil, nil, apperrors.StorageFailure("failed to fetch file from storage", err)
	}
	return body, attachment, nil
}

// DeleteFile soft-deletes the metadata row. Owner only; the blob itself is
// never removed from the store.
func (s *AttachmentService) DeleteFile(ctx context.Context, fileID, ownerID uuid.UUID) error {
	attachment, err := s.store.FindOne(ctx, store.ByID(fileID), store.Preload("Owner"))
	if err != nil {
		return err
	}
	if attachment == nil {
		return apperrors.NotFound("attachment not found")
	}

	if err := Authorize(ownerID, attachment, RelationOwner, "delete"); err != nil {
		return err
	}

	return s.store.SoftDelete(ctx, store.ByID(attachment.ID))
}

// RenameFile updates the display name. Owner only; the blob key is immutable
// and unaffected.
func (s *AttachmentService) RenameFile(ctx context.Context, fileID, ownerID uuid.UUID, newName string) (*domain.Attachment, error) {
	attachment, err := s.store.FindOne(ctx, store.ByID(fileID), store.Preload("Owner"))
	if err != nil {
		return nil, err
	}
	if attachment == nil {
		return nil, apperrors.NotFound("attachment not found")
	}

	if err := Authorize(ownerID, attachment, RelationOwner, "update"); err != nil {
		return nil, err
	}

	return s.store.Update(ctx, attachment.ID, map[string]any{"file_name": newName})
}

// GetByID returns the attachment regardless of soft-delete state, for audit
// access by owners and recipients. DeletedAt is populated on deleted rows.
func (s *AttachmentService) GetByID(ctx context.Context, fileID, requesterID uuid.UUID) (*domain.Attachment, error) {
	attachment, err := s.store.FindOneUnscoped(ctx, store.ByID(fileID), store.Preload("Owner"), store.Preload("SharedWith"))
	if err != nil {
		return nil, err
	}
	if attachment == nil {
		return nil, apperrors.NotFound("attachment not found")
	}
	if err := Authorize(requesterID, attachment, RelationOwnerOrRecipient, "view"); err != nil {
		return nil, err
	}
	return attachment, nil
}

// ShareFile grants recipients read access. Outcomes are three-way: all-new
// recipients succeed, a mix of new and already-shared recipients succeeds
// partially, and a request whose recipients are all already shared is
// rejected with AlreadyShared. Recipients already present are never touched,
// so the final set is always a duplicate-free union.
func (s *AttachmentService) ShareFile(ctx context.Context, ownerID, fileID uuid.UUID, recipientIDs []uuid.UUID) (*ShareResult, error) {
	recipientIDs = dedupe(recipientIDs)
	if len(recipientIDs) == 0 {
		return nil, apperrors.InvalidInput("no recipients given")
	}
	for _, id := range recipientIDs {
		if id == ownerID {
			return nil, apperrors.InvalidInput("cannot share a file with its owner")
		}
	}

	attachment, err := s.store.FindOne(ctx, store.ByID(fileID), store.Preload("Owner"), store.Preload("SharedWith"))
	if err != nil {
		return nil, err
	}
	if attachment == nil {
		return nil, apperrors.NotFound("attachment not found")
	}

	if err := Authorize(ownerID, attachment, RelationOwner, "share"); err != nil {
		return nil, err
	}

	recipients, err := s.users.FindByIDs(ctx, recipientIDs)
	if err != nil {
		return nil, err
	}
	if len(recipients) != len(recipientIDs) {
		// The attachment exists, so this is not a NotFound on the root
		// resource; it stays a generic failure.
		return nil, apperrors.Internal("some users not found", nil)
	}

	var newRecipients []domain.User
	var alreadyShared []uuid.UUID
	for _, recipient := range recipients {
		if attachment.IsSharedWith(recipient.ID) {
			alreadyShared = append(alreadyShared, recipient.ID)
			continue
		}
		newRecipients = append(newRecipients, recipient)
	}

	if len(newRecipients) == 0 {
		return nil, apperrors.AlreadyShared("attachment is already shared with the given users")
	}

	attachment.SharedWith = append(attachment.SharedWith, newRecipients...)
	if err := s.store.Save(ctx, attachment); err != nil {
		return nil, apperrors.StorageFailure("failed to persist sharing update", err)
	}

	result := &ShareResult{SharedWith: userIDs(newRecipients), AlreadyShared: alreadyShared}
	if len(alreadyShared) > 0 {
		result.Message = "file shared with new users successfully, some users already had access"
	} else {
		result.Message = "file shared successfully"
	}
	return result, nil
}

// ListUserAttachments pages through the attachments a user owns and the ones
// shared with them, with independent totals for each set.
func (s *AttachmentService) ListUserAttachments(ctx context.Context, userID uuid.UUID, page store.Page) (*AttachmentListing, error) {
	owned, ownedCount, err := s.store.FindAndCount(ctx, page, ownedBy(userID), store.OrderBy("created_at DESC"))
	if err != nil {
		return nil, err
	}

	received, receivedCount, err := s.store.FindAndCount(ctx, page, sharedWithUser(userID), store.OrderBy("created_at DESC"))
	if err != nil {
		return nil, err
	}

	if page.Number < 1 {
		page.Number = 1
	}
	if page.Size < 1 {
		page.Size = store.DefaultPageSize
	}

	return &AttachmentListing{
		UserAttachments:        owned,
		SharedAttachments:      received,
		TotalUserAttachments:   ownedCount,
		TotalSharedAttachments: receivedCount,
		CurrentPage:            page.Number,
		TotalPages:             int(math.Ceil(float64(ownedCount+receivedCount) / float64(page.Size))),
	}, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func userIDs(users []domain.User) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
