package services_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"filevault/internal/domain"
	"filevault/internal/services"
	"filevault/internal/storage"
	"filevault/internal/store"
	apperrors "filevault/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type attachmentFixture struct {
	db          *gorm.DB
	blobs       *storage.MemoryStore
	users       *services.UserService
	attachments *services.AttachmentService
	userStore   *store.Store[domain.User]
}

func newAttachmentFixture(t *testing.T) *attachmentFixture {
	t.Helper()
	db := newTestDB(t)
	blobs := storage.NewMemoryStore()
	userStore := store.New[domain.User](db)
	users := services.NewUserService(userStore)
	attachments := services.NewAttachmentService(store.New[domain.Attachment](db), users, blobs)
	return &attachmentFixture{
		db:          db,
		blobs:       blobs,
		users:       users,
		attachments: attachments,
		userStore:   userStore,
	}
}

func (f *attachmentFixture) createUser(t *testing.T, name string) *domain.User {
	t.Helper()
	u := &domain.User{
		Entity:       domain.Entity{CreatedBy: name},
		UserName:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, f.userStore.Save(context.Background(), u))
	return u
}

func TestUploadAndDownloadRoundTrip(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")

	uploaded, err := f.attachments.UploadFile(ctx, owner.ID, strings.NewReader("abc"), "notes.txt")
	require.NoError(t, err)

	assert.Equal(t, "notes.txt", uploaded.FileName)
	assert.Equal(t, owner.ID, uploaded.OwnerID)
	assert.Equal(t, "owner", uploaded.CreatedBy)
	assert.True(t, strings.HasPrefix(uploaded.BlobKey, owner.ID.String()+"/"))
	assert.NotEmpty(t, uploaded.BlobLocation)

	body, meta, err := f.attachments.DownloadFile(ctx, uploaded.ID, owner.ID)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
	assert.Equal(t, uploaded.ID, meta.ID)
}

func TestUploadUnknownOwnerWritesNothing(t *testing.T) {
	f := newAttachmentFixture(t)

	_, err := f.attachments.UploadFile(context.Background(), uuid.New(), strings.NewReader("abc"), "notes.txt")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.Zero(t, f.blobs.Len())
}

func TestDownloadMissingBlobIsStorageFailure(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")

	uploaded, err := f.attachments.UploadFile(ctx, owner.ID, strings.NewReader("abc"), "notes.txt")
	require.NoError(t, err)

	f.blobs.Delete(uploaded.BlobKey)

	_, _, err = f.attachments.DownloadFile(ctx, uploaded.ID, owner.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindStorageFailure))
}

func TestShareFileOutcomes(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	carol := f.createUser(t, "carol")

	uploaded, err := f.attachments.UploadFile(ctx, owner.ID, strings.NewReader("abc"), "notes.txt")
	require.NoError(t, err)

	// All-new recipients: plain success.
	result, err := f.attachments.ShareFile(ctx, owner.ID, uploaded.ID, []uuid.UUID{bob.ID})
	require.NoError(t, err)
	assert.Equal(t, "file shared successfully", result.Message)
	assert.ElementsMatch(t, []uuid.UUID{bob.ID}, result.SharedWith)
	assert.Empty(t, result.AlreadyShared)

	// Mixed: new recipient granted, existing one reported but untouched.
	result, err = f.attachments.ShareFile(ctx, owner.ID, uploaded.ID, []uuid.UUID{bob.ID, carol.ID})
	require.NoError(t, err)
	assert.Equal(t, "file shared with new users successfully, some users already had access", result.Message)
	assert.ElementsMatch(t, []uuid.UUID{carol.ID}, result.SharedWith)
	assert.ElementsMatch(t, []uuid.UUID{bob.ID}, result.AlreadyShared)

	// All already shared: rejected.
	_, err = f.attachments.ShareFile(ctx, owner.ID, uploaded.ID, []uuid.UUID{bob.ID, carol.ID})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAlreadyShared))

	// The recipient set is a duplicate-free union after all of it.
	final, err := f.attachments.GetByID(ctx, uploaded.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, final.SharedWith, 2)
	assert.ElementsMatch(t, []uuid.UUID{bob.ID, carol.ID},
		[]uuid.UUID{final.SharedWith[0].ID, final.SharedWith[1].ID})
}

func TestShareFileValidation(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")

	uploaded, err := f.attachments.UploadFile(ctx, owner.ID, strings.NewReader("abc"), "notes.txt")
	require.NoError(t, err)

	_, err = f.attachments.ShareFile(ctx, owner.ID, uploaded.ID, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

	_, err = f.attachments.ShareFile(ctx, owner.ID, uploaded.ID, []uuid.UUID{owner.ID})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

	_, err = f.attachments.ShareFile(ctx, owner.ID, uuid.New(), []uuid.UUID{bob.ID})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	// A recipient id that resolves to no live user fails the whole request.
	_, err = f.attachments.ShareFile(ctx, owner.ID, uploaded.ID, []uuid.UUID{bob.ID, uuid.New()})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInternal))
	assert.EqualError(t, err, "some users not found")

	// The failed request granted nothing.
	refetched, err := f.attachments.GetByID(ctx, uploaded.ID, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, refetched.SharedWith)
}

func TestRecipientPermissions(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	carol := f.createUser(t, "carol")

	uploaded, err := f.attachments.UploadFile(ctx, owner.ID, strings.NewReader("abc"), "notes.txt")
	require.NoError(t, err)
	_, err = f.attachments.ShareFile(ctx, owner.ID, uploaded.ID, []uuid.UUID{bob.ID})
	require.NoError(t, err)

	// A recipient can download and view.
	body, _, err := f.attachments.DownloadFile(ctx, uploaded.ID, bob.ID)
	require.NoError(t, err)
	body.Close()
	_, err = f.attachments.GetByID(ctx, uploaded.ID, bob.ID)
	require.NoError(t, err)

	// A recipient cannot delete, rename or re-share.
	err = f.attachments.DeleteFile(ctx, uploaded.ID, bob.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	_, err = f.attachments.RenameFile(ctx, uploaded.ID, bob.ID, "stolen.txt")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	_, err = f.attachments.ShareFile(ctx, bob.ID, uploaded.ID, []uuid.UUID{carol.ID})
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))

	// A stranger cannot touch the file at all.
	_, _, err = f.attachments.DownloadFile(ctx, uploaded.ID, carol.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	_, err = f.attachments.GetByID(ctx, uploaded.ID, carol.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestRenameKeepsBlobKey(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")

	uploaded, err := f.attachments.UploadFile(ctx, owner.ID, strings.NewReader("abc"), "old.txt")
	require.NoError(t, err)

	renamed, err := f.attachments.RenameFile(ctx, uploaded.ID, owner.ID, "new.txt")
	require.NoError(t, err)
	assert.Equal(t, "new.txt", renamed.FileName)
	assert.Equal(t, uploaded.BlobKey, renamed.BlobKey)

	// Content is still reachable under the original key.
	body, _, err := f.attachments.DownloadFile(ctx, uploaded.ID, owner.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	body.Close()
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
}

func TestDeleteFileSoftDeletesAndKeepsBlob(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")

	uploaded, err := f.attachments.UploadFile(ctx, owner.ID, strings.NewReader("abc"), "notes.txt")
	require.NoError(t, err)
	_, err = f.attachments.ShareFile(ctx, owner.ID, uploaded.ID, []uuid.UUID{bob.ID})
	require.NoError(t, err)

	require.NoError(t, f.attachments.DeleteFile(ctx, uploaded.ID, owner.ID))

	// Gone from downloads and listings for everyone.
	_, _, err = f.attachments.DownloadFile(ctx, uploaded.ID, owner.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	listing, err := f.attachments.ListUserAttachments(ctx, owner.ID, store.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, listing.UserAttachments)

	received, err := f.attachments.ListUserAttachments(ctx, bob.ID, store.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, received.SharedAttachments)

	// Still addressable by id for audit, with the deletion stamped.
	audit, err := f.attachments.GetByID(ctx, uploaded.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, audit.DeletedAt.Valid)

	// The blob is never removed alongside the metadata.
	assert.Equal(t, 1, f.blobs.Len())

	// Deleting a dead file reports NotFound, not success.
	err = f.attachments.DeleteFile(ctx, uploaded.ID, owner.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestListUserAttachmentsPaging(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")

	for i := 0; i < 12; i++ {
		uploaded, err := f.attachments.UploadFile(ctx, owner.ID, bytes.NewReader([]byte{byte(i)}), fmt.Sprintf("file%02d.bin", i))
		require.NoError(t, err)
		if i < 3 {
			_, err = f.attachments.ShareFile(ctx, owner.ID, uploaded.ID, []uuid.UUID{bob.ID})
			require.NoError(t, err)
		}
	}

	listing, err := f.attachments.ListUserAttachments(ctx, owner.ID, store.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Len(t, listing.UserAttachments, 10)
	assert.EqualValues(t, 12, listing.TotalUserAttachments)
	assert.EqualValues(t, 0, listing.TotalSharedAttachments)
	assert.Equal(t, 1, listing.CurrentPage)
	assert.Equal(t, 2, listing.TotalPages)

	second, err := f.attachments.ListUserAttachments(ctx, owner.ID, store.Page{Number: 2, Size: 10})
	require.NoError(t, err)
	assert.Len(t, second.UserAttachments, 2)
	assert.Equal(t, 2, second.CurrentPage)

	bobListing, err := f.attachments.ListUserAttachments(ctx, bob.ID, store.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, bobListing.UserAttachments)
	assert.Len(t, bobListing.SharedAttachments, 3)
	assert.EqualValues(t, 3, bobListing.TotalSharedAttachments)
	assert.Equal(t, 1, bobListing.TotalPages)
}
