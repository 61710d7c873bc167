package service

import (
	"context"
	"testing"
	"time"

	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/syncerr"
	"notevault-be/internal/repository/specification"
	"notevault-be/internal/repository/unitofwork"
	"notevault-be/pkg/crypt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPasswordService(factory unitofwork.RepositoryFactory) IPasswordService {
	return NewPasswordService(factory, nil, logger.NewNopLogger())
}

func seedPrivateNote(t *testing.T, factory unitofwork.RepositoryFactory, id int64, content string) {
	t.Helper()
	ctx := context.Background()
	n := entity.Note{
		Id:         id,
		CreateTime: time.Unix(10, 0).UTC(),
		ModTime:    time.Unix(10, 0).UTC(),
		Privacy:    entity.PrivacyPrivatePlain,
		Content:    []byte(content),
	}
	require.NoError(t, factory.NewUnitOfWork(ctx).NoteRepository().Create(ctx, &n))
}

func storedKey(t *testing.T, factory unitofwork.RepositoryFactory, password string) *crypt.Key {
	t.Helper()
	ctx := context.Background()
	stored, err := loadVerification(ctx, factory.NewUnitOfWork(ctx).MetadataRepository())
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.True(t, crypt.Verify(password, stored.Hash, stored.Salt, stored.KDF))
	key, err := crypt.DeriveKey(password, stored.KeySalt, stored.KDF)
	require.NoError(t, err)
	return key
}

func TestSetPasswordEncryptsPrivateNotes(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)
	seedPrivateNote(t, factory, 1, "secret")

	svc := newTestPasswordService(factory)
	pass := "hunter2"
	require.NoError(t, svc.RunChangePassword(ctx, &dto.ChangePasswordRequest{NewPassword: &pass}, nil))

	uow := factory.NewUnitOfWork(ctx)
	live, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: 1})
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, entity.PrivacyPrivateEncrypted, live.Privacy)
	assert.NotEqual(t, []byte("secret"), live.Content)

	key := storedKey(t, factory, pass)
	defer key.Forget()
	plain, err := crypt.Decrypt(key, live.Content)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), plain)
}

func TestSetPasswordLeavesPublicNotesAlone(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	uow := factory.NewUnitOfWork(ctx)
	public := entity.Note{Id: 1, CreateTime: time.Unix(10, 0).UTC(), ModTime: time.Unix(10, 0).UTC(), Content: []byte("public")}
	require.NoError(t, uow.NoteRepository().Create(ctx, &public))

	svc := newTestPasswordService(factory)
	pass := "hunter2"
	require.NoError(t, svc.RunChangePassword(ctx, &dto.ChangePasswordRequest{NewPassword: &pass}, nil))

	live, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, entity.PrivacyPublic, live.Privacy)
	assert.Equal(t, []byte("public"), live.Content)
}

func TestChangePasswordRekeys(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)
	seedPrivateNote(t, factory, 1, "secret")

	svc := newTestPasswordService(factory)
	oldPass, newPass := "first", "second"
	require.NoError(t, svc.RunChangePassword(ctx, &dto.ChangePasswordRequest{NewPassword: &oldPass}, nil))
	require.NoError(t, svc.RunChangePassword(ctx, &dto.ChangePasswordRequest{OldPassword: &oldPass, NewPassword: &newPass}, nil))

	uow := factory.NewUnitOfWork(ctx)
	live, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, entity.PrivacyPrivateEncrypted, live.Privacy)

	key := storedKey(t, factory, newPass)
	defer key.Forget()
	plain, err := crypt.Decrypt(key, live.Content)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), plain)
}

func TestClearPasswordDecryptsPrivateNotes(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)
	seedPrivateNote(t, factory, 1, "secret")

	svc := newTestPasswordService(factory)
	pass := "hunter2"
	require.NoError(t, svc.RunChangePassword(ctx, &dto.ChangePasswordRequest{NewPassword: &pass}, nil))
	require.NoError(t, svc.RunChangePassword(ctx, &dto.ChangePasswordRequest{OldPassword: &pass}, nil))

	uow := factory.NewUnitOfWork(ctx)
	live, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, entity.PrivacyPrivatePlain, live.Privacy)
	assert.Equal(t, []byte("secret"), live.Content)

	// The verification record is gone with the password.
	stored, err := loadVerification(ctx, uow.MetadataRepository())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestChangePasswordRejectsWrongOldPassword(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)
	seedPrivateNote(t, factory, 1, "secret")

	svc := newTestPasswordService(factory)
	pass := "hunter2"
	require.NoError(t, svc.RunChangePassword(ctx, &dto.ChangePasswordRequest{NewPassword: &pass}, nil))

	wrong, next := "nope", "third"
	err := svc.RunChangePassword(ctx, &dto.ChangePasswordRequest{OldPassword: &wrong, NewPassword: &next}, nil)
	assert.ErrorIs(t, err, syncerr.ErrPasswordMismatch)

	// The store still opens under the original password.
	key := storedKey(t, factory, pass)
	defer key.Forget()

	uow := factory.NewUnitOfWork(ctx)
	live, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: 1})
	require.NoError(t, err)
	plain, err := crypt.Decrypt(key, live.Content)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), plain)
}

func TestChangePasswordRequiresOldWhenSet(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	svc := newTestPasswordService(factory)
	pass := "hunter2"
	require.NoError(t, svc.RunChangePassword(ctx, &dto.ChangePasswordRequest{NewPassword: &pass}, nil))

	next := "third"
	err := svc.RunChangePassword(ctx, &dto.ChangePasswordRequest{NewPassword: &next}, nil)
	assert.ErrorIs(t, err, syncerr.ErrPasswordRequired)
}

func TestClearPasswordOnUnprotectedStoreIsNoOp(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)
	seedPrivateNote(t, factory, 1, "secret")

	svc := newTestPasswordService(factory)
	old := "anything"
	err := svc.RunChangePassword(ctx, &dto.ChangePasswordRequest{OldPassword: &old}, nil)
	require.NoError(t, err)

	uow := factory.NewUnitOfWork(ctx)
	live, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, entity.PrivacyPrivatePlain, live.Privacy)
	assert.Equal(t, []byte("secret"), live.Content)
}
