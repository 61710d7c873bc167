package service

import (
	"context"
	"crypto/sha1"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"notevault-be/internal/backup"
	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/syncerr"
	"notevault-be/internal/repository/specification"
	"notevault-be/internal/repository/unitofwork"
	"notevault-be/pkg/crypt"
	"notevault-be/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

func newTestFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	db, err := database.NewGormDB("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return unitofwork.NewRepositoryFactory(db)
}

func newTestSyncService(t *testing.T, factory unitofwork.RepositoryFactory) ISyncService {
	t.Helper()
	return NewSyncService(factory, nil, t.TempDir(), logger.NewNopLogger())
}

func seedStore(t *testing.T, factory unitofwork.RepositoryFactory) {
	t.Helper()
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)

	work := entity.Category{Id: 2, Name: "Work"}
	require.NoError(t, uow.CategoryRepository().Create(ctx, &work))

	notes := []entity.Note{
		{Id: 1, CategoryId: 2, CreateTime: time.Unix(100, 0).UTC(), ModTime: time.Unix(110, 0).UTC(), Content: []byte("first")},
		{Id: 2, CreateTime: time.Unix(200, 0).UTC(), ModTime: time.Unix(210, 0).UTC(), Content: []byte("second")},
	}
	for i := range notes {
		require.NoError(t, uow.NoteRepository().Create(ctx, &notes[i]))
	}

	require.NoError(t, uow.PreferenceRepository().Set(ctx, &entity.Preference{
		Name: entity.PrefSortOrder, Value: "modified DESC",
	}))
	require.NoError(t, uow.PreferenceRepository().Set(ctx, &entity.Preference{
		Name: entity.PrefSelectedCategory, Value: "2",
	}))
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := newTestFactory(t)
	seedStore(t, source)

	svc := newTestSyncService(t, source)
	exported, err := svc.RunExport(ctx, &dto.ExportRequest{Destination: "roundtrip.json"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, exported)

	// A fresh store loaded with CLEAN carries the same records.
	target := newTestFactory(t)
	targetSvc := NewSyncService(target, nil, t.TempDir(), logger.NewNopLogger())
	backupPath := filepath.Join(svcBackupDir(svc), "roundtrip.json")
	imported, err := targetSvc.RunImport(ctx, &dto.ImportRequest{
		Source: backupPath,
		Policy: "CLEAN",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	uow := target.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx, specification.OrderById{})
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, []byte("first"), notes[0].Content)
	assert.EqualValues(t, 2, notes[0].CategoryId)
	assert.True(t, notes[0].CreateTime.Equal(time.Unix(100, 0).UTC()))

	work, err := uow.CategoryRepository().FindOne(ctx, specification.ByName{Name: "Work"})
	require.NoError(t, err)
	require.NotNil(t, work)
	assert.EqualValues(t, 2, work.Id)

	sort, err := uow.PreferenceRepository().Get(ctx, entity.PrefSortOrder)
	require.NoError(t, err)
	require.NotNil(t, sort)
	assert.Equal(t, "modified DESC", sort.Value)
}

func svcBackupDir(s ISyncService) string {
	return s.(*syncService).backupDir
}

func writeTestFile(path string, raw []byte) error {
	return os.WriteFile(path, raw, 0o600)
}

func TestImportMissingSource(t *testing.T) {
	factory := newTestFactory(t)
	svc := newTestSyncService(t, factory)

	_, err := svc.RunImport(context.Background(), &dto.ImportRequest{
		Source: "does-not-exist.json",
		Policy: "UPDATE",
	}, nil)
	assert.ErrorIs(t, err, syncerr.ErrSourceUnavailable)
}

func TestImportUnknownPolicy(t *testing.T) {
	factory := newTestFactory(t)
	svc := newTestSyncService(t, factory)

	_, err := svc.RunImport(context.Background(), &dto.ImportRequest{
		Source: "whatever.json",
		Policy: "MERGE",
	}, nil)
	assert.ErrorIs(t, err, syncerr.ErrMalformedInput)
}

func TestImportRejectsWrongBackupPassword(t *testing.T) {
	ctx := context.Background()
	source := newTestFactory(t)
	seedStore(t, source)

	// Protect the source store, add a private note, export it all.
	passwords := NewPasswordService(source, nil, logger.NewNopLogger())
	newPass := "correct horse"
	require.NoError(t, passwords.RunChangePassword(ctx, &dto.ChangePasswordRequest{NewPassword: &newPass}, nil))

	uow := source.NewUnitOfWork(ctx)
	private := entity.Note{Id: 50, CreateTime: time.Unix(300, 0).UTC(), ModTime: time.Unix(300, 0).UTC(), Privacy: entity.PrivacyPrivatePlain, Content: []byte("secret")}
	require.NoError(t, uow.NoteRepository().Create(ctx, &private))

	svc := newTestSyncService(t, source)
	_, err := svc.RunExport(ctx, &dto.ExportRequest{Destination: "private.json", IncludePrivate: true}, nil)
	require.NoError(t, err)

	target := newTestFactory(t)
	targetSvc := NewSyncService(target, nil, t.TempDir(), logger.NewNopLogger())
	_, err = targetSvc.RunImport(ctx, &dto.ImportRequest{
		Source:         filepath.Join(svcBackupDir(svc), "private.json"),
		Policy:         "UPDATE",
		IncludePrivate: true,
		Password:       "wrong",
	}, nil)
	assert.ErrorIs(t, err, syncerr.ErrPasswordMismatch)

	// The rejection happened before any write.
	count, err := target.NewUnitOfWork(ctx).NoteRepository().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestImportRequiresPasswordForPrivateBackup(t *testing.T) {
	ctx := context.Background()
	source := newTestFactory(t)
	seedStore(t, source)

	passwords := NewPasswordService(source, nil, logger.NewNopLogger())
	newPass := "correct horse"
	require.NoError(t, passwords.RunChangePassword(ctx, &dto.ChangePasswordRequest{NewPassword: &newPass}, nil))

	svc := newTestSyncService(t, source)
	_, err := svc.RunExport(ctx, &dto.ExportRequest{Destination: "private.json", IncludePrivate: true}, nil)
	require.NoError(t, err)

	target := newTestFactory(t)
	targetSvc := NewSyncService(target, nil, t.TempDir(), logger.NewNopLogger())
	_, err = targetSvc.RunImport(ctx, &dto.ImportRequest{
		Source:         filepath.Join(svcBackupDir(svc), "private.json"),
		Policy:         "UPDATE",
		IncludePrivate: true,
	}, nil)
	assert.ErrorIs(t, err, syncerr.ErrPasswordRequired)
}

func TestPrivateImportIntoUnprotectedStoreDecrypts(t *testing.T) {
	ctx := context.Background()
	source := newTestFactory(t)

	passwords := NewPasswordService(source, nil, logger.NewNopLogger())
	newPass := "hunter2"
	require.NoError(t, passwords.RunChangePassword(ctx, &dto.ChangePasswordRequest{NewPassword: &newPass}, nil))

	uow := source.NewUnitOfWork(ctx)
	private := entity.Note{Id: 1, CreateTime: time.Unix(10, 0).UTC(), ModTime: time.Unix(10, 0).UTC(), Privacy: entity.PrivacyPrivatePlain, Content: []byte("secret")}
	require.NoError(t, uow.NoteRepository().Create(ctx, &private))
	require.NoError(t, passwords.RunChangePassword(ctx, &dto.ChangePasswordRequest{OldPassword: &newPass, NewPassword: &newPass}, nil))

	svc := newTestSyncService(t, source)
	_, err := svc.RunExport(ctx, &dto.ExportRequest{Destination: "private.json", IncludePrivate: true}, nil)
	require.NoError(t, err)

	// Target has no password, so the imported note lands as plaintext.
	target := newTestFactory(t)
	targetSvc := NewSyncService(target, nil, t.TempDir(), logger.NewNopLogger())
	imported, err := targetSvc.RunImport(ctx, &dto.ImportRequest{
		Source:         filepath.Join(svcBackupDir(svc), "private.json"),
		Policy:         "CLEAN",
		IncludePrivate: true,
		Password:       "hunter2",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	live, err := target.NewUnitOfWork(ctx).NoteRepository().FindOne(ctx, specification.ByID{ID: 1})
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, entity.PrivacyPrivatePlain, live.Privacy)
	assert.Equal(t, []byte("secret"), live.Content)
}

func TestExportWithoutPrivateSkipsPrivateNotes(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	uow := factory.NewUnitOfWork(ctx)
	public := entity.Note{Id: 1, CreateTime: time.Unix(10, 0).UTC(), ModTime: time.Unix(10, 0).UTC(), Content: []byte("public")}
	private := entity.Note{Id: 2, CreateTime: time.Unix(20, 0).UTC(), ModTime: time.Unix(20, 0).UTC(), Privacy: entity.PrivacyPrivatePlain, Content: []byte("secret")}
	require.NoError(t, uow.NoteRepository().Create(ctx, &public))
	require.NoError(t, uow.NoteRepository().Create(ctx, &private))

	svc := newTestSyncService(t, factory)
	exported, err := svc.RunExport(ctx, &dto.ExportRequest{Destination: "public.json"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, exported)
}

func TestImportRemapsSelectedCategoryPreference(t *testing.T) {
	ctx := context.Background()
	source := newTestFactory(t)
	seedStore(t, source)

	svc := newTestSyncService(t, source)
	_, err := svc.RunExport(ctx, &dto.ExportRequest{Destination: "remap.json"}, nil)
	require.NoError(t, err)

	// The target already holds "Work" under a different id; the merge reuses
	// it, and the selected-category preference follows.
	target := newTestFactory(t)
	targetUow := target.NewUnitOfWork(ctx)
	work := entity.Category{Id: 9, Name: "Work"}
	require.NoError(t, targetUow.CategoryRepository().Create(ctx, &work))

	targetSvc := NewSyncService(target, nil, t.TempDir(), logger.NewNopLogger())
	_, err = targetSvc.RunImport(ctx, &dto.ImportRequest{
		Source: filepath.Join(svcBackupDir(svc), "remap.json"),
		Policy: "UPDATE",
	}, nil)
	require.NoError(t, err)

	selected, err := targetUow.PreferenceRepository().Get(ctx, entity.PrefSelectedCategory)
	require.NoError(t, err)
	require.NotNil(t, selected)
	assert.Equal(t, "9", selected.Value)
}

func TestImportTestPolicyLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	source := newTestFactory(t)
	seedStore(t, source)

	svc := newTestSyncService(t, source)
	_, err := svc.RunExport(ctx, &dto.ExportRequest{Destination: "dryrun.json"}, nil)
	require.NoError(t, err)

	target := newTestFactory(t)
	targetSvc := NewSyncService(target, nil, t.TempDir(), logger.NewNopLogger())
	imported, err := targetSvc.RunImport(ctx, &dto.ImportRequest{
		Source: filepath.Join(svcBackupDir(svc), "dryrun.json"),
		Policy: "TEST",
	}, nil)
	require.NoError(t, err)
	assert.Zero(t, imported)

	uow := target.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, notes)

	categories, err := uow.CategoryRepository().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, categories) // only the reserved category

	prefs, err := uow.PreferenceRepository().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, prefs)
}

func TestImportBackupWithLegacyKDF(t *testing.T) {
	ctx := context.Background()
	password := "legacy horse"

	// Old releases derived everything with HMAC-SHA1 and tagged the backup
	// with kdf version 1. Build such a backup by hand.
	verifySalt, err := crypt.NewSalt()
	require.NoError(t, err)
	hash := pbkdf2.Key([]byte(password), verifySalt, 4096, 32, sha1.New)

	keySalt, err := crypt.NewSalt()
	require.NoError(t, err)
	key, err := crypt.DeriveKey(password, keySalt, crypt.KDFv1)
	require.NoError(t, err)
	defer key.Forget()
	ciphertext, err := crypt.Encrypt(key, []byte("legacy secret"))
	require.NoError(t, err)

	rs := &backup.RecordSet{
		Metadata: verificationMetadata(&backup.Verification{
			Hash:    hash,
			Salt:    verifySalt,
			KeySalt: keySalt,
			KDF:     crypt.KDFv1,
		}),
		Notes: []entity.Note{{
			Id:         1,
			CreateTime: time.Unix(10, 0).UTC(),
			ModTime:    time.Unix(10, 0).UTC(),
			Privacy:    entity.PrivacyPrivateEncrypted,
			Content:    ciphertext,
		}},
	}
	raw, err := backup.Encode(rs)
	require.NoError(t, err)

	target := newTestFactory(t)
	svc := newTestSyncService(t, target)
	require.NoError(t, writeTestFile(filepath.Join(svcBackupDir(svc), "legacy.json"), raw))

	// A wrong password is still caught under the legacy KDF.
	_, err = svc.RunImport(ctx, &dto.ImportRequest{
		Source:         "legacy.json",
		Policy:         "CLEAN",
		IncludePrivate: true,
		Password:       "wrong",
	}, nil)
	assert.ErrorIs(t, err, syncerr.ErrPasswordMismatch)

	imported, err := svc.RunImport(ctx, &dto.ImportRequest{
		Source:         "legacy.json",
		Policy:         "CLEAN",
		IncludePrivate: true,
		Password:       password,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	live, err := target.NewUnitOfWork(ctx).NoteRepository().FindOne(ctx, specification.ByID{ID: 1})
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, entity.PrivacyPrivatePlain, live.Privacy)
	assert.Equal(t, []byte("legacy secret"), live.Content)
}

func TestImportMalformedFile(t *testing.T) {
	factory := newTestFactory(t)
	svc := newTestSyncService(t, factory)

	dir := svcBackupDir(svc)
	require.NoError(t, writeTestFile(filepath.Join(dir, "broken.json"), []byte("{not json")))

	_, err := svc.RunImport(context.Background(), &dto.ImportRequest{
		Source: "broken.json",
		Policy: "UPDATE",
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, syncerr.ErrMalformedInput))
}
