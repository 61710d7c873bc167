package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"notevault-be/internal/backup"
	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/syncerr"
	"notevault-be/internal/reconcile"
	"notevault-be/internal/repository/contract"
	"notevault-be/internal/repository/specification"
	"notevault-be/internal/repository/unitofwork"
	"notevault-be/pkg/crypt"
)

type ISyncService interface {
	// Import and Export enqueue a background job and return its id.
	Import(req *dto.ImportRequest) (*dto.JobResponse, error)
	Export(req *dto.ExportRequest) (*dto.JobResponse, error)
	// RunImport and RunExport are the synchronous cores, used by the job
	// worker and by the CLI.
	RunImport(ctx context.Context, req *dto.ImportRequest, progress reconcile.ProgressFunc) (int, error)
	RunExport(ctx context.Context, req *dto.ExportRequest, progress reconcile.ProgressFunc) (int, error)
}

type syncService struct {
	uowFactory unitofwork.RepositoryFactory
	jobs       IJobService
	backupDir  string
	log        logger.ILogger
}

func NewSyncService(
	uowFactory unitofwork.RepositoryFactory,
	jobs IJobService,
	backupDir string,
	log logger.ILogger,
) ISyncService {
	return &syncService{
		uowFactory: uowFactory,
		jobs:       jobs,
		backupDir:  backupDir,
		log:        log,
	}
}

func (s *syncService) Import(req *dto.ImportRequest) (*dto.JobResponse, error) {
	if _, err := reconcile.ParsePolicy(req.Policy); err != nil {
		return nil, fmt.Errorf("%w: %v", syncerr.ErrMalformedInput, err)
	}
	r := *req
	return s.jobs.Submit("import", func(ctx context.Context, progress reconcile.ProgressFunc) (int, error) {
		return s.RunImport(ctx, &r, progress)
	})
}

func (s *syncService) Export(req *dto.ExportRequest) (*dto.JobResponse, error) {
	r := *req
	return s.jobs.Submit("export", func(ctx context.Context, progress reconcile.ProgressFunc) (int, error) {
		return s.RunExport(ctx, &r, progress)
	})
}

// RunImport merges the record set at req.Source into the store. The
// password checks run before any mutation; a rejection leaves the store
// byte-for-byte unchanged.
func (s *syncService) RunImport(ctx context.Context, req *dto.ImportRequest, progress reconcile.ProgressFunc) (int, error) {
	policy, err := reconcile.ParsePolicy(req.Policy)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", syncerr.ErrMalformedInput, err)
	}

	raw, err := os.ReadFile(s.resolvePath(req.Source))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", syncerr.ErrSourceUnavailable, err)
	}
	rs, err := backup.Decode(raw)
	if err != nil {
		return 0, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	backupKey, activeKey, err := s.importKeys(ctx, uow.MetadataRepository(), rs, req)
	if err != nil {
		return 0, err
	}
	defer backupKey.Forget()
	defer activeKey.Forget()

	session, err := reconcile.NewSession(ctx, uow)
	if err != nil {
		return 0, err
	}

	categories := reconcile.NewCategoryReconciler(uow, session, s.log)
	if err := categories.Merge(ctx, policy, rs.Categories, progress); err != nil {
		return 0, err
	}

	notes := reconcile.NewNoteReconciler(uow, session, s.log)
	imported, err := notes.Merge(ctx, rs.Notes, reconcile.NoteMergeOptions{
		Policy:         policy,
		IncludePrivate: req.IncludePrivate,
		BackupKey:      backupKey,
		ActiveKey:      activeKey,
		Progress:       progress,
	})
	if err != nil {
		return imported, err
	}

	if policy.Mutates() && policy.ImportsPreferences() {
		if err := s.importPreferences(ctx, uow.PreferenceRepository(), rs.Preferences, session); err != nil {
			s.log.Warn("sync", "preference import failed", map[string]interface{}{"error": err.Error()})
		}
	}

	s.log.Info("sync", "import finished", map[string]interface{}{
		"policy":   policy.String(),
		"imported": imported,
		"private":  req.IncludePrivate,
	})
	return imported, nil
}

// importKeys runs the pre-mutation password checks and derives the two key
// handles an import may need: one for the backup's ciphertext and one for
// the store's. Both are scoped to this call.
func (s *syncService) importKeys(
	ctx context.Context,
	metaRepo contract.MetadataRepository,
	rs *backup.RecordSet,
	req *dto.ImportRequest,
) (backupKey, activeKey *crypt.Key, err error) {
	if !req.IncludePrivate {
		return nil, nil, nil
	}

	if v := rs.PasswordVerification(); v != nil {
		if req.Password == "" {
			return nil, nil, syncerr.Wrap(syncerr.ErrPasswordRequired, "backup carries private content")
		}
		if !crypt.Verify(req.Password, v.Hash, v.Salt, v.KDF) {
			return nil, nil, syncerr.Wrap(syncerr.ErrPasswordMismatch, "backup password check")
		}
		keySalt := v.KeySalt
		if len(keySalt) == 0 {
			// Very old exports reused the verification salt.
			keySalt = v.Salt
		}
		backupKey, err = crypt.DeriveKey(req.Password, keySalt, v.KDF)
		if err != nil {
			return nil, nil, err
		}
	} else if rs.HasEncryptedNotes() {
		return nil, nil, syncerr.Wrap(syncerr.ErrPasswordRequired, "backup has ciphertext but no verification record")
	}

	stored, err := loadVerification(ctx, metaRepo)
	if err != nil {
		backupKey.Forget()
		return nil, nil, err
	}
	if stored != nil {
		// Single-password model: when the store is protected, the same
		// password must open it, or the import is rejected up front.
		if req.Password == "" {
			backupKey.Forget()
			return nil, nil, syncerr.Wrap(syncerr.ErrPasswordRequired, "store has a password")
		}
		if !crypt.Verify(req.Password, stored.Hash, stored.Salt, stored.KDF) {
			backupKey.Forget()
			return nil, nil, syncerr.Wrap(syncerr.ErrPasswordMismatch, "store password check")
		}
		activeKey, err = crypt.DeriveKey(req.Password, stored.KeySalt, stored.KDF)
		if err != nil {
			backupKey.Forget()
			return nil, nil, err
		}
	}
	return backupKey, activeKey, nil
}

func (s *syncService) importPreferences(
	ctx context.Context,
	repo contract.PreferenceRepository,
	prefs map[string]string,
	session *reconcile.Session,
) error {
	for name, value := range prefs {
		if !entity.ImportablePreference(name) {
			continue
		}
		if name == entity.PrefSelectedCategory {
			// The selected category follows the id actually assigned
			// during this merge.
			if incoming, err := strconv.ParseInt(value, 10, 64); err == nil {
				value = strconv.FormatInt(session.MapCategory(incoming), 10)
			}
		}
		if err := repo.Set(ctx, &entity.Preference{Name: name, Value: value}); err != nil {
			return err
		}
	}
	return nil
}

// RunExport writes the store's content to req.Destination. Encrypted notes
// travel as stored ciphertext; the verification metadata goes along only
// with a private export so the backup can be opened later.
func (s *syncService) RunExport(ctx context.Context, req *dto.ExportRequest, progress reconcile.ProgressFunc) (int, error) {
	if progress == nil {
		progress = func(string, int, int) {}
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	categories, err := uow.CategoryRepository().FindAll(ctx, specification.OrderById{})
	if err != nil {
		return 0, err
	}
	notes, err := uow.NoteRepository().FindAll(ctx, specification.OrderById{})
	if err != nil {
		return 0, err
	}
	prefs, err := uow.PreferenceRepository().FindAll(ctx)
	if err != nil {
		return 0, err
	}

	rs := &backup.RecordSet{Preferences: map[string]string{}}
	for _, p := range prefs {
		rs.Preferences[p.Name] = p.Value
	}
	for _, c := range categories {
		rs.Categories = append(rs.Categories, *c)
	}

	if req.IncludePrivate {
		stored, err := loadVerification(ctx, uow.MetadataRepository())
		if err != nil {
			return 0, err
		}
		if stored != nil {
			rs.Metadata = verificationMetadata(stored)
		}
	}

	total := len(notes)
	exported := 0
	for i, n := range notes {
		progress(reconcile.StageNotes, i, total)
		if n.IsPrivate() && !req.IncludePrivate {
			continue
		}
		rs.Notes = append(rs.Notes, *n)
		exported++
	}
	progress(reconcile.StageNotes, total, total)

	raw, err := backup.Encode(rs)
	if err != nil {
		return 0, err
	}
	if err := s.writeFile(s.resolvePath(req.Destination), raw); err != nil {
		return 0, fmt.Errorf("%w: %v", syncerr.ErrSourceUnavailable, err)
	}

	s.log.Info("sync", "export finished", map[string]interface{}{
		"notes":   exported,
		"private": req.IncludePrivate,
	})
	return exported, nil
}

func (s *syncService) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.backupDir, p)
}

// writeFile writes via a temp file and rename so a crashed export never
// leaves a truncated backup behind.
func (s *syncService) writeFile(path string, raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// loadVerification reads the stored password-verification material, nil
// when no password is configured.
func loadVerification(ctx context.Context, repo contract.MetadataRepository) (*backup.Verification, error) {
	hash, err := repo.Get(ctx, entity.MetaPasswordHash)
	if err != nil {
		return nil, err
	}
	if hash == nil {
		return nil, nil
	}
	v := &backup.Verification{Hash: hash.Value, KDF: crypt.CurrentKDF}

	if salt, err := repo.Get(ctx, entity.MetaPasswordSalt); err != nil {
		return nil, err
	} else if salt != nil {
		v.Salt = salt.Value
	}
	if keySalt, err := repo.Get(ctx, entity.MetaKeySalt); err != nil {
		return nil, err
	} else if keySalt != nil {
		v.KeySalt = keySalt.Value
	}
	if kdf, err := repo.Get(ctx, entity.MetaKDFVersion); err != nil {
		return nil, err
	} else if kdf != nil {
		if n, err := strconv.Atoi(string(kdf.Value)); err == nil {
			v.KDF = crypt.KDFVersion(n)
		}
	}
	return v, nil
}

func verificationMetadata(v *backup.Verification) []entity.Metadata {
	return []entity.Metadata{
		{Name: entity.MetaPasswordHash, Value: v.Hash},
		{Name: entity.MetaPasswordSalt, Value: v.Salt},
		{Name: entity.MetaKeySalt, Value: v.KeySalt},
		{Name: entity.MetaKDFVersion, Value: []byte(strconv.Itoa(int(v.KDF)))},
	}
}
