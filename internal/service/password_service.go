package service

import (
	"context"
	"errors"
	"fmt"

	"notevault-be/internal/backup"
	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/syncerr"
	"notevault-be/internal/reconcile"
	"notevault-be/internal/repository/specification"
	"notevault-be/internal/repository/unitofwork"
	"notevault-be/pkg/crypt"
)

type IPasswordService interface {
	// ChangePassword enqueues the re-key as a background job.
	ChangePassword(req *dto.ChangePasswordRequest) (*dto.JobResponse, error)
	// RunChangePassword is the synchronous core. The whole transition runs
	// in one transaction: readers see the fully-old or fully-new state,
	// never a half-re-keyed store.
	RunChangePassword(ctx context.Context, req *dto.ChangePasswordRequest, progress reconcile.ProgressFunc) error
}

type passwordService struct {
	uowFactory unitofwork.RepositoryFactory
	jobs       IJobService
	log        logger.ILogger
}

func NewPasswordService(uowFactory unitofwork.RepositoryFactory, jobs IJobService, log logger.ILogger) IPasswordService {
	return &passwordService{
		uowFactory: uowFactory,
		jobs:       jobs,
		log:        log,
	}
}

func (s *passwordService) ChangePassword(req *dto.ChangePasswordRequest) (*dto.JobResponse, error) {
	r := *req
	return s.jobs.Submit("change-password", func(ctx context.Context, progress reconcile.ProgressFunc) (int, error) {
		return 0, s.RunChangePassword(ctx, &r, progress)
	})
}

func (s *passwordService) RunChangePassword(ctx context.Context, req *dto.ChangePasswordRequest, progress reconcile.ProgressFunc) error {
	if progress == nil {
		progress = func(string, int, int) {}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("%w: %v", syncerr.ErrTransactionFailure, err)
	}
	defer uow.Rollback()

	stored, err := loadVerification(ctx, uow.MetadataRepository())
	if err != nil {
		return err
	}

	// The old-password check happens before any mutation.
	var oldKey *crypt.Key
	if stored != nil {
		if req.OldPassword == nil {
			return syncerr.Wrap(syncerr.ErrPasswordRequired, "store has a password")
		}
		if !crypt.Verify(*req.OldPassword, stored.Hash, stored.Salt, stored.KDF) {
			return syncerr.Wrap(syncerr.ErrPasswordMismatch, "old password check")
		}
		oldKey, err = crypt.DeriveKey(*req.OldPassword, stored.KeySalt, stored.KDF)
		if err != nil {
			return err
		}
	}
	defer oldKey.Forget()

	var newKey *crypt.Key
	var newKeySalt []byte
	if req.NewPassword != nil {
		newKeySalt, err = crypt.NewSalt()
		if err != nil {
			return err
		}
		newKey, err = crypt.DeriveKey(*req.NewPassword, newKeySalt, crypt.CurrentKDF)
		if err != nil {
			return err
		}
	}
	defer newKey.Forget()

	if stored == nil && newKey == nil {
		// Clearing a password that was never set: nothing to do.
		return nil
	}

	if err := s.rekeyNotes(ctx, uow, oldKey, newKey, progress); err != nil {
		return err
	}

	if err := s.storeVerification(ctx, uow, req.NewPassword, newKeySalt); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("%w: %v", syncerr.ErrTransactionFailure, err)
	}

	s.log.Info("password", "re-key finished", map[string]interface{}{
		"transition": transitionName(stored != nil, newKey != nil),
	})
	return nil
}

// rekeyNotes walks every private note and moves it to the new key state:
// encrypting, decrypting, or re-encrypting depending on which keys exist.
// A record that fails individually is logged and left for the next run;
// only a store-level failure aborts the transaction.
func (s *passwordService) rekeyNotes(ctx context.Context, uow unitofwork.UnitOfWork, oldKey, newKey *crypt.Key, progress reconcile.ProgressFunc) error {
	repo := uow.NoteRepository()
	notes, err := repo.FindAll(ctx, specification.PrivacyAtLeast{Level: int(entity.PrivacyPrivatePlain)})
	if err != nil {
		return err
	}

	total := len(notes)
	for i, n := range notes {
		progress(reconcile.StageRekey, i, total)

		content := n.Content
		if n.IsEncrypted() {
			if oldKey == nil {
				s.log.Warn("password", "encrypted note without an active key", map[string]interface{}{"id": n.Id})
				continue
			}
			content, err = crypt.Decrypt(oldKey, n.Content)
			if err != nil {
				s.log.Warn("password", "note skipped during re-key", map[string]interface{}{
					"id":    n.Id,
					"error": err.Error(),
				})
				continue
			}
		}

		if newKey != nil {
			sealed, err := crypt.Encrypt(newKey, content)
			if err != nil {
				return syncerr.Wrap(syncerr.ErrSecurity, "encrypt during re-key")
			}
			n.Content = sealed
			n.Privacy = entity.PrivacyPrivateEncrypted
		} else {
			n.Content = content
			n.Privacy = entity.PrivacyPrivatePlain
		}

		if err := repo.Update(ctx, n); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			s.log.Warn("password", "note update failed during re-key", map[string]interface{}{
				"id":    n.Id,
				"error": err.Error(),
			})
		}
	}
	progress(reconcile.StageRekey, total, total)
	return nil
}

func (s *passwordService) storeVerification(ctx context.Context, uow unitofwork.UnitOfWork, newPassword *string, newKeySalt []byte) error {
	repo := uow.MetadataRepository()

	if newPassword == nil {
		for _, name := range []string{
			entity.MetaPasswordHash,
			entity.MetaPasswordSalt,
			entity.MetaKeySalt,
			entity.MetaKDFVersion,
		} {
			if err := repo.Delete(ctx, name); err != nil {
				return err
			}
		}
		return nil
	}

	hash, salt, version, err := crypt.ComputeVerificationHash(*newPassword)
	if err != nil {
		return err
	}
	for _, m := range verificationMetadata(&backup.Verification{
		Hash:    hash,
		Salt:    salt,
		KeySalt: newKeySalt,
		KDF:     version,
	}) {
		if err := repo.Set(ctx, &m); err != nil {
			return err
		}
	}
	return nil
}

func transitionName(hadPassword, hasNew bool) string {
	switch {
	case !hadPassword && hasNew:
		return "encrypting"
	case hadPassword && !hasNew:
		return "decrypting"
	default:
		return "reencrypting"
	}
}
