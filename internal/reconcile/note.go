package reconcile

import (
	"context"

	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/syncerr"
	"notevault-be/internal/repository/specification"
	"notevault-be/internal/repository/unitofwork"
	"notevault-be/pkg/crypt"
)

// NoteMergeOptions carries the per-call inputs of a note merge. Keys are
// explicit handles scoped to this call; the caller forgets them afterwards.
type NoteMergeOptions struct {
	Policy         Policy
	IncludePrivate bool
	// BackupKey decrypts ciphertext arriving in the incoming set. Nil when
	// the backup carries no encrypted content.
	BackupKey *crypt.Key
	// ActiveKey is the store's current key. Nil when no password is set;
	// private content is then stored as plaintext.
	ActiveKey *crypt.Key
	Progress  ProgressFunc
}

// NoteReconciler merges an incoming note list into the store, consuming the
// category identity map the session built during the category merge.
type NoteReconciler struct {
	uow     unitofwork.UnitOfWork
	session *Session
	log     logger.ILogger
}

func NewNoteReconciler(uow unitofwork.UnitOfWork, session *Session, log logger.ILogger) *NoteReconciler {
	return &NoteReconciler{
		uow:     uow,
		session: session,
		log:     log,
	}
}

// Merge applies the policy to incoming notes and returns the number of
// records written. A security failure on one record aborts the merge and
// surfaces with the count written so far; a record-level store error is
// logged and skipped.
func (r *NoteReconciler) Merge(ctx context.Context, incoming []entity.Note, opts NoteMergeOptions) (int, error) {
	progress := opts.Progress
	if progress == nil {
		progress = noProgress
	}

	if opts.Policy == PolicyClean {
		if err := r.uow.NoteRepository().DeleteAll(ctx); err != nil {
			return 0, err
		}
	}

	imported := 0
	total := len(incoming)
	for i := range incoming {
		progress(StageNotes, i, total)
		n := incoming[i]

		if n.IsPrivate() && !opts.IncludePrivate {
			continue
		}

		n.CategoryId = r.session.MapCategory(n.CategoryId)

		if err := r.prepareContent(&n, opts); err != nil {
			return imported, err
		}

		if opts.Policy == PolicyTest {
			continue
		}

		wrote, err := r.apply(ctx, &n, opts.Policy)
		if err != nil {
			r.log.Warn("reconcile", "note merge skipped a record", map[string]interface{}{
				"id":    n.Id,
				"error": err.Error(),
			})
			continue
		}
		if wrote {
			imported++
		}
	}
	progress(StageNotes, total, total)
	return imported, nil
}

// prepareContent normalizes the note's content for the live store:
// incoming ciphertext is decrypted under the backup key and, when the
// store has an active key, private content is (re-)encrypted under it.
func (r *NoteReconciler) prepareContent(n *entity.Note, opts NoteMergeOptions) error {
	if n.IsEncrypted() {
		if opts.BackupKey == nil {
			return syncerr.Wrap(syncerr.ErrPasswordRequired, "encrypted note in backup")
		}
		plain, err := crypt.Decrypt(opts.BackupKey, n.Content)
		if err != nil {
			return syncerr.Wrap(syncerr.ErrSecurity, "decrypt incoming note")
		}
		n.Content = plain
		n.Privacy = entity.PrivacyPrivatePlain
	}

	if n.IsPrivate() && opts.ActiveKey != nil {
		sealed, err := crypt.Encrypt(opts.ActiveKey, n.Content)
		if err != nil {
			return syncerr.Wrap(syncerr.ErrSecurity, "encrypt imported note")
		}
		n.Content = sealed
		n.Privacy = entity.PrivacyPrivateEncrypted
	}
	return nil
}

// apply decides insert / overwrite / skip for one prepared note.
func (r *NoteReconciler) apply(ctx context.Context, n *entity.Note, policy Policy) (bool, error) {
	repo := r.uow.NoteRepository()

	var live *entity.Note
	if policy != PolicyClean && n.Id > 0 {
		var err error
		live, err = repo.FindOne(ctx, specification.ByID{ID: n.Id})
		if err != nil {
			return false, err
		}
	}

	switch policy {
	case PolicyClean:
		return true, r.insert(ctx, n)

	case PolicyRevert:
		if live == nil {
			return true, r.insert(ctx, n)
		}
		if live.CreateTime.Equal(n.CreateTime) {
			return true, repo.Update(ctx, n)
		}
		// Same id, different createTime: a distinct record colliding on
		// id. The live record stays; the incoming one gets a fresh id.
		n.Id = r.session.MintNoteId()
		return true, r.insert(ctx, n)

	case PolicyUpdate:
		if live == nil {
			return true, r.insert(ctx, n)
		}
		if live.CreateTime.Equal(n.CreateTime) {
			// Equal modTime counts as "not newer".
			if !n.ModTime.After(live.ModTime) {
				return false, nil
			}
			return true, repo.Update(ctx, n)
		}
		n.Id = r.session.MintNoteId()
		return true, r.insert(ctx, n)

	case PolicyAdd:
		if live != nil {
			n.Id = r.session.MintNoteId()
		}
		return true, r.insert(ctx, n)
	}
	return false, nil
}

func (r *NoteReconciler) insert(ctx context.Context, n *entity.Note) error {
	if n.Id <= 0 {
		n.Id = r.session.MintNoteId()
	}
	return r.uow.NoteRepository().Create(ctx, n)
}
