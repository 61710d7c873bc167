package reconcile

import (
	"context"

	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/repository/specification"
	"notevault-be/internal/repository/unitofwork"
)

// CategoryReconciler merges an incoming category list into the store and
// fills the session's identity map for the note merge that follows.
type CategoryReconciler struct {
	uow     unitofwork.UnitOfWork
	session *Session
	log     logger.ILogger
}

func NewCategoryReconciler(uow unitofwork.UnitOfWork, session *Session, log logger.ILogger) *CategoryReconciler {
	return &CategoryReconciler{
		uow:     uow,
		session: session,
		log:     log,
	}
}

// Merge applies the policy to incoming categories. The reserved category
// (id 0) is never reassigned, deleted, or duplicated; incoming entries with
// the reserved id are mapped to it and otherwise ignored.
func (r *CategoryReconciler) Merge(ctx context.Context, policy Policy, incoming []entity.Category, progress ProgressFunc) error {
	if progress == nil {
		progress = noProgress
	}

	if policy == PolicyClean {
		if err := r.uow.CategoryRepository().DeleteAll(ctx); err != nil {
			return err
		}
	}

	total := len(incoming)
	for i := range incoming {
		progress(StageCategories, i, total)
		c := incoming[i]

		if c.Id == entity.UnfiledCategoryId {
			r.session.RecordCategory(c.Id, entity.UnfiledCategoryId)
			continue
		}

		var err error
		switch policy {
		case PolicyClean:
			err = r.mergeClean(ctx, c)
		case PolicyRevert:
			err = r.mergeRevert(ctx, c)
		case PolicyUpdate, PolicyAdd:
			err = r.mergeAdd(ctx, c, true)
		case PolicyTest:
			err = r.mergeAdd(ctx, c, false)
		}
		if err != nil {
			// A single failed category is recoverable; its notes will land
			// in Unfiled via the identity map default.
			r.log.Warn("reconcile", "category merge skipped a record", map[string]interface{}{
				"id":    c.Id,
				"name":  c.Name,
				"error": err.Error(),
			})
		}
	}
	progress(StageCategories, total, total)
	return nil
}

// mergeClean runs after the store wipe: every incoming category is
// installed verbatim.
func (r *CategoryReconciler) mergeClean(ctx context.Context, c entity.Category) error {
	installed := entity.Category{Id: c.Id, Name: c.Name}
	if err := r.uow.CategoryRepository().Create(ctx, &installed); err != nil {
		return err
	}
	r.session.RecordCategory(c.Id, c.Id)
	return nil
}

// mergeRevert makes the store carry the incoming category under the
// incoming id, displacing any live category that holds the same name.
func (r *CategoryReconciler) mergeRevert(ctx context.Context, c entity.Category) error {
	repo := r.uow.CategoryRepository()

	byName, err := repo.FindOne(ctx, specification.ByName{Name: c.Name})
	if err != nil {
		return err
	}
	if byName != nil && byName.Id != c.Id && !byName.IsReserved() {
		// Deleting a category reassigns its notes to Unfiled.
		if err := r.uow.NoteRepository().ReassignCategory(ctx, byName.Id, entity.UnfiledCategoryId); err != nil {
			return err
		}
		if err := repo.Delete(ctx, byName.Id); err != nil {
			return err
		}
	}

	byId, err := repo.FindOne(ctx, specification.ByID{ID: c.Id})
	if err != nil {
		return err
	}
	if byId != nil {
		if byId.Name != c.Name {
			byId.Name = c.Name
			if err := repo.Update(ctx, byId); err != nil {
				return err
			}
		}
	} else {
		installed := entity.Category{Id: c.Id, Name: c.Name}
		if err := repo.Create(ctx, &installed); err != nil {
			return err
		}
	}
	r.session.RecordCategory(c.Id, c.Id)
	return nil
}

// mergeAdd implements the shared UPDATE/ADD semantics: reuse a live
// category with the same name, otherwise insert, minting a fresh id when
// the incoming one is taken. With mutate=false (TEST) only the identity
// map is computed.
func (r *CategoryReconciler) mergeAdd(ctx context.Context, c entity.Category, mutate bool) error {
	repo := r.uow.CategoryRepository()

	byName, err := repo.FindOne(ctx, specification.ByName{Name: c.Name})
	if err != nil {
		return err
	}
	if byName != nil {
		r.session.RecordCategory(c.Id, byName.Id)
		return nil
	}

	byId, err := repo.FindOne(ctx, specification.ByID{ID: c.Id})
	if err != nil {
		return err
	}

	newId := c.Id
	if byId != nil {
		newId = r.session.MintCategoryId()
	}
	if mutate {
		installed := entity.Category{Id: newId, Name: c.Name}
		if err := repo.Create(ctx, &installed); err != nil {
			return err
		}
	}
	r.session.RecordCategory(c.Id, newId)
	return nil
}
