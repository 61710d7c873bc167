package service

import (
	"context"
	"time"

	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/syncerr"
	"notevault-be/internal/repository/specification"
	"notevault-be/internal/repository/unitofwork"
	"notevault-be/pkg/crypt"
)

type INoteService interface {
	CreateNote(ctx context.Context, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	UpdateNote(ctx context.Context, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	DeleteNote(ctx context.Context, id int64) error
	ShowNote(ctx context.Context, req *dto.ShowNoteRequest) (*dto.NoteResponse, error)
	GetNotes(ctx context.Context, categoryId *int64) ([]dto.NoteResponse, error)
}

type noteService struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewNoteService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) INoteService {
	return &noteService{
		uowFactory: uowFactory,
		log:        log,
	}
}

func (s *noteService) CreateNote(ctx context.Context, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	now := time.Now().UTC()
	note := &entity.Note{
		CategoryId: s.resolveCategory(ctx, uow, req.CategoryId),
		CreateTime: now,
		ModTime:    now,
		Privacy:    entity.PrivacyPublic,
		Content:    []byte(req.Content),
	}
	if req.Private {
		if err := s.sealPrivate(ctx, uow, note, req.Password); err != nil {
			return nil, err
		}
	}

	if err := uow.NoteRepository().Create(ctx, note); err != nil {
		return nil, err
	}
	return s.toResponse(note, []byte(req.Content)), nil
}

func (s *noteService) UpdateNote(ctx context.Context, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.NoteRepository()

	note, err := repo.FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, syncerr.Wrap(syncerr.ErrSourceUnavailable, "note not found")
	}

	note.CategoryId = s.resolveCategory(ctx, uow, req.CategoryId)
	note.ModTime = time.Now().UTC()
	note.Privacy = entity.PrivacyPublic
	note.Content = []byte(req.Content)
	if req.Private {
		if err := s.sealPrivate(ctx, uow, note, req.Password); err != nil {
			return nil, err
		}
	}

	if err := repo.Update(ctx, note); err != nil {
		return nil, err
	}
	return s.toResponse(note, []byte(req.Content)), nil
}

func (s *noteService) DeleteNote(ctx context.Context, id int64) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if note == nil {
		return syncerr.Wrap(syncerr.ErrSourceUnavailable, "note not found")
	}
	return uow.NoteRepository().Delete(ctx, id)
}

// ShowNote returns one note with its content decrypted for display. An
// encrypted note needs the store password; without it the content stays out
// of the response.
func (s *noteService) ShowNote(ctx context.Context, req *dto.ShowNoteRequest) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, syncerr.Wrap(syncerr.ErrSourceUnavailable, "note not found")
	}
	if !note.IsEncrypted() {
		return s.toResponse(note, note.Content), nil
	}

	if req.Password == "" {
		return s.toResponse(note, nil), nil
	}
	key, err := s.activeKey(ctx, uow, req.Password)
	if err != nil {
		return nil, err
	}
	defer key.Forget()

	plain, err := crypt.Decrypt(key, note.Content)
	if err != nil {
		return nil, syncerr.Wrap(syncerr.ErrSecurity, "note content did not decrypt")
	}
	return s.toResponse(note, plain), nil
}

func (s *noteService) GetNotes(ctx context.Context, categoryId *int64) ([]dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{specification.OrderById{}}
	if categoryId != nil {
		specs = append(specs, specification.ByCategoryID{CategoryID: *categoryId})
	}
	notes, err := uow.NoteRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	out := make([]dto.NoteResponse, 0, len(notes))
	for _, n := range notes {
		content := n.Content
		if n.IsEncrypted() {
			// Listing never decrypts; fetch the single note with a password
			// to read it.
			content = nil
		}
		out = append(out, *s.toResponse(n, content))
	}
	return out, nil
}

// sealPrivate marks note private and, when the store has a password,
// encrypts its content under the active key. The password must match the
// stored verification record.
func (s *noteService) sealPrivate(ctx context.Context, uow unitofwork.UnitOfWork, note *entity.Note, password string) error {
	note.Privacy = entity.PrivacyPrivatePlain

	stored, err := loadVerification(ctx, uow.MetadataRepository())
	if err != nil {
		return err
	}
	if stored == nil {
		return nil
	}
	if password == "" {
		return syncerr.Wrap(syncerr.ErrPasswordRequired, "store has a password")
	}
	if !crypt.Verify(password, stored.Hash, stored.Salt, stored.KDF) {
		return syncerr.Wrap(syncerr.ErrPasswordMismatch, "store password check")
	}
	key, err := crypt.DeriveKey(password, stored.KeySalt, stored.KDF)
	if err != nil {
		return err
	}
	defer key.Forget()

	sealed, err := crypt.Encrypt(key, note.Content)
	if err != nil {
		return syncerr.Wrap(syncerr.ErrSecurity, "encrypt note content")
	}
	note.Content = sealed
	note.Privacy = entity.PrivacyPrivateEncrypted
	return nil
}

func (s *noteService) activeKey(ctx context.Context, uow unitofwork.UnitOfWork, password string) (*crypt.Key, error) {
	stored, err := loadVerification(ctx, uow.MetadataRepository())
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, syncerr.Wrap(syncerr.ErrPasswordMismatch, "store has no password")
	}
	if !crypt.Verify(password, stored.Hash, stored.Salt, stored.KDF) {
		return nil, syncerr.Wrap(syncerr.ErrPasswordMismatch, "store password check")
	}
	return crypt.DeriveKey(password, stored.KeySalt, stored.KDF)
}

// resolveCategory checks the requested category exists, falling back to
// Unfiled for unknown ids.
func (s *noteService) resolveCategory(ctx context.Context, uow unitofwork.UnitOfWork, categoryId int64) int64 {
	if categoryId == entity.UnfiledCategoryId {
		return entity.UnfiledCategoryId
	}
	category, err := uow.CategoryRepository().FindOne(ctx, specification.ByID{ID: categoryId})
	if err != nil || category == nil {
		return entity.UnfiledCategoryId
	}
	return category.Id
}

func (s *noteService) toResponse(n *entity.Note, content []byte) *dto.NoteResponse {
	return &dto.NoteResponse{
		Id:           n.Id,
		CategoryId:   n.CategoryId,
		CreateTime:   n.CreateTime,
		ModTime:      n.ModTime,
		PrivacyLevel: int(n.Privacy),
		Content:      string(content),
	}
}
