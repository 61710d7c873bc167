package unitofwork

import (
	"context"

	"notevault-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	CategoryRepository() contract.CategoryRepository
	NoteRepository() contract.NoteRepository
	MetadataRepository() contract.MetadataRepository
	PreferenceRepository() contract.PreferenceRepository
}
