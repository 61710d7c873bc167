package unitofwork

import "context"

// RepositoryFactory opens units of work against the record store. Services
// hold a factory and begin one unit per merge, re-keying, or CRUD call.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
