package contract

import (
	"context"

	"notevault-be/internal/entity"
)

type MetadataRepository interface {
	// Set inserts or replaces the value stored under name.
	Set(ctx context.Context, meta *entity.Metadata) error
	Delete(ctx context.Context, name string) error
	// Get returns nil when no value is stored under name.
	Get(ctx context.Context, name string) (*entity.Metadata, error)
	FindAll(ctx context.Context) ([]*entity.Metadata, error)
}
