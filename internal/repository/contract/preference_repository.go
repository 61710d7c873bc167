package contract

import (
	"context"

	"notevault-be/internal/entity"
)

type PreferenceRepository interface {
	Set(ctx context.Context, pref *entity.Preference) error
	Get(ctx context.Context, name string) (*entity.Preference, error)
	FindAll(ctx context.Context) ([]*entity.Preference, error)
}
