package implementation

import (
	"context"
	"errors"

	"notevault-be/internal/entity"
	"notevault-be/internal/mapper"
	"notevault-be/internal/model"
	"notevault-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MetadataRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MetadataMapper
}

func NewMetadataRepository(db *gorm.DB) contract.MetadataRepository {
	return &MetadataRepositoryImpl{
		db:     db,
		mapper: mapper.NewMetadataMapper(),
	}
}

func (r *MetadataRepositoryImpl) Set(ctx context.Context, meta *entity.Metadata) error {
	m := r.mapper.ToModel(meta)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(m).Error
}

func (r *MetadataRepositoryImpl) Delete(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).
		Where("name = ?", name).
		Delete(&model.Metadata{}).Error
}

func (r *MetadataRepositoryImpl) Get(ctx context.Context, name string) (*entity.Metadata, error) {
	var m model.Metadata
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MetadataRepositoryImpl) FindAll(ctx context.Context) ([]*entity.Metadata, error) {
	var models []*model.Metadata
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
