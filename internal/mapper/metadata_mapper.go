package mapper

import (
	"notevault-be/internal/entity"
	"notevault-be/internal/model"
)

type MetadataMapper struct{}

func NewMetadataMapper() *MetadataMapper {
	return &MetadataMapper{}
}

func (m *MetadataMapper) ToModel(md *entity.Metadata) *model.Metadata {
	return &model.Metadata{
		Name:  md.Name,
		Value: md.Value,
	}
}

func (m *MetadataMapper) ToEntity(md *model.Metadata) *entity.Metadata {
	return &entity.Metadata{
		Name:  md.Name,
		Value: md.Value,
	}
}

func (m *MetadataMapper) ToEntities(models []*model.Metadata) []*entity.Metadata {
	entities := make([]*entity.Metadata, 0, len(models))
	for _, md := range models {
		entities = append(entities, m.ToEntity(md))
	}
	return entities
}
