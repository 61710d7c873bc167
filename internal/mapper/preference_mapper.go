package mapper

import (
	"notevault-be/internal/entity"
	"notevault-be/internal/model"
)

type PreferenceMapper struct{}

func NewPreferenceMapper() *PreferenceMapper {
	return &PreferenceMapper{}
}

func (m *PreferenceMapper) ToModel(p *entity.Preference) *model.Preference {
	return &model.Preference{
		Name:  p.Name,
		Value: p.Value,
	}
}

func (m *PreferenceMapper) ToEntity(p *model.Preference) *entity.Preference {
	return &entity.Preference{
		Name:  p.Name,
		Value: p.Value,
	}
}

func (m *PreferenceMapper) ToEntities(models []*model.Preference) []*entity.Preference {
	entities := make([]*entity.Preference, 0, len(models))
	for _, p := range models {
		entities = append(entities, m.ToEntity(p))
	}
	return entities
}
