package mapper

import (
	"notevault-be/internal/entity"
	"notevault-be/internal/model"
)

type CategoryMapper struct{}

func NewCategoryMapper() *CategoryMapper {
	return &CategoryMapper{}
}

func (m *CategoryMapper) ToModel(c *entity.Category) *model.Category {
	return &model.Category{
		Id:   c.Id,
		Name: c.Name,
	}
}

func (m *CategoryMapper) ToEntity(c *model.Category) *entity.Category {
	return &entity.Category{
		Id:   c.Id,
		Name: c.Name,
	}
}

func (m *CategoryMapper) ToEntities(models []*model.Category) []*entity.Category {
	entities := make([]*entity.Category, 0, len(models))
	for _, c := range models {
		entities = append(entities, m.ToEntity(c))
	}
	return entities
}
