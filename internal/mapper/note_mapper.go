package mapper

import (
	"notevault-be/internal/entity"
	"notevault-be/internal/model"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	return &model.Note{
		Id:         n.Id,
		CategoryId: n.CategoryId,
		CreateTime: n.CreateTime,
		ModTime:    n.ModTime,
		Privacy:    int(n.Privacy),
		Content:    n.Content,
	}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	return &entity.Note{
		Id:         n.Id,
		CategoryId: n.CategoryId,
		CreateTime: n.CreateTime,
		ModTime:    n.ModTime,
		Privacy:    entity.PrivacyLevel(n.Privacy),
		Content:    n.Content,
	}
}

func (m *NoteMapper) ToEntities(models []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, 0, len(models))
	for _, n := range models {
		entities = append(entities, m.ToEntity(n))
	}
	return entities
}
