package specification

import "gorm.io/gorm"

type ByID struct {
	ID int64
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

type ByName struct {
	Name string
}

func (s ByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

type OrderById struct{}

func (s OrderById) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
