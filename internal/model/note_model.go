package model

import "time"

type Note struct {
	Id         int64     `gorm:"primaryKey;autoIncrement"`
	CategoryId int64     `gorm:"not null;index;default:0"`
	CreateTime time.Time `gorm:"not null"`
	ModTime    time.Time `gorm:"not null"`
	Privacy    int       `gorm:"not null;default:0"`
	Content    []byte    `gorm:"type:blob"`
}

func (Note) TableName() string {
	return "notes"
}
