package model

type Category struct {
	Id   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(255);not null;uniqueIndex"`
}

func (Category) TableName() string {
	return "categories"
}
