package model

type Preference struct {
	Name  string `gorm:"primaryKey;type:varchar(255)"`
	Value string `gorm:"type:text"`
}

func (Preference) TableName() string {
	return "preferences"
}
