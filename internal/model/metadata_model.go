package model

type Metadata struct {
	Name  string `gorm:"primaryKey;type:varchar(255)"`
	Value []byte `gorm:"type:blob"`
}

func (Metadata) TableName() string {
	return "metadata"
}
