package specification

import (
	"gorm.io/gorm"
)

type ByCategoryID struct {
	CategoryID int64
}

func (s ByCategoryID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category_id = ?", s.CategoryID)
}

// PrivacyAtLeast selects notes whose privacy level is >= Level. Level 1
// matches all private notes, level 2 only encrypted ones.
type PrivacyAtLeast struct {
	Level int
}

func (s PrivacyAtLeast) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("privacy >= ?", s.Level)
}

// PrivacyExactly selects notes at one privacy level.
type PrivacyExactly struct {
	Level int
}

func (s PrivacyExactly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("privacy = ?", s.Level)
}
