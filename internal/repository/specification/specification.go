package specification

import "gorm.io/gorm"

// Specification narrows a record-store query. Repositories apply them in
// order, so note and category filters compose without the caller knowing
// the underlying schema.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
