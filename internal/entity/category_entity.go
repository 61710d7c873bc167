package entity

// UnfiledCategoryId is the reserved category. It always exists, is never
// deleted or renamed, and receives the notes of any deleted category.
const UnfiledCategoryId int64 = 0

const UnfiledCategoryName = "Unfiled"

type Category struct {
	Id   int64
	Name string
}

func (c *Category) IsReserved() bool {
	return c.Id == UnfiledCategoryId
}
