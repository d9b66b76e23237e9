package models

// Category groups menu items. Slug is the stable public key.
type Category struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Slug  string `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Title string `gorm:"type:varchar(255);index;not null" json:"title"`
}

// CreateCategoryRequest is the payload for creating a category.
type CreateCategoryRequest struct {
	Slug  string `json:"slug" validate:"required,max=255"`
	Title string `json:"title" validate:"required,max=255"`
}

// UpdateCategoryRequest carries the fields to change; nil fields are left as is.
type UpdateCategoryRequest struct {
	Slug  *string `json:"slug" validate:"omitempty,min=1,max=255"`
	Title *string `json:"title" validate:"omitempty,min=1,max=255"`
}
