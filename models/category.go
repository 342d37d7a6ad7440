package models

import "strings"

// Category classifies payments. A nil UserID marks a global category.
type Category struct {
	ID          int64  `json:"id_categoria"`
	Description string `json:"descripcion"`
	UserID      *int64 `json:"id_usuario"`
}

// CategoryInput is used for creating/updating categories.
type CategoryInput struct {
	Description string `json:"descripcion"`
	UserID      int64  `json:"id_usuario"`
}

func (c *CategoryInput) Validate() string {
	c.Description = strings.TrimSpace(c.Description)
	if c.Description == "" {
		return "descripcion is required"
	}
	if c.UserID <= 0 {
		return "id_usuario is required"
	}
	return ""
}
