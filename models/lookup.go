package models

// Lookup is a row of the banco or tipo_cuenta reference tables.
type Lookup struct {
	ID          int64  `json:"id"`
	Description string `json:"descripcion"`
}
