package dto

import "time"

// CatalogoRequest alta de cliente u obra.
type CatalogoRequest struct {
	Nombre string `json:"nombre"`
}

// CatalogoResponse cliente u obra.
type CatalogoResponse struct {
	ID        int64     `json:"id"`
	Nombre    string    `json:"nombre"`
	CreatedAt time.Time `json:"created_at"`
}
