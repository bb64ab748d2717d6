package dto

import "time"

// CreateNotificacionRequest alta directa. UsuarioID 0 = el propio actor.
type CreateNotificacionRequest struct {
	UsuarioID int64  `json:"usuario_id"`
	Tipo      string `json:"tipo"`
	Titulo    string `json:"titulo"`
	Mensaje   string `json:"mensaje"`
	Icono     string `json:"icono"`
}

// NotificacionResponse salida de una notificación.
type NotificacionResponse struct {
	ID        int64     `json:"id"`
	UsuarioID int64     `json:"usuario_id"`
	Tipo      string    `json:"tipo"`
	Titulo    string    `json:"titulo"`
	Mensaje   string    `json:"mensaje"`
	Icono     string    `json:"icono"`
	Leida     bool      `json:"leida"`
	CreatedAt time.Time `json:"created_at"`
}

// NoLeidasResponse contador de no leídas.
type NoLeidasResponse struct {
	NoLeidas int `json:"no_leidas"`
}

// MarcadasResponse cantidad marcada como leída.
type MarcadasResponse struct {
	Success      bool `json:"success"`
	Actualizadas int  `json:"actualizadas"`
}
