package dto

import "time"

// LoginRequest entrada para login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Success bool            `json:"success"`
	Token   string          `json:"token"`
	User    UsuarioResponse `json:"user"`
}

// RegisterRequest entrada para registro. Rol distinto de user requiere token de admin.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nombre   string `json:"nombre"`
	Rol      string `json:"rol"`
}

// CreateUsuarioRequest alta de usuario desde administración.
type CreateUsuarioRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nombre   string `json:"nombre"`
	Rol      string `json:"rol"`
	Avatar   string `json:"avatar"`
}

// UpdateUsuarioRequest campos opcionales; nil = sin cambio.
type UpdateUsuarioRequest struct {
	Nombre   *string `json:"nombre"`
	Rol      *string `json:"rol"`
	Avatar   *string `json:"avatar"`
	Password *string `json:"password"`
}

// UsuarioResponse salida de un usuario (sin password).
type UsuarioResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Nombre    string    `json:"nombre"`
	Rol       string    `json:"rol"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EstadisticasUsuariosResponse conteo por rol.
type EstadisticasUsuariosResponse struct {
	Total  int            `json:"total"`
	PorRol map[string]int `json:"por_rol"`
}
