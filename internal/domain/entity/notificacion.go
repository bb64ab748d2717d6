package entity

import "time"

// Tipos usados por la UI para elegir icono y estilo.
const (
	NotifInfo    = "info"
	NotifSuccess = "success"
	NotifWarning = "warning"
	NotifError   = "error"
)

// Notificacion aviso para un usuario. Solo Leida cambia después de creada.
type Notificacion struct {
	ID        int64
	UsuarioID int64
	Tipo      string
	Titulo    string
	Mensaje   string
	Icono     string
	Leida     bool
	CreatedAt time.Time
}
