package entity

import "time"

// Roles válidos para Usuario, de menor a mayor privilegio.
const (
	RoleUser       = "user"
	RoleValidador  = "validador"
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
)

// RootUserID id del supervisor raíz, protegido contra borrado.
const RootUserID int64 = 1

// ValidRole indica si r es uno de los roles conocidos.
func ValidRole(r string) bool {
	switch r {
	case RoleUser, RoleValidador, RoleAdmin, RoleSupervisor:
		return true
	}
	return false
}

// Usuario representa una cuenta del sistema.
type Usuario struct {
	ID           int64
	Username     string
	PasswordHash string // bcrypt hash
	Nombre       string
	Rol          string
	Avatar       string // glifo mostrado en la UI
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsRoot indica si es el supervisor raíz.
func (u *Usuario) IsRoot() bool {
	return u.ID == RootUserID
}
