package repository

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// UsuarioRepository define el puerto de persistencia para Usuario (DIP).
// Los métodos Get* devuelven (nil, nil) si no existe el registro.
type UsuarioRepository interface {
	Create(ctx context.Context, u *entity.Usuario) error
	// EnsureRoot inserta el usuario con id fijo si todavía no existe. Devuelve true si lo creó.
	EnsureRoot(ctx context.Context, u *entity.Usuario) (bool, error)
	GetByID(ctx context.Context, id int64) (*entity.Usuario, error)
	GetByUsername(ctx context.Context, username string) (*entity.Usuario, error)
	Update(ctx context.Context, u *entity.Usuario) error
	List(ctx context.Context) ([]*entity.Usuario, error)
	ListIDsByRoles(ctx context.Context, roles ...string) ([]int64, error)
	CountByRol(ctx context.Context) (map[string]int, error)
	Delete(ctx context.Context, id int64) error
}
