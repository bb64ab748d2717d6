package repository

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// NotificacionRepository registro de avisos por usuario (solo anexado, salvo el flag de lectura).
type NotificacionRepository interface {
	Create(ctx context.Context, n *entity.Notificacion) error
	// ListByUsuario más recientes primero.
	ListByUsuario(ctx context.Context, usuarioID int64) ([]*entity.Notificacion, error)
	CountUnread(ctx context.Context, usuarioID int64) (int, error)
	// MarkRead devuelve false si no existe o no pertenece al usuario.
	MarkRead(ctx context.Context, id, usuarioID int64) (bool, error)
	MarkAllRead(ctx context.Context, usuarioID int64) (int, error)
	// Delete devuelve false si no existe o no pertenece al usuario.
	Delete(ctx context.Context, id, usuarioID int64) (bool, error)
}
