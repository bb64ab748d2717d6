package ports

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Usuarios       repository.UsuarioRepository
	Pedidos        repository.PedidoRepository
	Compras        repository.CompraRepository
	Notificaciones repository.NotificacionRepository
}

// TxRunner ejecuta fn dentro de una transacción. Si fn devuelve error se hace rollback
// y el almacén queda como estaba.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
