package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// PedidoRepository puerto de persistencia para pedidos y su hilo de comentarios.
type PedidoRepository interface {
	// Create inserta el pedido y asigna p.ID.
	Create(ctx context.Context, p *entity.Pedido) error
	GetByID(ctx context.Context, id int64) (*entity.Pedido, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id int64) (*entity.Pedido, error)
	Update(ctx context.Context, p *entity.Pedido) error
	List(ctx context.Context, f entity.PedidoFiltro) ([]*entity.Pedido, error)
	// NextSecuencial bloquea el par (cliente, obra) y devuelve max(numero_secuencial)+1.
	// Debe llamarse dentro de una transacción; el bloqueo se libera al confirmar.
	NextSecuencial(ctx context.Context, clienteID, obraID int64) (int, error)
	// ListParaEliminar pedidos cancelados con fecha de borrado programado <= now.
	ListParaEliminar(ctx context.Context, now time.Time) ([]*entity.Pedido, error)
	CountBySolicitante(ctx context.Context, usuarioID int64) (int, error)
	Delete(ctx context.Context, id int64) error

	AddComentario(ctx context.Context, c *entity.Comentario) error
	ListComentarios(ctx context.Context, pedidoID int64) ([]entity.Comentario, error)
	DeleteComentarios(ctx context.Context, pedidoID int64) error
}
