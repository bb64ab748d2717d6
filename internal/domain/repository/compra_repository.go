package repository

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// CompraRepository puerto de persistencia para compras.
type CompraRepository interface {
	Create(ctx context.Context, c *entity.Compra) error
	GetByID(ctx context.Context, id int64) (*entity.Compra, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.Compra, error)
	Update(ctx context.Context, c *entity.Compra) error
	List(ctx context.Context, f entity.CompraFiltro) ([]*entity.Compra, error)
	CountBySolicitante(ctx context.Context, usuarioID int64) (int, error)
	Delete(ctx context.Context, id int64) error
}
