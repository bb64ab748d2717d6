package repository

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// CatalogoRepository clientes y obras contra los que se numeran los pedidos.
type CatalogoRepository interface {
	CreateCliente(ctx context.Context, c *entity.Cliente) error
	GetCliente(ctx context.Context, id int64) (*entity.Cliente, error)
	ListClientes(ctx context.Context) ([]*entity.Cliente, error)
	CreateObra(ctx context.Context, o *entity.Obra) error
	GetObra(ctx context.Context, id int64) (*entity.Obra, error)
	ListObras(ctx context.Context) ([]*entity.Obra, error)
}
