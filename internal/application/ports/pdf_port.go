package ports

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// PedidoPDFGenerator genera la hoja imprimible de un pedido.
type PedidoPDFGenerator interface {
	GeneratePedidoPDF(ctx context.Context, p *entity.Pedido, solicitante *entity.Usuario) ([]byte, error)
}
