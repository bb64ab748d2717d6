package workflow

import (
	"time"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// EstadoDerivado Subido si la compra tiene ticket, Pendiente si no.
func EstadoDerivado(c *entity.Compra) string {
	if c.Ticket != nil && *c.Ticket != "" {
		return entity.CompraSubido
	}
	return entity.CompraPendiente
}

// NuevaCompra estado inicial derivado del ticket.
func NuevaCompra(c *entity.Compra, now time.Time) error {
	if c.Monto.IsNegative() {
		return domain.ErrInvalidInput
	}
	c.Estado = EstadoDerivado(c)
	c.Cancelacion = entity.Cancelacion{}
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// AdjuntarTicket registra el comprobante y pasa la compra a Subido.
// Devuelve la ruta del ticket anterior, si había, para que el llamador la borre.
func AdjuntarTicket(c *entity.Compra, ruta string, now time.Time) (anterior string, err error) {
	if c.Cancelado {
		return "", domain.ErrPedidoCancelado
	}
	if ruta == "" {
		return "", domain.ErrInvalidInput
	}
	if c.Ticket != nil {
		anterior = *c.Ticket
	}
	c.Ticket = &ruta
	c.Estado = entity.CompraSubido
	c.UpdatedAt = now
	return anterior, nil
}

// CancelarCompra igual que Cancelar para pedidos pero sin borrado programado.
func CancelarCompra(c *entity.Compra, actorID int64, motivo string, now time.Time) error {
	if err := cancelar(&c.Cancelacion, actorID, motivo, now); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

// EstadoInconsistente true cuando el estado guardado contradice la presencia del ticket.
func EstadoInconsistente(c *entity.Compra) bool {
	return c.Estado != EstadoDerivado(c)
}
