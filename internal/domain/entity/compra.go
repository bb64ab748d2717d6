package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una compra. Subido si y solo si tiene ticket, salvo que un admin lo fuerce.
const (
	CompraPendiente = "Pendiente"
	CompraSubido    = "Subido"
)

// Compra gasto registrado con su comprobante opcional.
type Compra struct {
	ID            int64
	SolicitanteID int64
	Proveedor     string
	Monto         decimal.Decimal
	Ticket        *string
	Obra          string
	Descripcion   string
	Estado        string
	Urgente       bool

	Cancelacion

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone copia profunda de la compra.
func (c *Compra) Clone() *Compra {
	x := *c
	if c.Ticket != nil {
		t := *c.Ticket
		x.Ticket = &t
	}
	x.CanceladoPor = cloneID(c.CanceladoPor)
	x.FechaCancelacion = cloneTime(c.FechaCancelacion)
	return &x
}

// CompraFiltro criterios de listado.
type CompraFiltro struct {
	SolicitanteID *int64
	Cancelados    bool
}
