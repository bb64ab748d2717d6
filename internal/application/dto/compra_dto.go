package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCompraInput datos de alta; Ticket opcional.
type CreateCompraInput struct {
	Proveedor   string
	Monto       decimal.Decimal
	Obra        string
	Descripcion string
	Urgente     bool
	Ticket      *Archivo
}

// CompraResponse salida de una compra.
type CompraResponse struct {
	ID                int64           `json:"id"`
	SolicitanteID     int64           `json:"solicitante_id"`
	Proveedor         string          `json:"proveedor"`
	Monto             decimal.Decimal `json:"monto"`
	Ticket            *string         `json:"ticket"`
	Obra              string          `json:"obra"`
	Descripcion       string          `json:"descripcion"`
	Estado            string          `json:"estado"`
	Urgente           bool            `json:"urgente"`
	Cancelado         bool            `json:"cancelado"`
	MotivoCancelacion string          `json:"motivo_cancelacion,omitempty"`
	CanceladoPor      *int64          `json:"cancelado_por,omitempty"`
	FechaCancelacion  *time.Time      `json:"fecha_cancelacion,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
