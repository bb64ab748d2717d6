package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un pedido.
const (
	EstadoRegistrado          = "Registrado"
	EstadoEnProceso           = "En Proceso"
	EstadoRevisado            = "Revisado"
	EstadoPendienteValidacion = "Pendiente Validación"
	EstadoValidado            = "Validado"
	EstadoCompletado          = "Completado"
	EstadoCerrado             = "Cerrado"
	EstadoCancelado           = "Cancelado"
)

// Item línea estructurada de un pedido.
type Item struct {
	Nombre      string          `json:"nombre"`
	Unidad      string          `json:"unidad"`
	Cantidad    decimal.Decimal `json:"cantidad"`
	Descripcion string          `json:"descripcion,omitempty"`
}

// Comentario nota añadida por un revisor; el hilo es de solo anexado.
type Comentario struct {
	ID        int64
	PedidoID  int64
	AutorID   int64
	Texto     string
	CreatedAt time.Time
}

// Cancelacion metadatos de cancelación compartidos por pedidos y compras.
type Cancelacion struct {
	Cancelado        bool
	Motivo           string
	CanceladoPor     *int64
	FechaCancelacion *time.Time
}

// Pedido solicitud de material o trabajo que recorre el flujo de aprobación.
type Pedido struct {
	ID               int64
	SolicitanteID    int64
	ClienteID        int64
	ObraID           int64
	Cliente          string
	Obra             string
	NumeroSecuencial int
	CentroCosto      string
	Descripcion      string
	Items            []Item
	Monto            *decimal.Decimal
	Imagenes         []string // rutas web relativas, en orden
	Urgente          bool
	Incompleto       bool
	Estado           string
	MotivoRechazo    string
	Comentarios      []Comentario

	Cancelacion
	FechaEliminacionProgramada *time.Time

	Validado        bool
	ValidadoPor     *int64
	FechaValidacion *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone copia profunda para aplicar cambios sin tocar el original.
func (p *Pedido) Clone() *Pedido {
	c := *p
	c.Items = append([]Item(nil), p.Items...)
	c.Imagenes = append([]string(nil), p.Imagenes...)
	c.Comentarios = append([]Comentario(nil), p.Comentarios...)
	if p.Monto != nil {
		m := *p.Monto
		c.Monto = &m
	}
	c.CanceladoPor = cloneID(p.CanceladoPor)
	c.ValidadoPor = cloneID(p.ValidadoPor)
	c.FechaCancelacion = cloneTime(p.FechaCancelacion)
	c.FechaEliminacionProgramada = cloneTime(p.FechaEliminacionProgramada)
	c.FechaValidacion = cloneTime(p.FechaValidacion)
	return &c
}

// PedidoFiltro criterios de listado.
type PedidoFiltro struct {
	SolicitanteID *int64 // nil = todos
	Cancelados    bool   // true = solo cancelados; false = solo activos
	Estado        string // vacío = cualquiera
}

func cloneID(v *int64) *int64 {
	if v == nil {
		return nil
	}
	x := *v
	return &x
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	x := *v
	return &x
}
