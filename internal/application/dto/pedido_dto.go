package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// CreatePedidoInput datos de alta (el handler arma esta estructura desde multipart).
type CreatePedidoInput struct {
	ClienteID   int64
	ObraID      int64
	Descripcion string
	Items       []entity.Item
	Monto       *decimal.Decimal
	Urgente     bool
	Imagenes    []Archivo
}

// PedidoResponse salida de un pedido.
type PedidoResponse struct {
	ID                         int64                `json:"id"`
	SolicitanteID              int64                `json:"solicitante_id"`
	ClienteID                  int64                `json:"cliente_id"`
	ObraID                     int64                `json:"obra_id"`
	Cliente                    string               `json:"cliente"`
	Obra                       string               `json:"obra"`
	NumeroSecuencial           int                  `json:"numero_secuencial"`
	CentroCosto                string               `json:"centro_costo"`
	Descripcion                string               `json:"descripcion"`
	Items                      []entity.Item        `json:"items"`
	Monto                      *decimal.Decimal     `json:"monto"`
	Imagenes                   []string             `json:"imagenes"`
	Urgente                    bool                 `json:"urgente"`
	Incompleto                 bool                 `json:"incompleto"`
	Estado                     string               `json:"estado"`
	MotivoRechazo              string               `json:"motivo_rechazo,omitempty"`
	Cancelado                  bool                 `json:"cancelado"`
	MotivoCancelacion          string               `json:"motivo_cancelacion,omitempty"`
	CanceladoPor               *int64               `json:"cancelado_por,omitempty"`
	FechaCancelacion           *time.Time           `json:"fecha_cancelacion,omitempty"`
	FechaEliminacionProgramada *time.Time           `json:"fecha_eliminacion_programada,omitempty"`
	Validado                   bool                 `json:"validado"`
	ValidadoPor                *int64               `json:"validado_por,omitempty"`
	FechaValidacion            *time.Time           `json:"fecha_validacion,omitempty"`
	Comentarios                []ComentarioResponse `json:"comentarios,omitempty"`
	CreatedAt                  time.Time            `json:"created_at"`
	UpdatedAt                  time.Time            `json:"updated_at"`
}

// ComentarioResponse un comentario del hilo.
type ComentarioResponse struct {
	ID        int64     `json:"id"`
	AutorID   int64     `json:"autor_id"`
	Texto     string    `json:"texto"`
	CreatedAt time.Time `json:"created_at"`
}

// EstadoRequest cambio de estado administrativo.
type EstadoRequest struct {
	Estado string `json:"estado"`
}

// CancelarRequest motivo obligatorio.
type CancelarRequest struct {
	Motivo string `json:"motivo"`
}

// Acciones de ValidarRequest.
const (
	AccionValidar  = "validar"
	AccionRechazar = "rechazar"
)

// ValidarRequest decisión del validador.
type ValidarRequest struct {
	Accion      string `json:"accion"`
	Motivo      string `json:"motivo"`
	NuevoEstado string `json:"nuevoEstado"`
}

// ComentarioRequest texto del comentario.
type ComentarioRequest struct {
	Comentario string `json:"comentario"`
}

// LimpiezaResponse resultado de una ejecución de la limpieza programada.
type LimpiezaResponse struct {
	Ejecutada  bool    `json:"ejecutada"`
	Eliminados []int64 `json:"eliminados"`
	Fallidos   []int64 `json:"fallidos"`
}
