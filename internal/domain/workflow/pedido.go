// Package workflow implementa el ciclo de vida de pedidos y compras como servicio de dominio puro:
// recibe la entidad cargada, valida la transición y la muta. No persiste ni notifica; devuelve
// una Transicion para que el llamador emita avisos y limpie archivos tras confirmar.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// RetencionCancelados tiempo entre la cancelación de un pedido y su borrado programado.
const RetencionCancelados = 24 * time.Hour

// Transicion resultado de una operación del ciclo de vida.
type Transicion struct {
	PedidoID          int64
	SolicitanteID     int64
	EstadoAnterior    string
	EstadoNuevo       string
	ImagenesRetiradas []string
}

// Cambio indica si la operación modificó el estado.
func (t Transicion) Cambio() bool {
	return t.EstadoAnterior != t.EstadoNuevo
}

// estadosAsignables estados alcanzables con CambiarEstado.
// Validado y Cancelado solo se alcanzan con Validar y Cancelar.
var estadosAsignables = map[string]bool{
	entity.EstadoRegistrado:          true,
	entity.EstadoEnProceso:           true,
	entity.EstadoPendienteValidacion: true,
	entity.EstadoCompletado:          true,
	entity.EstadoCerrado:             true,
}

// destinosRechazo estados a los que puede volver un pedido rechazado.
var destinosRechazo = map[string]bool{
	entity.EstadoEnProceso: true,
	entity.EstadoRevisado:  true,
}

// NuevoPedido deja el pedido en su estado inicial. Incompleto si no trae imágenes.
func NuevoPedido(p *entity.Pedido, now time.Time) {
	p.Estado = entity.EstadoRegistrado
	if len(p.Imagenes) == 0 {
		p.Incompleto = true
	}
	p.Cancelacion = entity.Cancelacion{}
	p.FechaEliminacionProgramada = nil
	p.Validado = false
	p.ValidadoPor = nil
	p.FechaValidacion = nil
	p.CreatedAt = now
	p.UpdatedAt = now
}

// CentroCosto etiqueta legible "{cliente}-{obra}-{n}".
func CentroCosto(cliente, obra string, n int) string {
	return fmt.Sprintf("%s-%s-%d", cliente, obra, n)
}

// Numerar asigna el secuencial del par (cliente, obra) y deriva el centro de costo.
func Numerar(p *entity.Pedido, secuencial int) {
	p.NumeroSecuencial = secuencial
	p.CentroCosto = CentroCosto(p.Cliente, p.Obra, secuencial)
}

// NormalizarEstado traduce el atajo de UI Revisado a Pendiente Validación.
func NormalizarEstado(estado string) string {
	estado = strings.TrimSpace(estado)
	if estado == entity.EstadoRevisado {
		return entity.EstadoPendienteValidacion
	}
	return estado
}

// CambiarEstado aplica un cambio de estado administrativo.
// Un pedido pendiente de validación solo sale de ese estado por Validar o Rechazar.
func CambiarEstado(p *entity.Pedido, nuevo string, now time.Time) (Transicion, error) {
	t := Transicion{PedidoID: p.ID, SolicitanteID: p.SolicitanteID, EstadoAnterior: p.Estado}
	if p.Cancelado {
		return t, domain.ErrPedidoCancelado
	}
	nuevo = NormalizarEstado(nuevo)
	if p.Estado == entity.EstadoPendienteValidacion {
		return t, domain.ErrBloqueadoPendienteValidacion
	}
	if !estadosAsignables[nuevo] {
		return t, domain.ErrEstadoInvalido
	}
	p.Estado = nuevo
	p.UpdatedAt = now
	t.EstadoNuevo = nuevo
	return t, nil
}

// Validar aprueba un pedido pendiente. Las imágenes se retiran y se devuelven para borrarlas.
func Validar(p *entity.Pedido, actorID int64, now time.Time) (Transicion, error) {
	t := Transicion{PedidoID: p.ID, SolicitanteID: p.SolicitanteID, EstadoAnterior: p.Estado}
	if p.Cancelado {
		return t, domain.ErrPedidoCancelado
	}
	if p.Estado != entity.EstadoPendienteValidacion {
		return t, domain.ErrNoPendienteValidacion
	}
	t.ImagenesRetiradas = p.Imagenes
	p.Imagenes = []string{}
	p.Validado = true
	p.ValidadoPor = &actorID
	v := now
	p.FechaValidacion = &v
	p.Estado = entity.EstadoValidado
	p.UpdatedAt = now
	t.EstadoNuevo = p.Estado
	return t, nil
}

// Rechazar devuelve un pedido pendiente a En Proceso (por defecto) o Revisado.
// No toca Validado.
func Rechazar(p *entity.Pedido, motivo, destino string, now time.Time) (Transicion, error) {
	t := Transicion{PedidoID: p.ID, SolicitanteID: p.SolicitanteID, EstadoAnterior: p.Estado}
	if p.Cancelado {
		return t, domain.ErrPedidoCancelado
	}
	if p.Estado != entity.EstadoPendienteValidacion {
		return t, domain.ErrNoPendienteValidacion
	}
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return t, domain.ErrMotivoRequerido
	}
	destino = strings.TrimSpace(destino)
	if destino == "" {
		destino = entity.EstadoEnProceso
	}
	if !destinosRechazo[destino] {
		return t, domain.ErrEstadoInvalido
	}
	p.Estado = destino
	p.MotivoRechazo = motivo
	p.UpdatedAt = now
	t.EstadoNuevo = destino
	return t, nil
}

// Cancelar marca el pedido como cancelado y programa su borrado a now + RetencionCancelados.
func Cancelar(p *entity.Pedido, actorID int64, motivo string, now time.Time) (Transicion, error) {
	t := Transicion{PedidoID: p.ID, SolicitanteID: p.SolicitanteID, EstadoAnterior: p.Estado}
	if err := cancelar(&p.Cancelacion, actorID, motivo, now); err != nil {
		return t, err
	}
	borrado := now.Add(RetencionCancelados)
	p.FechaEliminacionProgramada = &borrado
	p.Estado = entity.EstadoCancelado
	p.UpdatedAt = now
	t.EstadoNuevo = p.Estado
	return t, nil
}

// NuevoComentario valida el texto y construye el comentario a anexar. No cambia el estado.
func NuevoComentario(p *entity.Pedido, autorID int64, texto string, now time.Time) (entity.Comentario, error) {
	texto = strings.TrimSpace(texto)
	if texto == "" {
		return entity.Comentario{}, domain.ErrComentarioVacio
	}
	return entity.Comentario{PedidoID: p.ID, AutorID: autorID, Texto: texto, CreatedAt: now}, nil
}

// PuedeAdjuntarImagenes un pedido validado o cancelado ya no acepta imágenes.
func PuedeAdjuntarImagenes(p *entity.Pedido) error {
	if p.Cancelado {
		return domain.ErrPedidoCancelado
	}
	if p.Validado {
		return domain.ErrPedidoValidado
	}
	return nil
}

// ElegibleParaEliminacion cancelado y con fecha de borrado vencida.
func ElegibleParaEliminacion(p *entity.Pedido, now time.Time) bool {
	return p.Cancelado && p.FechaEliminacionProgramada != nil && !p.FechaEliminacionProgramada.After(now)
}

func cancelar(c *entity.Cancelacion, actorID int64, motivo string, now time.Time) error {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return domain.ErrMotivoRequerido
	}
	if c.Cancelado {
		return domain.ErrPedidoCancelado
	}
	c.Cancelado = true
	c.Motivo = motivo
	c.CanceladoPor = &actorID
	at := now
	c.FechaCancelacion = &at
	return nil
}
