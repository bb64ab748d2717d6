// Package pedidos orquesta el ciclo de vida de los pedidos: carga con lock dentro de una
// transacción, consulta la política de acceso, aplica el motor de workflow, persiste y,
// tras confirmar, notifica al solicitante y limpia archivos.
package pedidos

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/access"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/jhoicas/pedidos-api/internal/domain/workflow"
)

// MaxImagenes archivos admitidos por pedido.
const MaxImagenes = 10

// Deps dependencias del caso de uso. PDF puede ser nil.
type Deps struct {
	Tx       ports.TxRunner
	Pedidos  repository.PedidoRepository
	Usuarios repository.UsuarioRepository
	Catalogo repository.CatalogoRepository
	Images   ports.ImageStore
	Notifier ports.Notifier
	PDF      ports.PedidoPDFGenerator
	Log      zerolog.Logger
}

// UseCase casos de uso de pedidos.
type UseCase struct {
	tx       ports.TxRunner
	pedidos  repository.PedidoRepository
	usuarios repository.UsuarioRepository
	catalogo repository.CatalogoRepository
	images   ports.ImageStore
	notifier ports.Notifier
	pdf      ports.PedidoPDFGenerator
	log      zerolog.Logger
	now      func() time.Time

	tracer      trace.Tracer
	transitions metric.Int64Counter
}

// NewUseCase construye el caso de uso.
func NewUseCase(d Deps) *UseCase {
	transitions, _ := otel.Meter("pedidos-api/pedidos").Int64Counter(
		"pedido_transiciones_total",
		metric.WithDescription("Cambios de estado confirmados por estado destino"),
	)
	return &UseCase{
		tx:          d.Tx,
		pedidos:     d.Pedidos,
		usuarios:    d.Usuarios,
		catalogo:    d.Catalogo,
		images:      d.Images,
		notifier:    d.Notifier,
		pdf:         d.PDF,
		log:         d.Log,
		now:         time.Now,
		tracer:      otel.Tracer("pedidos-api/pedidos"),
		transitions: transitions,
	}
}

// loadForUpdate carga con lock y exige que el actor alcance el registro.
func loadForUpdate(ctx context.Context, r ports.Repos, actor access.Actor, id int64, check func(access.Actor, int64) bool) (*entity.Pedido, error) {
	p, err := r.Pedidos.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get pedido %d: %w", id, err)
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if check != nil && !check(actor, p.SolicitanteID) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func reaches(a access.Actor, owner int64) bool { return a.Reaches(owner) }

func reads(a access.Actor, owner int64) bool { return a.Reads(owner) }

// recordTransition métrica y log de una transición confirmada.
func (uc *UseCase) recordTransition(ctx context.Context, actor access.Actor, t workflow.Transicion) {
	if !t.Cambio() {
		return
	}
	if uc.transitions != nil {
		uc.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("estado", t.EstadoNuevo)))
	}
	uc.log.Info().
		Int64("pedido_id", t.PedidoID).
		Int64("actor_id", actor.ID).
		Str("de", t.EstadoAnterior).
		Str("a", t.EstadoNuevo).
		Msg("transición de pedido")
}

// notifySolicitante aviso al dueño del pedido tras confirmar.
func (uc *UseCase) notifySolicitante(ctx context.Context, p *entity.Pedido, tipo, titulo, mensaje, icono string) {
	if uc.notifier == nil {
		return
	}
	uc.notifier.Notify(ctx, ports.Aviso{
		UsuarioID: p.SolicitanteID,
		Tipo:      tipo,
		Titulo:    titulo,
		Mensaje:   mensaje,
		Icono:     icono,
	})
}

// removeDir borrado de imágenes después de confirmar; un fallo solo se registra.
func (uc *UseCase) removeDir(ctx context.Context, pedidoID int64) {
	if err := uc.images.RemovePedidoDir(ctx, pedidoID); err != nil {
		uc.log.Warn().Err(err).Int64("pedido_id", pedidoID).Msg("no se pudo borrar el directorio de imágenes")
	}
}

func (uc *UseCase) startSpan(ctx context.Context, name string, id int64) (context.Context, trace.Span) {
	return uc.tracer.Start(ctx, "pedidos."+name, trace.WithAttributes(attribute.Int64("pedido.id", id)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}
