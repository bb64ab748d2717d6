package pedidos

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/access"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// List pedidos activos. Un admin ve todos (o los de solicitanteID si se indica);
// el resto solo los propios.
func (uc *UseCase) List(ctx context.Context, actor access.Actor, solicitanteID *int64) ([]dto.PedidoResponse, error) {
	return uc.list(ctx, entity.PedidoFiltro{SolicitanteID: uc.scope(actor, solicitanteID)})
}

// ListCancelados mismo alcance que List.
func (uc *UseCase) ListCancelados(ctx context.Context, actor access.Actor, solicitanteID *int64) ([]dto.PedidoResponse, error) {
	return uc.list(ctx, entity.PedidoFiltro{SolicitanteID: uc.scope(actor, solicitanteID), Cancelados: true})
}

// ListPendientes cola de validación.
func (uc *UseCase) ListPendientes(ctx context.Context, actor access.Actor) ([]dto.PedidoResponse, error) {
	if !actor.Can(access.PedidoVerPendientes) {
		return nil, domain.ErrForbidden
	}
	return uc.list(ctx, entity.PedidoFiltro{Estado: entity.EstadoPendienteValidacion})
}

// Get con su hilo de comentarios.
func (uc *UseCase) Get(ctx context.Context, actor access.Actor, id int64) (*dto.PedidoResponse, error) {
	p, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := dto.PedidoFromEntity(p)
	return &out, nil
}

// ListComentarios hilo en orden de alta.
func (uc *UseCase) ListComentarios(ctx context.Context, actor access.Actor, id int64) ([]dto.ComentarioResponse, error) {
	p, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ComentarioResponse, 0, len(p.Comentarios))
	for _, c := range p.Comentarios {
		out = append(out, dto.ComentarioFromEntity(c))
	}
	return out, nil
}

// PDF hoja imprimible del pedido.
func (uc *UseCase) PDF(ctx context.Context, actor access.Actor, id int64) (b []byte, err error) {
	ctx, span := uc.startSpan(ctx, "pdf", id)
	defer func() { endSpan(span, err) }()

	if uc.pdf == nil {
		return nil, fmt.Errorf("pdf generator not configured")
	}
	p, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	solicitante, err := uc.usuarios.GetByID(ctx, p.SolicitanteID)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GeneratePedidoPDF(ctx, p, solicitante)
}

func (uc *UseCase) load(ctx context.Context, actor access.Actor, id int64) (*entity.Pedido, error) {
	p, err := uc.pedidos.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get pedido %d: %w", id, err)
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.Reads(p.SolicitanteID) {
		return nil, domain.ErrForbidden
	}
	cs, err := uc.pedidos.ListComentarios(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list comentarios: %w", err)
	}
	p.Comentarios = cs
	return p, nil
}

func (uc *UseCase) scope(actor access.Actor, solicitanteID *int64) *int64 {
	if actor.Can(access.PedidoVerTodos) {
		return solicitanteID
	}
	id := actor.ID
	return &id
}

func (uc *UseCase) list(ctx context.Context, f entity.PedidoFiltro) ([]dto.PedidoResponse, error) {
	ps, err := uc.pedidos.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PedidoResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, dto.PedidoFromEntity(p))
	}
	return out, nil
}

func pedidoAttrs(p *entity.Pedido) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("pedido.id", p.ID),
		attribute.String("pedido.centro_costo", p.CentroCosto),
		attribute.String("pedido.estado", p.Estado),
	}
}
