package pedidos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/access"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/workflow"
)

// SetEstado cambio de estado administrativo.
func (uc *UseCase) SetEstado(ctx context.Context, actor access.Actor, id int64, estado string) (res *dto.PedidoResponse, err error) {
	ctx, span := uc.startSpan(ctx, "set_estado", id)
	defer func() { endSpan(span, err) }()

	if !actor.Can(access.PedidoCambiarEstado) {
		return nil, domain.ErrForbidden
	}
	var (
		p *entity.Pedido
		t workflow.Transicion
	)
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		if p, err = loadForUpdate(ctx, r, actor, id, nil); err != nil {
			return err
		}
		if t, err = workflow.CambiarEstado(p, estado, uc.now()); err != nil {
			return err
		}
		return r.Pedidos.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	uc.afterEstado(ctx, actor, p, t)
	out := dto.PedidoFromEntity(p)
	return &out, nil
}

// Update actualización parcial por lista permitida. Una clave estado pasa por SetEstado
// en la misma transacción y exige el mismo permiso.
func (uc *UseCase) Update(ctx context.Context, actor access.Actor, id int64, cambios workflow.Cambios) (res *dto.PedidoResponse, err error) {
	ctx, span := uc.startSpan(ctx, "update", id)
	defer func() { endSpan(span, err) }()

	estado, conEstado, err := cambios.Estado()
	if err != nil {
		return nil, err
	}
	if conEstado && !actor.Can(access.PedidoCambiarEstado) {
		return nil, domain.ErrForbidden
	}
	var (
		p         *entity.Pedido
		t         workflow.Transicion
		aplicados []string
	)
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		if p, err = loadForUpdate(ctx, r, actor, id, reaches); err != nil {
			return err
		}
		now := uc.now()
		aplicados, err = workflow.AplicarCambiosPedido(p, cambios, now)
		if err != nil && !(conEstado && errors.Is(err, domain.ErrSinCamposValidos)) {
			return err
		}
		if conEstado {
			if t, err = workflow.CambiarEstado(p, estado, now); err != nil {
				return err
			}
			aplicados = append(aplicados, workflow.CampoEstado)
		}
		return r.Pedidos.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.StringSlice("pedido.campos", aplicados))
	uc.log.Debug().Int64("pedido_id", id).Strs("campos", aplicados).Msg("pedido actualizado")
	if conEstado {
		uc.afterEstado(ctx, actor, p, t)
	}
	out := dto.PedidoFromEntity(p)
	return &out, nil
}

func (uc *UseCase) afterEstado(ctx context.Context, actor access.Actor, p *entity.Pedido, t workflow.Transicion) {
	uc.recordTransition(ctx, actor, t)
	uc.notifySolicitante(ctx, p, entity.NotifInfo,
		"Estado actualizado",
		fmt.Sprintf("Tu pedido %s ahora está en estado: %s", p.CentroCosto, t.EstadoNuevo),
		"🔄")
}

// Validar decide sobre un pedido pendiente: validar lo aprueba y borra sus imágenes,
// rechazar lo devuelve con motivo.
func (uc *UseCase) Validar(ctx context.Context, actor access.Actor, id int64, in dto.ValidarRequest) (res *dto.PedidoResponse, err error) {
	ctx, span := uc.startSpan(ctx, "validar", id)
	defer func() { endSpan(span, err) }()

	if !actor.Can(access.PedidoValidar) {
		return nil, domain.ErrForbidden
	}
	accion := strings.ToLower(strings.TrimSpace(in.Accion))
	if accion != dto.AccionValidar && accion != dto.AccionRechazar {
		return nil, fmt.Errorf("%w: accion %q", domain.ErrInvalidInput, in.Accion)
	}
	var (
		p *entity.Pedido
		t workflow.Transicion
	)
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		if p, err = loadForUpdate(ctx, r, actor, id, nil); err != nil {
			return err
		}
		now := uc.now()
		if accion == dto.AccionValidar {
			t, err = workflow.Validar(p, actor.ID, now)
		} else {
			t, err = workflow.Rechazar(p, in.Motivo, in.NuevoEstado, now)
		}
		if err != nil {
			return err
		}
		return r.Pedidos.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	uc.recordTransition(ctx, actor, t)
	if accion == dto.AccionValidar {
		uc.removeDir(ctx, p.ID)
		uc.notifySolicitante(ctx, p, entity.NotifSuccess,
			"Pedido validado",
			fmt.Sprintf("Tu pedido %s fue validado", p.CentroCosto),
			"✅")
	} else {
		uc.notifySolicitante(ctx, p, entity.NotifWarning,
			"Pedido rechazado",
			fmt.Sprintf("Tu pedido %s volvió a %s. Motivo: %s", p.CentroCosto, t.EstadoNuevo, p.MotivoRechazo),
			"↩️")
	}
	out := dto.PedidoFromEntity(p)
	return &out, nil
}

// Cancelar lo puede hacer el dueño o un admin. El borrado queda programado a 24 h.
func (uc *UseCase) Cancelar(ctx context.Context, actor access.Actor, id int64, motivo string) (res *dto.PedidoResponse, err error) {
	ctx, span := uc.startSpan(ctx, "cancelar", id)
	defer func() { endSpan(span, err) }()

	var (
		p *entity.Pedido
		t workflow.Transicion
	)
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		if p, err = loadForUpdate(ctx, r, actor, id, reaches); err != nil {
			return err
		}
		if t, err = workflow.Cancelar(p, actor.ID, motivo, uc.now()); err != nil {
			return err
		}
		return r.Pedidos.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	uc.recordTransition(ctx, actor, t)
	uc.notifySolicitante(ctx, p, entity.NotifError,
		"Pedido cancelado",
		fmt.Sprintf("El pedido %s fue cancelado. Motivo: %s. Se eliminará el %s",
			p.CentroCosto, p.Motivo, p.FechaEliminacionProgramada.Format("2006-01-02 15:04")),
		"🚫")
	out := dto.PedidoFromEntity(p)
	return &out, nil
}

// Comentar anexa un comentario. Pueden comentar el dueño y los revisores.
func (uc *UseCase) Comentar(ctx context.Context, actor access.Actor, id int64, texto string) (res *dto.ComentarioResponse, err error) {
	ctx, span := uc.startSpan(ctx, "comentar", id)
	defer func() { endSpan(span, err) }()

	var (
		p *entity.Pedido
		c entity.Comentario
	)
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		if p, err = loadForUpdate(ctx, r, actor, id, reads); err != nil {
			return err
		}
		if c, err = workflow.NuevoComentario(p, actor.ID, texto, uc.now()); err != nil {
			return err
		}
		return r.Pedidos.AddComentario(ctx, &c)
	})
	if err != nil {
		return nil, err
	}
	if actor.ID != p.SolicitanteID {
		uc.notifySolicitante(ctx, p, entity.NotifInfo,
			"Nuevo comentario",
			fmt.Sprintf("Comentario en el pedido %s: %s", p.CentroCosto, c.Texto),
			"💬")
	}
	out := dto.ComentarioFromEntity(c)
	return &out, nil
}

// Delete borrado definitivo por un admin: comentarios, fila y directorio de imágenes.
func (uc *UseCase) Delete(ctx context.Context, actor access.Actor, id int64) (err error) {
	ctx, span := uc.startSpan(ctx, "delete", id)
	defer func() { endSpan(span, err) }()

	if !actor.Can(access.PedidoEliminar) {
		return domain.ErrForbidden
	}
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		if _, err := loadForUpdate(ctx, r, actor, id, nil); err != nil {
			return err
		}
		if err := r.Pedidos.DeleteComentarios(ctx, id); err != nil {
			return fmt.Errorf("delete comentarios: %w", err)
		}
		return r.Pedidos.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.removeDir(ctx, id)
	uc.log.Info().Int64("pedido_id", id).Int64("actor_id", actor.ID).Msg("pedido eliminado")
	return nil
}
