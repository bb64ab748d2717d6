// Package compras casos de uso de compras: gastos con comprobante opcional.
// No tienen borrado programado; una compra cancelada se conserva.
package compras

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/access"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/jhoicas/pedidos-api/internal/domain/workflow"
)

// UseCase casos de uso de compras.
type UseCase struct {
	tx       ports.TxRunner
	compras  repository.CompraRepository
	images   ports.ImageStore
	notifier ports.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase notifier puede ser nil.
func NewUseCase(tx ports.TxRunner, compras repository.CompraRepository, images ports.ImageStore, notifier ports.Notifier, log zerolog.Logger) *UseCase {
	return &UseCase{tx: tx, compras: compras, images: images, notifier: notifier, log: log, now: time.Now}
}

// Create registra la compra; con ticket queda directamente en Subido.
func (uc *UseCase) Create(ctx context.Context, actor access.Actor, in dto.CreateCompraInput) (*dto.CompraResponse, error) {
	proveedor := strings.TrimSpace(in.Proveedor)
	if proveedor == "" {
		return nil, fmt.Errorf("%w: proveedor requerido", domain.ErrInvalidInput)
	}
	var ticket []byte
	if in.Ticket != nil {
		var err error
		if ticket, err = uc.images.Process(in.Ticket.Reader, in.Ticket.Size); err != nil {
			return nil, fmt.Errorf("ticket: %w", err)
		}
	}
	c := &entity.Compra{
		SolicitanteID: actor.ID,
		Proveedor:     proveedor,
		Monto:         in.Monto,
		Obra:          strings.TrimSpace(in.Obra),
		Descripcion:   strings.TrimSpace(in.Descripcion),
		Urgente:       in.Urgente,
	}
	written := false
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		now := uc.now()
		if err := workflow.NuevaCompra(c, now); err != nil {
			return fmt.Errorf("%w: monto negativo", err)
		}
		if err := r.Compras.Create(ctx, c); err != nil {
			return fmt.Errorf("create compra: %w", err)
		}
		if ticket == nil {
			return nil
		}
		written = true
		path, err := uc.images.SaveCompraTicket(ctx, c.ID, ticket)
		if err != nil {
			return err
		}
		if _, err := workflow.AdjuntarTicket(c, path, now); err != nil {
			return err
		}
		return r.Compras.Update(ctx, c)
	})
	if err != nil {
		if written {
			uc.removeDir(ctx, c.ID)
		}
		return nil, err
	}
	uc.log.Info().Int64("compra_id", c.ID).Str("estado", c.Estado).Msg("compra creada")
	out := dto.CompraFromEntity(c)
	return &out, nil
}

// List compras activas; admin ve todas, el resto las propias.
func (uc *UseCase) List(ctx context.Context, actor access.Actor, solicitanteID *int64) ([]dto.CompraResponse, error) {
	return uc.list(ctx, entity.CompraFiltro{SolicitanteID: scope(actor, solicitanteID)})
}

// ListCanceladas mismo alcance que List.
func (uc *UseCase) ListCanceladas(ctx context.Context, actor access.Actor, solicitanteID *int64) ([]dto.CompraResponse, error) {
	return uc.list(ctx, entity.CompraFiltro{SolicitanteID: scope(actor, solicitanteID), Cancelados: true})
}

// Get dueño o admin.
func (uc *UseCase) Get(ctx context.Context, actor access.Actor, id int64) (*dto.CompraResponse, error) {
	c, err := uc.compras.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get compra %d: %w", id, err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.Reaches(c.SolicitanteID) {
		return nil, domain.ErrForbidden
	}
	out := dto.CompraFromEntity(c)
	return &out, nil
}

// Update actualización parcial. La clave estado solo la aplica un admin; si contradice
// al ticket se registra una advertencia y se conserva.
func (uc *UseCase) Update(ctx context.Context, actor access.Actor, id int64, cambios workflow.Cambios) (*dto.CompraResponse, error) {
	var (
		c         *entity.Compra
		aplicados []string
	)
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		if c, err = loadForUpdate(ctx, r, actor, id); err != nil {
			return err
		}
		if aplicados, err = workflow.AplicarCambiosCompra(c, cambios, actor.Can(access.CompraForzarEstado), uc.now()); err != nil {
			return err
		}
		return r.Compras.Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	if slices.Contains(aplicados, workflow.CampoEstado) && workflow.EstadoInconsistente(c) {
		uc.log.Warn().
			Int64("compra_id", c.ID).
			Int64("actor_id", actor.ID).
			Str("estado", c.Estado).
			Bool("con_ticket", c.Ticket != nil).
			Msg("estado de compra forzado en contra del ticket")
	}
	out := dto.CompraFromEntity(c)
	return &out, nil
}

// AdjuntarTicket reemplaza el comprobante; el archivo anterior se borra tras confirmar.
func (uc *UseCase) AdjuntarTicket(ctx context.Context, actor access.Actor, id int64, archivo dto.Archivo) (*dto.CompraResponse, error) {
	img, err := uc.images.Process(archivo.Reader, archivo.Size)
	if err != nil {
		return nil, fmt.Errorf("ticket: %w", err)
	}
	var (
		c        *entity.Compra
		path     string
		anterior string
	)
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		if c, err = loadForUpdate(ctx, r, actor, id); err != nil {
			return err
		}
		if c.Cancelado {
			return domain.ErrPedidoCancelado
		}
		if path, err = uc.images.SaveCompraTicket(ctx, c.ID, img); err != nil {
			return err
		}
		if anterior, err = workflow.AdjuntarTicket(c, path, uc.now()); err != nil {
			return err
		}
		return r.Compras.Update(ctx, c)
	})
	if err != nil {
		// path == anterior: el archivo sigue referenciado por la fila confirmada.
		if path != "" && path != anterior {
			uc.removeFile(ctx, path)
		}
		return nil, err
	}
	if anterior != "" && anterior != path {
		uc.removeFile(ctx, anterior)
	}
	out := dto.CompraFromEntity(c)
	return &out, nil
}

// Cancelar dueño o admin; motivo obligatorio.
func (uc *UseCase) Cancelar(ctx context.Context, actor access.Actor, id int64, motivo string) (*dto.CompraResponse, error) {
	var c *entity.Compra
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		if c, err = loadForUpdate(ctx, r, actor, id); err != nil {
			return err
		}
		if err := workflow.CancelarCompra(c, actor.ID, motivo, uc.now()); err != nil {
			return err
		}
		return r.Compras.Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	if uc.notifier != nil {
		uc.notifier.Notify(ctx, ports.Aviso{
			UsuarioID: c.SolicitanteID,
			Tipo:      entity.NotifError,
			Titulo:    "Compra cancelada",
			Mensaje:   fmt.Sprintf("La compra a %s fue cancelada. Motivo: %s", c.Proveedor, c.Motivo),
			Icono:     "🚫",
		})
	}
	out := dto.CompraFromEntity(c)
	return &out, nil
}

// Delete borrado definitivo por un admin, con su directorio.
func (uc *UseCase) Delete(ctx context.Context, actor access.Actor, id int64) error {
	if !actor.Can(access.CompraEliminar) {
		return domain.ErrForbidden
	}
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		if _, err := loadForUpdate(ctx, r, actor, id); err != nil {
			return err
		}
		return r.Compras.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.removeDir(ctx, id)
	uc.log.Info().Int64("compra_id", id).Int64("actor_id", actor.ID).Msg("compra eliminada")
	return nil
}

func loadForUpdate(ctx context.Context, r ports.Repos, actor access.Actor, id int64) (*entity.Compra, error) {
	c, err := r.Compras.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get compra %d: %w", id, err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.Reaches(c.SolicitanteID) {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

func scope(actor access.Actor, solicitanteID *int64) *int64 {
	if actor.Can(access.CompraVerTodas) {
		return solicitanteID
	}
	id := actor.ID
	return &id
}

func (uc *UseCase) list(ctx context.Context, f entity.CompraFiltro) ([]dto.CompraResponse, error) {
	cs, err := uc.compras.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CompraResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, dto.CompraFromEntity(c))
	}
	return out, nil
}

func (uc *UseCase) removeDir(ctx context.Context, id int64) {
	if err := uc.images.RemoveCompraDir(ctx, id); err != nil {
		uc.log.Warn().Err(err).Int64("compra_id", id).Msg("no se pudo borrar el directorio de la compra")
	}
}

func (uc *UseCase) removeFile(ctx context.Context, path string) {
	if err := uc.images.RemoveFile(ctx, path); err != nil {
		uc.log.Warn().Err(err).Str("path", path).Msg("no se pudo borrar el ticket")
	}
}
