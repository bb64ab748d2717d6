// Package limpieza borra los pedidos cancelados cuya fecha de eliminación programada venció.
package limpieza

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/access"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/jhoicas/pedidos-api/internal/domain/workflow"
)

const (
	// LockName lock compartido entre instancias.
	LockName = "limpieza-pedidos"
	lockTTL  = 10 * time.Minute
)

// Resultado de una pasada.
type Resultado struct {
	Eliminados []int64
	Fallidos   []int64
}

// UseCase barrido de pedidos vencidos.
type UseCase struct {
	tx      ports.TxRunner
	pedidos repository.PedidoRepository
	images  ports.ImageStore
	locker  ports.Locker
	log     zerolog.Logger
	now     func() time.Time
	tracer  trace.Tracer
}

// NewUseCase construye el barrido.
func NewUseCase(tx ports.TxRunner, pedidos repository.PedidoRepository, images ports.ImageStore, locker ports.Locker, log zerolog.Logger) *UseCase {
	return &UseCase{
		tx:      tx,
		pedidos: pedidos,
		images:  images,
		locker:  locker,
		log:     log,
		now:     time.Now,
		tracer:  otel.Tracer("pedidos-api/limpieza"),
	}
}

// Ejecutar pasada a pedido de un admin.
func (uc *UseCase) Ejecutar(ctx context.Context, actor access.Actor) (Resultado, error) {
	if !actor.Can(access.LimpiezaEjecutar) {
		return Resultado{}, domain.ErrForbidden
	}
	return uc.Run(ctx)
}

// Run una pasada completa. Devuelve ErrSweepEnCurso si otra pasada tiene el lock.
// Cada pedido se borra en su propia transacción; un fallo no detiene al resto.
func (uc *UseCase) Run(ctx context.Context) (res Resultado, err error) {
	ctx, span := uc.tracer.Start(ctx, "limpieza.run")
	defer func() {
		span.SetAttributes(
			attribute.Int("limpieza.eliminados", len(res.Eliminados)),
			attribute.Int("limpieza.fallidos", len(res.Fallidos)),
		)
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	unlock, ok, err := uc.locker.TryLock(ctx, LockName, lockTTL)
	if err != nil {
		return res, fmt.Errorf("lock limpieza: %w", err)
	}
	if !ok {
		return res, domain.ErrSweepEnCurso
	}
	defer unlock()

	now := uc.now()
	vencidos, err := uc.pedidos.ListParaEliminar(ctx, now)
	if err != nil {
		return res, fmt.Errorf("list vencidos: %w", err)
	}
	for _, p := range vencidos {
		borrado, err := uc.borrar(ctx, p.ID, now)
		if err != nil {
			uc.log.Error().Err(err).Int64("pedido_id", p.ID).Msg("no se pudo eliminar pedido vencido")
			res.Fallidos = append(res.Fallidos, p.ID)
			continue
		}
		if !borrado {
			continue
		}
		if err := uc.images.RemovePedidoDir(ctx, p.ID); err != nil {
			uc.log.Warn().Err(err).Int64("pedido_id", p.ID).Msg("no se pudo borrar el directorio de imágenes")
		}
		res.Eliminados = append(res.Eliminados, p.ID)
	}
	if len(res.Eliminados) > 0 || len(res.Fallidos) > 0 {
		uc.log.Info().Ints64("eliminados", res.Eliminados).Ints64("fallidos", res.Fallidos).Msg("limpieza de pedidos cancelados")
	}
	return res, nil
}

// borrar revalida la elegibilidad con el registro bloqueado.
func (uc *UseCase) borrar(ctx context.Context, id int64, now time.Time) (bool, error) {
	borrado := false
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		p, err := r.Pedidos.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil || !workflow.ElegibleParaEliminacion(p, now) {
			return nil
		}
		if err := r.Pedidos.DeleteComentarios(ctx, id); err != nil {
			return fmt.Errorf("delete comentarios: %w", err)
		}
		if err := r.Pedidos.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete pedido: %w", err)
		}
		borrado = true
		return nil
	})
	return borrado && err == nil, err
}

// Start ejecuta una pasada inmediata y luego una cada interval, hasta que ctx termine.
func (uc *UseCase) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	uc.tick(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			uc.tick(ctx)
		}
	}
}

func (uc *UseCase) tick(ctx context.Context) {
	if _, err := uc.Run(ctx); err != nil {
		if errors.Is(err, domain.ErrSweepEnCurso) {
			uc.log.Debug().Msg("limpieza omitida: otra instancia en curso")
			return
		}
		uc.log.Error().Err(err).Msg("limpieza de pedidos falló")
	}
}
