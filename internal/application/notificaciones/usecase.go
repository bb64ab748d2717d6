// Package notificaciones implementa el buzón de avisos por usuario y el Notifier
// que usan los demás casos de uso después de confirmar sus cambios.
package notificaciones

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/semaphore"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/access"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ ports.Notifier = (*UseCase)(nil)

var tipos = map[string]bool{
	entity.NotifInfo:    true,
	entity.NotifSuccess: true,
	entity.NotifWarning: true,
	entity.NotifError:   true,
}

// MaxEnviosWebhook reenvíos al webhook en curso a la vez. Con el cupo lleno el
// reenvío se omite; la notificación ya quedó guardada.
const MaxEnviosWebhook = 8

// UseCase buzón de notificaciones.
type UseCase struct {
	repo     repository.NotificacionRepository
	usuarios repository.UsuarioRepository
	webhook  ports.WebhookSender
	log      zerolog.Logger
	now      func() time.Time
	enviadas metric.Int64Counter
	envios   *semaphore.Weighted
}

// NewUseCase webhook puede ser nil.
func NewUseCase(repo repository.NotificacionRepository, usuarios repository.UsuarioRepository, webhook ports.WebhookSender, log zerolog.Logger) *UseCase {
	enviadas, _ := otel.Meter("pedidos-api/notificaciones").Int64Counter(
		"notificaciones_creadas_total",
		metric.WithDescription("Notificaciones persistidas por tipo"),
	)
	return &UseCase{
		repo:     repo,
		usuarios: usuarios,
		webhook:  webhook,
		log:      log,
		now:      time.Now,
		enviadas: enviadas,
		envios:   semaphore.NewWeighted(MaxEnviosWebhook),
	}
}

// Create alta directa. Notificar a otro usuario requiere ser validador o superior.
func (uc *UseCase) Create(ctx context.Context, actor access.Actor, in dto.CreateNotificacionRequest) (*dto.NotificacionResponse, error) {
	target := in.UsuarioID
	if target == 0 {
		target = actor.ID
	}
	if target != actor.ID && !actor.Can(access.NotificarOtroUsuario) {
		return nil, domain.ErrForbidden
	}
	n, err := uc.build(ports.Aviso{UsuarioID: target, Tipo: in.Tipo, Titulo: in.Titulo, Mensaje: in.Mensaje, Icono: in.Icono})
	if err != nil {
		return nil, err
	}
	u, err := uc.usuarios.GetByID(ctx, target)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := uc.persist(ctx, n); err != nil {
		return nil, err
	}
	out := dto.NotificacionFromEntity(n)
	return &out, nil
}

// List más recientes primero.
func (uc *UseCase) List(ctx context.Context, userID int64) ([]dto.NotificacionResponse, error) {
	ns, err := uc.repo.ListByUsuario(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotificacionResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, dto.NotificacionFromEntity(n))
	}
	return out, nil
}

// CountUnread no leídas del usuario.
func (uc *UseCase) CountUnread(ctx context.Context, userID int64) (int, error) {
	return uc.repo.CountUnread(ctx, userID)
}

// MarkRead una notificación ajena se informa como inexistente.
func (uc *UseCase) MarkRead(ctx context.Context, id, userID int64) error {
	ok, err := uc.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// MarkAllRead devuelve cuántas se marcaron.
func (uc *UseCase) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	return uc.repo.MarkAllRead(ctx, userID)
}

// Delete igual que MarkRead respecto a notificaciones ajenas.
func (uc *UseCase) Delete(ctx context.Context, id, userID int64) error {
	ok, err := uc.repo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// Notify persiste el aviso y lo reenvía al webhook. Nunca falla al llamador: los errores se registran.
func (uc *UseCase) Notify(ctx context.Context, a ports.Aviso) {
	n, err := uc.build(a)
	if err != nil {
		uc.log.Warn().Err(err).Int64("usuario_id", a.UsuarioID).Msg("aviso descartado")
		return
	}
	if err := uc.persist(ctx, n); err != nil {
		uc.log.Error().Err(err).Int64("usuario_id", a.UsuarioID).Msg("no se pudo guardar la notificación")
	}
}

// NotifyRoles envía el mismo aviso a todos los usuarios con alguno de los roles.
func (uc *UseCase) NotifyRoles(ctx context.Context, a ports.Aviso, roles ...string) {
	ids, err := uc.usuarios.ListIDsByRoles(ctx, roles...)
	if err != nil {
		uc.log.Error().Err(err).Strs("roles", roles).Msg("no se pudieron resolver destinatarios")
		return
	}
	for _, id := range ids {
		a.UsuarioID = id
		uc.Notify(ctx, a)
	}
}

func (uc *UseCase) build(a ports.Aviso) (*entity.Notificacion, error) {
	titulo := strings.TrimSpace(a.Titulo)
	if titulo == "" {
		return nil, fmt.Errorf("%w: titulo requerido", domain.ErrInvalidInput)
	}
	if a.UsuarioID <= 0 {
		return nil, fmt.Errorf("%w: usuario_id requerido", domain.ErrInvalidInput)
	}
	tipo := strings.TrimSpace(a.Tipo)
	if tipo == "" {
		tipo = entity.NotifInfo
	}
	if !tipos[tipo] {
		return nil, fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, tipo)
	}
	return &entity.Notificacion{
		UsuarioID: a.UsuarioID,
		Tipo:      tipo,
		Titulo:    titulo,
		Mensaje:   strings.TrimSpace(a.Mensaje),
		Icono:     a.Icono,
		CreatedAt: uc.now(),
	}, nil
}

func (uc *UseCase) persist(ctx context.Context, n *entity.Notificacion) error {
	if err := uc.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notificacion: %w", err)
	}
	if uc.enviadas != nil {
		uc.enviadas.Add(ctx, 1, metric.WithAttributes(attribute.String("tipo", n.Tipo)))
	}
	if uc.webhook != nil {
		if !uc.envios.TryAcquire(1) {
			uc.log.Warn().Int64("notificacion_id", n.ID).Msg("webhook saturado, reenvío omitido")
			return nil
		}
		go func() {
			defer uc.envios.Release(1)
			uc.push(context.WithoutCancel(ctx), n)
		}()
	}
	return nil
}

func (uc *UseCase) push(ctx context.Context, n *entity.Notificacion) {
	if err := uc.webhook.Send(ctx, n); err != nil {
		uc.log.Warn().Err(err).Int64("notificacion_id", n.ID).Msg("webhook de notificaciones falló")
	}
}
