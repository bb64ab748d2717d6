package ports

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// Aviso datos de una notificación a emitir.
type Aviso struct {
	UsuarioID int64
	Tipo      string
	Titulo    string
	Mensaje   string
	Icono     string
}

// Notifier entrega avisos a usuarios. Se invoca después de confirmar la operación;
// un fallo de entrega no revierte la operación que lo originó.
type Notifier interface {
	Notify(ctx context.Context, a Aviso)
	NotifyRoles(ctx context.Context, a Aviso, roles ...string)
}

// WebhookSender reenvío opcional de notificaciones a un servicio externo.
type WebhookSender interface {
	Send(ctx context.Context, n *entity.Notificacion) error
}
