// Package webhook reenvía notificaciones a un servicio HTTP externo (chat, correo, push).
package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

var _ ports.WebhookSender = (*Client)(nil)

// Payload cuerpo enviado por cada notificación.
type Payload struct {
	ID        int64     `json:"id"`
	UsuarioID int64     `json:"usuario_id"`
	Tipo      string    `json:"tipo"`
	Titulo    string    `json:"titulo"`
	Mensaje   string    `json:"mensaje"`
	Icono     string    `json:"icono"`
	CreatedAt time.Time `json:"created_at"`
}

// Client POST JSON al URL configurado, con Bearer opcional.
type Client struct {
	http *resty.Client
	url  string
}

// New timeout 0 usa 5 s.
func New(url, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "pedidos-api-webhook")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c, url: url}
}

// Send un estado distinto de 2xx es error.
func (c *Client) Send(ctx context.Context, n *entity.Notificacion) error {
	req := c.http.R().SetContext(ctx).SetBody(Payload{
		ID:        n.ID,
		UsuarioID: n.UsuarioID,
		Tipo:      n.Tipo,
		Titulo:    n.Titulo,
		Mensaje:   n.Mensaje,
		Icono:     n.Icono,
		CreatedAt: n.CreatedAt,
	})
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := req.Post(c.url)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook status %d", resp.StatusCode())
	}
	return nil
}
