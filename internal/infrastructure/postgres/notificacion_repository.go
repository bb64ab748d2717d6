package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.NotificacionRepository = (*NotificacionRepo)(nil)

// NotificacionRepo avisos por usuario sobre PostgreSQL.
type NotificacionRepo struct {
	db Querier
}

func NewNotificacionRepository(db Querier) *NotificacionRepo {
	return &NotificacionRepo{db: db}
}

func (r *NotificacionRepo) Create(ctx context.Context, n *entity.Notificacion) error {
	query := `
		INSERT INTO notificaciones (usuario_id, tipo, titulo, mensaje, icono, leida, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		n.UsuarioID, n.Tipo, n.Titulo, n.Mensaje, n.Icono, n.Leida, n.CreatedAt,
	).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("insert notificacion: %w", err)
	}
	return nil
}

func (r *NotificacionRepo) ListByUsuario(ctx context.Context, usuarioID int64) ([]*entity.Notificacion, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, usuario_id, tipo, titulo, mensaje, icono, leida, created_at
		FROM notificaciones WHERE usuario_id = $1
		ORDER BY created_at DESC, id DESC`, usuarioID)
	if err != nil {
		return nil, fmt.Errorf("list notificaciones: %w", err)
	}
	defer rows.Close()

	var list []*entity.Notificacion
	for rows.Next() {
		var n entity.Notificacion
		if err := rows.Scan(&n.ID, &n.UsuarioID, &n.Tipo, &n.Titulo, &n.Mensaje, &n.Icono, &n.Leida, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notificacion: %w", err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

func (r *NotificacionRepo) CountUnread(ctx context.Context, usuarioID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notificaciones WHERE usuario_id = $1 AND NOT leida`, usuarioID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

func (r *NotificacionRepo) MarkRead(ctx context.Context, id, usuarioID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notificaciones SET leida = true WHERE id = $1 AND usuario_id = $2`, id, usuarioID)
	if err != nil {
		return false, fmt.Errorf("mark read: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NotificacionRepo) MarkAllRead(ctx context.Context, usuarioID int64) (int, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notificaciones SET leida = true WHERE usuario_id = $1 AND NOT leida`, usuarioID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *NotificacionRepo) Delete(ctx context.Context, id, usuarioID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM notificaciones WHERE id = $1 AND usuario_id = $2`, id, usuarioID)
	if err != nil {
		return false, fmt.Errorf("delete notificacion: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
