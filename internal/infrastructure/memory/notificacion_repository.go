package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.NotificacionRepository = (*NotificacionRepo)(nil)

// NotificacionRepo notificaciones en memoria.
type NotificacionRepo struct {
	c conn
}

func (r *NotificacionRepo) Create(_ context.Context, n *entity.Notificacion) error {
	return r.c.do(func(d *data) error {
		n.ID = d.next("notificaciones")
		d.notifs[n.ID] = *n
		return nil
	})
}

func (r *NotificacionRepo) ListByUsuario(_ context.Context, usuarioID int64) ([]*entity.Notificacion, error) {
	var out []*entity.Notificacion
	err := r.c.do(func(d *data) error {
		for _, n := range d.notifs {
			if n.UsuarioID == usuarioID {
				n := n
				out = append(out, &n)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func (r *NotificacionRepo) CountUnread(_ context.Context, usuarioID int64) (int, error) {
	var total int
	err := r.c.do(func(d *data) error {
		for _, n := range d.notifs {
			if n.UsuarioID == usuarioID && !n.Leida {
				total++
			}
		}
		return nil
	})
	return total, err
}

func (r *NotificacionRepo) MarkRead(_ context.Context, id, usuarioID int64) (bool, error) {
	var ok bool
	err := r.c.do(func(d *data) error {
		n, found := d.notifs[id]
		if !found || n.UsuarioID != usuarioID {
			return nil
		}
		n.Leida = true
		d.notifs[id] = n
		ok = true
		return nil
	})
	return ok, err
}

func (r *NotificacionRepo) MarkAllRead(_ context.Context, usuarioID int64) (int, error) {
	var total int
	err := r.c.do(func(d *data) error {
		for id, n := range d.notifs {
			if n.UsuarioID == usuarioID && !n.Leida {
				n.Leida = true
				d.notifs[id] = n
				total++
			}
		}
		return nil
	})
	return total, err
}

func (r *NotificacionRepo) Delete(_ context.Context, id, usuarioID int64) (bool, error) {
	var ok bool
	err := r.c.do(func(d *data) error {
		n, found := d.notifs[id]
		if !found || n.UsuarioID != usuarioID {
			return nil
		}
		delete(d.notifs, id)
		ok = true
		return nil
	})
	return ok, err
}
