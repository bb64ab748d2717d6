package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/jhoicas/pedidos-api/internal/domain/workflow"
)

var _ repository.PedidoRepository = (*PedidoRepo)(nil)

// PedidoRepo pedidos y comentarios en memoria.
type PedidoRepo struct {
	c conn
}

func (r *PedidoRepo) Create(_ context.Context, p *entity.Pedido) error {
	return r.c.do(func(d *data) error {
		for _, o := range d.pedidos {
			if o.ClienteID == p.ClienteID && o.ObraID == p.ObraID && o.NumeroSecuencial == p.NumeroSecuencial {
				return domain.ErrDuplicate
			}
		}
		p.ID = d.next("pedidos")
		d.pedidos[p.ID] = p.Clone()
		return nil
	})
}

func (r *PedidoRepo) GetByID(_ context.Context, id int64) (*entity.Pedido, error) {
	var out *entity.Pedido
	err := r.c.do(func(d *data) error {
		if p, ok := d.pedidos[id]; ok {
			out = p.Clone()
		}
		return nil
	})
	return out, err
}

// GetForUpdate en memoria el lock lo da la transacción en curso.
func (r *PedidoRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Pedido, error) {
	return r.GetByID(ctx, id)
}

func (r *PedidoRepo) Update(_ context.Context, p *entity.Pedido) error {
	return r.c.do(func(d *data) error {
		if _, ok := d.pedidos[p.ID]; !ok {
			return domain.ErrNotFound
		}
		cp := p.Clone()
		cp.Comentarios = nil
		d.pedidos[p.ID] = cp
		return nil
	})
}

func (r *PedidoRepo) List(_ context.Context, f entity.PedidoFiltro) ([]*entity.Pedido, error) {
	var out []*entity.Pedido
	err := r.c.do(func(d *data) error {
		for _, p := range d.pedidos {
			if p.Cancelado != f.Cancelados {
				continue
			}
			if f.SolicitanteID != nil && p.SolicitanteID != *f.SolicitanteID {
				continue
			}
			if f.Estado != "" && p.Estado != f.Estado {
				continue
			}
			out = append(out, p.Clone())
		}
		return nil
	})
	sortPedidos(out)
	return out, err
}

// NextSecuencial mayor número usado para el par más uno; incluye cancelados.
func (r *PedidoRepo) NextSecuencial(_ context.Context, clienteID, obraID int64) (int, error) {
	var n int
	err := r.c.do(func(d *data) error {
		for _, p := range d.pedidos {
			if p.ClienteID == clienteID && p.ObraID == obraID && p.NumeroSecuencial > n {
				n = p.NumeroSecuencial
			}
		}
		return nil
	})
	return n + 1, err
}

func (r *PedidoRepo) ListParaEliminar(_ context.Context, now time.Time) ([]*entity.Pedido, error) {
	var out []*entity.Pedido
	err := r.c.do(func(d *data) error {
		for _, p := range d.pedidos {
			if workflow.ElegibleParaEliminacion(p, now) {
				out = append(out, p.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *PedidoRepo) CountBySolicitante(_ context.Context, usuarioID int64) (int, error) {
	var n int
	err := r.c.do(func(d *data) error {
		for _, p := range d.pedidos {
			if p.SolicitanteID == usuarioID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *PedidoRepo) Delete(_ context.Context, id int64) error {
	return r.c.do(func(d *data) error {
		delete(d.pedidos, id)
		return nil
	})
}

func (r *PedidoRepo) AddComentario(_ context.Context, c *entity.Comentario) error {
	return r.c.do(func(d *data) error {
		if _, ok := d.pedidos[c.PedidoID]; !ok {
			return domain.ErrNotFound
		}
		c.ID = d.next("comentarios")
		d.comentarios[c.PedidoID] = append(d.comentarios[c.PedidoID], *c)
		return nil
	})
}

func (r *PedidoRepo) ListComentarios(_ context.Context, pedidoID int64) ([]entity.Comentario, error) {
	var out []entity.Comentario
	err := r.c.do(func(d *data) error {
		out = append(out, d.comentarios[pedidoID]...)
		return nil
	})
	return out, err
}

func (r *PedidoRepo) DeleteComentarios(_ context.Context, pedidoID int64) error {
	return r.c.do(func(d *data) error {
		delete(d.comentarios, pedidoID)
		return nil
	})
}

// sortPedidos más recientes primero, id descendente como desempate.
func sortPedidos(ps []*entity.Pedido) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.After(ps[j].CreatedAt)
		}
		return ps[i].ID > ps[j].ID
	})
}
