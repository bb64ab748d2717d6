package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.CompraRepository = (*CompraRepo)(nil)

// CompraRepo compras en memoria.
type CompraRepo struct {
	c conn
}

func (r *CompraRepo) Create(_ context.Context, c *entity.Compra) error {
	return r.c.do(func(d *data) error {
		c.ID = d.next("compras")
		d.compras[c.ID] = c.Clone()
		return nil
	})
}

func (r *CompraRepo) GetByID(_ context.Context, id int64) (*entity.Compra, error) {
	var out *entity.Compra
	err := r.c.do(func(d *data) error {
		if c, ok := d.compras[id]; ok {
			out = c.Clone()
		}
		return nil
	})
	return out, err
}

func (r *CompraRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Compra, error) {
	return r.GetByID(ctx, id)
}

func (r *CompraRepo) Update(_ context.Context, c *entity.Compra) error {
	return r.c.do(func(d *data) error {
		if _, ok := d.compras[c.ID]; !ok {
			return domain.ErrNotFound
		}
		d.compras[c.ID] = c.Clone()
		return nil
	})
}

func (r *CompraRepo) List(_ context.Context, f entity.CompraFiltro) ([]*entity.Compra, error) {
	var out []*entity.Compra
	err := r.c.do(func(d *data) error {
		for _, c := range d.compras {
			if c.Cancelado != f.Cancelados {
				continue
			}
			if f.SolicitanteID != nil && c.SolicitanteID != *f.SolicitanteID {
				continue
			}
			out = append(out, c.Clone())
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

func (r *CompraRepo) CountBySolicitante(_ context.Context, usuarioID int64) (int, error) {
	var n int
	err := r.c.do(func(d *data) error {
		for _, c := range d.compras {
			if c.SolicitanteID == usuarioID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *CompraRepo) Delete(_ context.Context, id int64) error {
	return r.c.do(func(d *data) error {
		delete(d.compras, id)
		return nil
	})
}
