package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.CatalogoRepository = (*CatalogoRepo)(nil)

// CatalogoRepo clientes y obras en memoria. Nombres únicos sin distinguir mayúsculas.
type CatalogoRepo struct {
	c conn
}

func (r *CatalogoRepo) CreateCliente(_ context.Context, c *entity.Cliente) error {
	return r.c.do(func(d *data) error {
		for _, o := range d.clientes {
			if strings.EqualFold(o.Nombre, c.Nombre) {
				return domain.ErrDuplicate
			}
		}
		c.ID = d.next("clientes")
		d.clientes[c.ID] = *c
		return nil
	})
}

func (r *CatalogoRepo) GetCliente(_ context.Context, id int64) (*entity.Cliente, error) {
	var out *entity.Cliente
	err := r.c.do(func(d *data) error {
		if c, ok := d.clientes[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CatalogoRepo) ListClientes(_ context.Context) ([]*entity.Cliente, error) {
	var out []*entity.Cliente
	err := r.c.do(func(d *data) error {
		for _, c := range d.clientes {
			c := c
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, err
}

func (r *CatalogoRepo) CreateObra(_ context.Context, o *entity.Obra) error {
	return r.c.do(func(d *data) error {
		for _, x := range d.obras {
			if strings.EqualFold(x.Nombre, o.Nombre) {
				return domain.ErrDuplicate
			}
		}
		o.ID = d.next("obras")
		d.obras[o.ID] = *o
		return nil
	})
}

func (r *CatalogoRepo) GetObra(_ context.Context, id int64) (*entity.Obra, error) {
	var out *entity.Obra
	err := r.c.do(func(d *data) error {
		if o, ok := d.obras[id]; ok {
			out = &o
		}
		return nil
	})
	return out, err
}

func (r *CatalogoRepo) ListObras(_ context.Context) ([]*entity.Obra, error) {
	var out []*entity.Obra
	err := r.c.do(func(d *data) error {
		for _, o := range d.obras {
			o := o
			out = append(out, &o)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, err
}
