package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.CatalogoRepository = (*CatalogoRepo)(nil)

// CatalogoRepo clientes y obras. Las dos tablas comparten la forma (id, nombre, created_at).
type CatalogoRepo struct {
	pool *pgxpool.Pool
}

func NewCatalogoRepository(pool *pgxpool.Pool) *CatalogoRepo {
	return &CatalogoRepo{pool: pool}
}

func (r *CatalogoRepo) CreateCliente(ctx context.Context, c *entity.Cliente) error {
	return r.insert(ctx, "clientes", c.Nombre, c.CreatedAt, &c.ID)
}

func (r *CatalogoRepo) GetCliente(ctx context.Context, id int64) (*entity.Cliente, error) {
	var c entity.Cliente
	found, err := r.get(ctx, "clientes", id, &c.ID, &c.Nombre, &c.CreatedAt)
	if !found || err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CatalogoRepo) ListClientes(ctx context.Context) ([]*entity.Cliente, error) {
	var out []*entity.Cliente
	err := r.list(ctx, "clientes", func(row pgx.Rows) error {
		var c entity.Cliente
		if err := row.Scan(&c.ID, &c.Nombre, &c.CreatedAt); err != nil {
			return err
		}
		out = append(out, &c)
		return nil
	})
	return out, err
}

func (r *CatalogoRepo) CreateObra(ctx context.Context, o *entity.Obra) error {
	return r.insert(ctx, "obras", o.Nombre, o.CreatedAt, &o.ID)
}

func (r *CatalogoRepo) GetObra(ctx context.Context, id int64) (*entity.Obra, error) {
	var o entity.Obra
	found, err := r.get(ctx, "obras", id, &o.ID, &o.Nombre, &o.CreatedAt)
	if !found || err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *CatalogoRepo) ListObras(ctx context.Context) ([]*entity.Obra, error) {
	var out []*entity.Obra
	err := r.list(ctx, "obras", func(row pgx.Rows) error {
		var o entity.Obra
		if err := row.Scan(&o.ID, &o.Nombre, &o.CreatedAt); err != nil {
			return err
		}
		out = append(out, &o)
		return nil
	})
	return out, err
}

// table siempre es una constante del paquete, nunca entrada del usuario.
func (r *CatalogoRepo) insert(ctx context.Context, table, nombre string, createdAt any, id *int64) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO `+table+` (nombre, created_at) VALUES ($1, $2) RETURNING id`, nombre, createdAt,
	).Scan(id)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (r *CatalogoRepo) get(ctx context.Context, table string, id int64, dest ...any) (bool, error) {
	err := r.pool.QueryRow(ctx, `SELECT id, nombre, created_at FROM `+table+` WHERE id = $1`, id).Scan(dest...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", table, err)
	}
	return true, nil
}

func (r *CatalogoRepo) list(ctx context.Context, table string, scan func(pgx.Rows) error) error {
	rows, err := r.pool.Query(ctx, `SELECT id, nombre, created_at FROM `+table+` ORDER BY nombre`)
	if err != nil {
		return fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
	}
	return rows.Err()
}
