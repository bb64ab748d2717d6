package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.CompraRepository = (*CompraRepo)(nil)

// CompraRepo compras sobre PostgreSQL.
type CompraRepo struct {
	db Querier
}

func NewCompraRepository(db Querier) *CompraRepo {
	return &CompraRepo{db: db}
}

const compraColumns = `
	id, solicitante_id, proveedor, monto, ticket, obra, descripcion, estado, urgente,
	cancelado, motivo_cancelacion, cancelado_por, fecha_cancelacion, created_at, updated_at`

func (r *CompraRepo) Create(ctx context.Context, c *entity.Compra) error {
	query := `
		INSERT INTO compras (
			solicitante_id, proveedor, monto, ticket, obra, descripcion, estado, urgente,
			cancelado, motivo_cancelacion, cancelado_por, fecha_cancelacion, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		c.SolicitanteID, c.Proveedor, c.Monto, c.Ticket, c.Obra, c.Descripcion, c.Estado, c.Urgente,
		c.Cancelado, c.Motivo, c.CanceladoPor, c.FechaCancelacion, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert compra: %w", err)
	}
	return nil
}

func (r *CompraRepo) GetByID(ctx context.Context, id int64) (*entity.Compra, error) {
	c, err := scanCompra(r.db.QueryRow(ctx, `SELECT `+compraColumns+` FROM compras WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get compra: %w", err)
	}
	return c, nil
}

func (r *CompraRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Compra, error) {
	c, err := scanCompra(r.db.QueryRow(ctx, `SELECT `+compraColumns+` FROM compras WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("get compra for update: %w", err)
	}
	return c, nil
}

func (r *CompraRepo) Update(ctx context.Context, c *entity.Compra) error {
	query := `
		UPDATE compras SET
			proveedor = $2, monto = $3, ticket = $4, obra = $5, descripcion = $6, estado = $7,
			urgente = $8, cancelado = $9, motivo_cancelacion = $10, cancelado_por = $11,
			fecha_cancelacion = $12, updated_at = $13
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		c.ID, c.Proveedor, c.Monto, c.Ticket, c.Obra, c.Descripcion, c.Estado,
		c.Urgente, c.Cancelado, c.Motivo, c.CanceladoPor,
		c.FechaCancelacion, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update compra: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CompraRepo) List(ctx context.Context, f entity.CompraFiltro) ([]*entity.Compra, error) {
	query := `SELECT ` + compraColumns + ` FROM compras
		WHERE cancelado = $1 AND ($2::bigint IS NULL OR solicitante_id = $2)
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, f.Cancelados, f.SolicitanteID)
	if err != nil {
		return nil, fmt.Errorf("list compras: %w", err)
	}
	defer rows.Close()

	var list []*entity.Compra
	for rows.Next() {
		c, err := scanCompra(rows)
		if err != nil {
			return nil, fmt.Errorf("scan compra: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *CompraRepo) CountBySolicitante(ctx context.Context, usuarioID int64) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM compras WHERE solicitante_id = $1`, usuarioID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count compras: %w", err)
	}
	return n, nil
}

func (r *CompraRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM compras WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete compra: %w", err)
	}
	return nil
}

func scanCompra(row pgx.Row) (*entity.Compra, error) {
	var c entity.Compra
	err := row.Scan(
		&c.ID, &c.SolicitanteID, &c.Proveedor, &c.Monto, &c.Ticket, &c.Obra, &c.Descripcion, &c.Estado, &c.Urgente,
		&c.Cancelado, &c.Motivo, &c.CanceladoPor, &c.FechaCancelacion, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
