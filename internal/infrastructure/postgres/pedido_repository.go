package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.PedidoRepository = (*PedidoRepo)(nil)

// PedidoRepo pedidos y comentarios sobre PostgreSQL. Items e imágenes se guardan como JSONB.
type PedidoRepo struct {
	db Querier
}

// NewPedidoRepository construye el adaptador; db puede ser el pool o una pgx.Tx.
func NewPedidoRepository(db Querier) *PedidoRepo {
	return &PedidoRepo{db: db}
}

const pedidoColumns = `
	id, solicitante_id, cliente_id, obra_id, cliente, obra, numero_secuencial, centro_costo,
	descripcion, items, monto, imagenes, urgente, incompleto, estado, motivo_rechazo,
	cancelado, motivo_cancelacion, cancelado_por, fecha_cancelacion, fecha_eliminacion_programada,
	validado, validado_por, fecha_validacion, created_at, updated_at`

func (r *PedidoRepo) Create(ctx context.Context, p *entity.Pedido) error {
	items, imagenes, err := marshalPedidoJSON(p)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO pedidos (
			solicitante_id, cliente_id, obra_id, cliente, obra, numero_secuencial, centro_costo,
			descripcion, items, monto, imagenes, urgente, incompleto, estado, motivo_rechazo,
			cancelado, motivo_cancelacion, cancelado_por, fecha_cancelacion, fecha_eliminacion_programada,
			validado, validado_por, fecha_validacion, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		          $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING id`
	err = r.db.QueryRow(ctx, query,
		p.SolicitanteID, p.ClienteID, p.ObraID, p.Cliente, p.Obra, p.NumeroSecuencial, p.CentroCosto,
		p.Descripcion, items, nullDecimal(p.Monto), imagenes, p.Urgente, p.Incompleto, p.Estado, p.MotivoRechazo,
		p.Cancelado, p.Motivo, p.CanceladoPor, p.FechaCancelacion, p.FechaEliminacionProgramada,
		p.Validado, p.ValidadoPor, p.FechaValidacion, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert pedido: %w", err)
	}
	return nil
}

func (r *PedidoRepo) GetByID(ctx context.Context, id int64) (*entity.Pedido, error) {
	p, err := scanPedido(r.db.QueryRow(ctx, `SELECT `+pedidoColumns+` FROM pedidos WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get pedido: %w", err)
	}
	return p, nil
}

// GetForUpdate bloquea la fila hasta el fin de la transacción.
func (r *PedidoRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Pedido, error) {
	p, err := scanPedido(r.db.QueryRow(ctx, `SELECT `+pedidoColumns+` FROM pedidos WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("get pedido for update: %w", err)
	}
	return p, nil
}

// Update reescribe todas las columnas salvo la clave de numeración.
func (r *PedidoRepo) Update(ctx context.Context, p *entity.Pedido) error {
	items, imagenes, err := marshalPedidoJSON(p)
	if err != nil {
		return err
	}
	query := `
		UPDATE pedidos SET
			cliente = $2, obra = $3, descripcion = $4, items = $5, monto = $6, imagenes = $7,
			urgente = $8, incompleto = $9, estado = $10, motivo_rechazo = $11,
			cancelado = $12, motivo_cancelacion = $13, cancelado_por = $14, fecha_cancelacion = $15,
			fecha_eliminacion_programada = $16, validado = $17, validado_por = $18,
			fecha_validacion = $19, updated_at = $20
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		p.ID, p.Cliente, p.Obra, p.Descripcion, items, nullDecimal(p.Monto), imagenes,
		p.Urgente, p.Incompleto, p.Estado, p.MotivoRechazo,
		p.Cancelado, p.Motivo, p.CanceladoPor, p.FechaCancelacion,
		p.FechaEliminacionProgramada, p.Validado, p.ValidadoPor,
		p.FechaValidacion, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update pedido: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PedidoRepo) List(ctx context.Context, f entity.PedidoFiltro) ([]*entity.Pedido, error) {
	conds := []string{"cancelado = $1"}
	args := []any{f.Cancelados}
	if f.SolicitanteID != nil {
		args = append(args, *f.SolicitanteID)
		conds = append(conds, fmt.Sprintf("solicitante_id = $%d", len(args)))
	}
	if f.Estado != "" {
		args = append(args, f.Estado)
		conds = append(conds, fmt.Sprintf("estado = $%d", len(args)))
	}
	query := `SELECT ` + pedidoColumns + ` FROM pedidos WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY created_at DESC, id DESC`
	return r.query(ctx, query, args...)
}

// NextSecuencial toma un advisory lock de transacción sobre el par (cliente, obra);
// dos altas concurrentes para el mismo par se serializan hasta el commit.
func (r *PedidoRepo) NextSecuencial(ctx context.Context, clienteID, obraID int64) (int, error) {
	if _, err := r.db.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended('pedidos:' || $1::text || ':' || $2::text, 0))`,
		clienteID, obraID,
	); err != nil {
		return 0, fmt.Errorf("lock secuencial: %w", err)
	}
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(numero_secuencial), 0) + 1 FROM pedidos WHERE cliente_id = $1 AND obra_id = $2`,
		clienteID, obraID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next secuencial: %w", err)
	}
	return n, nil
}

func (r *PedidoRepo) ListParaEliminar(ctx context.Context, now time.Time) ([]*entity.Pedido, error) {
	query := `SELECT ` + pedidoColumns + ` FROM pedidos
		WHERE cancelado AND fecha_eliminacion_programada IS NOT NULL AND fecha_eliminacion_programada <= $1
		ORDER BY id`
	return r.query(ctx, query, now)
}

func (r *PedidoRepo) CountBySolicitante(ctx context.Context, usuarioID int64) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM pedidos WHERE solicitante_id = $1`, usuarioID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pedidos: %w", err)
	}
	return n, nil
}

func (r *PedidoRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM pedidos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete pedido: %w", err)
	}
	return nil
}

func (r *PedidoRepo) AddComentario(ctx context.Context, c *entity.Comentario) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO comentarios (pedido_id, autor_id, texto, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		c.PedidoID, c.AutorID, c.Texto, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		if strings.HasPrefix(constraintName(err), "comentarios_pedido_id") {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert comentario: %w", err)
	}
	return nil
}

func (r *PedidoRepo) ListComentarios(ctx context.Context, pedidoID int64) ([]entity.Comentario, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, pedido_id, autor_id, texto, created_at FROM comentarios WHERE pedido_id = $1 ORDER BY id`,
		pedidoID)
	if err != nil {
		return nil, fmt.Errorf("list comentarios: %w", err)
	}
	defer rows.Close()

	var out []entity.Comentario
	for rows.Next() {
		var c entity.Comentario
		if err := rows.Scan(&c.ID, &c.PedidoID, &c.AutorID, &c.Texto, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comentario: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PedidoRepo) DeleteComentarios(ctx context.Context, pedidoID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM comentarios WHERE pedido_id = $1`, pedidoID); err != nil {
		return fmt.Errorf("delete comentarios: %w", err)
	}
	return nil
}

func (r *PedidoRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Pedido, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pedidos: %w", err)
	}
	defer rows.Close()

	var list []*entity.Pedido
	for rows.Next() {
		p, err := scanPedido(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pedido: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPedido(row pgx.Row) (*entity.Pedido, error) {
	var (
		p        entity.Pedido
		items    []byte
		imagenes []byte
		monto    decimal.NullDecimal
	)
	err := row.Scan(
		&p.ID, &p.SolicitanteID, &p.ClienteID, &p.ObraID, &p.Cliente, &p.Obra, &p.NumeroSecuencial, &p.CentroCosto,
		&p.Descripcion, &items, &monto, &imagenes, &p.Urgente, &p.Incompleto, &p.Estado, &p.MotivoRechazo,
		&p.Cancelado, &p.Motivo, &p.CanceladoPor, &p.FechaCancelacion, &p.FechaEliminacionProgramada,
		&p.Validado, &p.ValidadoPor, &p.FechaValidacion, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(items, &p.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if err := json.Unmarshal(imagenes, &p.Imagenes); err != nil {
		return nil, fmt.Errorf("decode imagenes: %w", err)
	}
	if monto.Valid {
		p.Monto = &monto.Decimal
	}
	return &p, nil
}

func marshalPedidoJSON(p *entity.Pedido) (items, imagenes []byte, err error) {
	its := p.Items
	if its == nil {
		its = []entity.Item{}
	}
	if items, err = json.Marshal(its); err != nil {
		return nil, nil, fmt.Errorf("encode items: %w", err)
	}
	imgs := p.Imagenes
	if imgs == nil {
		imgs = []string{}
	}
	if imagenes, err = json.Marshal(imgs); err != nil {
		return nil, nil, fmt.Errorf("encode imagenes: %w", err)
	}
	return items, imagenes, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
