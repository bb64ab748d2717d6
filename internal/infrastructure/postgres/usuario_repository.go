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

var _ repository.UsuarioRepository = (*UsuarioRepo)(nil)

// UsuarioRepo implementación del puerto UsuarioRepository sobre PostgreSQL.
type UsuarioRepo struct {
	db Querier
}

// NewUsuarioRepository construye el adaptador de persistencia para usuarios.
func NewUsuarioRepository(db Querier) *UsuarioRepo {
	return &UsuarioRepo{db: db}
}

const usuarioColumns = `id, username, password_hash, nombre, rol, avatar, created_at, updated_at`

// Create persiste un nuevo usuario y asigna u.ID.
func (r *UsuarioRepo) Create(ctx context.Context, u *entity.Usuario) error {
	query := `
		INSERT INTO usuarios (username, password_hash, nombre, rol, avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		u.Username, u.PasswordHash, u.Nombre, u.Rol, u.Avatar, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("insert usuario: %w", err)
	}
	return nil
}

// EnsureRoot inserta el supervisor raíz con su id fijo y avanza la secuencia para que
// los siguientes usuarios no choquen con él.
func (r *UsuarioRepo) EnsureRoot(ctx context.Context, u *entity.Usuario) (bool, error) {
	query := `
		INSERT INTO usuarios (id, username, password_hash, nombre, rol, avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`
	tag, err := r.db.Exec(ctx, query,
		u.ID, u.Username, u.PasswordHash, u.Nombre, u.Rol, u.Avatar, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, domain.ErrUsernameTaken
		}
		return false, fmt.Errorf("insert root: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	_, err = r.db.Exec(ctx,
		`SELECT setval(pg_get_serial_sequence('usuarios', 'id'), GREATEST((SELECT MAX(id) FROM usuarios), 1))`)
	if err != nil {
		return true, fmt.Errorf("setval usuarios: %w", err)
	}
	return true, nil
}

// GetByID obtiene un usuario por ID.
func (r *UsuarioRepo) GetByID(ctx context.Context, id int64) (*entity.Usuario, error) {
	u, err := scanUsuario(r.db.QueryRow(ctx, `SELECT `+usuarioColumns+` FROM usuarios WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get usuario by id: %w", err)
	}
	return u, nil
}

// GetByUsername búsqueda sin distinguir mayúsculas.
func (r *UsuarioRepo) GetByUsername(ctx context.Context, username string) (*entity.Usuario, error) {
	u, err := scanUsuario(r.db.QueryRow(ctx,
		`SELECT `+usuarioColumns+` FROM usuarios WHERE lower(username) = lower($1)`, username))
	if err != nil {
		return nil, fmt.Errorf("get usuario by username: %w", err)
	}
	return u, nil
}

func (r *UsuarioRepo) Update(ctx context.Context, u *entity.Usuario) error {
	query := `
		UPDATE usuarios
		SET username = $2, password_hash = $3, nombre = $4, rol = $5, avatar = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, u.ID, u.Username, u.PasswordHash, u.Nombre, u.Rol, u.Avatar, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("update usuario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UsuarioRepo) List(ctx context.Context) ([]*entity.Usuario, error) {
	rows, err := r.db.Query(ctx, `SELECT `+usuarioColumns+` FROM usuarios ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list usuarios: %w", err)
	}
	defer rows.Close()

	var list []*entity.Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, fmt.Errorf("scan usuario: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func (r *UsuarioRepo) ListIDsByRoles(ctx context.Context, roles ...string) ([]int64, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id FROM usuarios WHERE rol = ANY($1) ORDER BY id`, roles)
	if err != nil {
		return nil, fmt.Errorf("list usuarios by roles: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan ids: %w", err)
	}
	return ids, nil
}

func (r *UsuarioRepo) CountByRol(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT rol, COUNT(*) FROM usuarios GROUP BY rol`)
	if err != nil {
		return nil, fmt.Errorf("count usuarios by rol: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var rol string
		var n int
		if err := rows.Scan(&rol, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[rol] = n
	}
	return out, rows.Err()
}

func (r *UsuarioRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM usuarios WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete usuario: %w", err)
	}
	return nil
}

// scanUsuario devuelve (nil, nil) si no hay fila.
func scanUsuario(row pgx.Row) (*entity.Usuario, error) {
	var u entity.Usuario
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Nombre, &u.Rol, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
