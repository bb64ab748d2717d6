package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/pkg/config"
)

// openTestDB requiere TEST_DATABASE_URL apuntando a una base desechable.
func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 10, MinConns: 1}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool, zerolog.Nop()))
	_, err = pool.Exec(ctx, `TRUNCATE comentarios, pedidos, compras, notificaciones, clientes, obras, usuarios RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func TestMigrate_Idempotente(t *testing.T) {
	pool := openTestDB(t)
	require.NoError(t, Migrate(context.Background(), pool, zerolog.Nop()))
}

func TestUsuarioRepo_EnsureRootYUnicidad(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	repo := NewUsuarioRepository(pool)
	now := time.Now().UTC()

	root := &entity.Usuario{ID: entity.RootUserID, Username: "root", PasswordHash: "x", Nombre: "Root", Rol: entity.RoleSupervisor, CreatedAt: now, UpdatedAt: now}
	created, err := repo.EnsureRoot(ctx, root)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.EnsureRoot(ctx, root)
	require.NoError(t, err)
	assert.False(t, created)

	ana := &entity.Usuario{Username: "ana", PasswordHash: "x", Nombre: "Ana", Rol: entity.RoleUser, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, ana))
	assert.Greater(t, ana.ID, entity.RootUserID)

	dup := &entity.Usuario{Username: "ANA", PasswordHash: "x", Nombre: "Otra", Rol: entity.RoleUser, CreatedAt: now, UpdatedAt: now}
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrUsernameTaken)

	got, err := repo.GetByUsername(ctx, "Ana")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ana.ID, got.ID)

	missing, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPedidoRepo_SecuencialConcurrente(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	u := &entity.Usuario{Username: "ana", PasswordHash: "x", Nombre: "Ana", Rol: entity.RoleUser, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewUsuarioRepository(pool).Create(ctx, u))
	cat := NewCatalogoRepository(pool)
	cli := &entity.Cliente{Nombre: "ACME", CreatedAt: now}
	obra := &entity.Obra{Nombre: "Torre", CreatedAt: now}
	require.NoError(t, cat.CreateCliente(ctx, cli))
	require.NoError(t, cat.CreateObra(ctx, obra))

	runner := NewTxRunner(pool)
	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- runner.Run(ctx, func(r ports.Repos) error {
				num, err := r.Pedidos.NextSecuencial(ctx, cli.ID, obra.ID)
				if err != nil {
					return err
				}
				return r.Pedidos.Create(ctx, &entity.Pedido{
					SolicitanteID: u.ID, ClienteID: cli.ID, ObraID: obra.ID, Cliente: cli.Nombre, Obra: obra.Nombre,
					NumeroSecuencial: num, CentroCosto: fmt.Sprintf("ACME-Torre-%d", num),
					Estado: entity.EstadoRegistrado, CreatedAt: now, UpdatedAt: now,
				})
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	list, err := NewPedidoRepository(pool).List(ctx, entity.PedidoFiltro{})
	require.NoError(t, err)
	require.Len(t, list, n)
	seen := map[int]bool{}
	for _, p := range list {
		assert.False(t, seen[p.NumeroSecuencial], "número repetido %d", p.NumeroSecuencial)
		seen[p.NumeroSecuencial] = true
	}
	for i := 1; i <= n; i++ {
		assert.True(t, seen[i])
	}
}

func TestPedidoRepo_RoundTripYRollback(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	u := &entity.Usuario{Username: "ana", PasswordHash: "x", Nombre: "Ana", Rol: entity.RoleUser, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewUsuarioRepository(pool).Create(ctx, u))
	cat := NewCatalogoRepository(pool)
	cli := &entity.Cliente{Nombre: "ACME", CreatedAt: now}
	obra := &entity.Obra{Nombre: "Torre", CreatedAt: now}
	require.NoError(t, cat.CreateCliente(ctx, cli))
	require.NoError(t, cat.CreateObra(ctx, obra))

	monto := decimal.RequireFromString("1500.50")
	repo := NewPedidoRepository(pool)
	p := &entity.Pedido{
		SolicitanteID: u.ID, ClienteID: cli.ID, ObraID: obra.ID, Cliente: "ACME", Obra: "Torre",
		NumeroSecuencial: 1, CentroCosto: "ACME-Torre-1", Estado: entity.EstadoRegistrado,
		Items:    []entity.Item{{Nombre: "Cemento", Unidad: "saco", Cantidad: decimal.NewFromInt(3)}},
		Imagenes: []string{"/uploads/pedidos/1/imagen-1-1.jpg"},
		Monto:    &monto, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].Cantidad.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, p.Imagenes, got.Imagenes)
	require.NotNil(t, got.Monto)
	assert.True(t, got.Monto.Equal(monto))

	dup := *p
	assert.ErrorIs(t, repo.Create(ctx, &dup), domain.ErrDuplicate)

	err = NewTxRunner(pool).Run(ctx, func(r ports.Repos) error {
		locked, err := r.Pedidos.GetForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		locked.Estado = entity.EstadoEnProceso
		if err := r.Pedidos.Update(ctx, locked); err != nil {
			return err
		}
		return domain.ErrConflict
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoRegistrado, got.Estado)

	require.NoError(t, repo.AddComentario(ctx, &entity.Comentario{PedidoID: p.ID, AutorID: u.ID, Texto: "ok", CreatedAt: now}))
	cs, err := repo.ListComentarios(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, cs, 1)
}

func TestNotificacionRepo_Propietario(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()
	users := NewUsuarioRepository(pool)
	a := &entity.Usuario{Username: "a", PasswordHash: "x", Nombre: "A", Rol: entity.RoleUser, CreatedAt: now, UpdatedAt: now}
	b := &entity.Usuario{Username: "b", PasswordHash: "x", Nombre: "B", Rol: entity.RoleUser, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, users.Create(ctx, a))
	require.NoError(t, users.Create(ctx, b))

	repo := NewNotificacionRepository(pool)
	n := &entity.Notificacion{UsuarioID: a.ID, Tipo: entity.NotifInfo, Titulo: "hola", CreatedAt: now}
	require.NoError(t, repo.Create(ctx, n))

	ok, err := repo.MarkRead(ctx, n.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	unread, err := repo.CountUnread(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	marked, err := repo.MarkAllRead(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)
}
