package limpieza

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/access"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/workflow"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/cache"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/memory"
)

var t0 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

// dirs simula el directorio de imágenes; borrar uno ausente falla si strict.
type dirs struct {
	present map[int64]bool
	strict  bool
}

func (d *dirs) RemovePedidoDir(_ context.Context, id int64) error {
	if !d.present[id] && d.strict {
		return errors.New("no such file or directory")
	}
	delete(d.present, id)
	return nil
}

func (d *dirs) Process(io.Reader, int64) ([]byte, error) { return nil, nil }
func (d *dirs) SavePedidoImages(context.Context, int64, int, [][]byte) ([]string, error) { return nil, nil }
func (d *dirs) SaveCompraTicket(context.Context, int64, []byte) (string, error) { return "", nil }
func (d *dirs) RemoveFile(context.Context, string) error { return nil }
func (d *dirs) RemoveCompraDir(context.Context, int64) error { return nil }

var _ ports.ImageStore = (*dirs)(nil)

type fixture struct {
	uc     *UseCase
	store  *memory.Store
	dirs   *dirs
	locker *cache.LocalLocker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	d := &dirs{present: make(map[int64]bool)}
	l := cache.NewLocalLocker()
	return &fixture{uc: NewUseCase(s, s.Pedidos(), d, l, zerolog.Nop()), store: s, dirs: d, locker: l}
}

// cancelado crea un pedido con un comentario y lo cancela en t0.
func (f *fixture) cancelado(t *testing.T, n int) int64 {
	t.Helper()
	ctx := context.Background()
	p := &entity.Pedido{SolicitanteID: 2, ClienteID: 1, ObraID: 1}
	workflow.NuevoPedido(p, t0)
	workflow.Numerar(p, n)
	require.NoError(t, f.store.Pedidos().Create(ctx, p))
	require.NoError(t, f.store.Pedidos().AddComentario(ctx, &entity.Comentario{PedidoID: p.ID, AutorID: 3, Texto: "nota"}))
	_, err := workflow.Cancelar(p, 2, "duplicado", t0)
	require.NoError(t, err)
	require.NoError(t, f.store.Pedidos().Update(ctx, p))
	f.dirs.present[p.ID] = true
	return p.ID
}

func (f *fixture) at(d time.Duration) {
	f.uc.now = func() time.Time { return t0.Add(d) }
}

func TestRun_RespetaLas24Horas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.cancelado(t, 1)

	f.at(23 * time.Hour)
	res, err := f.uc.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Eliminados)
	p, err := f.store.Pedidos().GetByID(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, p)

	f.at(25 * time.Hour)
	res, err = f.uc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{id}, res.Eliminados)

	p, err = f.store.Pedidos().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, p)
	cs, err := f.store.Pedidos().ListComentarios(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, cs)
	assert.False(t, f.dirs.present[id])
}

func TestRun_Idempotente(t *testing.T) {
	f := newFixture(t)
	f.cancelado(t, 1)
	f.at(25 * time.Hour)

	_, err := f.uc.Run(context.Background())
	require.NoError(t, err)
	res, err := f.uc.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Eliminados)
	assert.Empty(t, res.Fallidos)
}

func TestRun_DirectorioAusenteNoDetiene(t *testing.T) {
	f := newFixture(t)
	f.dirs.strict = true
	a := f.cancelado(t, 1)
	b := f.cancelado(t, 2)
	delete(f.dirs.present, a)

	f.at(25 * time.Hour)
	res, err := f.uc.Run(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{a, b}, res.Eliminados)
}

func TestRun_ActivosNoSeTocan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := &entity.Pedido{SolicitanteID: 2, ClienteID: 1, ObraID: 1}
	workflow.NuevoPedido(p, t0)
	require.NoError(t, f.store.Pedidos().Create(ctx, p))

	f.at(1000 * time.Hour)
	res, err := f.uc.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Eliminados)
}

func TestRun_LockOcupado(t *testing.T) {
	f := newFixture(t)
	unlock, ok, err := f.locker.TryLock(context.Background(), LockName, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	defer unlock()

	_, err = f.uc.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrSweepEnCurso)
}

func TestEjecutar_SoloAdmin(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Ejecutar(context.Background(), access.Actor{ID: 2, Role: entity.RoleValidador})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.Ejecutar(context.Background(), access.Actor{ID: 3, Role: entity.RoleAdmin})
	assert.NoError(t, err)
}
