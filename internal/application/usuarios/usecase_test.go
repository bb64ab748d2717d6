package usuarios_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/usuarios"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/access"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/cache"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/memory"
)

var (
	root  = access.Actor{ID: entity.RootUserID, Role: entity.RoleSupervisor}
	admin = access.Actor{ID: 2, Role: entity.RoleAdmin}
	user  = access.Actor{ID: 3, Role: entity.RoleUser}
)

func setup(t *testing.T) (*usuarios.UseCase, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	_, err := s.Usuarios().EnsureRoot(ctx, &entity.Usuario{ID: entity.RootUserID, Username: "root", Rol: entity.RoleSupervisor})
	require.NoError(t, err)
	require.NoError(t, s.Usuarios().Create(ctx, &entity.Usuario{Username: "adm", Rol: entity.RoleAdmin}))
	require.NoError(t, s.Usuarios().Create(ctx, &entity.Usuario{Username: "ana", Rol: entity.RoleUser}))
	return usuarios.NewUseCase(s, s.Usuarios(), cache.NewLocalCache(), zerolog.Nop()), s
}

func strPtr(s string) *string { return &s }

// ──────────────────────────────────────────────────────────────────────────────
// Borrado
// ──────────────────────────────────────────────────────────────────────────────

func TestDelete_ConRegistrosInformaConteos(t *testing.T) {
	uc, s := setup(t)
	ctx := context.Background()
	require.NoError(t, s.Pedidos().Create(ctx, &entity.Pedido{SolicitanteID: 3, ClienteID: 1, ObraID: 1, NumeroSecuencial: 1}))
	require.NoError(t, s.Pedidos().Create(ctx, &entity.Pedido{SolicitanteID: 3, ClienteID: 1, ObraID: 1, NumeroSecuencial: 2}))
	require.NoError(t, s.Compras().Create(ctx, &entity.Compra{SolicitanteID: 3, Proveedor: "x", Monto: decimal.NewFromInt(1)}))

	err := uc.Delete(ctx, admin, 3)
	require.ErrorIs(t, err, domain.ErrUserHasRecords)
	var rec *domain.UserHasRecordsError
	require.True(t, errors.As(err, &rec))
	assert.Equal(t, 2, rec.Pedidos)
	assert.Equal(t, 1, rec.Compras)

	u, err := s.Usuarios().GetByID(ctx, 3)
	require.NoError(t, err)
	assert.NotNil(t, u)
}

func TestDelete_RootSiempreFalla(t *testing.T) {
	uc, _ := setup(t)
	assert.ErrorIs(t, uc.Delete(context.Background(), root, entity.RootUserID), domain.ErrRootUserProtected)
	assert.ErrorIs(t, uc.Delete(context.Background(), admin, entity.RootUserID), domain.ErrRootUserProtected)
}

func TestDelete_SinRegistros(t *testing.T) {
	uc, s := setup(t)
	require.NoError(t, uc.Delete(context.Background(), admin, 3))
	u, err := s.Usuarios().GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, u)

	assert.ErrorIs(t, uc.Delete(context.Background(), admin, 3), domain.ErrUserNotFound)
}

func TestDelete_UserProhibido(t *testing.T) {
	uc, _ := setup(t)
	assert.ErrorIs(t, uc.Delete(context.Background(), user, 2), domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Roles
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_RootNoSeDegrada(t *testing.T) {
	uc, _ := setup(t)
	_, err := uc.Update(context.Background(), root, entity.RootUserID, dto.UpdateUsuarioRequest{Rol: strPtr(entity.RoleAdmin)})
	assert.ErrorIs(t, err, domain.ErrRootUserProtected)

	got, err := uc.Update(context.Background(), root, entity.RootUserID, dto.UpdateUsuarioRequest{Nombre: strPtr("Jefa")})
	require.NoError(t, err)
	assert.Equal(t, "Jefa", got.Nombre)
}

func TestUpdate_SupervisorSoloPorSupervisor(t *testing.T) {
	uc, _ := setup(t)
	_, err := uc.Update(context.Background(), admin, 3, dto.UpdateUsuarioRequest{Rol: strPtr(entity.RoleSupervisor)})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := uc.Update(context.Background(), admin, 3, dto.UpdateUsuarioRequest{Rol: strPtr(entity.RoleValidador)})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleValidador, got.Rol)

	got, err = uc.Update(context.Background(), root, 3, dto.UpdateUsuarioRequest{Rol: strPtr(entity.RoleSupervisor)})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSupervisor, got.Rol)

	_, err = uc.Update(context.Background(), admin, 3, dto.UpdateUsuarioRequest{Rol: strPtr(entity.RoleUser)})
	assert.ErrorIs(t, err, domain.ErrForbidden, "quitar supervisor también requiere supervisor")
}

func TestUpdate_RolInvalido(t *testing.T) {
	uc, _ := setup(t)
	_, err := uc.Update(context.Background(), admin, 3, dto.UpdateUsuarioRequest{Rol: strPtr("jefe")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_UsernameOcupado(t *testing.T) {
	uc, _ := setup(t)
	_, err := uc.Create(context.Background(), admin, dto.CreateUsuarioRequest{Username: "ana", Password: "secreto"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	_, err = uc.Create(context.Background(), admin, dto.CreateUsuarioRequest{Username: "sup", Password: "secreto", Rol: entity.RoleSupervisor})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Estadísticas
// ──────────────────────────────────────────────────────────────────────────────

func TestEstadisticas_CacheInvalidadaAlEscribir(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	st, err := uc.Estadisticas(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.PorRol[entity.RoleUser])

	_, err = uc.Create(ctx, admin, dto.CreateUsuarioRequest{Username: "val", Password: "secreto", Rol: entity.RoleValidador})
	require.NoError(t, err)

	st, err = uc.Estadisticas(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 1, st.PorRol[entity.RoleValidador])
}
