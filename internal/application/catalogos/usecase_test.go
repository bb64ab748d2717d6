package catalogos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/application/catalogos"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/access"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/memory"
)

func TestCatalogo_AltaSoloAdminYNombreUnico(t *testing.T) {
	ctx := context.Background()
	uc := catalogos.NewUseCase(memory.NewStore().Catalogo())
	admin := access.Actor{ID: 2, Role: entity.RoleAdmin}

	_, err := uc.CreateCliente(ctx, access.Actor{ID: 3, Role: entity.RoleValidador}, dto.CatalogoRequest{Nombre: "ACME"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	c, err := uc.CreateCliente(ctx, admin, dto.CatalogoRequest{Nombre: " ACME "})
	require.NoError(t, err)
	assert.Equal(t, "ACME", c.Nombre)

	_, err = uc.CreateCliente(ctx, admin, dto.CatalogoRequest{Nombre: "acme"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.CreateObra(ctx, admin, dto.CatalogoRequest{Nombre: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	for _, n := range []string{"Torre B", "Torre A"} {
		_, err := uc.CreateObra(ctx, admin, dto.CatalogoRequest{Nombre: n})
		require.NoError(t, err)
	}
	obras, err := uc.ListObras(ctx)
	require.NoError(t, err)
	require.Len(t, obras, 2)
	assert.Equal(t, "Torre A", obras[0].Nombre)
}
