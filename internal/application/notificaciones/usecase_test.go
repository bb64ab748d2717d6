package notificaciones_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/notificaciones"
	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/access"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/memory"
)

type webhookMock struct {
	mock.Mock
}

func (m *webhookMock) Send(ctx context.Context, n *entity.Notificacion) error {
	return m.Called(ctx, n).Error(0)
}

func setup(t *testing.T, hook ports.WebhookSender) (*notificaciones.UseCase, *memory.Store) {
	t.Helper()
	s := memory.NewStore()
	ctx := context.Background()
	for _, u := range []*entity.Usuario{
		{Username: "ana", Rol: entity.RoleUser},
		{Username: "val", Rol: entity.RoleValidador},
		{Username: "adm", Rol: entity.RoleAdmin},
	} {
		require.NoError(t, s.Usuarios().Create(ctx, u))
	}
	return notificaciones.NewUseCase(s.Notificaciones(), s.Usuarios(), hook, zerolog.Nop()), s
}

func TestCreate_ParaSiMismo(t *testing.T) {
	uc, _ := setup(t, nil)
	n, err := uc.Create(context.Background(), access.Actor{ID: 1, Role: entity.RoleUser}, dto.CreateNotificacionRequest{Titulo: " Hola "})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.UsuarioID)
	assert.Equal(t, "Hola", n.Titulo)
	assert.Equal(t, entity.NotifInfo, n.Tipo)
	assert.False(t, n.Leida)
}

func TestCreate_AjenaRequiereValidador(t *testing.T) {
	uc, _ := setup(t, nil)
	in := dto.CreateNotificacionRequest{UsuarioID: 3, Titulo: "x"}
	_, err := uc.Create(context.Background(), access.Actor{ID: 1, Role: entity.RoleUser}, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Create(context.Background(), access.Actor{ID: 2, Role: entity.RoleValidador}, in)
	assert.NoError(t, err)
}

func TestCreate_DestinatarioInexistente(t *testing.T) {
	uc, _ := setup(t, nil)
	_, err := uc.Create(context.Background(), access.Actor{ID: 3, Role: entity.RoleAdmin}, dto.CreateNotificacionRequest{UsuarioID: 42, Titulo: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCreate_TipoInvalido(t *testing.T) {
	uc, _ := setup(t, nil)
	_, err := uc.Create(context.Background(), access.Actor{ID: 1, Role: entity.RoleUser}, dto.CreateNotificacionRequest{Titulo: "x", Tipo: "fiesta"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMarkAllRead_AisladoPorUsuario(t *testing.T) {
	uc, _ := setup(t, nil)
	ctx := context.Background()
	uc.Notify(ctx, ports.Aviso{UsuarioID: 1, Titulo: "a"})
	uc.Notify(ctx, ports.Aviso{UsuarioID: 1, Titulo: "b"})
	uc.Notify(ctx, ports.Aviso{UsuarioID: 2, Titulo: "c"})

	n, err := uc.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pend, err := uc.CountUnread(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, pend)

	pend, err = uc.CountUnread(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, pend)
}

func TestMarkReadYDelete_AjenaEsNotFound(t *testing.T) {
	uc, _ := setup(t, nil)
	ctx := context.Background()
	uc.Notify(ctx, ports.Aviso{UsuarioID: 1, Titulo: "a"})
	list, err := uc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	assert.ErrorIs(t, uc.MarkRead(ctx, id, 2), domain.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, id, 2), domain.ErrNotFound)
	assert.NoError(t, uc.MarkRead(ctx, id, 1))
	assert.NoError(t, uc.Delete(ctx, id, 1))

	list, err = uc.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNotifyRoles_LlegaAAdmins(t *testing.T) {
	uc, _ := setup(t, nil)
	ctx := context.Background()
	uc.NotifyRoles(ctx, ports.Aviso{Titulo: "Nuevo pedido"}, entity.RoleAdmin, entity.RoleSupervisor)

	list, err := uc.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = uc.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNotify_WebhookFallidoNoAfecta(t *testing.T) {
	hook := &webhookMock{}
	done := make(chan struct{})
	hook.On("Send", mock.Anything, mock.AnythingOfType("*entity.Notificacion")).
		Return(errors.New("down")).
		Run(func(mock.Arguments) { close(done) }).
		Once()

	uc, _ := setup(t, hook)
	ctx := context.Background()
	uc.Notify(ctx, ports.Aviso{UsuarioID: 1, Titulo: "a"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("el webhook no fue invocado")
	}
	hook.AssertExpectations(t)

	list, err := uc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// webhookLento retiene cada envío hasta que se cierra liberar.
type webhookLento struct {
	iniciados atomic.Int32
	liberar   chan struct{}
}

func (w *webhookLento) Send(context.Context, *entity.Notificacion) error {
	w.iniciados.Add(1)
	<-w.liberar
	return nil
}

func TestNotify_ReenviosAlWebhookAcotados(t *testing.T) {
	hook := &webhookLento{liberar: make(chan struct{})}
	uc, _ := setup(t, hook)
	ctx := context.Background()

	total := notificaciones.MaxEnviosWebhook + 4
	for i := 0; i < total; i++ {
		uc.Notify(ctx, ports.Aviso{UsuarioID: 1, Titulo: "aviso"})
	}

	assert.Eventually(t, func() bool {
		return hook.iniciados.Load() == notificaciones.MaxEnviosWebhook
	}, 2*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool {
		return hook.iniciados.Load() > notificaciones.MaxEnviosWebhook
	}, 100*time.Millisecond, 10*time.Millisecond)
	close(hook.liberar)

	list, err := uc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, total, "todas se guardan aunque el reenvío se omita")
}
