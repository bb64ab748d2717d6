package webhook_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/webhook"
)

func TestSend_PayloadYToken(t *testing.T) {
	var got webhook.Payload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := webhook.New(srv.URL, "tok", time.Second)
	err := c.Send(context.Background(), &entity.Notificacion{ID: 9, UsuarioID: 2, Tipo: entity.NotifSuccess, Titulo: "Pedido validado"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, int64(9), got.ID)
	assert.Equal(t, "Pedido validado", got.Titulo)
}

func TestSend_ErrorDeServidor(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := webhook.New(srv.URL, "", time.Second)
	err := c.Send(context.Background(), &entity.Notificacion{ID: 1, Titulo: "x"})
	assert.Error(t, err)
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}
