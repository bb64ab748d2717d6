package workflow_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/workflow"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var t0 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func pedidoEn(estado string) *entity.Pedido {
	return &entity.Pedido{
		ID:            10,
		SolicitanteID: 3,
		Cliente:       "Acme",
		Obra:          "Torre Norte",
		Estado:        estado,
		Imagenes:      []string{"/uploads/pedidos/10/imagen-1-1.jpg", "/uploads/pedidos/10/imagen-2-1.jpg"},
	}
}

func cancelado(t *testing.T) *entity.Pedido {
	t.Helper()
	p := pedidoEn(entity.EstadoPendienteValidacion)
	_, err := workflow.Cancelar(p, 3, "ya no se necesita", t0)
	require.NoError(t, err)
	return p
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación y numeración
// ──────────────────────────────────────────────────────────────────────────────

func TestNuevoPedido_SinImagenesQuedaIncompleto(t *testing.T) {
	p := &entity.Pedido{Cliente: "Acme", Obra: "Torre"}
	workflow.NuevoPedido(p, t0)

	assert.Equal(t, entity.EstadoRegistrado, p.Estado)
	assert.True(t, p.Incompleto)
	assert.False(t, p.Cancelado)
	assert.Equal(t, t0, p.CreatedAt)
}

func TestNuevoPedido_ConImagenesNoQuedaIncompleto(t *testing.T) {
	p := &entity.Pedido{Imagenes: []string{"/uploads/pedidos/1/imagen-1-1.jpg"}}
	workflow.NuevoPedido(p, t0)
	assert.False(t, p.Incompleto)
}

func TestNumerar_PrimerPedidoDelPar(t *testing.T) {
	p := &entity.Pedido{ClienteID: 5, ObraID: 9, Cliente: "Acme", Obra: "Torre Norte"}
	workflow.Numerar(p, 1)

	assert.Equal(t, 1, p.NumeroSecuencial)
	assert.Equal(t, "Acme-Torre Norte-1", p.CentroCosto)
}

// ──────────────────────────────────────────────────────────────────────────────
// CambiarEstado
// ──────────────────────────────────────────────────────────────────────────────

func TestCambiarEstado_RevisadoSeReescribeAPendiente(t *testing.T) {
	p := pedidoEn(entity.EstadoEnProceso)
	tr, err := workflow.CambiarEstado(p, entity.EstadoRevisado, t0)
	require.NoError(t, err)

	assert.Equal(t, entity.EstadoPendienteValidacion, p.Estado)
	assert.Equal(t, entity.EstadoEnProceso, tr.EstadoAnterior)
	assert.Equal(t, entity.EstadoPendienteValidacion, tr.EstadoNuevo)
	assert.Equal(t, int64(3), tr.SolicitanteID)
	assert.True(t, tr.Cambio())
}

func TestCambiarEstado_BloqueadoPendienteValidacion(t *testing.T) {
	for _, destino := range []string{entity.EstadoEnProceso, entity.EstadoCompletado, entity.EstadoRevisado, entity.EstadoPendienteValidacion} {
		p := pedidoEn(entity.EstadoPendienteValidacion)
		_, err := workflow.CambiarEstado(p, destino, t0)
		assert.ErrorIs(t, err, domain.ErrBloqueadoPendienteValidacion, destino)
		assert.Equal(t, entity.EstadoPendienteValidacion, p.Estado)
	}
}

func TestCambiarEstado_EstadosNoAsignables(t *testing.T) {
	for _, destino := range []string{entity.EstadoValidado, entity.EstadoCancelado, "Inventado", ""} {
		p := pedidoEn(entity.EstadoEnProceso)
		_, err := workflow.CambiarEstado(p, destino, t0)
		assert.ErrorIs(t, err, domain.ErrEstadoInvalido, destino)
		assert.Equal(t, entity.EstadoEnProceso, p.Estado)
	}
}

func TestCambiarEstado_AvanceNormal(t *testing.T) {
	p := pedidoEn(entity.EstadoValidado)
	_, err := workflow.CambiarEstado(p, entity.EstadoCompletado, t0)
	require.NoError(t, err)
	_, err = workflow.CambiarEstado(p, entity.EstadoCerrado, t0)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoCerrado, p.Estado)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancelado es terminal
// ──────────────────────────────────────────────────────────────────────────────

func TestCancelado_NingunaTransicionPosterior(t *testing.T) {
	p := cancelado(t)

	_, err := workflow.CambiarEstado(p, entity.EstadoEnProceso, t0)
	assert.ErrorIs(t, err, domain.ErrPedidoCancelado)

	_, err = workflow.Validar(p, 2, t0)
	assert.ErrorIs(t, err, domain.ErrPedidoCancelado)

	_, err = workflow.Rechazar(p, "faltan datos", entity.EstadoEnProceso, t0)
	assert.ErrorIs(t, err, domain.ErrPedidoCancelado)

	_, err = workflow.Cancelar(p, 3, "otra vez", t0)
	assert.ErrorIs(t, err, domain.ErrPedidoCancelado)

	_, err = workflow.AplicarCambiosPedido(p, workflow.Cambios{"urgente": json.RawMessage(`true`)}, t0)
	assert.ErrorIs(t, err, domain.ErrPedidoCancelado)

	assert.Equal(t, entity.EstadoCancelado, p.Estado)
}

func TestCancelar_ProgramaBorradoA24Horas(t *testing.T) {
	p := pedidoEn(entity.EstadoEnProceso)
	tr, err := workflow.Cancelar(p, 8, "  cliente desistió  ", t0)
	require.NoError(t, err)

	assert.True(t, p.Cancelado)
	assert.Equal(t, "cliente desistió", p.Motivo)
	require.NotNil(t, p.CanceladoPor)
	assert.Equal(t, int64(8), *p.CanceladoPor)
	require.NotNil(t, p.FechaCancelacion)
	assert.Equal(t, t0, *p.FechaCancelacion)
	require.NotNil(t, p.FechaEliminacionProgramada)
	assert.Equal(t, t0.Add(24*time.Hour), *p.FechaEliminacionProgramada)
	assert.Equal(t, entity.EstadoCancelado, tr.EstadoNuevo)
}

func TestCancelar_MotivoVacioNoModifica(t *testing.T) {
	for _, motivo := range []string{"", "   ", "\t\n"} {
		p := pedidoEn(entity.EstadoEnProceso)
		antes := *p.Clone()

		_, err := workflow.Cancelar(p, 3, motivo, t0)
		assert.ErrorIs(t, err, domain.ErrMotivoRequerido)
		assert.Equal(t, antes, *p, "el pedido no debe cambiar")
	}
}

func TestElegibleParaEliminacion(t *testing.T) {
	p := cancelado(t)
	assert.False(t, workflow.ElegibleParaEliminacion(p, t0.Add(23*time.Hour)))
	assert.True(t, workflow.ElegibleParaEliminacion(p, t0.Add(24*time.Hour)))
	assert.True(t, workflow.ElegibleParaEliminacion(p, t0.Add(25*time.Hour)))
	assert.False(t, workflow.ElegibleParaEliminacion(pedidoEn(entity.EstadoEnProceso), t0.Add(48*time.Hour)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validar / Rechazar
// ──────────────────────────────────────────────────────────────────────────────

func TestValidar_NoPendienteFalla(t *testing.T) {
	p := pedidoEn(entity.EstadoEnProceso)
	_, err := workflow.Validar(p, 2, t0)
	assert.ErrorIs(t, err, domain.ErrNoPendienteValidacion)
	assert.False(t, p.Validado)
	assert.Len(t, p.Imagenes, 2)
}

func TestValidar_PendienteLimpiaImagenes(t *testing.T) {
	p := pedidoEn(entity.EstadoPendienteValidacion)
	tr, err := workflow.Validar(p, 2, t0)
	require.NoError(t, err)

	assert.Equal(t, entity.EstadoValidado, p.Estado)
	assert.True(t, p.Validado)
	assert.Empty(t, p.Imagenes)
	require.NotNil(t, p.ValidadoPor)
	assert.Equal(t, int64(2), *p.ValidadoPor)
	require.NotNil(t, p.FechaValidacion)
	assert.Len(t, tr.ImagenesRetiradas, 2, "las imágenes retiradas se devuelven para borrarlas")
}

func TestRechazar_ARevisado(t *testing.T) {
	p := pedidoEn(entity.EstadoPendienteValidacion)
	tr, err := workflow.Rechazar(p, "faltan datos", entity.EstadoRevisado, t0)
	require.NoError(t, err)

	assert.Equal(t, entity.EstadoRevisado, p.Estado)
	assert.False(t, p.Validado)
	assert.Equal(t, "faltan datos", p.MotivoRechazo)
	assert.Equal(t, entity.EstadoRevisado, tr.EstadoNuevo)
}

func TestRechazar_DestinoPorDefecto(t *testing.T) {
	p := pedidoEn(entity.EstadoPendienteValidacion)
	_, err := workflow.Rechazar(p, "incompleto", "", t0)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoEnProceso, p.Estado)
}

func TestRechazar_Validaciones(t *testing.T) {
	p := pedidoEn(entity.EstadoPendienteValidacion)
	_, err := workflow.Rechazar(p, "  ", "", t0)
	assert.ErrorIs(t, err, domain.ErrMotivoRequerido)

	_, err = workflow.Rechazar(p, "x", entity.EstadoCerrado, t0)
	assert.ErrorIs(t, err, domain.ErrEstadoInvalido)

	_, err = workflow.Rechazar(pedidoEn(entity.EstadoRegistrado), "x", "", t0)
	assert.ErrorIs(t, err, domain.ErrNoPendienteValidacion)

	assert.Equal(t, entity.EstadoPendienteValidacion, p.Estado)
}

// ──────────────────────────────────────────────────────────────────────────────
// Comentarios
// ──────────────────────────────────────────────────────────────────────────────

func TestNuevoComentario(t *testing.T) {
	p := pedidoEn(entity.EstadoEnProceso)
	c, err := workflow.NuevoComentario(p, 2, "  revisar cantidades ", t0)
	require.NoError(t, err)
	assert.Equal(t, "revisar cantidades", c.Texto)
	assert.Equal(t, int64(10), c.PedidoID)
	assert.Equal(t, entity.EstadoEnProceso, p.Estado)

	_, err = workflow.NuevoComentario(p, 2, " ", t0)
	assert.ErrorIs(t, err, domain.ErrComentarioVacio)
}

// ──────────────────────────────────────────────────────────────────────────────
// Actualización parcial
// ──────────────────────────────────────────────────────────────────────────────

func TestAplicarCambiosPedido_SoloListaPermitida(t *testing.T) {
	p := pedidoEn(entity.EstadoEnProceso)
	aplicados, err := workflow.AplicarCambiosPedido(p, workflow.Cambios{
		"monto":          json.RawMessage(`"1500.50"`),
		"urgente":        json.RawMessage(`1`),
		"solicitante_id": json.RawMessage(`99`),
		"centro_costo":   json.RawMessage(`"hack"`),
	}, t0)
	require.NoError(t, err)

	assert.Equal(t, []string{"monto", "urgente"}, aplicados)
	require.NotNil(t, p.Monto)
	assert.True(t, p.Monto.Equal(decimal.RequireFromString("1500.50")))
	assert.True(t, p.Urgente)
	assert.Equal(t, int64(3), p.SolicitanteID, "el solicitante es inmutable")
	assert.Empty(t, p.CentroCosto)
}

func TestAplicarCambiosPedido_SinCamposValidos(t *testing.T) {
	p := pedidoEn(entity.EstadoEnProceso)
	_, err := workflow.AplicarCambiosPedido(p, workflow.Cambios{"foo": json.RawMessage(`1`)}, t0)
	assert.ErrorIs(t, err, domain.ErrSinCamposValidos)
}

func TestAplicarCambiosPedido_ValorInvalidoNoAplicaNada(t *testing.T) {
	p := pedidoEn(entity.EstadoEnProceso)
	antes := *p.Clone()
	_, err := workflow.AplicarCambiosPedido(p, workflow.Cambios{
		"descripcion": json.RawMessage(`"nueva"`),
		"urgente":     json.RawMessage(`"quizás"`),
	}, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, antes, *p)
}

func TestAplicarCambiosPedido_RenombrarRecalculaCentroCosto(t *testing.T) {
	p := pedidoEn(entity.EstadoEnProceso)
	workflow.Numerar(p, 4)

	_, err := workflow.AplicarCambiosPedido(p, workflow.Cambios{"obra": json.RawMessage(`"Torre Sur"`)}, t0)
	require.NoError(t, err)
	assert.Equal(t, "Acme-Torre Sur-4", p.CentroCosto)
	assert.Equal(t, 4, p.NumeroSecuencial)

	_, err = workflow.AplicarCambiosPedido(p, workflow.Cambios{"descripcion": json.RawMessage(`"sin cambio de nombre"`)}, t0)
	require.NoError(t, err)
	assert.Equal(t, "Acme-Torre Sur-4", p.CentroCosto)
}

func TestAplicarCambiosPedido_Items(t *testing.T) {
	p := pedidoEn(entity.EstadoEnProceso)
	_, err := workflow.AplicarCambiosPedido(p, workflow.Cambios{
		"items": json.RawMessage(`[{"nombre":"Cemento","unidad":"saco","cantidad":"12"}]`),
		"monto": json.RawMessage(`null`),
	}, t0)
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "Cemento", p.Items[0].Nombre)
	assert.Nil(t, p.Monto)
}
