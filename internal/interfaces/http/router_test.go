package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/application/auth"
	"github.com/jhoicas/pedidos-api/internal/application/catalogos"
	"github.com/jhoicas/pedidos-api/internal/application/compras"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/limpieza"
	"github.com/jhoicas/pedidos-api/internal/application/notificaciones"
	"github.com/jhoicas/pedidos-api/internal/application/pedidos"
	"github.com/jhoicas/pedidos-api/internal/application/usuarios"
	"github.com/jhoicas/pedidos-api/internal/domain/access"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/cache"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/pedidos-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/pedidos-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entorno completo sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	app     *fiber.App
	store   *memory.Store
	tokens  map[string]string
	ids     map[string]int64
	roles   map[string]string
	cliente int64
	obra    int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	log := zerolog.Nop()
	store := memory.NewStore()

	images, err := storage.NewLocalImageStore(storage.Options{Dir: t.TempDir()})
	require.NoError(t, err)
	notifier := notificaciones.NewUseCase(store.Notificaciones(), store.Usuarios(), nil, log)

	authUC := auth.NewUseCase(store.Usuarios(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}, log)
	require.NoError(t, authUC.EnsureRoot(ctx, auth.RootConfig{Username: "root", Password: "root-secret"}))

	catUC := catalogos.NewUseCase(store.Catalogo())
	deps := apphttp.RouterDeps{
		AuthUC: authUC,
		PedidosUC: pedidos.NewUseCase(pedidos.Deps{
			Tx: store, Pedidos: store.Pedidos(), Usuarios: store.Usuarios(), Catalogo: store.Catalogo(),
			Images: images, Notifier: notifier, PDF: pdf.NewMarotoPDFGenerator("Test"), Log: log,
		}),
		ComprasUC:        compras.NewUseCase(store, store.Compras(), images, notifier, log),
		NotificacionesUC: notifier,
		UsuariosUC:       usuarios.NewUseCase(store, store.Usuarios(), cache.NewLocalCache(), log),
		CatalogosUC:      catUC,
		LimpiezaUC:       limpieza.NewUseCase(store, store.Pedidos(), images, cache.NewLocalLocker(), log),
		JWTSecret:        testJWTSecret,
		ServiceName:      "pedidos-test",
		Log:              log,
	}
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, deps)

	e := &testEnv{app: app, store: store, tokens: map[string]string{}, ids: map[string]int64{}, roles: map[string]string{}}
	e.tokens["root"] = e.token(t, entity.RootUserID, "root", entity.RoleSupervisor)
	e.ids["root"] = entity.RootUserID
	e.roles["root"] = entity.RoleSupervisor
	for _, u := range []struct{ name, rol string }{
		{"adm", entity.RoleAdmin},
		{"val", entity.RoleValidador},
		{"ana", entity.RoleUser},
		{"beto", entity.RoleUser},
	} {
		nu, err := auth.NewUsuario(u.name, "secreto", u.name, u.rol, "", time.Now())
		require.NoError(t, err)
		require.NoError(t, store.Usuarios().Create(ctx, nu))
		e.ids[u.name] = nu.ID
		e.roles[u.name] = u.rol
		e.tokens[u.name] = e.token(t, nu.ID, u.name, u.rol)
	}

	admin := e.actor("adm")
	cli, err := catUC.CreateCliente(ctx, admin, dto.CatalogoRequest{Nombre: "ACME"})
	require.NoError(t, err)
	obra, err := catUC.CreateObra(ctx, admin, dto.CatalogoRequest{Nombre: "Torre"})
	require.NoError(t, err)
	e.cliente, e.obra = cli.ID, obra.ID
	return e
}

func (e *testEnv) token(t *testing.T, id int64, username, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, id, username, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (e *testEnv) do(t *testing.T, method, path, who string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if who != "" {
		req.Header.Set("Authorization", e.tokens[who])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (e *testEnv) crearPedido(t *testing.T, who string) dto.PedidoResponse {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/pedidos", who, map[string]any{
		"cliente_id": e.cliente,
		"obra_id":    e.obra,
		"items":      []map[string]any{{"nombre": "Cemento", "unidad": "saco", "cantidad": "5"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.PedidoResponse](t, resp)
}

func (e *testEnv) actor(name string) access.Actor {
	return access.Actor{ID: e.ids[name], Role: e.roles[name]}
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_LoginRegistroYMe(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Username: "root", Password: "root-secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[dto.LoginResponse](t, resp)
	assert.True(t, login.Success)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, entity.RoleSupervisor, login.User.Rol)

	resp = e.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Username: "root", Password: "mala"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = e.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Username: "nadie", Password: "mala"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "usuario inexistente responde igual que password incorrecta")

	nuevo := dto.RegisterRequest{Username: "nuevo", Password: "secreto", Nombre: "Nuevo"}
	resp = e.do(t, http.MethodPost, "/auth/register", "", nuevo)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Positive(t, decode[dto.IDResponse](t, resp).ID)

	resp = e.do(t, http.MethodPost, "/auth/register", "", nuevo)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/auth/register", "", dto.RegisterRequest{Username: "jefe", Password: "secreto", Nombre: "Jefe", Rol: entity.RoleAdmin})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "sin token no se registran roles privilegiados")

	resp = e.do(t, http.MethodPost, "/auth/register", "adm", dto.RegisterRequest{Username: "jefe", Password: "secreto", Nombre: "Jefe", Rol: entity.RoleAdmin})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/auth/me", "ana", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ana", decode[dto.UsuarioResponse](t, resp).Username)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pedidos
// ──────────────────────────────────────────────────────────────────────────────

func TestPedidos_FlujoDeValidacion(t *testing.T) {
	e := newTestEnv(t)
	p := e.crearPedido(t, "ana")
	assert.Equal(t, "ACME-Torre-1", p.CentroCosto)
	assert.Equal(t, entity.EstadoRegistrado, p.Estado)
	assert.True(t, p.Incompleto, "sin imágenes queda incompleto")

	path := fmt.Sprintf("/pedidos/%d", p.ID)

	resp := e.do(t, http.MethodGet, path, "beto", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "otro usuario no ve pedidos ajenos")
	resp = e.do(t, http.MethodGet, path, "val", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "el validador lee pedidos ajenos")

	resp = e.do(t, http.MethodPut, path+"/estado", "ana", dto.EstadoRequest{Estado: entity.EstadoEnProceso})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = e.do(t, http.MethodPut, path+"/estado", "adm", dto.EstadoRequest{Estado: entity.EstadoRevisado})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.EstadoPendienteValidacion, decode[dto.PedidoResponse](t, resp).Estado)

	resp = e.do(t, http.MethodPut, path+"/estado", "adm", dto.EstadoRequest{Estado: entity.EstadoCompletado})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "pendiente de validación solo cambia por validar/rechazar")

	resp = e.do(t, http.MethodGet, "/pedidos/pendientes", "val", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.PedidoResponse](t, resp), 1)

	resp = e.do(t, http.MethodPut, path+"/validar", "val", dto.ValidarRequest{Accion: dto.AccionRechazar, Motivo: "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodPut, path+"/validar", "val", dto.ValidarRequest{Accion: dto.AccionRechazar, Motivo: "faltan cantidades", NuevoEstado: entity.EstadoRevisado})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rech := decode[dto.PedidoResponse](t, resp)
	assert.Equal(t, entity.EstadoRevisado, rech.Estado)
	assert.Equal(t, "faltan cantidades", rech.MotivoRechazo)

	resp = e.do(t, http.MethodGet, "/notificaciones", "ana", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notifs := decode[[]dto.NotificacionResponse](t, resp)
	tipos := make([]string, 0, len(notifs))
	for _, n := range notifs {
		tipos = append(tipos, n.Tipo)
	}
	assert.Contains(t, tipos, entity.NotifWarning, "el rechazo avisa al solicitante")

	resp = e.do(t, http.MethodPut, path, "adm", map[string]any{"estado": entity.EstadoRevisado, "descripcion": "corregido"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	upd := decode[dto.PedidoResponse](t, resp)
	assert.Equal(t, entity.EstadoPendienteValidacion, upd.Estado)
	assert.Equal(t, "corregido", upd.Descripcion)

	resp = e.do(t, http.MethodPut, path+"/validar", "val", dto.ValidarRequest{Accion: dto.AccionValidar})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	val := decode[dto.PedidoResponse](t, resp)
	assert.True(t, val.Validado)
	assert.Equal(t, entity.EstadoValidado, val.Estado)
}

func TestPedidos_UpdateConEstadoRequierePermiso(t *testing.T) {
	e := newTestEnv(t)
	p := e.crearPedido(t, "ana")
	path := fmt.Sprintf("/pedidos/%d", p.ID)

	resp := e.do(t, http.MethodPut, path, "ana", map[string]any{"estado": entity.EstadoCompletado, "descripcion": "x"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = e.do(t, http.MethodGet, path, "ana", nil)
	assert.Empty(t, decode[dto.PedidoResponse](t, resp).Descripcion, "el rechazo no deja cambios parciales")

	resp = e.do(t, http.MethodPut, path, "ana", map[string]any{"descripcion": "nueva", "centro_costo": "HACK"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.PedidoResponse](t, resp)
	assert.Equal(t, "nueva", got.Descripcion)
	assert.Equal(t, "ACME-Torre-1", got.CentroCosto, "campos fuera de la lista permitida se ignoran")

	resp = e.do(t, http.MethodPut, path, "ana", map[string]any{"centro_costo": "HACK"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPedidos_CancelarYComentar(t *testing.T) {
	e := newTestEnv(t)
	p := e.crearPedido(t, "ana")
	path := fmt.Sprintf("/pedidos/%d", p.ID)

	resp := e.do(t, http.MethodPost, path+"/comentarios", "val", dto.ComentarioRequest{Comentario: "revisar medidas"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = e.do(t, http.MethodPost, path+"/comentarios", "beto", dto.ComentarioRequest{Comentario: "hola"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = e.do(t, http.MethodGet, path+"/comentarios", "ana", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.ComentarioResponse](t, resp), 1)

	resp = e.do(t, http.MethodPut, path+"/cancelar", "beto", dto.CancelarRequest{Motivo: "no"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = e.do(t, http.MethodPut, path+"/cancelar", "ana", dto.CancelarRequest{Motivo: "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodPut, path+"/cancelar", "ana", dto.CancelarRequest{Motivo: "ya no se necesita"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c := decode[dto.PedidoResponse](t, resp)
	assert.True(t, c.Cancelado)
	require.NotNil(t, c.FechaEliminacionProgramada)
	require.NotNil(t, c.FechaCancelacion)
	assert.Equal(t, 24*time.Hour, c.FechaEliminacionProgramada.Sub(*c.FechaCancelacion))

	resp = e.do(t, http.MethodPut, path+"/cancelar", "ana", dto.CancelarRequest{Motivo: "otra vez"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/pedidos", "ana", nil)
	assert.Empty(t, decode[[]dto.PedidoResponse](t, resp))
	resp = e.do(t, http.MethodGet, "/pedidos/cancelados/lista", "ana", nil)
	assert.Len(t, decode[[]dto.PedidoResponse](t, resp), 1)

	resp = e.do(t, http.MethodPost, "/pedidos/limpieza", "ana", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = e.do(t, http.MethodPost, "/pedidos/limpieza", "adm", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[dto.LimpiezaResponse](t, resp)
	assert.True(t, res.Ejecutada)
	assert.Empty(t, res.Eliminados, "faltan 24 h para el borrado")
}

func TestPedidos_MultipartConImagen(t *testing.T) {
	e := newTestEnv(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("cliente_id", fmt.Sprint(e.cliente)))
	require.NoError(t, w.WriteField("obra_id", fmt.Sprint(e.obra)))
	require.NoError(t, w.WriteField("urgente", "true"))
	require.NoError(t, w.WriteField("items", `[{"nombre":"Varilla","unidad":"u","cantidad":"12"}]`))
	fw, err := w.CreateFormFile("imagenes", "foto.png")
	require.NoError(t, err)
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		img.Set(x, x%30, color.RGBA{R: 200, A: 255})
	}
	require.NoError(t, png.Encode(fw, img))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/pedidos", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set("Authorization", e.tokens["ana"])
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	p := decode[dto.PedidoResponse](t, resp)
	assert.True(t, p.Urgente)
	assert.False(t, p.Incompleto)
	require.Len(t, p.Imagenes, 1)
	assert.Contains(t, p.Imagenes[0], fmt.Sprintf("/uploads/pedidos/%d/imagen-1-", p.ID))
	require.Len(t, p.Items, 1)
	assert.Equal(t, "Varilla", p.Items[0].Nombre)
}

func TestPedidos_PDF(t *testing.T) {
	e := newTestEnv(t)
	p := e.crearPedido(t, "ana")

	resp := e.do(t, http.MethodGet, fmt.Sprintf("/pedidos/%d/pdf", p.ID), "ana", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))

	resp = e.do(t, http.MethodGet, "/pedidos/999/pdf", "adm", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = e.do(t, http.MethodGet, "/pedidos/abc", "adm", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Compras
// ──────────────────────────────────────────────────────────────────────────────

func TestCompras_EstadoForzadoSoloAdmin(t *testing.T) {
	e := newTestEnv(t)
	resp := e.do(t, http.MethodPost, "/compras", "ana", map[string]any{"proveedor": "Ferretería", "monto": "120.50"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	c := decode[dto.CompraResponse](t, resp)
	assert.Equal(t, entity.CompraPendiente, c.Estado)
	path := fmt.Sprintf("/compras/%d", c.ID)

	resp = e.do(t, http.MethodPut, path, "ana", map[string]any{"estado": entity.CompraSubido, "proveedor": "Otra"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.CompraResponse](t, resp)
	assert.Equal(t, entity.CompraPendiente, got.Estado, "la clave estado de un usuario se ignora")
	assert.Equal(t, "Otra", got.Proveedor)

	resp = e.do(t, http.MethodPut, path, "adm", map[string]any{"estado": entity.CompraSubido})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.CompraSubido, decode[dto.CompraResponse](t, resp).Estado)

	resp = e.do(t, http.MethodGet, path, "beto", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = e.do(t, http.MethodDelete, path, "ana", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = e.do(t, http.MethodDelete, path, "adm", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios, catálogos, notificaciones, health
// ──────────────────────────────────────────────────────────────────────────────

func TestUsuarios_BorradoProtegido(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodGet, "/usuarios", "ana", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/usuarios/estadisticas", "adm", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[dto.EstadisticasUsuariosResponse](t, resp)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.PorRol[entity.RoleUser])

	resp = e.do(t, http.MethodDelete, "/usuarios/1", "root", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	e.crearPedido(t, "ana")
	resp = e.do(t, http.MethodDelete, fmt.Sprintf("/usuarios/%d", e.ids["ana"]), "adm", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "USER_HAS_RECORDS", body.Code)
	assert.Contains(t, body.Message, "1 pedido(s)")

	resp = e.do(t, http.MethodDelete, fmt.Sprintf("/usuarios/%d", e.ids["beto"]), "adm", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCatalogos_AltaSoloAdmin(t *testing.T) {
	e := newTestEnv(t)
	resp := e.do(t, http.MethodPost, "/clientes", "ana", dto.CatalogoRequest{Nombre: "Otro"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/obras", "adm", dto.CatalogoRequest{Nombre: "torre"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "nombres únicos sin distinguir mayúsculas")

	resp = e.do(t, http.MethodGet, "/clientes", "ana", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.CatalogoResponse](t, resp), 1)
}

func TestNotificaciones_LeerTodasPorUsuario(t *testing.T) {
	e := newTestEnv(t)
	resp := e.do(t, http.MethodPost, "/notificaciones", "ana", dto.CreateNotificacionRequest{Titulo: "recordatorio"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = e.do(t, http.MethodPost, "/notificaciones", "ana", dto.CreateNotificacionRequest{UsuarioID: e.ids["beto"], Titulo: "hola"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "un user no notifica a otros")
	resp = e.do(t, http.MethodPost, "/notificaciones", "val", dto.CreateNotificacionRequest{UsuarioID: e.ids["beto"], Titulo: "hola"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = e.do(t, http.MethodPut, "/notificaciones/leer-todas", "ana", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[dto.MarcadasResponse](t, resp).Actualizadas)

	resp = e.do(t, http.MethodGet, "/notificaciones/no-leidas", "ana", nil)
	assert.Equal(t, 0, decode[dto.NoLeidasResponse](t, resp).NoLeidas)
	resp = e.do(t, http.MethodGet, "/notificaciones/no-leidas", "beto", nil)
	assert.Equal(t, 1, decode[dto.NoLeidasResponse](t, resp).NoLeidas)
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	resp := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(apphttp.HeaderRequestID))
}
