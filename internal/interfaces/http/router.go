package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pedidos-api/internal/application/auth"
	"github.com/jhoicas/pedidos-api/internal/application/catalogos"
	"github.com/jhoicas/pedidos-api/internal/application/compras"
	"github.com/jhoicas/pedidos-api/internal/application/limpieza"
	"github.com/jhoicas/pedidos-api/internal/application/notificaciones"
	"github.com/jhoicas/pedidos-api/internal/application/pedidos"
	"github.com/jhoicas/pedidos-api/internal/application/usuarios"
	"github.com/jhoicas/pedidos-api/internal/domain/access"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC           *auth.UseCase
	PedidosUC        *pedidos.UseCase
	ComprasUC        *compras.UseCase
	NotificacionesUC *notificaciones.UseCase
	UsuariosUC       *usuarios.UseCase
	CatalogosUC      *catalogos.UseCase
	LimpiezaUC       *limpieza.UseCase
	JWTSecret        string
	ServiceName      string
	// Ping comprobación de la base para /health; nil = siempre sano.
	Ping func(ctx context.Context) error
	Log  zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps))

	// Auth (register acepta token opcional para roles privilegiados)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Log)
	authGroup := app.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register", OptionalAuth(deps.JWTSecret), authHandler.Register)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Rutas protegidas (requieren Bearer Token)
	authMW := AuthMiddleware(deps.JWTSecret)

	ped := app.Group("/pedidos", authMW)
	pedidoHandler := NewPedidoHandler(deps.PedidosUC, deps.LimpiezaUC, deps.Log)
	ped.Get("/", pedidoHandler.List)
	ped.Post("/", pedidoHandler.Create)
	ped.Get("/cancelados/lista", pedidoHandler.ListCancelados)
	ped.Get("/pendientes", RequireCapability(access.PedidoVerPendientes), pedidoHandler.ListPendientes)
	ped.Post("/limpieza", RequireCapability(access.LimpiezaEjecutar), pedidoHandler.Limpieza)
	ped.Get("/:id", pedidoHandler.GetByID)
	ped.Put("/:id", pedidoHandler.Update)
	ped.Delete("/:id", RequireCapability(access.PedidoEliminar), pedidoHandler.Delete)
	ped.Put("/:id/estado", RequireCapability(access.PedidoCambiarEstado), pedidoHandler.SetEstado)
	ped.Put("/:id/cancelar", pedidoHandler.Cancelar)
	ped.Put("/:id/validar", RequireCapability(access.PedidoValidar), pedidoHandler.Validar)
	ped.Post("/:id/comentarios", pedidoHandler.Comentar)
	ped.Get("/:id/comentarios", pedidoHandler.ListComentarios)
	ped.Post("/:id/imagenes", pedidoHandler.AgregarImagenes)
	ped.Get("/:id/pdf", pedidoHandler.PDF)

	com := app.Group("/compras", authMW)
	compraHandler := NewCompraHandler(deps.ComprasUC, deps.Log)
	com.Get("/", compraHandler.List)
	com.Post("/", compraHandler.Create)
	com.Get("/cancelados/lista", compraHandler.ListCanceladas)
	com.Get("/:id", compraHandler.GetByID)
	com.Put("/:id", compraHandler.Update)
	com.Put("/:id/ticket", compraHandler.AdjuntarTicket)
	com.Put("/:id/cancelar", compraHandler.Cancelar)
	com.Delete("/:id", RequireCapability(access.CompraEliminar), compraHandler.Delete)

	notif := app.Group("/notificaciones", authMW)
	notifHandler := NewNotificacionHandler(deps.NotificacionesUC, deps.Log)
	notif.Get("/", notifHandler.List)
	notif.Get("/no-leidas", notifHandler.NoLeidas)
	notif.Post("/", notifHandler.Create)
	notif.Put("/leer-todas", notifHandler.LeerTodas)
	notif.Put("/:id/leer", notifHandler.Leer)
	notif.Delete("/:id", notifHandler.Delete)

	usr := app.Group("/usuarios", authMW, RequireCapability(access.UsuarioGestionar))
	usuarioHandler := NewUsuarioHandler(deps.UsuariosUC, deps.Log)
	usr.Get("/estadisticas", usuarioHandler.Estadisticas)
	usr.Get("/", usuarioHandler.List)
	usr.Post("/", usuarioHandler.Create)
	usr.Get("/:id", usuarioHandler.GetByID)
	usr.Put("/:id", usuarioHandler.Update)
	usr.Delete("/:id", usuarioHandler.Delete)

	catalogoHandler := NewCatalogoHandler(deps.CatalogosUC, deps.Log)
	cli := app.Group("/clientes", authMW)
	cli.Get("/", catalogoHandler.ListClientes)
	cli.Post("/", RequireCapability(access.CatalogoGestionar), catalogoHandler.CreateCliente)
	obr := app.Group("/obras", authMW)
	obr.Get("/", catalogoHandler.ListObras)
	obr.Post("/", RequireCapability(access.CatalogoGestionar), catalogoHandler.CreateObra)
}

// healthHandler godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func healthHandler(deps RouterDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				deps.Log.Warn().Err(err).Msg("health: base de datos no disponible")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": deps.ServiceName})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	}
}
