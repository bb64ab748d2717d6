package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/pedidos-api/docs"
	"github.com/jhoicas/pedidos-api/internal/application/auth"
	"github.com/jhoicas/pedidos-api/internal/application/catalogos"
	"github.com/jhoicas/pedidos-api/internal/application/compras"
	"github.com/jhoicas/pedidos-api/internal/application/limpieza"
	"github.com/jhoicas/pedidos-api/internal/application/notificaciones"
	"github.com/jhoicas/pedidos-api/internal/application/pedidos"
	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/application/usuarios"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/cache"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/pedidos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/storage"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/webhook"
	httpRouter "github.com/jhoicas/pedidos-api/internal/interfaces/http"
	"github.com/jhoicas/pedidos-api/pkg/config"
	"github.com/jhoicas/pedidos-api/pkg/logger"
	"github.com/jhoicas/pedidos-api/pkg/telemetry"
)

// backend repositorios y ejecutor de transacciones de la fuente elegida.
type backend struct {
	tx             ports.TxRunner
	usuarios       repository.UsuarioRepository
	pedidos        repository.PedidoRepository
	compras        repository.CompraRepository
	notificaciones repository.NotificacionRepository
	catalogo       repository.CatalogoRepository
	ping           func(context.Context) error
	close          func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.DB.InMemory() {
		log.Warn().Msg("DATABASE_URL=memory: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &backend{
			tx:             s,
			usuarios:       s.Usuarios(),
			pedidos:        s.Pedidos(),
			compras:        s.Compras(),
			notificaciones: s.Notificaciones(),
			catalogo:       s.Catalogo(),
			ping:           func(context.Context) error { return nil },
			close:          func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
		pool.Close()
		return nil, err
	}
	return &backend{
		tx:             postgres.NewTxRunner(pool),
		usuarios:       postgres.NewUsuarioRepository(pool),
		pedidos:        postgres.NewPedidoRepository(pool),
		compras:        postgres.NewCompraRepository(pool),
		notificaciones: postgres.NewNotificacionRepository(pool),
		catalogo:       postgres.NewCatalogoRepository(pool),
		ping:           pool.Ping,
		close:          pool.Close,
	}, nil
}

// @title                       Pedidos API
// @version                     1.0
// @description                 API de pedidos y compras con flujo de validación por roles.
// @host                        localhost:8080
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Token JWT con prefijo Bearer
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar telemetría")
	}

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a la base de datos")
	}
	defer be.close()

	// Redis es opcional: sin REDIS_ADDR la caché y el lock de limpieza son locales al proceso.
	var (
		cacheSvc ports.Cache  = cache.NewLocalCache()
		locker   ports.Locker = cache.NewLocalLocker()
	)
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		cacheSvc = cache.NewRedisCache(rdb, cfg.App.Name+":cache:")
		locker = cache.NewRedisLocker(rdb, cfg.App.Name+":lock:")
	}

	images, err := storage.NewLocalImageStore(storage.Options{
		Dir:         cfg.Storage.Dir,
		MaxBytes:    cfg.Storage.MaxImageBytes(),
		MaxPixels:   cfg.Storage.MaxPixels,
		MaxSide:     cfg.Storage.MaxSide,
		JPEGQuality: cfg.Storage.JPEGQuality,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("directorio de subidas")
	}

	var hook ports.WebhookSender
	if cfg.Webhook.URL != "" {
		hook = webhook.New(cfg.Webhook.URL, cfg.Webhook.Token, cfg.Webhook.Timeout)
	}

	notifUC := notificaciones.NewUseCase(be.notificaciones, be.usuarios, hook, log.Component("notificaciones"))
	authUC := auth.NewUseCase(be.usuarios, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))
	pedidosUC := pedidos.NewUseCase(pedidos.Deps{
		Tx:       be.tx,
		Pedidos:  be.pedidos,
		Usuarios: be.usuarios,
		Catalogo: be.catalogo,
		Images:   images,
		Notifier: notifUC,
		PDF:      infrapdf.NewMarotoPDFGenerator(cfg.App.Name),
		Log:      log.Component("pedidos"),
	})
	comprasUC := compras.NewUseCase(be.tx, be.compras, images, notifUC, log.Component("compras"))
	usuariosUC := usuarios.NewUseCase(be.tx, be.usuarios, cacheSvc, log.Component("usuarios"))
	catalogosUC := catalogos.NewUseCase(be.catalogo)
	limpiezaUC := limpieza.NewUseCase(be.tx, be.pedidos, images, locker, log.Component("limpieza"))

	if err := authUC.EnsureRoot(ctx, auth.RootConfig{
		Username: cfg.Root.Username,
		Password: cfg.Root.Password,
		Nombre:   cfg.Root.Nombre,
	}); err != nil {
		log.Fatal().Err(err).Msg("crear supervisor raíz")
	}

	go limpiezaUC.Start(ctx, cfg.Sweep.Interval)

	httpLog := log.Component("http")
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    int(cfg.Storage.MaxImageBytes())*pedidos.MaxImagenes + 1<<20,
		ErrorHandler: httpRouter.ErrorHandler(httpLog),
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + httpRouter.HeaderRequestID,
	}))
	app.Use(httpRouter.RequestLogger(httpLog))
	app.Use(httpRouter.Tracing(cfg.Telemetry.ServiceName))

	app.Static(storage.WebPrefix, images.Root())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Pedidos API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		PedidosUC:        pedidosUC,
		ComprasUC:        comprasUC,
		NotificacionesUC: notifUC,
		UsuariosUC:       usuariosUC,
		CatalogosUC:      catalogosUC,
		LimpiezaUC:       limpiezaUC,
		JWTSecret:        cfg.JWT.Secret,
		ServiceName:      cfg.App.Name,
		Ping:             be.ping,
		Log:              httpLog,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de telemetría")
	}

	log.Info().Msg("aplicación detenida")
}
