package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/GiancarloGO/master-color-api/internal/application/auth"
	"github.com/GiancarloGO/master-color-api/internal/application/catalog"
	"github.com/GiancarloGO/master-color-api/internal/application/inventory"
	"github.com/GiancarloGO/master-color-api/internal/application/orders"
	"github.com/GiancarloGO/master-color-api/internal/application/payment"
	"github.com/GiancarloGO/master-color-api/internal/infrastructure/kv"
	"github.com/GiancarloGO/master-color-api/internal/infrastructure/mail"
	"github.com/GiancarloGO/master-color-api/internal/infrastructure/mercadopago"
	"github.com/GiancarloGO/master-color-api/internal/infrastructure/postgres"
	httpRouter "github.com/GiancarloGO/master-color-api/internal/interfaces/http"
	"github.com/GiancarloGO/master-color-api/pkg/config"
	"github.com/GiancarloGO/master-color-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Almacén clave-valor: Redis si está habilitado, memoria como respaldo.
	var store kv.Store
	if cfg.Redis.Enabled {
		redisStore, err := kv.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		store = redisStore
	} else {
		log.Warn().Msg("Redis deshabilitado: dedup y backoff en memoria (una sola instancia)")
		store = kv.NewMemoryStore()
	}
	defer store.Close()

	userRepo := postgres.NewUserRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Notificaciones por correo: sin SMTP configurado los cambios de estado
	// solo se loguean.
	var notifier orders.Notifier
	if cfg.SMTP.Host != "" {
		notifier = mail.NewNotifier(cfg.SMTP, log)
	} else {
		log.Warn().Msg("SMTP sin configurar: notificaciones de pedido deshabilitadas")
		notifier = orders.NopNotifier{}
	}

	gateway := mercadopago.NewClient(cfg.MercadoPago, log)

	authUC := auth.NewAuthUseCase(userRepo, clientRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	catalogUC := catalog.NewCatalogUseCase(productRepo, stockRepo)
	movementUC := inventory.NewMovementUseCase(txRunner, movementRepo, log)
	orderUC := orders.NewOrderUseCase(txRunner, orderRepo, clientRepo, notifier, log)
	paymentUC := payment.NewUseCase(txRunner, paymentRepo, orderRepo, clientRepo, gateway, store, notifier,
		payment.Config{
			DedupTTL:        time.Duration(cfg.Webhook.DedupTTLHours) * time.Hour,
			Currency:        cfg.MercadoPago.Currency,
			StatementName:   cfg.MercadoPago.StatementName,
			NotificationURL: cfg.App.BackendURL + "/api/webhooks/mercadopago",
		}, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		CatalogUC:  catalogUC,
		MovementUC: movementUC,
		OrderUC:    orderUC,
		PaymentUC:  paymentUC,
		Store:      store,
		Config:     cfg,
		Log:        log,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
