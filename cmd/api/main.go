package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appreport "github.com/jportela/almoxarifado-api/internal/application/report"
	"github.com/jportela/almoxarifado-api/internal/application/stock"
	"github.com/jportela/almoxarifado-api/internal/application/usecase"
	"github.com/jportela/almoxarifado-api/internal/infrastructure/notify"
	"github.com/jportela/almoxarifado-api/internal/infrastructure/postgres"
	infrareport "github.com/jportela/almoxarifado-api/internal/infrastructure/report"
	httpRouter "github.com/jportela/almoxarifado-api/internal/interfaces/http"
	"github.com/jportela/almoxarifado-api/pkg/config"
	"github.com/jportela/almoxarifado-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	if err := postgres.Migrate(cfg.DB.ConnectionString(), cfg.DB.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("migrações")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	movementRepo := postgres.NewMovementRepository(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	componentRepo := postgres.NewComponentRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	hub := notify.NewHub(cfg.Notify.BufferSize)
	orchestrator := stock.NewOrchestrator(txRunner, hub, log, stock.OrchestratorConfig{
		MaxRetries:      cfg.Stock.MaxRecomputeRetries,
		DispatchTimeout: cfg.Notify.DispatchTimeout,
	})

	stockUC := stock.NewUseCase(orchestrator, movementRepo, balanceRepo, componentRepo, locationRepo)
	componentUC := usecase.NewComponentUseCase(componentRepo, orchestrator)
	notificationUC := usecase.NewNotificationUseCase(notificationRepo)
	reportUC := appreport.NewStockReportUseCase(componentRepo, infrareport.NewExcelExporter(), infrareport.NewPDFExporter())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		StockUC:        stockUC,
		ComponentUC:    componentUC,
		NotificationUC: notificationUC,
		ReportUC:       reportUC,
		Hub:            hub,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("encerramento do servidor")
	}

	log.Info().Msg("aplicação encerrada")
}
