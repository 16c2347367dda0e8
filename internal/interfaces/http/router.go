package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jportela/almoxarifado-api/internal/application/report"
	"github.com/jportela/almoxarifado-api/internal/application/stock"
	"github.com/jportela/almoxarifado-api/internal/application/usecase"
	"github.com/jportela/almoxarifado-api/internal/infrastructure/notify"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	StockUC        *stock.UseCase
	ComponentUC    *usecase.ComponentUseCase
	NotificationUC *usecase.NotificationUseCase
	ReportUC       *report.StockReportUseCase
	Hub            *notify.Hub
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Componentes
	components := api.Group("/components")
	componentHandler := NewComponentHandler(deps.ComponentUC)
	components.Post("/", componentHandler.Create)
	components.Get("/", componentHandler.List)
	components.Get("/:id", componentHandler.GetByID)
	components.Put("/:id", componentHandler.Update)

	// Movimentos e saldos
	stockGroup := api.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC)
	stockGroup.Post("/movements", stockHandler.RecordMovement)
	stockGroup.Get("/movements", stockHandler.ListMovements)
	stockGroup.Delete("/movements/:id", stockHandler.DeleteMovement)
	stockGroup.Get("/balances", stockHandler.GetBalance)
	stockGroup.Put("/balances", stockHandler.EditBalance)
	stockGroup.Delete("/balances", stockHandler.ClearBalance)
	stockGroup.Get("/balances/component/:id", stockHandler.ListBalances)
	stockGroup.Get("/components/:id", stockHandler.GetComponentAggregate)

	// Notificações
	notifications := api.Group("/notifications")
	notificationHandler := NewNotificationHandler(deps.NotificationUC, deps.Hub)
	notifications.Get("/", notificationHandler.List)
	notifications.Get("/stream", notificationHandler.Stream)
	notifications.Patch("/:id/viewed", notificationHandler.MarkViewed)

	// Relatórios
	reports := api.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/stock.xlsx", reportHandler.StockXLSX)
	reports.Get("/stock.pdf", reportHandler.StockPDF)
}
