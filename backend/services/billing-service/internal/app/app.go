package app

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"smartmeter/backend/services/billing-service/internal/config"
	"smartmeter/backend/services/billing-service/internal/db"
	httpserver "smartmeter/backend/services/billing-service/internal/http"
	"smartmeter/backend/services/billing-service/internal/http/handlers"
	"smartmeter/backend/services/billing-service/internal/repository"
	"smartmeter/backend/services/billing-service/internal/service"
)

// App wires billing service dependencies.
type App struct {
	server *httpserver.Server
	db     *sql.DB
	logger *zap.Logger
}

// New constructs application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	readingRepo := repository.NewReadingRepository(sqlDB)
	tariffRepo := repository.NewTariffRepository(sqlDB)
	invoiceRepo := repository.NewInvoiceRepository(sqlDB)

	tariffService := service.NewTariffService(tariffRepo)
	billingService := service.NewBillingService(readingRepo, tariffService, invoiceRepo, logger)

	routes := httpserver.Routes{
		Health:        handlers.NewHealthHandler(),
		Bill:          handlers.NewBillHandler(billingService, logger),
		CreateInvoice: handlers.NewCreateInvoiceHandler(billingService, logger),
		Invoices:      handlers.NewInvoicesHandler(billingService, logger),
		GetTariff:     handlers.NewGetTariffHandler(tariffService, logger),
		UpdateTariff:  handlers.NewUpdateTariffHandler(tariffService, logger),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server: server,
		db:     sqlDB,
		logger: logger,
	}, nil
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
