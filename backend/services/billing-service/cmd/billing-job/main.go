package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"smartmeter/backend/libs/logging"
	"smartmeter/backend/services/billing-service/internal/config"
	"smartmeter/backend/services/billing-service/internal/db"
	"smartmeter/backend/services/billing-service/internal/repository"
	"smartmeter/backend/services/billing-service/internal/service"
)

// billing-job runs one monthly invoicing sweep and exits. It is intended to
// be triggered by cron shortly after the month boundary.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer sqlDB.Close()

	readingRepo := repository.NewReadingRepository(sqlDB)
	tariffRepo := repository.NewTariffRepository(sqlDB)
	invoiceRepo := repository.NewInvoiceRepository(sqlDB)
	deviceRepo := repository.NewDeviceRepository(sqlDB)

	tariffService := service.NewTariffService(tariffRepo)
	billingService := service.NewBillingService(readingRepo, tariffService, invoiceRepo, logger)
	job := service.NewBillingJob(deviceRepo, billingService, logger)

	summary, err := job.Run(ctx)
	if err != nil {
		logger.Fatal("billing job failed", zap.Error(err))
	}
	if summary.Errors > 0 {
		os.Exit(1)
	}
}
