package app

import (
	"context"
	"database/sql"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libredis "smartmeter/backend/libs/redis"
	"smartmeter/backend/services/telemetry-service/internal/config"
	"smartmeter/backend/services/telemetry-service/internal/db"
	httpserver "smartmeter/backend/services/telemetry-service/internal/http"
	"smartmeter/backend/services/telemetry-service/internal/http/handlers"
	"smartmeter/backend/services/telemetry-service/internal/mqtt"
	redisstore "smartmeter/backend/services/telemetry-service/internal/redis"
	"smartmeter/backend/services/telemetry-service/internal/repository"
	"smartmeter/backend/services/telemetry-service/internal/service"
)

// App wires telemetry service dependencies.
type App struct {
	server *httpserver.Server
	broker *mqtt.Client
	ingest *service.IngestService
	db     *sql.DB
	redis  *goredis.Client
	logger *zap.Logger
}

// New constructs application components.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	readingRepo := repository.NewReadingRepository(sqlDB)
	deviceRepo := repository.NewDeviceRepository(sqlDB)

	var redisClient *goredis.Client
	var liveStore *redisstore.LiveStore
	if cfg.Redis.Addr != "" {
		redisClient, err = libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		liveStore = redisstore.NewLiveStore(redisClient, cfg.Redis.LiveTTL)
	}

	broker := mqtt.NewClient(mqtt.Options{
		BrokerURL: cfg.MQTT.BrokerURL,
		ClientID:  cfg.MQTT.ClientID,
		Username:  cfg.MQTT.Username,
		Password:  cfg.MQTT.Password,
		Topic:     cfg.MQTT.Topic,
		QoS:       1,
	}, logger)

	var live service.LiveCache
	if liveStore != nil {
		live = liveStore
	}
	ingestService := service.NewIngestService(readingRepo, deviceRepo, live, logger)

	routes := httpserver.Routes{
		Health:   handlers.NewHealthHandler(broker.Connected),
		Devices:  handlers.NewDevicesHandler(deviceRepo, logger),
		Device:   handlers.NewDeviceHandler(deviceRepo, logger),
		Readings: handlers.NewReadingsHandler(readingRepo, logger),
	}
	if liveStore != nil {
		routes.Live = handlers.NewLiveHandler(liveStore, logger)
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server: server,
		broker: broker,
		ingest: ingestService,
		db:     sqlDB,
		redis:  redisClient,
		logger: logger,
	}, nil
}

// Run connects to the broker, starts the ingest loop and serves HTTP until
// ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.broker.Connect(ctx); err != nil {
		// Retry continues in the background; health reports the flag.
		a.logger.Warn("mqtt broker not yet reachable", zap.Error(err))
	}
	go a.ingest.Run(ctx, a.broker.Messages())
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	a.broker.Close()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
