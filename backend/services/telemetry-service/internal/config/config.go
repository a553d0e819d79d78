package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "smartmeter/backend/libs/config"
)

// Config defines telemetry service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"TELEMETRY_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"TELEMETRY_POSTGRES_DSN"`
	} `yaml:"database"`
	MQTT struct {
		BrokerURL string `yaml:"broker_url" env:"MQTT_BROKER_URL"`
		ClientID  string `yaml:"client_id" env:"MQTT_CLIENT_ID"`
		Username  string `yaml:"username" env:"MQTT_USERNAME"`
		Password  string `yaml:"password" env:"MQTT_PASSWORD"`
		Topic     string `yaml:"topic" env:"MQTT_TOPIC_SUBSCRIBE"`
	} `yaml:"mqtt"`
	Redis struct {
		Addr     string        `yaml:"addr" env:"TELEMETRY_REDIS_ADDR"`
		Password string        `yaml:"password" env:"TELEMETRY_REDIS_PASSWORD"`
		DB       int           `yaml:"db" env:"TELEMETRY_REDIS_DB"`
		LiveTTL  time.Duration `yaml:"live_ttl" env:"TELEMETRY_LIVE_TTL"`
	} `yaml:"redis"`
}

// Load configuration from file/env. Redis is optional: with no addr the live
// cache and the live endpoint are disabled.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8081"
	cfg.MQTT.BrokerURL = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "telemetry-service"
	cfg.MQTT.Topic = "smartmeter/+/telemetry"
	cfg.Redis.LiveTTL = 2 * time.Minute

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.MQTT.Topic) == "" {
		return nil, errors.New("config: mqtt topic required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8081"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
