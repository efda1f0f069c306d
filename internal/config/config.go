package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN         string        `env:"DATABASE_DSN,required=true"`
	RabbitMQURL         string        `env:"RABBITMQ_URL,required=true"`
	RedisURL            string        `env:"REDIS_URL,required=true"`
	PushGatewayURL      string        `env:"PUSH_GATEWAY_URL,default=https://exp.host/--/api/v2/push/send"`
	ScanInterval        time.Duration `env:"SCAN_INTERVAL,default=1m"`
	SnoozeDelay         time.Duration `env:"SNOOZE_DELAY,default=15m"`
	PushRatePerSec      int           `env:"PUSH_RATE_PER_SEC,default=50"`
	NotifierConcurrency int           `env:"NOTIFIER_CONCURRENCY,default=4"`
	APIPort             int           `env:"API_PORT,default=8080"`
	LogLevel            string        `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
