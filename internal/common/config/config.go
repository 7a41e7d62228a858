package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	DriverRedis  = "redis"
	DriverBadger = "badger"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port      int    `env:"PORT" envDefault:"5000"`
		Origin    string `env:"ORIGIN" envDefault:"*"`
		APIPrefix string `env:"API_PREFIX" envDefault:"/api"`
	}

	Store struct {
		Driver string `env:"STORE_DRIVER" envDefault:"redis"`

		// Подключение при старте: фиксированное число попыток с фиксированной паузой
		ConnectAttempts int           `env:"STORE_CONNECT_ATTEMPTS" envDefault:"5"`
		ConnectDelay    time.Duration `env:"STORE_CONNECT_DELAY" envDefault:"5s"`

		// Повторы оптимистичной записи документа пользователя
		UpdateRetries int `env:"STORE_UPDATE_RETRIES" envDefault:"10"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Badger struct {
		Path     string `env:"BADGER_PATH" envDefault:"data/badger"`
		InMemory bool   `env:"BADGER_IN_MEMORY" envDefault:"false"`
	}

	Telegram struct {
		BotToken    string        `env:"BOT_TOKEN"`
		InitDataTTL time.Duration `env:"INIT_DATA_TTL" envDefault:"24h"`
		// Только для локальной разработки: доверять заголовку X-Telegram-User-Id
		AllowDevIdentity bool `env:"TELEGRAM_ALLOW_DEV_IDENTITY" envDefault:"false"`
	}

	Uploads struct {
		Dir       string `env:"UPLOADS_DIR" envDefault:"uploads"`
		URLPrefix string `env:"UPLOADS_URL_PREFIX" envDefault:"/uploads"`
		MaxBytes  int64  `env:"UPLOADS_MAX_BYTES" envDefault:"5242880"`
	}

	Catalog struct {
		BaseURL           string        `env:"CATALOG_BASE_URL" envDefault:"https://api.jikan.moe/v4"`
		Timeout           time.Duration `env:"CATALOG_TIMEOUT" envDefault:"10s"`
		RequestsPerSecond float64       `env:"CATALOG_RPS" envDefault:"3"`
		CacheTTL          time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"1h"`
		SearchLimit       int           `env:"CATALOG_SEARCH_LIMIT" envDefault:"5"`
	}

	Recommendations struct {
		PageSize      int    `env:"RECOMMENDATIONS_PAGE_SIZE" envDefault:"10"`
		StreamKey     string `env:"RECOMMENDATIONS_STREAM" envDefault:"recommendations:events"`
		NotifyEnabled bool   `env:"RECOMMENDATIONS_NOTIFY" envDefault:"true"`
	}
}

// Load reads .env (if present) and the process environment into Config.
func Load() (*Config, error) {
	// .env может отсутствовать: в production переменные задаются напрямую
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverRedis, DriverBadger:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: expected %q or %q", c.Store.Driver, DriverRedis, DriverBadger)
	}

	if c.Store.ConnectAttempts < 1 {
		return fmt.Errorf("STORE_CONNECT_ATTEMPTS must be positive")
	}
	if c.Store.UpdateRetries < 1 {
		return fmt.Errorf("STORE_UPDATE_RETRIES must be positive")
	}
	if c.Recommendations.PageSize < 1 {
		return fmt.Errorf("RECOMMENDATIONS_PAGE_SIZE must be positive")
	}
	if c.Catalog.SearchLimit < 1 {
		return fmt.Errorf("CATALOG_SEARCH_LIMIT must be positive")
	}

	return nil
}

// RedisAddr returns host:port of the configured Redis instance.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
