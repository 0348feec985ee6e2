// config реализует конфигурацию сервиса комментариев: загрузка из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Драйверы хранилища.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Драйверы кэша веток.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
//
// ENV всегда накладывается поверх значений из файла.
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	DB       DBConfig      `yaml:"db"`
	Cache    CacheConfig   `yaml:"cache"`
	Events   EventsConfig  `yaml:"events"`
	Auth     AuthConfig    `yaml:"auth"`
	Content  ContentConfig `yaml:"content"`
	Limits   LimitsConfig  `yaml:"limits"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// HTTPConfig — REST API, health и metrics.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8000"`
	// BasePath, например "/api"; пустой — роуты на корне.
	BasePath string `yaml:"base_path" env:"HTTP_BASE_PATH"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// DBConfig — выбор и подключение хранилища.
type DBConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	URL    string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
}

// CacheConfig — кэш собранных веток (лес комментариев на элемент контента).
type CacheConfig struct {
	Driver   string        `yaml:"driver" env:"CACHE_DRIVER" env-default:"memory"`
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
	Prefix   string        `yaml:"prefix" env:"CACHE_PREFIX" env-default:"gamerfeeds:thread:"`
	TTL      time.Duration `yaml:"ttl" env:"THREAD_CACHE_TTL" env-default:"10m"`
}

// EventsConfig — публикация изменений в NATS. Пустой URL отключает публикацию.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url" env:"NATS_URL"`
}

// AuthConfig — проверка bearer-токенов (HS256).
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	Issuer    string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"gamerfeeds"`
	Audience  string        `yaml:"audience" env:"JWT_AUDIENCE" env-default:"gamerfeeds-api"`
	Leeway    time.Duration `yaml:"leeway" env:"JWT_LEEWAY" env-default:"30s"`
}

// ContentConfig — каталог игр/новостей/обсуждений для проверки существования цели.
// Пустой BaseURL отключает проверку.
type ContentConfig struct {
	BaseURL string        `yaml:"base_url" env:"CONTENT_API_URL"`
	Timeout time.Duration `yaml:"timeout" env:"CONTENT_API_TIMEOUT" env-default:"3s"`
}

// LimitsConfig — ограничения на запись и выдачу.
type LimitsConfig struct {
	// Максимальная глубина узла (level). Корень = 0.
	MaxDepth         int32 `yaml:"max_depth" env:"MAX_DEPTH" env-default:"16"`
	MaxContentLength int   `yaml:"max_content_length" env:"MAX_CONTENT_LENGTH" env-default:"2000"`
	// Выдача комментариев пользователя: limit=0 -> UserComments; верхняя граница — UserCommentsMax.
	UserComments    int32 `yaml:"user_comments" env:"USER_COMMENTS_LIMIT" env-default:"20"`
	UserCommentsMax int32 `yaml:"user_comments_max" env:"USER_COMMENTS_MAX" env-default:"100"`
}

// TimeoutConfig — дедлайны обработки запроса: Service для чтения,
// Write для записи (проверка каталога, вставка, синхронизация кэша).
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
	Write   time.Duration `yaml:"write" env:"SERVICE_WRITE_TIMEOUT" env-default:"10s"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	if path == "" {
		if _, err := os.Stat("local.yaml"); err == nil {
			path = "local.yaml"
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", path, err)
		}

		// ReadConfig сам накладывает ENV поверх файла.
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("db.url is required")
	}

	switch c.DB.Driver {
	case DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("db.driver must be one of %q, %q", DriverPostgres, DriverMongo)
	}

	switch c.Cache.Driver {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required for redis cache")
		}
	default:
		return fmt.Errorf("cache.driver must be one of %q, %q, %q", CacheNone, CacheMemory, CacheRedis)
	}

	if c.Cache.Driver != CacheNone && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be > 0")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	if c.Content.BaseURL != "" && c.Content.Timeout <= 0 {
		return fmt.Errorf("content.timeout must be > 0")
	}

	if c.Limits.MaxDepth <= 0 {
		return fmt.Errorf("limits.max_depth must be > 0")
	}

	if c.Limits.MaxDepth > 64 {
		return fmt.Errorf("limits.max_depth is too large (<= 64)")
	}

	if c.Limits.MaxContentLength <= 0 {
		return fmt.Errorf("limits.max_content_length must be > 0")
	}

	if c.Limits.UserComments <= 0 || c.Limits.UserCommentsMax <= 0 {
		return fmt.Errorf("limits.user_comments and limits.user_comments_max must be > 0")
	}

	if c.Limits.UserComments > c.Limits.UserCommentsMax {
		return fmt.Errorf("limits.user_comments must be <= limits.user_comments_max")
	}

	return nil
}
