// config предоставляет структуру конфигурации клиента и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация клиента.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Store   StoreConfig   `yaml:"store"`
}

// APIConfig — параметры обращения к REST API платформы.
// BaseURL обязателен и проверяется как абсолютный URL при загрузке:
// без валидного адреса бэкенда клиент не имеет смысла и падает сразу.
type APIConfig struct {
	BaseURL string `yaml:"base_url" env:"API_BASE_URL" env-required:"true"`
	// RequestTimeout — таймаут обычных запросов.
	RequestTimeout time.Duration `yaml:"request_timeout" env:"API_REQUEST_TIMEOUT" env-default:"30s"`
	// RefreshTimeout — таймаут /auth/refresh. Короче обычного: отказ refresh
	// должен наступать быстро, иначе встаёт вся очередь запросов.
	RefreshTimeout time.Duration `yaml:"refresh_timeout" env:"API_REFRESH_TIMEOUT" env-default:"10s"`
	UserAgent      string        `yaml:"user_agent" env:"API_USER_AGENT" env-default:"psikotes-go-client"`
}

// SessionConfig — параметры жизненного цикла сессии.
type SessionConfig struct {
	// RefreshInterval — период фонового упреждающего refresh.
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"SESSION_REFRESH_INTERVAL" env-default:"10m"`
}

// StoreConfig — параметры локального хранилища токенов.
type StoreConfig struct {
	// Backend: file | redis.
	Backend string `yaml:"backend" env:"AUTH_STORE_BACKEND" env-default:"file"`
	// Path — директория файлового хранилища (пусто — ~/.psikotes).
	Path     string `yaml:"path" env:"AUTH_STORE_PATH"`
	RedisURL string `yaml:"redis_url" env:"AUTH_STORE_REDIS_URL"`
	// Retention — срок хранения сохранённой сессии.
	Retention time.Duration `yaml:"retention" env:"AUTH_STORE_RETENTION" env-default:"168h"`
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
// ВАЖНО: после чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	load := func() (*Config, error) {
		// 1) Явный путь.
		if path != "" {
			return tryRead(path)
		}

		// 2) CONFIG_PATH.
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			return tryRead(envPath)
		}

		// 3) ./local.yaml.
		if _, err := os.Stat("local.yaml"); err == nil {
			return tryRead("local.yaml")
		}

		// 4) Только ENV.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
		}

		return &cfg, nil
	}

	c, err := load()
	if err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// validate — fail-fast проверки, которые cleanenv не выражает тегами.
func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL %q is not a valid absolute http(s) URL", c.API.BaseURL)
	}

	switch c.Store.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("AUTH_STORE_BACKEND %q: want file or redis", c.Store.Backend)
	}

	if c.Store.Backend == "redis" && c.Store.RedisURL == "" {
		return fmt.Errorf("AUTH_STORE_REDIS_URL is required for redis backend")
	}

	return nil
}
