// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	RedisConnection         `yaml:"redis_connection"`
	JWTToken                `yaml:"jwt_token"`
	Admin                   `yaml:"admin"`
	Compiler                `yaml:"compiler"`
	Tutor                   `yaml:"tutor"`
	Cache                   `yaml:"cache"`
	RabbitMQ                `yaml:"rabbitmq"`
	RateLimit               `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"45s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"address" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeout" env:"REDIS_TIMEOUT" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"30m"`
}

// Admin хранит адрес почты, регистрация с которым создаёт администратора.
type Admin struct {
	AdminEmail string `yaml:"email" env:"ADMIN_EMAIL" env-default:"admin@cl-scripter.com"`
}

// Compiler настройки внешнего сервиса исполнения кода.
type Compiler struct {
	CompilerURL     string        `yaml:"url" env:"COMPILER_URL" env-default:"https://api.jdoodle.com/v1/execute"`
	ClientID        string        `yaml:"client_id" env:"JDOODLE_CLIENT_ID"`
	ClientSecret    string        `yaml:"client_secret" env:"JDOODLE_CLIENT_SECRET"`
	CompilerTimeout time.Duration `yaml:"timeout" env:"COMPILER_TIMEOUT" env-default:"10s"`
}

// Tutor настройки внешней языковой модели.
type Tutor struct {
	TutorURL     string        `yaml:"url" env:"TUTOR_URL" env-default:"https://generativelanguage.googleapis.com"`
	APIKey       string        `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model        string        `yaml:"model" env:"TUTOR_MODEL" env-default:"gemini-2.0-flash"`
	MaxTokens    int           `yaml:"max_tokens" env:"TUTOR_MAX_TOKENS" env-default:"500"`
	TutorTimeout time.Duration `yaml:"timeout" env:"TUTOR_TIMEOUT" env-default:"30s"`
}

// Cache время жизни закешированных отчётов.
type Cache struct {
	DashboardTTL time.Duration `yaml:"dashboard_ttl" env:"CACHE_DASHBOARD_TTL" env-default:"1m"`
}

// RabbitMQ настройки публикации учебных событий. Пустой URL отключает публикацию.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange           string        `yaml:"exchange" env:"RABBITMQ_EXCHANGE" env-default:"learning"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env:"RABBITMQ_MAX_RETRIES" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env:"RABBITMQ_RETRY_DELAY" env-default:"2s"`
}

// RateLimit ограничение частоты запросов к внешним шлюзам.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"5"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"10"`
}

// Load читает конфиг из файла по пути configPath, переменные окружения имеют приоритет.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH, завершает процесс при ошибке
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// String печатает конфиг без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Redis:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"Compiler:\n"+
			"  URL: %s\n"+
			"  Timeout: %s\n"+
			"Tutor:\n"+
			"  Model: %s\n"+
			"  Timeout: %s\n"+
			"RabbitMQ enabled: %t\n",
		c.Env,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AddressRedis,
		c.DB,
		c.TokenTTL,
		c.CompilerURL,
		c.CompilerTimeout,
		c.Model,
		c.TutorTimeout,
		c.RabbitMQURL != "",
	)
}
