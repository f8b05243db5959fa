package infra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	keyLoggingEnabled = "http.logging.enabled"
	keyLoggingLevel   = "http.logging.level"

	defaultLoggingEnabled = true
	defaultLoggingLevel   = "INFO"
)

// Config — корневая структура конфигурации сервиса.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Shipper  ShipperConfig  `mapstructure:"shipper"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig описывает настройки HTTP-сервера.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type HTTPConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig — политика перехвата (http.logging.*). Поля заполняются вручную
// в bindLogging: кривое значение не должно ронять старт.
type LoggingConfig struct {
	Enabled bool   `mapstructure:"-"`
	Level   string `mapstructure:"-"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// ShipperConfig — асинхронная отправка записей во внешнее хранилище.
type ShipperConfig struct {
	Backend       string        `mapstructure:"backend"` // "", postgres, redis
	BufferSize    int           `mapstructure:"buffer_size"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`

	RateLimit     float64       `mapstructure:"rate_limit"` // flush/сек
	RetryAttempts uint          `mapstructure:"retry_attempts"`
	CBMaxFailures uint32        `mapstructure:"cb_max_failures"`
	CBTimeout     time.Duration `mapstructure:"cb_timeout"`
}

// DatabaseConfig описывает подключение к PostgreSQL.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int    `mapstructure:"max_conns"`
}

// RedisConfig описывает подключение к Redis.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoadConfig инициализирует конфигурацию, объединяя значения из файла и ENV.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// HTTP_LOGGING_LEVEL=debug перекроет http.logging.level
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет — работаем на ENV и дефолтах
	}

	return LoadConfigFrom(v)
}

// LoadConfigFrom маппит уже настроенный viper в Config.
func LoadConfigFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	cfg.HTTP.Logging = bindLogging(v)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyLoggingEnabled, defaultLoggingEnabled)
	v.SetDefault(keyLoggingLevel, defaultLoggingLevel)
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("logger.level", "debug")
	v.SetDefault("logger.format", "json")
	v.SetDefault("shipper.backend", "")
	v.SetDefault("shipper.buffer_size", 10000)
	v.SetDefault("shipper.batch_size", 100)
	v.SetDefault("shipper.flush_interval", 500*time.Millisecond)
	v.SetDefault("shipper.rate_limit", 50.0)
	v.SetDefault("shipper.retry_attempts", 3)
	v.SetDefault("shipper.cb_max_failures", 5)
	v.SetDefault("shipper.cb_timeout", 30*time.Second)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("metrics.addr", ":9090")
}

// bindLogging читает политику без ошибок: непарсящийся bool дает дефолт,
// уровень нормализуется уже в advice.ParseLevel.
func bindLogging(v *viper.Viper) LoggingConfig {
	enabled, err := cast.ToBoolE(v.Get(keyLoggingEnabled))
	if err != nil {
		enabled = defaultLoggingEnabled
	}

	level, err := cast.ToStringE(v.Get(keyLoggingLevel))
	if err != nil || strings.TrimSpace(level) == "" {
		level = defaultLoggingLevel
	}

	return LoggingConfig{Enabled: enabled, Level: level}
}
