package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Server         Server         `toml:"server"`
	Database       Database       `toml:"database"`
	Logs           Logs           `toml:"logs"`
	Metrics        Metrics        `toml:"metrics"`
	CatalogService ServiceClient  `toml:"catalog_service"`
	NotifyService  ServiceClient  `toml:"notify_service"`
	Policy         Policy         `toml:"policy"`
	Reminders      Reminders      `toml:"reminders"`
}

// Server настройки HTTP-сервера
type Server struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// Database настройки подключения к PostgreSQL
type Database struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN собирает строку подключения к PostgreSQL
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// Logs настройки логирования
type Logs struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// Metrics настройки prometheus-метрик
type Metrics struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// ServiceClient настройки HTTP-клиента внешнего сервиса
type ServiceClient struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// Policy параметры бизнес-политик бронирования.
// Значения по умолчанию заполняются в Load, если секция не задана.
type Policy struct {
	// CancellationFreeHours за сколько часов до начала отмена бесплатна
	CancellationFreeHours int `toml:"cancellation_free_hours"`
	// CancellationFeePercent процент от цены услуги при поздней отмене
	CancellationFeePercent float64 `toml:"cancellation_fee_percent"`
	// ReferralMaxPercent потолок реферальной комиссии
	ReferralMaxPercent float64 `toml:"referral_max_percent"`
	// NoShowGraceMinutes сколько минут после начала ждать клиента
	NoShowGraceMinutes int `toml:"no_show_grace_minutes"`
	// MaxCustomerReschedules сколько раз клиент может просить перенос в тот же день
	MaxCustomerReschedules int `toml:"max_customer_reschedules"`
	// SameDayLeadMinutes минимальный отступ от текущего времени для слотов на сегодня
	SameDayLeadMinutes int `toml:"same_day_lead_minutes"`
	// CheckInCodeTTLMinutes время жизни кода check-in
	CheckInCodeTTLMinutes int `toml:"check_in_code_ttl_minutes"`
}

// Reminders настройки диспетчера напоминаний
type Reminders struct {
	Enabled bool `toml:"enabled"`
	// Spec cron-выражение запуска обхода (по умолчанию каждую минуту)
	Spec string `toml:"spec"`
}

// Load загружает конфигурацию из TOML-файла и применяет значения по умолчанию.
// Секреты БД можно переопределить через переменные окружения
// (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD), в том числе из .env файла.
func Load(path string) (*Config, error) {
	// .env опционален: в контейнере переменные приходят из окружения
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "lma-booking-engine"
	}
	if c.Policy.CancellationFreeHours == 0 {
		c.Policy.CancellationFreeHours = 24
	}
	if c.Policy.CancellationFeePercent == 0 {
		c.Policy.CancellationFeePercent = 15
	}
	if c.Policy.ReferralMaxPercent == 0 {
		c.Policy.ReferralMaxPercent = 30
	}
	if c.Policy.NoShowGraceMinutes == 0 {
		c.Policy.NoShowGraceMinutes = 20
	}
	if c.Policy.MaxCustomerReschedules == 0 {
		c.Policy.MaxCustomerReschedules = 1
	}
	if c.Policy.SameDayLeadMinutes == 0 {
		c.Policy.SameDayLeadMinutes = 5
	}
	if c.Policy.CheckInCodeTTLMinutes == 0 {
		c.Policy.CheckInCodeTTLMinutes = 15
	}
	if c.Reminders.Spec == "" {
		c.Reminders.Spec = "* * * * *"
	}
}
