// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitConnection        `yaml:"rabbit_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Tariff                  `yaml:"tariff"`
	SMSGateway              `yaml:"sms_gateway"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"10s"`
}

// RabbitConnection структура для настройки подключения к RabbitMQ
type RabbitConnection struct {
	AddressRabbit string        `yaml:"addressrabbit"`
	RetriesRabbit int           `yaml:"retries" env-default:"5"`
	RetryDelay    time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Tariff параметры тарифа и депозита. Денежные значения в целых
// единицах валюты, налог — доля от базы.
type Tariff struct {
	FirstHourRate      float64       `yaml:"first_hour_rate" env-default:"600"`
	AdditionalHourRate float64       `yaml:"additional_hour_rate" env-default:"400"`
	DailyCap           float64       `yaml:"daily_cap" env-default:"3000"`
	TaxRate            float64       `yaml:"tax_rate" env-default:"0.18"`
	DepositAmount      float64       `yaml:"deposit_amount" env-default:"5000"`
	LateFeePerHour     float64       `yaml:"late_fee_per_hour" env-default:"500"`
	DefaultWindow      time.Duration `yaml:"default_window" env-default:"4h"`
	QRSessionTTL       time.Duration `yaml:"qr_session_ttl" env-default:"5m"`
	Currency           string        `yaml:"currency" env-default:"TZS"`
}

// SMSGateway настройки шлюза для отправки уведомлений.
type SMSGateway struct {
	GatewayURL    string        `yaml:"gateway_url"`
	APIKey        string        `yaml:"api_key" env:"SMS_API_KEY"`
	SenderName    string        `yaml:"sender_name" env-default:"CHAJIPOA"`
	SendTimeout   time.Duration `yaml:"send_timeout" env-default:"10s"`
	OverdueSweep  time.Duration `yaml:"overdue_sweep" env-default:"30m"`
	NotifyQueue   string        `yaml:"notify_queue" env-default:"rental-notifications"`
	NotifyKeyMask string        `yaml:"notify_key_mask" env-default:"rental.*"`
}

// MustLoad функция для загрузки конфига, путь берётся из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
