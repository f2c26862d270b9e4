// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env"`
	AppURL                  string `yaml:"app_url"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	DataDir                 string `yaml:"data_dir"`
	ListsDir                string `yaml:"lists_dir"`
	HTTPServer              `yaml:"http_server"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	SessionToken            `yaml:"session_token"`
	GoogleSheets            `yaml:"google_sheets"`
	AdminBypass             `yaml:"admin_bypass"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitMQ структура для настройки подключения к брокеру сообщений
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url"`
	RabbitMQMaxRetries int           `yaml:"max_retries"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay"`
}

// SMTP структура для настройки почтового транспорта
type SMTP struct {
	SMTPHost string `yaml:"host"`
	SMTPPort string `yaml:"port"`
	SMTPUser string `yaml:"user"`
	SMTPPass string `yaml:"password" env:"SMTP_PASSWORD"`
}

// SessionToken структура для настройки токена пользовательской сессии
type SessionToken struct {
	SessionSecretKey string        `yaml:"secret_key" env:"SESSION_SECRET_KEY"`
	SessionTTL       time.Duration `yaml:"ttl" env-default:"168h"`
}

// GoogleSheets структура для настройки синхронизации с Google Sheets
type GoogleSheets struct {
	CredentialsFile   string `yaml:"credentials_file" env:"GOOGLE_SHEETS_CREDENTIALS_FILE"`
	SpreadsheetID     string `yaml:"spreadsheet_id"`
	SheetName         string `yaml:"sheet_name" env-default:"Sheet1"`
	MasterTableCSVURL string `yaml:"master_table_csv_url"`
}

// AdminBypass структура для служебной учетной записи администратора
type AdminBypass struct {
	AdminUsername string `yaml:"username" env-default:"admin"`
	AdminPassword string `yaml:"password" env:"ADMIN_PASSWORD" env-default:"admin"`
}

// MustLoad функция для загрузки конфига, путь к файлу берется из CONFIG_PATH
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
