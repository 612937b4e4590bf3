package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string           `yaml:"env" env-default:"development"` // environment
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Migrations MigrationsConfig `yaml:"migrations"`
	Shipping   ShippingConfig   `yaml:"shipping"`
	Cart       CartConfig       `yaml:"cart"`
	Session    SessionConfig    `yaml:"session"`
	LocalStore LocalStoreConfig `yaml:"local_store"`
	Storage    StorageConfig    `yaml:"storage"`
	Auth       AuthConfig       `yaml:"auth"`
	Admin      AdminConfig      `yaml:"admin"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// DatabaseConfig структура по работе с БД
type DatabaseConfig struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"-" env:"DB_PASSWORD" env-required:"true"`
	Name     string `yaml:"name" env-required:"true"`
}

// JWTConfig настройка jwt
type JWTConfig struct {
	Secret   string `yaml:"-" env:"JWT_SECRET" env-required:"true"`
	TokenTTL int    `yaml:"token_ttl" env-default:"60"`
}

type MigrationsConfig struct {
	Path string `yaml:"path" env-default:"./migrations"`
}

// ShippingConfig тарифы доставки в DZD
type ShippingConfig struct {
	BaseRate       int `yaml:"base_rate" env-default:"600"`
	PickupDiscount int `yaml:"pickup_discount" env-default:"200"`
}

// CartConfig ограничение на фоновую запись корзины в базу
type CartConfig struct {
	MirrorTimeout time.Duration `yaml:"mirror_timeout" env-default:"10s"`
}

type SessionConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl" env-default:"24h"`
	SweepInterval time.Duration `yaml:"sweep_interval" env-default:"10m"`
}

// LocalStoreConfig путь к sqlite-файлу с локальными данными сессий (избранное)
type LocalStoreConfig struct {
	Path string `yaml:"path" env:"LOCAL_STORE_PATH" env-default:"./data/local.db"`
	// Retention: значения, не менявшиеся дольше этого срока, удаляются
	Retention time.Duration `yaml:"retention" env-default:"720h"`
}

// StorageConfig файловое хранилище загруженных изображений
type StorageConfig struct {
	Dir           string `yaml:"dir" env-default:"./data/storage"`
	Bucket        string `yaml:"bucket" env-default:"products"`
	PublicURL     string `yaml:"public_url" env-default:"http://localhost:8080/storage"`
	MaxUploadSize int64  `yaml:"max_upload_size" env-default:"5242880"`
}

type AuthConfig struct {
	RoleTimeout time.Duration `yaml:"role_timeout" env-default:"4s"`
	AdminEmails []string      `yaml:"admin_emails" env:"ADMIN_EMAILS" env-separator:","`
}

// AdminConfig таймаут запросов админ-панели
type AdminConfig struct {
	FetchTimeout time.Duration `yaml:"fetch_timeout" env-default:"10s"`
}

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can't read config file %s", configPath)
	}

	return &cfg
}
